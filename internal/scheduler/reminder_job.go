package scheduler

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/reminder"
	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/shopspring/decimal"
)

type ReminderSource interface {
	ActiveCommitteeIDs(ctx context.Context) ([]string, error)
	PendingReminders(ctx context.Context, committeeID string, language user.Language) ([]reminder.Reminder, error)
}

// Publisher hands a reminder to the delivery pipeline.
type Publisher interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type ReminderPayload struct {
	CommitteeID string          `json:"committee_id"`
	MemberID    string          `json:"member_id"`
	MemberName  string          `json:"member_name"`
	Contact     string          `json:"contact,omitempty"`
	Cycle       int             `json:"cycle"`
	Amount      decimal.Decimal `json:"amount"`
	DueDate     string          `json:"due_date,omitempty"`
	Text        string          `json:"text"`
	Fallback    bool            `json:"fallback"`
}

type RunResult struct {
	Committees int
	Reminders  int
	Published  int
	Failed     int
}

// ReminderJob walks active committees and publishes one reminder per unpaid
// member of the cycle awaiting a draw. Without a publisher it only logs.
type ReminderJob struct {
	source    ReminderSource
	publisher Publisher
	path      string
	language  user.Language
	logger    *logging.Logger
	now       func() time.Time
}

func NewReminderJob(source ReminderSource, publisher Publisher, path string, language user.Language, logger *logging.Logger) *ReminderJob {
	if logger == nil {
		logger = logging.Default()
	}
	if !user.IsValidLanguage(language) {
		language = user.LanguageEnglish
	}
	if path == "" {
		path = "/reminders"
	}

	return &ReminderJob{
		source:    source,
		publisher: publisher,
		path:      path,
		language:  language,
		logger:    logger,
		now:       time.Now,
	}
}

func (j *ReminderJob) Run(ctx context.Context) error {
	result, err := j.RunOnce(ctx)
	if err != nil {
		return err
	}
	if result.Failed > 0 {
		return fmt.Errorf("publish reminders: %d of %d failed", result.Failed, result.Reminders)
	}
	return nil
}

// RunOnce keeps going past per-committee and per-reminder failures and
// reports them in the result.
func (j *ReminderJob) RunOnce(ctx context.Context) (RunResult, error) {
	ids, err := j.source.ActiveCommitteeIDs(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("list active committees: %w", err)
	}

	var result RunResult
	day := j.now().UTC().Format(time.DateOnly)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		reminders, err := j.source.PendingReminders(ctx, id, j.language)
		if err != nil {
			j.logger.WarnContext(ctx, "build pending reminders failed", "committee_id", id, "error", err)
			result.Failed++
			continue
		}
		result.Committees++
		result.Reminders += len(reminders)

		for _, r := range reminders {
			if j.publisher == nil {
				j.logger.InfoContext(ctx, "payment reminder",
					"committee_id", r.CommitteeID,
					"member_id", r.MemberID,
					"cycle", r.Cycle,
					"fallback", r.Fallback,
				)
				continue
			}

			dedup := r.CommitteeID + ":" + strconv.Itoa(r.Cycle) + ":" + r.MemberID + ":" + day
			if err := j.publisher.Enqueue(ctx, j.path, toPayload(r), 0, dedup); err != nil {
				j.logger.WarnContext(ctx, "publish reminder failed", "committee_id", r.CommitteeID, "member_id", r.MemberID, "error", err)
				result.Failed++
				continue
			}
			result.Published++
		}
	}

	return result, nil
}

func toPayload(r reminder.Reminder) ReminderPayload {
	p := ReminderPayload{
		CommitteeID: r.CommitteeID,
		MemberID:    r.MemberID,
		MemberName:  r.MemberName,
		Contact:     r.Contact,
		Cycle:       r.Cycle,
		Amount:      r.Amount,
		Text:        r.Text,
		Fallback:    r.Fallback,
	}
	if !r.DueDate.IsZero() {
		p.DueDate = r.DueDate.Format(time.DateOnly)
	}
	return p
}
