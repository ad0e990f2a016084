package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/domain/reminder"
	"github.com/riskibarqy/komiti/internal/domain/report"
	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/riskibarqy/komiti/internal/platform/logging"
)

const defaultReminderWorkers = 4

type ReminderService struct {
	repo      committee.Repository
	generator reminder.Generator
	workers   int
	recorder  Recorder
	logger    *logging.Logger
}

// NewReminderService accepts a nil generator; every text then comes from the
// templates.
func NewReminderService(
	repo committee.Repository,
	generator reminder.Generator,
	workers int,
	recorder Recorder,
	logger *logging.Logger,
) *ReminderService {
	if workers < 1 {
		workers = defaultReminderWorkers
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &ReminderService{
		repo:      repo,
		generator: generator,
		workers:   workers,
		recorder:  recorderOrNop(recorder),
		logger:    logger,
	}
}

// GenerateReminder never fails: generator errors are logged and the template
// text is returned instead.
func (s *ReminderService) GenerateReminder(ctx context.Context, req reminder.Request) (string, bool) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReminderService.GenerateReminder")
	defer span.End()

	if !user.IsValidLanguage(req.Language) {
		req.Language = user.LanguageEnglish
	}
	if s.generator == nil {
		s.recorder.ReminderGenerated(true)
		return reminder.TemplateReminder(req), true
	}

	text, err := s.generator.GenerateReminder(ctx, req)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.WarnContext(ctx, "reminder generation failed, using template",
			"member_name", req.MemberName,
			"committee_name", req.CommitteeName,
			"error", err,
		)
		s.recorder.ReminderGenerated(true)
		return reminder.TemplateReminder(req), true
	}

	s.recorder.ReminderGenerated(false)
	return strings.TrimSpace(text), false
}

func (s *ReminderService) GenerateSummary(ctx context.Context, committeeID string, language user.Language) (string, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReminderService.GenerateSummary", committeeAttr(committeeID))
	defer span.End()

	ledger, err := loadLedger(ctx, s.repo, committeeID)
	if err != nil {
		return "", err
	}
	if !user.IsValidLanguage(language) {
		language = user.LanguageEnglish
	}

	rep := report.CommitteeReportOf(ledger)
	req := reminder.SummaryRequest{
		CommitteeName:  ledger.Committee.Name,
		TotalMembers:   len(ledger.Committee.Members),
		TotalCollected: rep.CollectedAmount,
		Cycle:          ledger.Committee.CurrentCycle,
		Language:       language,
	}
	if s.generator == nil {
		return reminder.TemplateSummary(req), nil
	}

	text, err := s.generator.GenerateSummary(ctx, req)
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.WarnContext(ctx, "summary generation failed, using template", "committee_id", committeeID, "error", err)
		return reminder.TemplateSummary(req), nil
	}
	return strings.TrimSpace(text), nil
}

// PendingReminders builds one reminder per member who has not paid the cycle
// awaiting a draw. Completed and archived committees have none.
func (s *ReminderService) PendingReminders(ctx context.Context, committeeID string, language user.Language) ([]reminder.Reminder, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ReminderService.PendingReminders", committeeAttr(committeeID))
	defer span.End()

	ledger, err := loadLedger(ctx, s.repo, committeeID)
	if err != nil {
		return nil, err
	}
	c := ledger.Committee
	if !c.IsActive || c.IsCompleted() {
		return []reminder.Reminder{}, nil
	}

	cycle := committee.NextCycle(c)
	dueDate := c.DueDate(cycle)
	pending := make([]reminder.Reminder, 0, len(c.Members))
	for _, p := range committee.PaymentsForCycle(ledger, cycle) {
		if p.IsPaid {
			continue
		}
		m, ok := c.MemberByID(p.MemberID)
		if !ok {
			continue
		}
		pending = append(pending, reminder.Reminder{
			CommitteeID: c.ID,
			MemberID:    m.ID,
			MemberName:  m.Name,
			Contact:     m.Contact,
			Cycle:       cycle,
			Amount:      p.Amount,
			DueDate:     dueDate,
		})
	}
	if len(pending) == 0 {
		return pending, nil
	}

	pool, err := ants.NewPool(min(s.workers, len(pending)))
	if err != nil {
		return nil, fmt.Errorf("create reminder pool: %w", err)
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range pending {
		item := &pending[i]
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			item.Text, item.Fallback = s.GenerateReminder(ctx, reminder.Request{
				MemberName:    item.MemberName,
				CommitteeName: c.Name,
				Amount:        item.Amount,
				DueCycle:      item.Cycle,
				DueDate:       item.DueDate,
				Language:      language,
			})
		})
		if submitErr != nil {
			wg.Done()
			return nil, fmt.Errorf("submit reminder task: %w", submitErr)
		}
	}
	wg.Wait()

	return pending, nil
}

// ActiveCommitteeIDs lists committees still collecting payments; the
// scheduler walks them.
func (s *ReminderService) ActiveCommitteeIDs(ctx context.Context) ([]string, error) {
	ledgers, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list committees: %w", err)
	}

	out := make([]string, 0, len(ledgers))
	for _, l := range ledgers {
		if l.Committee.IsActive && !l.Committee.IsCompleted() {
			out = append(out, l.Committee.ID)
		}
	}
	return out, nil
}
