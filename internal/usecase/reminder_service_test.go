package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/riskibarqy/komiti/internal/domain/reminder"
	"github.com/riskibarqy/komiti/internal/domain/user"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	mu       sync.Mutex
	calls    int
	failFor  string
	summary  string
	lastLang user.Language
}

func (g *stubGenerator) GenerateReminder(_ context.Context, req reminder.Request) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastLang = req.Language
	if req.MemberName == g.failFor {
		return "", errors.New("quota exceeded")
	}
	return "  generated for " + req.MemberName + "  ", nil
}

func (g *stubGenerator) GenerateSummary(_ context.Context, req reminder.SummaryRequest) (string, error) {
	if g.summary == "" {
		return "", errors.New("unavailable")
	}
	return g.summary + " " + req.CommitteeName, nil
}

func TestReminderService_TemplateWithoutGenerator(t *testing.T) {
	recorder := newCountingRecorder()
	svc := NewReminderService(nil, nil, 0, recorder, logging.NewNop())

	text, fallback := svc.GenerateReminder(context.Background(), reminder.Request{
		MemberName:    "Ali",
		CommitteeName: "Family Pool",
		Amount:        decimal.NewFromInt(500),
		DueCycle:      2,
		Language:      "fr",
	})

	assert.True(t, fallback)
	assert.True(t, strings.HasPrefix(text, "Dear Ali"), text)
	assert.Contains(t, text, "500.00")
	assert.Contains(t, text, "cycle 2")
	assert.Equal(t, 1, recorder.reminders[true])
}

func TestReminderService_PendingRemindersFallsBackPerMember(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	ledger := f.create(t, "owner-1", "ali", "sara", "omar")
	id := ledger.Committee.ID

	_, err := f.payments.TogglePayment(ctx, TogglePaymentInput{CommitteeID: id, MemberID: "omar", Cycle: 1})
	require.NoError(t, err)

	gen := &stubGenerator{failFor: "sara"}
	svc := NewReminderService(f.repo, gen, 2, f.recorder, logging.NewNop())

	items, err := svc.PendingReminders(ctx, id, user.LanguageUrdu)
	require.NoError(t, err)
	require.Len(t, items, 2)

	byMember := map[string]reminder.Reminder{}
	for _, r := range items {
		byMember[r.MemberID] = r
		assert.Equal(t, 1, r.Cycle)
		assert.Equal(t, id, r.CommitteeID)
		assert.True(t, ledger.Committee.StartDate.Equal(r.DueDate))
	}
	assert.Equal(t, "generated for ali", byMember["ali"].Text)
	assert.False(t, byMember["ali"].Fallback)
	assert.True(t, byMember["sara"].Fallback)
	assert.Contains(t, byMember["sara"].Text, "محترم sara")
	assert.Equal(t, 2, gen.calls)
	assert.Equal(t, user.LanguageUrdu, gen.lastLang)
}

func TestReminderService_SkipsFinishedCommittees(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	active := f.create(t, "owner-1", "ali", "sara")
	archived := f.create(t, "owner-1", "omar")
	done := f.create(t, "owner-2", "zara")

	_, err := f.committees.Archive(ctx, archived.Committee.ID)
	require.NoError(t, err)
	_, err = f.draws.Draw(ctx, done.Committee.ID)
	require.NoError(t, err)

	svc := NewReminderService(f.repo, nil, 2, nil, logging.NewNop())
	ids, err := svc.ActiveCommitteeIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{active.Committee.ID}, ids)

	items, err := svc.PendingReminders(ctx, archived.Committee.ID, user.LanguageEnglish)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestReminderService_GenerateSummary(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	ledger := f.create(t, "owner-1", "ali", "sara")

	withTemplate := NewReminderService(f.repo, &stubGenerator{}, 1, nil, logging.NewNop())
	text, err := withTemplate.GenerateSummary(ctx, ledger.Committee.ID, user.LanguageEnglish)
	require.NoError(t, err)
	assert.Contains(t, text, "Family Pool - Cycle 0")
	assert.Contains(t, text, "Total Members: 2")

	generated := NewReminderService(f.repo, &stubGenerator{summary: "summary of"}, 1, nil, logging.NewNop())
	text, err = generated.GenerateSummary(ctx, ledger.Committee.ID, user.LanguageEnglish)
	require.NoError(t, err)
	assert.Equal(t, "summary of Family Pool", text)

	_, err = generated.GenerateSummary(ctx, "missing", user.LanguageEnglish)
	assert.ErrorIs(t, err, ErrNotFound)
}
