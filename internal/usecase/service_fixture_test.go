package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/infrastructure/repository/memory"
	idgen "github.com/riskibarqy/komiti/internal/platform/id"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/riskibarqy/komiti/internal/platform/random"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

type countingRecorder struct {
	mu        sync.Mutex
	created   int
	toggled   map[bool]int
	draws     map[bool]int
	reminders map[bool]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{toggled: map[bool]int{}, draws: map[bool]int{}, reminders: map[bool]int{}}
}

func (r *countingRecorder) CommitteeCreated() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created++
}

func (r *countingRecorder) PaymentToggled(paid bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.toggled[paid]++
}

func (r *countingRecorder) DrawRecorded(completed bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.draws[completed]++
}

func (r *countingRecorder) ReminderGenerated(fallback bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reminders[fallback]++
}

type serviceFixture struct {
	repo       committee.Repository
	recorder   *countingRecorder
	committees *CommitteeService
	payments   *PaymentService
	draws      *DrawService
	reports    *ReportService
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	logger := logging.NewNop()
	repo := memory.NewCommitteeRepository(memory.NewDB())
	mutator := NewLedgerMutator(repo)
	ids := idgen.NewSequenceGenerator("id")
	recorder := newCountingRecorder()

	f := &serviceFixture{
		repo:       repo,
		recorder:   recorder,
		committees: NewCommitteeService(repo, mutator, ids, recorder, logger),
		payments:   NewPaymentService(repo, mutator, recorder, logger),
		draws:      NewDrawService(repo, mutator, random.NewSource(42), ids, recorder, logger),
		reports:    NewReportService(repo),
	}
	clock := func() time.Time { return fixedNow }
	f.committees.now = clock
	f.payments.now = clock
	f.draws.now = clock
	return f
}

func (f *serviceFixture) create(t *testing.T, owner string, memberNames ...string) committee.Ledger {
	t.Helper()

	members := make([]MemberInput, 0, len(memberNames))
	for _, name := range memberNames {
		members = append(members, MemberInput{ID: name, Name: name})
	}
	ledger, err := f.committees.Create(context.Background(), CreateCommitteeInput{
		OwnerID:        owner,
		Name:           "Family Pool",
		AmountPerCycle: decimal.NewFromInt(500),
		StartDate:      time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Members:        members,
	})
	require.NoError(t, err)
	return ledger
}
