package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	committeemocks "github.com/riskibarqy/komiti/internal/mocks/domain/committee"
	idgen "github.com/riskibarqy/komiti/internal/platform/id"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCommitteeService_CreateInitializesPaymentMatrix(t *testing.T) {
	f := newServiceFixture(t)

	ledger := f.create(t, "owner-1", "ali", "sara", "omar")

	assert.Equal(t, 3, ledger.Committee.TotalCycles)
	assert.Equal(t, 0, ledger.Committee.CurrentCycle)
	assert.Equal(t, committee.StatusActive, ledger.Committee.Status)
	assert.True(t, ledger.Committee.IsActive)
	require.Len(t, ledger.Payments, 9)
	for _, p := range ledger.Payments {
		assert.False(t, p.IsPaid)
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(500)))
		assert.Equal(t, committee.PaymentID(ledger.Committee.ID, p.Cycle, p.MemberID), p.ID)
	}
	assert.Equal(t, 1, f.recorder.created)

	stored, err := f.committees.Get(context.Background(), ledger.Committee.ID)
	require.NoError(t, err)
	assert.Equal(t, ledger.Committee.Name, stored.Committee.Name)
}

func TestCommitteeService_CreateRejectsInvalidInput(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		input CreateCommitteeInput
	}{
		{name: "missing owner", input: CreateCommitteeInput{Name: "x", AmountPerCycle: decimal.NewFromInt(1), Members: []MemberInput{{Name: "a"}}}},
		{name: "no members", input: CreateCommitteeInput{OwnerID: "o", Name: "x", AmountPerCycle: decimal.NewFromInt(1)}},
		{name: "blank name", input: CreateCommitteeInput{OwnerID: "o", Name: " ", AmountPerCycle: decimal.NewFromInt(1), Members: []MemberInput{{Name: "a"}}}},
		{name: "zero amount", input: CreateCommitteeInput{OwnerID: "o", Name: "x", Members: []MemberInput{{Name: "a"}}}},
		{name: "cycles differ from members", input: CreateCommitteeInput{OwnerID: "o", Name: "x", AmountPerCycle: decimal.NewFromInt(1), TotalCycles: 2, Members: []MemberInput{{Name: "a"}}}},
		{name: "duplicate member ids", input: CreateCommitteeInput{OwnerID: "o", Name: "x", AmountPerCycle: decimal.NewFromInt(1), Members: []MemberInput{{ID: "m", Name: "a"}, {ID: "m", Name: "b"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.committees.Create(ctx, tt.input)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}

	items, err := f.committees.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.Zero(t, f.recorder.created)
}

func TestCommitteeService_UpdateKeepsPayments(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	ledger := f.create(t, "owner-1", "ali", "sara")

	name := "Renamed"
	amount := decimal.NewFromInt(900)
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	updated, err := f.committees.Update(ctx, UpdateCommitteeInput{
		CommitteeID:    ledger.Committee.ID,
		Name:           &name,
		AmountPerCycle: &amount,
		StartDate:      &start,
	})
	require.NoError(t, err)

	assert.Equal(t, "Renamed", updated.Committee.Name)
	assert.True(t, updated.Committee.AmountPerCycle.Equal(amount))
	assert.Equal(t, start, updated.Committee.StartDate)
	for _, p := range updated.Payments {
		assert.True(t, p.Amount.Equal(decimal.NewFromInt(500)), "payments keep the amount frozen at creation")
	}

	blank := " "
	_, err = f.committees.Update(ctx, UpdateCommitteeInput{CommitteeID: ledger.Committee.ID, Name: &blank})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.committees.Update(ctx, UpdateCommitteeInput{CommitteeID: "missing", Name: &name})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommitteeService_ArchiveAndDelete(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	ledger := f.create(t, "owner-1", "ali", "sara")

	archived, err := f.committees.Archive(ctx, ledger.Committee.ID)
	require.NoError(t, err)
	assert.Equal(t, committee.StatusArchived, archived.Committee.Status)
	assert.False(t, archived.Committee.IsActive)

	_, err = f.draws.Draw(ctx, ledger.Committee.ID)
	assert.ErrorIs(t, err, ErrInvalidState)

	require.NoError(t, f.committees.Delete(ctx, ledger.Committee.ID))
	_, err = f.committees.Get(ctx, ledger.Committee.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, f.committees.Delete(ctx, ledger.Committee.ID), "deleting twice is not an error")
	assert.ErrorIs(t, f.committees.Delete(ctx, " "), ErrInvalidInput)
}

func TestCommitteeService_ListByOwner(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	f.create(t, "owner-1", "a")
	f.create(t, "owner-2", "b")
	f.create(t, "owner-1", "c", "d")

	mine, err := f.committees.ListByOwner(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	_, err = f.committees.ListByOwner(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCommitteeService_CreateSurfacesRepositoryConflictUsingMockery(t *testing.T) {
	t.Parallel()

	repo := committeemocks.NewRepository(t)
	svc := NewCommitteeService(repo, NewLedgerMutator(repo), idgen.NewSequenceGenerator("c"), nil, logging.NewNop())

	repo.
		On("Create", mock.Anything, mock.MatchedBy(func(l committee.Ledger) bool { return len(l.Payments) == 1 })).
		Return(committee.ErrAlreadyExists).
		Once()

	_, err := svc.Create(context.Background(), CreateCommitteeInput{
		OwnerID:        "owner",
		Name:           "Pool",
		AmountPerCycle: decimal.NewFromInt(10),
		Members:        []MemberInput{{ID: "m1", Name: "One"}},
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestCommitteeService_ListWrapsRepositoryErrorUsingMockery(t *testing.T) {
	t.Parallel()

	repo := committeemocks.NewRepository(t)
	svc := NewCommitteeService(repo, NewLedgerMutator(repo), idgen.NewSequenceGenerator("c"), nil, logging.NewNop())
	boom := errors.New("connection reset")

	repo.On("List", mock.Anything).Return(nil, boom).Once()

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, boom)
}
