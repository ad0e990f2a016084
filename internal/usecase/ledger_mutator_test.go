package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	committeemocks "github.com/riskibarqy/komiti/internal/mocks/domain/committee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLedgerMutator_FailedMutationWritesNothingUsingMockery(t *testing.T) {
	t.Parallel()

	repo := committeemocks.NewRepository(t)
	mutator := NewLedgerMutator(repo)
	ledger := committee.Ledger{Committee: committee.Committee{ID: "c-1", Name: "Pool"}}

	repo.On("GetByID", mock.Anything, "c-1").Return(ledger, true, nil).Once()

	_, err := mutator.Mutate(context.Background(), "c-1", func(l *committee.Ledger) error {
		l.Committee.Name = "changed"
		return committee.ErrInvalidState
	})
	assert.ErrorIs(t, err, ErrInvalidState)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestLedgerMutator_UpdatesCopyUsingMockery(t *testing.T) {
	t.Parallel()

	repo := committeemocks.NewRepository(t)
	mutator := NewLedgerMutator(repo)
	original := committee.Ledger{Committee: committee.Committee{ID: "c-1", Name: "Pool"}}

	repo.On("GetByID", mock.Anything, "c-1").Return(original, true, nil).Once()
	repo.
		On("Update", mock.Anything, mock.MatchedBy(func(l committee.Ledger) bool { return l.Committee.Name == "changed" })).
		Return(nil).
		Once()

	got, err := mutator.Mutate(context.Background(), "c-1", func(l *committee.Ledger) error {
		l.Committee.Name = "changed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Committee.Name)
	assert.Equal(t, "Pool", original.Committee.Name)
}

func TestLedgerMutator_RepositoryErrorsUsingMockery(t *testing.T) {
	t.Parallel()

	repo := committeemocks.NewRepository(t)
	mutator := NewLedgerMutator(repo)
	boom := errors.New("timeout")

	repo.On("GetByID", mock.Anything, "missing").Return(committee.Ledger{}, false, nil).Once()
	repo.On("GetByID", mock.Anything, "broken").Return(committee.Ledger{}, false, boom).Once()

	noop := func(*committee.Ledger) error { return nil }
	_, err := mutator.Mutate(context.Background(), "missing", noop)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = mutator.Mutate(context.Background(), "broken", noop)
	assert.ErrorIs(t, err, boom)

	mutator.mu.Lock()
	defer mutator.mu.Unlock()
	assert.Empty(t, mutator.locks)
}
