package cache

import (
	"context"
	"testing"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/infrastructure/repository/memory"
	basecache "github.com/riskibarqy/komiti/internal/platform/cache"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRepo struct {
	committee.Repository
	gets  int
	lists int
}

func (r *countingRepo) GetByID(ctx context.Context, id string) (committee.Ledger, bool, error) {
	r.gets++
	return r.Repository.GetByID(ctx, id)
}

func (r *countingRepo) List(ctx context.Context) ([]committee.Ledger, error) {
	r.lists++
	return r.Repository.List(ctx)
}

func newLedger(t *testing.T, id string) committee.Ledger {
	t.Helper()
	l, err := committee.NewLedger(committee.Committee{
		ID:             id,
		OwnerID:        "u1",
		Name:           "c " + id,
		AmountPerCycle: decimal.NewFromInt(10),
		TotalCycles:    1,
		Members:        []committee.Member{{ID: "a", Name: "A"}},
		IsActive:       true,
		Status:         committee.StatusActive,
	})
	require.NoError(t, err)
	return l
}

func TestCommitteeRepositoryCachesAndInvalidates(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepo{Repository: memory.NewCommitteeRepository(memory.NewDB())}
	repo := NewCommitteeRepository(inner, basecache.NewStore(time.Minute))

	require.NoError(t, repo.Create(ctx, newLedger(t, "c1")))

	for range 3 {
		_, ok, err := repo.GetByID(ctx, "c1")
		require.NoError(t, err)
		require.True(t, ok)
		_, err = repo.List(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, inner.gets)
	assert.Equal(t, 1, inner.lists)

	l, _, _ := repo.GetByID(ctx, "c1")
	l.Committee.Name = "renamed"
	require.NoError(t, repo.Update(ctx, l))

	got, _, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Committee.Name)
	assert.Equal(t, 2, inner.gets)

	require.NoError(t, repo.Delete(ctx, "c1"))
	_, ok, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestCommitteeRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewCommitteeRepository(memory.NewCommitteeRepository(memory.NewDB(newLedger(t, "c1"))), basecache.NewStore(time.Minute))

	first, _, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	first.Payments[0].IsPaid = true

	second, _, err := repo.GetByID(ctx, "c1")
	require.NoError(t, err)
	assert.False(t, second.Payments[0].IsPaid)
}
