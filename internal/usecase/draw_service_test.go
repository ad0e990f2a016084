package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrawService_DrawsEveryMemberExactlyOnce(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	ledger := f.create(t, "owner-1", "ali", "sara", "omar", "zara")
	id := ledger.Committee.ID

	winners := map[string]int{}
	for cycle := 1; cycle <= 4; cycle++ {
		before, err := f.draws.EligibleCandidates(ctx, id)
		require.NoError(t, err)
		assert.Len(t, before, 5-cycle)

		result, err := f.draws.Draw(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, cycle, result.Draw.Cycle)
		assert.Equal(t, cycle, result.Committee.CurrentCycle)
		assert.Equal(t, result.Winner.ID, result.Draw.WinnerMemberID)
		assert.Equal(t, fixedNow, result.Draw.DrawnAt)
		winners[result.Winner.ID]++
	}

	assert.Len(t, winners, 4)
	for member, count := range winners {
		assert.Equal(t, 1, count, member)
	}

	final, err := f.committees.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, committee.StatusCompleted, final.Committee.Status)
	assert.False(t, final.Committee.IsActive)

	_, err = f.draws.Draw(ctx, id)
	assert.ErrorIs(t, err, ErrInvalidState)

	candidates, err := f.draws.EligibleCandidates(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, candidates)

	assert.Equal(t, 3, f.recorder.draws[false])
	assert.Equal(t, 1, f.recorder.draws[true])
}

func TestDrawService_DrawDoesNotRequirePayments(t *testing.T) {
	f := newServiceFixture(t)
	ledger := f.create(t, "owner-1", "ali", "sara")

	result, err := f.draws.Draw(context.Background(), ledger.Committee.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Draw.Cycle)
}

func TestDrawService_RecordDrawChecks(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	ledger := f.create(t, "owner-1", "ali", "sara", "omar")
	id := ledger.Committee.ID

	_, err := f.draws.RecordDraw(ctx, RecordDrawInput{CommitteeID: id, Cycle: 2, WinnerMemberID: "ali"})
	assert.ErrorIs(t, err, ErrInvalidState, "cycles cannot be skipped")

	_, err = f.draws.RecordDraw(ctx, RecordDrawInput{CommitteeID: id, Cycle: 1, WinnerMemberID: "ghost"})
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = f.draws.RecordDraw(ctx, RecordDrawInput{CommitteeID: id, Cycle: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	result, err := f.draws.RecordDraw(ctx, RecordDrawInput{CommitteeID: id, Cycle: 1, WinnerMemberID: "sara"})
	require.NoError(t, err)
	assert.Equal(t, "sara", result.Winner.ID)
	assert.Equal(t, "sara", result.Winner.Name)

	_, err = f.draws.RecordDraw(ctx, RecordDrawInput{CommitteeID: id, Cycle: 1, WinnerMemberID: "ali"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = f.draws.RecordDraw(ctx, RecordDrawInput{CommitteeID: id, Cycle: 2, WinnerMemberID: "sara"})
	assert.ErrorIs(t, err, ErrInvalidState, "a member wins once")

	draws, err := f.draws.ListDraws(ctx, id)
	require.NoError(t, err)
	require.Len(t, draws, 1)
	assert.Equal(t, 1, draws[0].Cycle)
}

func TestDrawService_ConcurrentDrawsNeverOverdraw(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	members := []string{"a", "b", "c", "d", "e", "f"}
	ledger := f.create(t, "owner-1", members...)
	id := ledger.Committee.ID

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		ok       int
		rejected int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.draws.Draw(ctx, id)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
				return
			}
			assert.ErrorIs(t, err, ErrInvalidState)
			rejected++
		}()
	}
	wg.Wait()

	assert.Equal(t, len(members), ok)
	assert.Equal(t, 20-len(members), rejected)

	draws, err := f.draws.ListDraws(ctx, id)
	require.NoError(t, err)
	require.Len(t, draws, len(members))
	seen := map[string]struct{}{}
	for i, d := range draws {
		assert.Equal(t, i+1, d.Cycle)
		seen[d.WinnerMemberID] = struct{}{}
	}
	assert.Len(t, seen, len(members))
}

type fixedRandom int

func (r fixedRandom) IntN(n int) int { return int(r) % n }

func TestDrawService_UsesRandomSource(t *testing.T) {
	f := newServiceFixture(t)
	f.draws.random = fixedRandom(1)
	ledger := f.create(t, "owner-1", "ali", "sara", "omar")

	result, err := f.draws.Draw(context.Background(), ledger.Committee.ID)
	require.NoError(t, err)
	assert.Equal(t, "sara", result.Winner.ID)
}
