package committee

import (
	"fmt"
	"time"
)

// RandomSource yields a uniform integer in [0, n). *rand.Rand from math/rand/v2
// satisfies it.
type RandomSource interface {
	IntN(n int) int
}

// EligibleCandidates returns members without a draw, in member order.
func EligibleCandidates(l Ledger) []Member {
	won := make(map[string]struct{}, len(l.Draws))
	for _, d := range l.Draws {
		won[d.WinnerMemberID] = struct{}{}
	}

	out := make([]Member, 0, len(l.Committee.Members))
	for _, m := range l.Committee.Members {
		if _, ok := won[m.ID]; ok {
			continue
		}
		out = append(out, m)
	}
	return out
}

func SelectWinner(candidates []Member, src RandomSource) (Member, error) {
	if len(candidates) == 0 {
		return Member{}, fmt.Errorf("%w: no eligible candidates", ErrInvalidState)
	}
	if src == nil {
		return Member{}, fmt.Errorf("%w: random source is required", ErrInvalidState)
	}
	return candidates[src.IntN(len(candidates))], nil
}

// NextCycle is the cycle awaiting a draw.
func NextCycle(c Committee) int {
	return c.CurrentCycle + 1
}

// EnsureDrawable guards a committee before selection.
func EnsureDrawable(l Ledger) ([]Member, error) {
	c := l.Committee
	if c.Status == StatusArchived {
		return nil, fmt.Errorf("%w: committee %s is archived", ErrInvalidState, c.ID)
	}
	if c.IsCompleted() || c.Status == StatusCompleted {
		return nil, fmt.Errorf("%w: committee %s is completed", ErrInvalidState, c.ID)
	}

	candidates := EligibleCandidates(l)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no eligible candidates while %d cycles remain", ErrInvalidState, c.TotalCycles-c.CurrentCycle)
	}
	return candidates, nil
}

// RecordDraw appends the draw and advances the cycle pointer in one step. The
// ledger is only modified when every check passes.
func RecordDraw(l *Ledger, cycle int, winnerMemberID, drawID string, now time.Time) (Draw, error) {
	for _, d := range l.Draws {
		if d.Cycle == cycle {
			return Draw{}, fmt.Errorf("%w: committee=%s cycle=%d", ErrDuplicateDraw, l.Committee.ID, cycle)
		}
	}

	candidates, err := EnsureDrawable(*l)
	if err != nil {
		return Draw{}, err
	}
	if expected := NextCycle(l.Committee); cycle != expected {
		return Draw{}, fmt.Errorf("%w: expected cycle %d, got %d", ErrInvalidState, expected, cycle)
	}

	eligible := false
	for _, m := range candidates {
		if m.ID == winnerMemberID {
			eligible = true
			break
		}
	}
	if !eligible {
		return Draw{}, fmt.Errorf("%w: member %s is not eligible", ErrInvalidState, winnerMemberID)
	}

	draw := Draw{
		ID:             drawID,
		CommitteeID:    l.Committee.ID,
		Cycle:          cycle,
		WinnerMemberID: winnerMemberID,
		DrawnAt:        now,
	}

	l.Draws = append(l.Draws, draw)
	l.Committee.CurrentCycle++
	l.Committee.UpdatedAt = now
	if l.Committee.CurrentCycle == l.Committee.TotalCycles {
		l.Committee.IsActive = false
		l.Committee.Status = StatusCompleted
	} else {
		l.Committee.IsActive = true
	}

	return draw, nil
}
