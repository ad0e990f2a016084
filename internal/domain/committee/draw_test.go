package committee

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"
)

type fixedSource struct {
	next int
}

func (s fixedSource) IntN(n int) int {
	return s.next % n
}

func TestEligibleCandidates_ExcludesWinners(t *testing.T) {
	ledger, err := NewLedger(sampleCommittee())
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	ledger.Draws = append(ledger.Draws, Draw{ID: "d1", Cycle: 1, WinnerMemberID: "B"})

	got := EligibleCandidates(ledger)
	if len(got) != 2 || got[0].ID != "A" || got[1].ID != "C" {
		t.Fatalf("unexpected candidates: %+v", got)
	}
}

func TestSelectWinner_Uniform(t *testing.T) {
	candidates := sampleCommittee().Members
	rng := rand.New(rand.NewPCG(42, 7))

	counts := make(map[string]int, len(candidates))
	const rounds = 30000
	for i := 0; i < rounds; i++ {
		m, err := SelectWinner(candidates, rng)
		if err != nil {
			t.Fatalf("select winner: %v", err)
		}
		counts[m.ID]++
	}

	for _, c := range candidates {
		share := float64(counts[c.ID]) / rounds
		if share < 0.30 || share > 0.37 {
			t.Fatalf("candidate %s share %.3f outside tolerance", c.ID, share)
		}
	}
}

func TestSelectWinner_Empty(t *testing.T) {
	if _, err := SelectWinner(nil, fixedSource{}); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestSelectWinner_MissingSource(t *testing.T) {
	if _, err := SelectWinner(sampleCommittee().Members, nil); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestRecordDraw_FullLifecycle(t *testing.T) {
	ledger, err := NewLedger(sampleCommittee())
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := RecordDraw(&ledger, 1, "B", "d1", now); err != nil {
		t.Fatalf("record cycle 1: %v", err)
	}
	if ledger.Committee.CurrentCycle != 1 || !ledger.Committee.IsActive {
		t.Fatalf("unexpected committee after cycle 1: %+v", ledger.Committee)
	}

	if _, err := RecordDraw(&ledger, 2, "B", "d2", now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected repeat winner to be rejected, got %v", err)
	}
	if ledger.Committee.CurrentCycle != 1 || len(ledger.Draws) != 1 {
		t.Fatalf("failed draw must not change state")
	}

	if _, err := RecordDraw(&ledger, 1, "A", "d2", now); !errors.Is(err, ErrDuplicateDraw) {
		t.Fatalf("expected ErrDuplicateDraw, got %v", err)
	}

	candidates := EligibleCandidates(ledger)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	for _, c := range candidates {
		if c.ID == "B" {
			t.Fatalf("winner B must not be eligible again")
		}
	}

	if _, err := RecordDraw(&ledger, 2, "C", "d2", now); err != nil {
		t.Fatalf("record cycle 2: %v", err)
	}
	if _, err := RecordDraw(&ledger, 3, "A", "d3", now); err != nil {
		t.Fatalf("record cycle 3: %v", err)
	}

	if ledger.Committee.CurrentCycle != 3 || ledger.Committee.IsActive || ledger.Committee.Status != StatusCompleted {
		t.Fatalf("expected completed committee, got %+v", ledger.Committee)
	}
	if _, err := RecordDraw(&ledger, 4, "A", "d4", now); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on completed committee, got %v", err)
	}

	winners := make(map[string]struct{})
	for _, d := range ledger.Draws {
		if _, dup := winners[d.WinnerMemberID]; dup {
			t.Fatalf("member %s won twice", d.WinnerMemberID)
		}
		winners[d.WinnerMemberID] = struct{}{}
	}
}

func TestRecordDraw_RejectsNonMemberAndWrongCycle(t *testing.T) {
	ledger, err := NewLedger(sampleCommittee())
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}

	if _, err := RecordDraw(&ledger, 1, "Z", "d1", time.Now()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for non member, got %v", err)
	}
	if _, err := RecordDraw(&ledger, 2, "A", "d1", time.Now()); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for skipped cycle, got %v", err)
	}
}

func TestEnsureDrawable_DetectsIntegrityViolation(t *testing.T) {
	ledger, err := NewLedger(sampleCommittee())
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	// every member already won but the pointer was never advanced
	for i, m := range ledger.Committee.Members {
		ledger.Draws = append(ledger.Draws, Draw{ID: m.ID, Cycle: i + 10, WinnerMemberID: m.ID})
	}

	if _, err := EnsureDrawable(ledger); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func TestEnsureDrawable_Archived(t *testing.T) {
	ledger, err := NewLedger(sampleCommittee())
	if err != nil {
		t.Fatalf("new ledger: %v", err)
	}
	Archive(&ledger, time.Now())

	if _, err := EnsureDrawable(ledger); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for archived committee, got %v", err)
	}
}
