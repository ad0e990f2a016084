package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	idgen "github.com/riskibarqy/komiti/internal/platform/id"
	"github.com/riskibarqy/komiti/internal/platform/logging"
)

type RecordDrawInput struct {
	CommitteeID    string
	Cycle          int
	WinnerMemberID string
}

// DrawResult is what a caller needs to reveal a winner. Any reveal animation
// happens after the result exists and cannot change it.
type DrawResult struct {
	Draw      committee.Draw
	Winner    committee.Member
	Committee committee.Committee
}

type DrawService struct {
	repo     committee.Repository
	mutator  *LedgerMutator
	random   committee.RandomSource
	idGen    idgen.Generator
	recorder Recorder
	logger   *logging.Logger
	now      func() time.Time
}

func NewDrawService(
	repo committee.Repository,
	mutator *LedgerMutator,
	random committee.RandomSource,
	idGen idgen.Generator,
	recorder Recorder,
	logger *logging.Logger,
) *DrawService {
	if logger == nil {
		logger = logging.Default()
	}

	return &DrawService{
		repo:     repo,
		mutator:  mutator,
		random:   random,
		idGen:    idGen,
		recorder: recorderOrNop(recorder),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *DrawService) EligibleCandidates(ctx context.Context, committeeID string) ([]committee.Member, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DrawService.EligibleCandidates", committeeAttr(committeeID))
	defer span.End()

	ledger, err := loadLedger(ctx, s.repo, committeeID)
	if err != nil {
		return nil, err
	}
	return committee.EligibleCandidates(ledger), nil
}

// Draw selects the winner of the next cycle and records it atomically.
func (s *DrawService) Draw(ctx context.Context, committeeID string) (result DrawResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DrawService.Draw", committeeAttr(committeeID))
	defer func() { endSpan(span, err) }()

	drawID, err := s.idGen.NewID()
	if err != nil {
		return DrawResult{}, fmt.Errorf("generate draw id: %w", err)
	}

	ledger, err := s.mutator.Mutate(ctx, strings.TrimSpace(committeeID), func(l *committee.Ledger) error {
		candidates, err := committee.EnsureDrawable(*l)
		if err != nil {
			return err
		}
		winner, err := committee.SelectWinner(candidates, s.random)
		if err != nil {
			return err
		}
		draw, err := committee.RecordDraw(l, committee.NextCycle(l.Committee), winner.ID, drawID, s.now().UTC())
		if err != nil {
			return err
		}
		result.Draw = draw
		result.Winner = winner
		return nil
	})
	if err != nil {
		return DrawResult{}, err
	}
	result.Committee = ledger.Committee

	s.afterDraw(ctx, result)
	return result, nil
}

// RecordDraw stores a winner chosen outside the engine, for example a draw
// held in person.
func (s *DrawService) RecordDraw(ctx context.Context, input RecordDrawInput) (result DrawResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DrawService.RecordDraw", committeeAttr(input.CommitteeID))
	defer func() { endSpan(span, err) }()

	input.WinnerMemberID = strings.TrimSpace(input.WinnerMemberID)
	if input.WinnerMemberID == "" {
		return DrawResult{}, fmt.Errorf("%w: winner member id is required", ErrInvalidInput)
	}
	if input.Cycle < 1 {
		return DrawResult{}, fmt.Errorf("%w: cycle must be >= 1", ErrInvalidInput)
	}

	drawID, err := s.idGen.NewID()
	if err != nil {
		return DrawResult{}, fmt.Errorf("generate draw id: %w", err)
	}

	ledger, err := s.mutator.Mutate(ctx, strings.TrimSpace(input.CommitteeID), func(l *committee.Ledger) error {
		draw, err := committee.RecordDraw(l, input.Cycle, input.WinnerMemberID, drawID, s.now().UTC())
		if err != nil {
			return err
		}
		result.Draw = draw
		result.Winner, _ = l.Committee.MemberByID(input.WinnerMemberID)
		return nil
	})
	if err != nil {
		return DrawResult{}, err
	}
	result.Committee = ledger.Committee

	s.afterDraw(ctx, result)
	return result, nil
}

func (s *DrawService) ListDraws(ctx context.Context, committeeID string) ([]committee.Draw, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.DrawService.ListDraws", committeeAttr(committeeID))
	defer span.End()

	ledger, err := loadLedger(ctx, s.repo, committeeID)
	if err != nil {
		return nil, err
	}

	draws := append([]committee.Draw(nil), ledger.Draws...)
	sort.SliceStable(draws, func(i, j int) bool { return draws[i].Cycle < draws[j].Cycle })
	return draws, nil
}

func (s *DrawService) afterDraw(ctx context.Context, result DrawResult) {
	completed := !result.Committee.IsActive && result.Committee.Status == committee.StatusCompleted
	s.recorder.DrawRecorded(completed)
	s.logger.InfoContext(ctx, "draw recorded",
		"committee_id", result.Committee.ID,
		"cycle", result.Draw.Cycle,
		"winner_member_id", result.Draw.WinnerMemberID,
		"completed", completed,
	)
}
