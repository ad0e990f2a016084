package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	idgen "github.com/riskibarqy/komiti/internal/platform/id"
	"github.com/riskibarqy/komiti/internal/platform/logging"
	"github.com/shopspring/decimal"
)

type MemberInput struct {
	ID      string
	Name    string
	Contact string
}

type CreateCommitteeInput struct {
	OwnerID        string
	Name           string
	AmountPerCycle decimal.Decimal
	// TotalCycles defaults to the member count when zero.
	TotalCycles int
	StartDate   time.Time
	Members     []MemberInput
}

// UpdateCommitteeInput carries optional changes. Members and the cycle pointer
// are not editable; AmountPerCycle only affects future reporting of the
// nominal amount, never materialized payments.
type UpdateCommitteeInput struct {
	CommitteeID    string
	Name           *string
	AmountPerCycle *decimal.Decimal
	StartDate      *time.Time
}

type CommitteeService struct {
	repo     committee.Repository
	mutator  *LedgerMutator
	idGen    idgen.Generator
	recorder Recorder
	logger   *logging.Logger
	now      func() time.Time
}

func NewCommitteeService(
	repo committee.Repository,
	mutator *LedgerMutator,
	idGen idgen.Generator,
	recorder Recorder,
	logger *logging.Logger,
) *CommitteeService {
	if logger == nil {
		logger = logging.Default()
	}

	return &CommitteeService{
		repo:     repo,
		mutator:  mutator,
		idGen:    idGen,
		recorder: recorderOrNop(recorder),
		logger:   logger,
		now:      time.Now,
	}
}

func (s *CommitteeService) Create(ctx context.Context, input CreateCommitteeInput) (committee.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CommitteeService.Create")
	defer span.End()

	input.OwnerID = strings.TrimSpace(input.OwnerID)
	input.Name = strings.TrimSpace(input.Name)
	if input.OwnerID == "" {
		return committee.Ledger{}, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}

	now := s.now().UTC()
	members := make([]committee.Member, 0, len(input.Members))
	for _, m := range input.Members {
		memberID := strings.TrimSpace(m.ID)
		if memberID == "" {
			generated, err := s.idGen.NewID()
			if err != nil {
				return committee.Ledger{}, fmt.Errorf("generate member id: %w", err)
			}
			memberID = generated
		}
		members = append(members, committee.Member{
			ID:       memberID,
			Name:     strings.TrimSpace(m.Name),
			Contact:  strings.TrimSpace(m.Contact),
			JoinedAt: now,
		})
	}

	totalCycles := input.TotalCycles
	if totalCycles == 0 {
		totalCycles = len(members)
	}
	startDate := input.StartDate
	if startDate.IsZero() {
		startDate = now
	}

	committeeID, err := s.idGen.NewID()
	if err != nil {
		return committee.Ledger{}, fmt.Errorf("generate committee id: %w", err)
	}

	ledger, err := committee.NewLedger(committee.Committee{
		ID:             committeeID,
		OwnerID:        input.OwnerID,
		Name:           input.Name,
		AmountPerCycle: input.AmountPerCycle,
		TotalCycles:    totalCycles,
		StartDate:      startDate.UTC(),
		Members:        members,
		CurrentCycle:   0,
		IsActive:       true,
		Status:         committee.StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	})
	if err != nil {
		return committee.Ledger{}, domainError(err)
	}

	if err := s.mutator.Create(ctx, ledger); err != nil {
		return committee.Ledger{}, err
	}
	s.recorder.CommitteeCreated()
	s.logger.InfoContext(ctx, "committee created",
		"committee_id", committeeID,
		"owner_id", input.OwnerID,
		"members", len(members),
		"payments", len(ledger.Payments),
	)

	return ledger, nil
}

func (s *CommitteeService) Get(ctx context.Context, committeeID string) (committee.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CommitteeService.Get", committeeAttr(committeeID))
	defer span.End()

	return loadLedger(ctx, s.repo, committeeID)
}

func (s *CommitteeService) Update(ctx context.Context, input UpdateCommitteeInput) (committee.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CommitteeService.Update", committeeAttr(input.CommitteeID))
	defer span.End()

	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		return committee.Ledger{}, fmt.Errorf("%w: committee name cannot be empty", ErrInvalidInput)
	}
	if input.AmountPerCycle != nil && !input.AmountPerCycle.IsPositive() {
		return committee.Ledger{}, fmt.Errorf("%w: amount per cycle must be greater than zero", ErrInvalidInput)
	}

	return s.mutator.Mutate(ctx, strings.TrimSpace(input.CommitteeID), func(l *committee.Ledger) error {
		if input.Name != nil {
			l.Committee.Name = strings.TrimSpace(*input.Name)
		}
		if input.AmountPerCycle != nil {
			l.Committee.AmountPerCycle = *input.AmountPerCycle
		}
		if input.StartDate != nil {
			l.Committee.StartDate = input.StartDate.UTC()
		}
		l.Committee.UpdatedAt = s.now().UTC()
		return nil
	})
}

func (s *CommitteeService) Archive(ctx context.Context, committeeID string) (committee.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CommitteeService.Archive", committeeAttr(committeeID))
	defer span.End()

	ledger, err := s.mutator.Mutate(ctx, strings.TrimSpace(committeeID), func(l *committee.Ledger) error {
		committee.Archive(l, s.now().UTC())
		return nil
	})
	if err != nil {
		return committee.Ledger{}, err
	}

	s.logger.InfoContext(ctx, "committee archived", "committee_id", committeeID)
	return ledger, nil
}

// Delete removes the committee with its payments and draws. Unknown ids are
// not an error.
func (s *CommitteeService) Delete(ctx context.Context, committeeID string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.CommitteeService.Delete", committeeAttr(committeeID))
	defer span.End()

	committeeID = strings.TrimSpace(committeeID)
	if committeeID == "" {
		return fmt.Errorf("%w: committee id is required", ErrInvalidInput)
	}
	return s.mutator.Delete(ctx, committeeID)
}

func (s *CommitteeService) List(ctx context.Context) ([]committee.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CommitteeService.List")
	defer span.End()

	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list committees: %w", err)
	}
	return items, nil
}

func (s *CommitteeService) ListByOwner(ctx context.Context, ownerID string) ([]committee.Ledger, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.CommitteeService.ListByOwner")
	defer span.End()

	ownerID = strings.TrimSpace(ownerID)
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner id is required", ErrInvalidInput)
	}

	items, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list committees by owner: %w", err)
	}
	return items, nil
}
