package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/riskibarqy/komiti/internal/platform/logging"
)

type TogglePaymentInput struct {
	CommitteeID string
	MemberID    string
	Cycle       int
}

type PaymentService struct {
	repo     committee.Repository
	mutator  *LedgerMutator
	recorder Recorder
	logger   *logging.Logger
	now      func() time.Time
}

func NewPaymentService(repo committee.Repository, mutator *LedgerMutator, recorder Recorder, logger *logging.Logger) *PaymentService {
	if logger == nil {
		logger = logging.Default()
	}

	return &PaymentService{
		repo:     repo,
		mutator:  mutator,
		recorder: recorderOrNop(recorder),
		logger:   logger,
		now:      time.Now,
	}
}

// TogglePayment flips one payment between paid and unpaid.
func (s *PaymentService) TogglePayment(ctx context.Context, input TogglePaymentInput) (payment committee.Payment, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PaymentService.TogglePayment", committeeAttr(input.CommitteeID))
	defer func() { endSpan(span, err) }()

	input.MemberID = strings.TrimSpace(input.MemberID)
	if input.MemberID == "" {
		return committee.Payment{}, fmt.Errorf("%w: member id is required", ErrInvalidInput)
	}
	if input.Cycle < 1 {
		return committee.Payment{}, fmt.Errorf("%w: cycle must be >= 1", ErrInvalidInput)
	}

	_, err = s.mutator.Mutate(ctx, strings.TrimSpace(input.CommitteeID), func(l *committee.Ledger) error {
		toggled, toggleErr := committee.TogglePayment(l, input.MemberID, input.Cycle, s.now().UTC())
		if toggleErr != nil {
			return toggleErr
		}
		payment = toggled
		return nil
	})
	if err != nil {
		return committee.Payment{}, err
	}

	s.recorder.PaymentToggled(payment.IsPaid)
	s.logger.InfoContext(ctx, "payment toggled",
		"committee_id", input.CommitteeID,
		"member_id", input.MemberID,
		"cycle", input.Cycle,
		"paid", payment.IsPaid,
	)
	return payment, nil
}

func (s *PaymentService) CycleStatus(ctx context.Context, committeeID string, cycle int) (committee.CycleStatus, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PaymentService.CycleStatus", committeeAttr(committeeID))
	defer span.End()

	ledger, err := loadLedger(ctx, s.repo, committeeID)
	if err != nil {
		return committee.CycleStatus{}, err
	}
	if cycle < 1 || cycle > ledger.Committee.TotalCycles {
		return committee.CycleStatus{}, fmt.Errorf("%w: cycle %d out of range [1,%d]", ErrInvalidInput, cycle, ledger.Committee.TotalCycles)
	}

	return committee.ComputeCycleStatus(ledger, cycle), nil
}

// ListPayments returns the payments of one cycle, or of all cycles when cycle
// is zero.
func (s *PaymentService) ListPayments(ctx context.Context, committeeID string, cycle int) ([]committee.Payment, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PaymentService.ListPayments", committeeAttr(committeeID))
	defer span.End()

	ledger, err := loadLedger(ctx, s.repo, committeeID)
	if err != nil {
		return nil, err
	}
	if cycle == 0 {
		return ledger.Payments, nil
	}
	if cycle < 0 || cycle > ledger.Committee.TotalCycles {
		return nil, fmt.Errorf("%w: cycle %d out of range [1,%d]", ErrInvalidInput, cycle, ledger.Committee.TotalCycles)
	}

	return committee.PaymentsForCycle(ledger, cycle), nil
}
