package committee

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrValidation    = errors.New("committee validation failed")
	ErrNotFound      = errors.New("committee record not found")
	ErrDuplicateDraw = errors.New("cycle already drawn")
	ErrInvalidState  = errors.New("invalid committee state")
	ErrAlreadyExists = errors.New("committee already exists")
)

func IsMemberListValid(members []Member) bool {
	return validateMembers(members) == nil
}

func validateMembers(members []Member) error {
	if len(members) == 0 {
		return fmt.Errorf("%w: member list is empty", ErrValidation)
	}

	seen := make(map[string]struct{}, len(members))
	for _, m := range members {
		id := strings.TrimSpace(m.ID)
		if id == "" {
			return fmt.Errorf("%w: member id is required", ErrValidation)
		}
		if strings.TrimSpace(m.Name) == "" {
			return fmt.Errorf("%w: member name is required for %s", ErrValidation, id)
		}
		if _, exists := seen[id]; exists {
			return fmt.Errorf("%w: duplicate member id %s", ErrValidation, id)
		}
		seen[id] = struct{}{}
	}

	return nil
}

// Validate checks a committee about to be created. TotalCycles must equal the
// member count: every member wins exactly once.
func Validate(c Committee) error {
	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: committee id is required", ErrValidation)
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: committee name is required", ErrValidation)
	}
	if !c.AmountPerCycle.IsPositive() {
		return fmt.Errorf("%w: amount per cycle must be greater than zero", ErrValidation)
	}
	if err := validateMembers(c.Members); err != nil {
		return err
	}
	if c.TotalCycles != len(c.Members) {
		return fmt.Errorf("%w: total cycles must equal member count: cycles=%d members=%d", ErrValidation, c.TotalCycles, len(c.Members))
	}
	if c.CurrentCycle < 0 || c.CurrentCycle > c.TotalCycles {
		return fmt.Errorf("%w: current cycle %d out of range [0,%d]", ErrValidation, c.CurrentCycle, c.TotalCycles)
	}
	if _, ok := AllStatuses[c.Status]; !ok {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, c.Status)
	}

	return nil
}

// InitializeCycles builds the full payment matrix for a new committee.
func InitializeCycles(c Committee) []Payment {
	out := make([]Payment, 0, c.TotalCycles*len(c.Members))
	for cycle := 1; cycle <= c.TotalCycles; cycle++ {
		for _, m := range c.Members {
			out = append(out, Payment{
				ID:          PaymentID(c.ID, cycle, m.ID),
				CommitteeID: c.ID,
				MemberID:    m.ID,
				Cycle:       cycle,
				Amount:      c.AmountPerCycle,
				IsPaid:      false,
			})
		}
	}
	return out
}

// NewLedger validates the committee and materializes its payments.
func NewLedger(c Committee) (Ledger, error) {
	if err := Validate(c); err != nil {
		return Ledger{}, err
	}

	return Ledger{
		Committee: c,
		Payments:  InitializeCycles(c),
		Draws:     []Draw{},
	}, nil
}

// TogglePayment flips the paid flag of one payment in place.
func TogglePayment(l *Ledger, memberID string, cycle int, now time.Time) (Payment, error) {
	for i := range l.Payments {
		p := &l.Payments[i]
		if p.MemberID != memberID || p.Cycle != cycle {
			continue
		}

		p.IsPaid = !p.IsPaid
		if p.IsPaid {
			paidAt := now
			p.PaidAt = &paidAt
		} else {
			p.PaidAt = nil
		}
		return *p, nil
	}

	return Payment{}, fmt.Errorf("%w: payment committee=%s member=%s cycle=%d", ErrNotFound, l.Committee.ID, memberID, cycle)
}

func PaymentsForCycle(l Ledger, cycle int) []Payment {
	out := make([]Payment, 0, len(l.Committee.Members))
	for _, p := range l.Payments {
		if p.Cycle == cycle {
			out = append(out, p)
		}
	}
	return out
}

func ComputeCycleStatus(l Ledger, cycle int) CycleStatus {
	status := CycleStatus{
		Cycle:           cycle,
		CollectedAmount: decimal.Zero,
		PendingAmount:   decimal.Zero,
	}
	for _, p := range l.Payments {
		if p.Cycle != cycle {
			continue
		}
		status.TotalCount++
		if p.IsPaid {
			status.PaidCount++
			status.CollectedAmount = status.CollectedAmount.Add(p.Amount)
		} else {
			status.PendingAmount = status.PendingAmount.Add(p.Amount)
		}
	}
	status.Complete = status.TotalCount > 0 && status.PaidCount == status.TotalCount
	return status
}

// IsPaymentComplete reports whether every member has paid for the cycle.
func IsPaymentComplete(l Ledger, cycle int) bool {
	paid := make(map[string]bool, len(l.Committee.Members))
	for _, p := range l.Payments {
		if p.Cycle == cycle && p.IsPaid {
			paid[p.MemberID] = true
		}
	}
	for _, m := range l.Committee.Members {
		if !paid[m.ID] {
			return false
		}
	}
	return true
}

// Archive deactivates a committee without touching its cycle pointer.
func Archive(l *Ledger, now time.Time) {
	if l.Committee.Status == StatusArchived {
		return
	}
	l.Committee.Status = StatusArchived
	l.Committee.IsActive = false
	l.Committee.UpdatedAt = now
}
