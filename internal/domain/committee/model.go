package committee

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusArchived  Status = "archived"
)

var AllStatuses = map[Status]struct{}{
	StatusActive:    {},
	StatusCompleted: {},
	StatusArchived:  {},
}

type Member struct {
	ID       string
	Name     string
	Contact  string
	JoinedAt time.Time
}

// Committee is a rotating-savings group. CurrentCycle counts drawn cycles.
type Committee struct {
	ID             string
	OwnerID        string
	Name           string
	AmountPerCycle decimal.Decimal
	TotalCycles    int
	StartDate      time.Time
	Members        []Member
	CurrentCycle   int
	IsActive       bool
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (c Committee) IsCompleted() bool {
	return c.CurrentCycle >= c.TotalCycles
}

func (c Committee) HasMember(memberID string) bool {
	for _, m := range c.Members {
		if m.ID == memberID {
			return true
		}
	}
	return false
}

func (c Committee) MemberByID(memberID string) (Member, bool) {
	for _, m := range c.Members {
		if m.ID == memberID {
			return m, true
		}
	}
	return Member{}, false
}

// Payment is one member's obligation for one cycle. Cycle is 1-based.
type Payment struct {
	ID          string
	CommitteeID string
	MemberID    string
	Cycle       int
	Amount      decimal.Decimal
	IsPaid      bool
	PaidAt      *time.Time
}

type Draw struct {
	ID             string
	CommitteeID    string
	Cycle          int
	WinnerMemberID string
	DrawnAt        time.Time
}

// Ledger is the unit of persistence: a committee with its payment matrix and
// draw history.
type Ledger struct {
	Committee Committee
	Payments  []Payment
	Draws     []Draw
}

func (l Ledger) Clone() Ledger {
	out := Ledger{
		Committee: l.Committee,
		Payments:  make([]Payment, len(l.Payments)),
		Draws:     append([]Draw(nil), l.Draws...),
	}
	out.Committee.Members = append([]Member(nil), l.Committee.Members...)
	for i, p := range l.Payments {
		if p.PaidAt != nil {
			paidAt := *p.PaidAt
			p.PaidAt = &paidAt
		}
		out.Payments[i] = p
	}
	return out
}

func PaymentID(committeeID string, cycle int, memberID string) string {
	return committeeID + "_c" + strconv.Itoa(cycle) + "_" + memberID
}

type CycleStatus struct {
	Cycle           int
	PaidCount       int
	TotalCount      int
	CollectedAmount decimal.Decimal
	PendingAmount   decimal.Decimal
	Complete        bool
}

// DueDate is the date a cycle's contributions are due. Cycles are monthly
// from StartDate.
func (c Committee) DueDate(cycle int) time.Time {
	if c.StartDate.IsZero() || cycle < 1 {
		return time.Time{}
	}
	return c.StartDate.AddDate(0, cycle-1, 0)
}
