package report

import (
	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/shopspring/decimal"
)

type Dashboard struct {
	TotalCommittees  int
	ActiveCommittees int
	TotalMembers     int
	PendingAmount    decimal.Decimal
	CollectedAmount  decimal.Decimal
	UpcomingDraws    int
}

// CommitteeReport is the export-ready summary of one committee.
// CompletionRate is a percentage rounded to two decimals.
type CommitteeReport struct {
	Committee       committee.Committee
	ExpectedAmount  decimal.Decimal
	CollectedAmount decimal.Decimal
	PendingAmount   decimal.Decimal
	CompletionRate  float64
	Cycles          []committee.CycleStatus
	Draws           []committee.Draw
}
