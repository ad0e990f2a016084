package report

import (
	"sort"

	"github.com/riskibarqy/komiti/internal/domain/committee"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// DashboardStats summarizes ledgers. Members shared between committees are
// counted once.
func DashboardStats(ledgers []committee.Ledger) Dashboard {
	out := Dashboard{
		PendingAmount:   decimal.Zero,
		CollectedAmount: decimal.Zero,
	}
	members := make(map[string]struct{})

	for _, l := range ledgers {
		c := l.Committee
		out.TotalCommittees++
		if c.IsActive {
			out.ActiveCommittees++
			if c.CurrentCycle < c.TotalCycles {
				out.UpcomingDraws++
			}
		}
		for _, m := range c.Members {
			members[m.ID] = struct{}{}
		}
		for _, p := range l.Payments {
			if p.IsPaid {
				out.CollectedAmount = out.CollectedAmount.Add(p.Amount)
			} else {
				out.PendingAmount = out.PendingAmount.Add(p.Amount)
			}
		}
	}
	out.TotalMembers = len(members)

	return out
}

// CommitteeReportOf totals the payment matrix. Expected sums the materialized
// payment amounts, so editing the nominal amount later does not change it.
func CommitteeReportOf(l committee.Ledger) CommitteeReport {
	c := l.Committee

	expected := decimal.Zero
	collected := decimal.Zero
	for _, p := range l.Payments {
		expected = expected.Add(p.Amount)
		if p.IsPaid {
			collected = collected.Add(p.Amount)
		}
	}

	cycles := make([]committee.CycleStatus, 0, c.TotalCycles)
	for cycle := 1; cycle <= c.TotalCycles; cycle++ {
		cycles = append(cycles, committee.ComputeCycleStatus(l, cycle))
	}

	draws := append([]committee.Draw(nil), l.Draws...)
	sort.SliceStable(draws, func(i, j int) bool {
		return draws[i].Cycle < draws[j].Cycle
	})

	return CommitteeReport{
		Committee:       c,
		ExpectedAmount:  expected,
		CollectedAmount: collected,
		PendingAmount:   expected.Sub(collected),
		CompletionRate:  CompletionRate(collected, expected),
		Cycles:          cycles,
		Draws:           draws,
	}
}

// CompletionRate returns collected/expected as a percentage, 0 when nothing
// is expected.
func CompletionRate(collected, expected decimal.Decimal) float64 {
	if !expected.IsPositive() {
		return 0
	}
	rate, _ := collected.Div(expected).Mul(hundred).Round(2).Float64()
	return rate
}
