package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReportService_ReportAndDashboard(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	first := f.create(t, "owner-1", "ali", "sara", "omar")
	second := f.create(t, "owner-1", "ali", "zara")
	f.create(t, "owner-2", "someone")

	for _, member := range []string{"ali", "sara"} {
		_, err := f.payments.TogglePayment(ctx, TogglePaymentInput{CommitteeID: first.Committee.ID, MemberID: member, Cycle: 1})
		require.NoError(t, err)
	}
	_, err := f.draws.RecordDraw(ctx, RecordDrawInput{CommitteeID: second.Committee.ID, Cycle: 1, WinnerMemberID: "zara"})
	require.NoError(t, err)
	_, err = f.draws.RecordDraw(ctx, RecordDrawInput{CommitteeID: second.Committee.ID, Cycle: 2, WinnerMemberID: "ali"})
	require.NoError(t, err)

	rep, err := f.reports.Report(ctx, first.Committee.ID)
	require.NoError(t, err)
	assert.True(t, rep.ExpectedAmount.Equal(decimal.NewFromInt(4500)), "expected=%s", rep.ExpectedAmount)
	assert.True(t, rep.CollectedAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, rep.PendingAmount.Equal(decimal.NewFromInt(3500)))
	assert.InDelta(t, 22.22, rep.CompletionRate, 0.001)
	require.Len(t, rep.Cycles, 3)
	assert.Equal(t, 2, rep.Cycles[0].PaidCount)

	dash, err := f.reports.Dashboard(ctx, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 2, dash.TotalCommittees)
	assert.Equal(t, 1, dash.ActiveCommittees)
	assert.Equal(t, 4, dash.TotalMembers, "ali is counted once")
	assert.Equal(t, 1, dash.UpcomingDraws)
	assert.True(t, dash.CollectedAmount.Equal(decimal.NewFromInt(1000)))
	assert.True(t, dash.PendingAmount.Equal(decimal.NewFromInt(5500)))

	reports, err := f.reports.Reports(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, first.Committee.ID, reports[0].Committee.ID)
	assert.Equal(t, second.Committee.ID, reports[1].Committee.ID)
	require.Len(t, reports[1].Draws, 2)
	assert.Equal(t, 1, reports[1].Draws[0].Cycle)

	_, err = f.reports.Report(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestReportService_EmptyDashboard(t *testing.T) {
	f := newServiceFixture(t)

	dash, err := f.reports.Dashboard(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Zero(t, dash.TotalCommittees)
	assert.True(t, dash.PendingAmount.IsZero())
}

func TestReportService_ReportAfterAmountEdit(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	ledger := f.create(t, "owner-1", "ali", "sara", "omar")
	id := ledger.Committee.ID

	for cycle := 1; cycle <= 3; cycle++ {
		for _, member := range []string{"ali", "sara", "omar"} {
			_, err := f.payments.TogglePayment(ctx, TogglePaymentInput{CommitteeID: id, MemberID: member, Cycle: cycle})
			require.NoError(t, err)
		}
	}
	amount := decimal.NewFromInt(100)
	_, err := f.committees.Update(ctx, UpdateCommitteeInput{CommitteeID: id, AmountPerCycle: &amount})
	require.NoError(t, err)

	rep, err := f.reports.Report(ctx, id)
	require.NoError(t, err)
	assert.True(t, rep.Committee.AmountPerCycle.Equal(amount))
	assert.True(t, rep.ExpectedAmount.Equal(decimal.NewFromInt(4500)), "expected=%s", rep.ExpectedAmount)
	assert.True(t, rep.CollectedAmount.Equal(decimal.NewFromInt(4500)), "collected=%s", rep.CollectedAmount)
	assert.True(t, rep.PendingAmount.IsZero(), "pending=%s", rep.PendingAmount)
	assert.Equal(t, 100.0, rep.CompletionRate)
}
