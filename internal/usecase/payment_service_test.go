package usecase

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentService_ToggleRoundTrip(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	ledger := f.create(t, "owner-1", "ali", "sara")
	id := ledger.Committee.ID

	paid, err := f.payments.TogglePayment(ctx, TogglePaymentInput{CommitteeID: id, MemberID: "ali", Cycle: 1})
	require.NoError(t, err)
	assert.True(t, paid.IsPaid)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, fixedNow, *paid.PaidAt)

	status, err := f.payments.CycleStatus(ctx, id, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, status.PaidCount)
	assert.Equal(t, 2, status.TotalCount)
	assert.True(t, status.CollectedAmount.Equal(decimal.NewFromInt(500)))
	assert.True(t, status.PendingAmount.Equal(decimal.NewFromInt(500)))
	assert.False(t, status.Complete)

	unpaid, err := f.payments.TogglePayment(ctx, TogglePaymentInput{CommitteeID: id, MemberID: "ali", Cycle: 1})
	require.NoError(t, err)
	assert.False(t, unpaid.IsPaid)
	assert.Nil(t, unpaid.PaidAt)

	assert.Equal(t, 1, f.recorder.toggled[true])
	assert.Equal(t, 1, f.recorder.toggled[false])
}

func TestPaymentService_CompleteCycle(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	ledger := f.create(t, "owner-1", "ali", "sara")
	id := ledger.Committee.ID

	for _, member := range []string{"ali", "sara"} {
		_, err := f.payments.TogglePayment(ctx, TogglePaymentInput{CommitteeID: id, MemberID: member, Cycle: 2})
		require.NoError(t, err)
	}

	status, err := f.payments.CycleStatus(ctx, id, 2)
	require.NoError(t, err)
	assert.True(t, status.Complete)
	assert.True(t, status.PendingAmount.IsZero())

	first, err := f.payments.CycleStatus(ctx, id, 1)
	require.NoError(t, err)
	assert.Zero(t, first.PaidCount, "other cycles are untouched")
}

func TestPaymentService_RejectsUnknownTargets(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	ledger := f.create(t, "owner-1", "ali", "sara")
	id := ledger.Committee.ID

	_, err := f.payments.TogglePayment(ctx, TogglePaymentInput{CommitteeID: id, MemberID: "ghost", Cycle: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.payments.TogglePayment(ctx, TogglePaymentInput{CommitteeID: id, MemberID: "ali", Cycle: 3})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.payments.TogglePayment(ctx, TogglePaymentInput{CommitteeID: id, MemberID: "ali", Cycle: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.payments.TogglePayment(ctx, TogglePaymentInput{CommitteeID: "missing", MemberID: "ali", Cycle: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.payments.CycleStatus(ctx, id, 3)
	assert.ErrorIs(t, err, ErrInvalidInput)

	stored, err := f.committees.Get(ctx, id)
	require.NoError(t, err)
	for _, p := range stored.Payments {
		assert.False(t, p.IsPaid)
	}
}

func TestPaymentService_ListPayments(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()
	ledger := f.create(t, "owner-1", "ali", "sara", "omar")
	id := ledger.Committee.ID

	all, err := f.payments.ListPayments(ctx, id, 0)
	require.NoError(t, err)
	assert.Len(t, all, 9)

	cycle, err := f.payments.ListPayments(ctx, id, 2)
	require.NoError(t, err)
	require.Len(t, cycle, 3)
	for _, p := range cycle {
		assert.Equal(t, 2, p.Cycle)
	}

	_, err = f.payments.ListPayments(ctx, id, 4)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
