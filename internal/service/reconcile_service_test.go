package service

import (
	"context"
	"testing"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/models"

	"github.com/stretchr/testify/require"
)

func TestReconcileRunsAllJobs(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13400000001")
	past := time.Now().Add(-2 * time.Hour)

	template := f.platformTemplate(t, 5, 3, constants.CouponScopeAllMerchants)
	coupon, err := f.coupons.Issue(template.ID, member.ID)
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.MemberCoupon{}).Where("id = ?", coupon.ID).Update("valid_end", past).Error)

	activity := createActivity(t, f, 10, 2)
	order, err := f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", order.Order.ID).Update("created_at", past).Error)

	_, err = f.volunteers.CheckIn(member.ID, time.Now().Add(-20*time.Hour), 0)
	require.NoError(t, err)

	report := f.reconcile.Run(ctx, "test")
	require.Equal(t, "test", report.Trigger)
	require.Len(t, report.Jobs, 3)
	processed := map[string]int64{}
	for _, job := range report.Jobs {
		require.Empty(t, job.Error)
		processed[job.Job] = job.Processed
	}
	require.EqualValues(t, 1, processed[ReconcileJobExpireCoupons])
	require.EqualValues(t, 1, processed[ReconcileJobCancelOrders])
	require.EqualValues(t, 1, processed[ReconcileJobCloseVolunteers])

	stored, err := f.orders.Get(order.Order.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusCancelled, stored.Status)

	again := f.reconcile.Run(ctx, "test")
	for _, job := range again.Jobs {
		require.Zero(t, job.Processed, job.Job)
	}
}

func TestReconcileStopsOnCancelledContext(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := f.reconcile.Run(ctx, "test")
	require.Empty(t, report.Jobs)
}
