package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestEnrollCapacityOneConcurrent(t *testing.T) {
	f := setupLedgerFixture(t)
	activity := createActivity(t, f, 0, 1)

	const workers = 2
	members := make([]*models.Member, workers)
	for i := range members {
		members[i] = f.member(t, fmt.Sprintf("1360000000%d", i))
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.enrollments.Enroll(context.Background(), activity.ID, members[i].ID, "")
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		requireKind(t, err, KindInsufficientResource, ErrActivityFull)
	}
	require.Equal(t, 1, succeeded)
	require.EqualValues(t, 1, countRows(t, f, &models.ActivityEnrollment{}, "activity_id = ?", activity.ID))
	reloaded, err := f.catalog.GetActivity(activity.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.EnrolledCount)
}

func TestEnrollUnlimitedCapacity(t *testing.T) {
	f := setupLedgerFixture(t)
	activity := createActivity(t, f, 0, 0)
	for i := 0; i < 5; i++ {
		member := f.member(t, fmt.Sprintf("1361000000%d", i))
		_, err := f.enrollments.Enroll(context.Background(), activity.ID, member.ID, "")
		require.NoError(t, err)
	}
	_, total, err := f.enrollments.ListEnrollments(repository.EnrollmentListFilter{ActivityID: activity.ID})
	require.NoError(t, err)
	require.EqualValues(t, 5, total)
}

func TestEnrollRejections(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13620000001")
	free := createActivity(t, f, 0, 3)
	paid := createActivity(t, f, 10, 3)

	_, err := f.enrollments.Enroll(ctx, free.ID, member.ID, "")
	require.NoError(t, err)
	_, err = f.enrollments.Enroll(ctx, free.ID, member.ID, "")
	requireKind(t, err, KindAlreadyProcessed, ErrAlreadyRegistered)

	_, err = f.enrollments.Enroll(ctx, paid.ID, member.ID, "")
	requireKind(t, err, KindInvalidState, ErrActivityRequiresPayment)
	_, err = f.enrollments.Enroll(ctx, 404, member.ID, "")
	requireKind(t, err, KindNotFound, ErrActivityNotFound)

	require.NoError(t, f.db.Model(&models.Activity{}).Where("id = ?", free.ID).Update("is_active", false).Error)
	other := f.member(t, "13620000002")
	_, err = f.enrollments.Enroll(ctx, free.ID, other.ID, "")
	requireKind(t, err, KindInvalidState, ErrActivityClosed)
}

func TestCancelEnrollmentReleasesSeat(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13630000001")
	other := f.member(t, "13630000002")
	activity := createActivity(t, f, 0, 1)

	_, err := f.enrollments.Enroll(ctx, activity.ID, member.ID, "")
	require.NoError(t, err)

	removed, err := f.enrollments.CancelEnrollment(ctx, activity.ID, member.ID)
	require.NoError(t, err)
	require.True(t, removed)
	removed, err = f.enrollments.CancelEnrollment(ctx, activity.ID, member.ID)
	require.NoError(t, err)
	require.False(t, removed)

	_, err = f.enrollments.Enroll(ctx, activity.ID, other.ID, "")
	require.NoError(t, err)
}

// 签到积分无幂等键：重复签到会重复入账
func TestSignInCreditsEveryCall(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13640000001")
	activity, err := f.catalog.CreateActivity(CreateActivityInput{
		Name:         "读书会",
		SignInPoints: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	_, err = f.enrollments.SignIn(ctx, activity.ID, member.ID)
	requireKind(t, err, KindNotFound, ErrEnrollmentNotFound)

	info, err := f.enrollments.SignInfo(activity.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, constants.EnrollmentNotRegistered, info.SignInStatus)

	_, err = f.enrollments.Enroll(ctx, activity.ID, member.ID, "")
	require.NoError(t, err)

	first, err := f.enrollments.SignIn(ctx, activity.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, constants.EnrollmentCheckedIn, first.Enrollment.SignInStatus)
	require.Equal(t, "5.00", first.PointsAwarded.String())
	_, err = f.enrollments.SignIn(ctx, activity.ID, member.ID)
	require.NoError(t, err)

	require.True(t, f.balance(t, member.ID).Equal(decimal.NewFromInt(10)))
	f.assertLedgerConsistent(t, member.ID)

	info, err = f.enrollments.SignInfo(activity.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, constants.EnrollmentCheckedIn, info.SignInStatus)
}

func TestSignInRequiresPaidEnrollment(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13650000001")
	activity := createActivity(t, f, 25, 5)

	_, err := f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	require.NoError(t, err)

	_, err = f.enrollments.SignIn(ctx, activity.ID, member.ID)
	requireKind(t, err, KindInvalidState, ErrEnrollmentStatusInvalid)
}

// 待支付订单的报名只能随订单取消，座位不能被直接释放给他人
func TestCancelEnrollmentOfUnpaidOrderIsRejected(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13660000001")
	other := f.member(t, "13660000002")
	activity := createActivity(t, f, 30, 1)

	result, err := f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	require.NoError(t, err)

	removed, err := f.enrollments.CancelEnrollment(ctx, activity.ID, member.ID)
	requireKind(t, err, KindInvalidState, ErrEnrollmentStatusInvalid)
	require.False(t, removed)

	_, err = f.orders.Create(ctx, CreateOrderInput{MemberID: other.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	requireKind(t, err, KindInsufficientResource, ErrActivityFull)

	paid, err := f.orders.MarkPaid(ctx, MarkPaidInput{OrderNo: result.Order.OrderNo, TradeNo: "WX900", Amount: decimal.NewFromInt(30)})
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusCompleted, paid.Status)
	info, err := f.enrollments.SignInfo(activity.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, constants.EnrollmentRegistered, info.SignInStatus)

	// 已支付的报名同样走退款释放
	_, err = f.enrollments.CancelEnrollment(ctx, activity.ID, member.ID)
	requireKind(t, err, KindInvalidState, ErrEnrollmentStatusInvalid)
}
