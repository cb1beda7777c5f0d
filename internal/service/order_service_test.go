package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func createGoods(t *testing.T, f *ledgerFixture, price int64, stock int) *models.Goods {
	t.Helper()
	goods, err := f.catalog.CreateGoods(CreateGoodsInput{Name: "保温杯", Price: decimal.NewFromInt(price), StockQuantity: stock})
	require.NoError(t, err)
	return goods
}

func createActivity(t *testing.T, f *ledgerFixture, price int64, capacity int) *models.Activity {
	t.Helper()
	activity, err := f.catalog.CreateActivity(CreateActivityInput{
		Name:     "周末徒步",
		Capacity: capacity,
		Price:    decimal.NewFromInt(price),
	})
	require.NoError(t, err)
	return activity
}

func countRows(t *testing.T, f *ledgerFixture, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var count int64
	require.NoError(t, f.db.Model(model).Where(query, args...).Count(&count).Error)
	return count
}

// 积分兑换：单价 10 × 2，余额 25 → 余额 5，库存减 2，待发货
func TestCreatePointGoodsOrder(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13700000001")
	f.fund(t, member.ID, 25)
	goods := createGoods(t, f, 10, 5)

	result, err := f.orders.Create(context.Background(), CreateOrderInput{
		MemberID: member.ID,
		Kind:     constants.OrderKindPointGoods,
		GoodsID:  goods.ID,
		Quantity: 2,
	})
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusAwaitingShipment, result.Order.Status)
	require.Equal(t, constants.PayModePoints, result.Order.PayMode)
	require.Equal(t, "20.00", result.Order.TotalAmount.String())
	require.Empty(t, result.PaymentToken)
	require.Zero(t, f.gateway.calls)

	require.True(t, f.balance(t, member.ID).Equal(decimal.NewFromInt(5)))
	reloaded, err := f.catalog.GetGoods(goods.ID)
	require.NoError(t, err)
	require.Equal(t, 3, reloaded.StockQuantity)
	f.assertLedgerConsistent(t, member.ID)

	// 积分商品订单不会进入待支付，取消必须失败
	_, err = f.orders.Cancel(context.Background(), result.Order.ID, member.ID, "不想要了")
	requireKind(t, err, KindInvalidState, ErrOrderStatusInvalid)
	require.True(t, f.balance(t, member.ID).Equal(decimal.NewFromInt(5)))
}

func TestCreatePointGoodsOrderInsufficientPointsRollsBack(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13700000002")
	f.fund(t, member.ID, 15)
	goods := createGoods(t, f, 10, 5)

	_, err := f.orders.Create(context.Background(), CreateOrderInput{
		MemberID: member.ID,
		Kind:     constants.OrderKindPointGoods,
		GoodsID:  goods.ID,
		Quantity: 2,
	})
	requireKind(t, err, KindInsufficientResource, ErrInsufficientPoints)
	require.Zero(t, countRows(t, f, &models.Order{}, "member_id = ?", member.ID))
	reloaded, err := f.catalog.GetGoods(goods.ID)
	require.NoError(t, err)
	require.Equal(t, 5, reloaded.StockQuantity)
}

func TestCreatePointGoodsOrderOutOfStockRefundsNothing(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13700000003")
	f.fund(t, member.ID, 100)
	goods := createGoods(t, f, 10, 1)

	_, err := f.orders.Create(context.Background(), CreateOrderInput{
		MemberID: member.ID,
		Kind:     constants.OrderKindPointGoods,
		GoodsID:  goods.ID,
		Quantity: 2,
	})
	requireKind(t, err, KindInsufficientResource, ErrGoodsOutOfStock)
	require.True(t, f.balance(t, member.ID).Equal(decimal.NewFromInt(100)))
	f.assertLedgerConsistent(t, member.ID)
}

func TestCreateOrderValidation(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13700000004")

	_, err := f.orders.Create(context.Background(), CreateOrderInput{MemberID: member.ID, Kind: "gift_card"})
	requireKind(t, err, KindInvalid, ErrInvalidOrderKind)
	_, err = f.orders.Create(context.Background(), CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindPointGoods, GoodsID: 1, Quantity: -1})
	requireKind(t, err, KindInvalid, ErrInvalidQuantity)
	_, err = f.orders.Create(context.Background(), CreateOrderInput{MemberID: 999, Kind: constants.OrderKindPointGoods, GoodsID: 1})
	requireKind(t, err, KindNotFound, ErrMemberNotFound)
	_, err = f.orders.Create(context.Background(), CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindPointGoods, GoodsID: 404})
	requireKind(t, err, KindNotFound, ErrGoodsNotFound)
}

func TestActivityOrderPaymentLifecycle(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13700000010")
	activity := createActivity(t, f, 50, 10)

	result, err := f.orders.Create(ctx, CreateOrderInput{
		MemberID:   member.ID,
		Kind:       constants.OrderKindActivityPayment,
		ActivityID: activity.ID,
		FormData:   `{"name":"张三"}`,
	})
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusPendingPayment, result.Order.Status)
	require.Equal(t, "tok_"+result.Order.OrderNo, result.PaymentToken)
	require.Equal(t, constants.EnrollmentAwaitingPayment, result.Enrollment.SignInStatus)

	stored, err := f.orders.Get(result.Order.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, result.PaymentToken, stored.PaymentToken)

	_, err = f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	requireKind(t, err, KindAlreadyProcessed, ErrAlreadyRegistered)

	paid, err := f.orders.MarkPaid(ctx, MarkPaidInput{OrderNo: result.Order.OrderNo, TradeNo: "WX123"})
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusCompleted, paid.Status)
	info, err := f.enrollments.SignInfo(activity.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, constants.EnrollmentRegistered, info.SignInStatus)

	// 重复回调直接确认，不再产生副作用
	replay, err := f.orders.MarkPaid(ctx, MarkPaidInput{OrderNo: result.Order.OrderNo, TradeNo: "WX123"})
	require.NoError(t, err)
	require.Equal(t, paid.ID, replay.ID)

	_, err = f.orders.Cancel(ctx, result.Order.ID, member.ID, "")
	requireKind(t, err, KindInvalidState, ErrOrderStatusInvalid)
}

func TestCancelActivityOrderReleasesSeat(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13700000011")
	other := f.member(t, "13700000012")
	activity := createActivity(t, f, 20, 1)

	result, err := f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	require.NoError(t, err)

	_, err = f.orders.Create(ctx, CreateOrderInput{MemberID: other.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	requireKind(t, err, KindInsufficientResource, ErrActivityFull)

	_, err = f.orders.Cancel(ctx, result.Order.ID, other.ID, "")
	requireKind(t, err, KindScopeViolation, ErrOrderForbidden)

	cancelled, err := f.orders.Cancel(ctx, result.Order.ID, member.ID, "行程冲突")
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelTime)
	require.Zero(t, countRows(t, f, &models.ActivityEnrollment{}, "activity_id = ?", activity.ID))

	_, err = f.orders.Create(ctx, CreateOrderInput{MemberID: other.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	require.NoError(t, err)
}

func TestGatewayFailureRollsBackOrder(t *testing.T) {
	f := setupLedgerFixture(t)
	f.gateway.fail = errors.New("gateway timeout")
	member := f.member(t, "13700000013")
	activity := createActivity(t, f, 30, 1)

	_, err := f.orders.Create(context.Background(), CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	requireKind(t, err, KindUpstreamFailure, ErrPaymentGatewayFailed)

	require.Zero(t, countRows(t, f, &models.Order{}, "member_id = ?", member.ID))
	require.Zero(t, countRows(t, f, &models.ActivityEnrollment{}, "activity_id = ?", activity.ID))
	reloaded, err := f.catalog.GetActivity(activity.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloaded.EnrolledCount)
}

func TestFreeActivityOrderCompletesWithoutGateway(t *testing.T) {
	f := setupLedgerFixture(t)
	member := f.member(t, "13700000014")
	activity := createActivity(t, f, 0, 0)

	result, err := f.orders.Create(context.Background(), CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusCompleted, result.Order.Status)
	require.Equal(t, constants.EnrollmentRegistered, result.Enrollment.SignInStatus)
	require.Zero(t, f.gateway.calls)
}

func TestMembershipPurchaseGrantsTierOnPayment(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13700000020")
	tier, err := f.members.CreateTier(CreateTierInput{Name: "年卡", PointRate: decimal.NewFromInt(2), Price: decimal.NewFromInt(199), DurationDays: 365})
	require.NoError(t, err)

	result, err := f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindMembershipPurchase, TierID: tier.ID})
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusPendingPayment, result.Order.Status)
	require.NotEmpty(t, result.PaymentToken)

	active, err := f.members.ActiveTier(member.ID, time.Now())
	require.NoError(t, err)
	require.Nil(t, active)

	_, err = f.orders.MarkPaid(ctx, MarkPaidInput{OrderNo: result.Order.OrderNo, TradeNo: "ALI001"})
	require.NoError(t, err)
	active, err = f.members.ActiveTier(member.ID, time.Now())
	require.NoError(t, err)
	require.NotNil(t, active)
	require.Equal(t, tier.ID, active.ID)

	_, err = f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindMembershipPurchase, TierID: 404})
	requireKind(t, err, KindNotFound, ErrTierNotFound)
}

func TestShipConfirmReceiptAndRefund(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13700000030")
	f.fund(t, member.ID, 40)
	goods := createGoods(t, f, 10, 10)

	first, err := f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindPointGoods, GoodsID: goods.ID, Quantity: 1})
	require.NoError(t, err)
	_, err = f.orders.ConfirmReceipt(first.Order.ID, member.ID)
	requireKind(t, err, KindInvalidState, ErrOrderStatusInvalid)

	shipped, err := f.orders.Ship(first.Order.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusAwaitingReceipt, shipped.Status)
	received, err := f.orders.ConfirmReceipt(first.Order.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusCompleted, received.Status)

	second, err := f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindPointGoods, GoodsID: goods.ID, Quantity: 3})
	require.NoError(t, err)
	require.True(t, f.balance(t, member.ID).IsZero())

	refunded, err := f.orders.Refund(ctx, second.Order.ID, "缺货退款")
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusRefunded, refunded.Status)
	require.True(t, f.balance(t, member.ID).Equal(decimal.NewFromInt(30)))
	reloaded, err := f.catalog.GetGoods(goods.ID)
	require.NoError(t, err)
	require.Equal(t, 9, reloaded.StockQuantity)

	_, err = f.orders.Refund(ctx, second.Order.ID, "again")
	requireKind(t, err, KindInvalidState, ErrOrderStatusInvalid)
	f.assertLedgerConsistent(t, member.ID)

	orders, total, err := f.orders.List(repository.OrderListFilter{MemberID: member.ID})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, orders, 2)
}

func TestCancelUnpaidBeforeSweepsExpiredOrders(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13700000040")
	activity := createActivity(t, f, 15, 5)

	result, err := f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	require.NoError(t, err)

	cancelled, err := f.orders.CancelExpiredOrder(ctx, result.Order.ID)
	require.NoError(t, err)
	require.False(t, cancelled)

	past := time.Now().Add(-time.Hour)
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", result.Order.ID).
		Updates(map[string]interface{}{"created_at": past, "expires_at": past.Add(15 * time.Minute)}).Error)

	count, err := f.orders.CancelUnpaidBefore(ctx, time.Now().Add(-15*time.Minute), 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)

	order, err := f.orders.Get(result.Order.ID, 0)
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusCancelled, order.Status)
	reloaded, err := f.catalog.GetActivity(activity.ID)
	require.NoError(t, err)
	require.Equal(t, 0, reloaded.EnrolledCount)

	cancelled, err = f.orders.CancelExpiredOrder(ctx, result.Order.ID)
	require.NoError(t, err)
	require.False(t, cancelled)
}

func TestMarkPaidRejectsAmountMismatch(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	member := f.member(t, "13570000001")
	activity := createActivity(t, f, 25, 5)

	result, err := f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	require.NoError(t, err)

	_, err = f.orders.MarkPaid(ctx, MarkPaidInput{OrderNo: result.Order.OrderNo, TradeNo: "ALI100", Amount: decimal.RequireFromString("0.01")})
	requireKind(t, err, KindInvalid, ErrPaymentAmountMismatch)
	stored, err := f.orders.Get(result.Order.ID, member.ID)
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusPendingPayment, stored.Status)

	paid, err := f.orders.MarkPaid(ctx, MarkPaidInput{OrderNo: result.Order.OrderNo, TradeNo: "ALI100", Amount: decimal.RequireFromString("25.00")})
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusCompleted, paid.Status)
}

func TestMarkPaidRequiresAwaitingEnrollment(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	activity := createActivity(t, f, 25, 5)

	cases := []struct {
		name   string
		phone  string
		mutate func(t *testing.T, orderID uint)
	}{
		{"checked_in", "13580000001", func(t *testing.T, orderID uint) {
			require.NoError(t, f.db.Model(&models.ActivityEnrollment{}).Where("order_id = ?", orderID).
				Update("sign_in_status", constants.EnrollmentCheckedIn).Error)
		}},
		{"missing", "13580000002", func(t *testing.T, orderID uint) {
			require.NoError(t, f.db.Where("order_id = ?", orderID).Delete(&models.ActivityEnrollment{}).Error)
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			member := f.member(t, tc.phone)
			result, err := f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
			require.NoError(t, err)
			tc.mutate(t, result.Order.ID)

			_, err = f.orders.MarkPaid(ctx, MarkPaidInput{OrderNo: result.Order.OrderNo, TradeNo: "WX" + tc.phone})
			requireKind(t, err, KindInvalidState, ErrEnrollmentStatusInvalid)
			stored, err := f.orders.Get(result.Order.ID, member.ID)
			require.NoError(t, err)
			require.Equal(t, constants.OrderStatusPendingPayment, stored.Status)
		})
	}
}

func TestCancelUnpaidBeforeSkipsFailingOrder(t *testing.T) {
	f := setupLedgerFixture(t)
	ctx := context.Background()
	past := time.Now().Add(-time.Hour)

	// 缺少会员的积分订单在补偿时必然失败
	broken := &models.Order{
		OrderNo:     "BROKEN0001",
		Kind:        constants.OrderKindPointGoods,
		Status:      constants.OrderStatusPendingPayment,
		PayMode:     constants.PayModePoints,
		Title:       "损坏订单",
		Quantity:    1,
		Price:       models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		TotalAmount: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		CreatedAt:   past,
		UpdatedAt:   past,
	}
	require.NoError(t, f.db.Create(broken).Error)

	member := f.member(t, "13700000041")
	activity := createActivity(t, f, 15, 5)
	result, err := f.orders.Create(ctx, CreateOrderInput{MemberID: member.ID, Kind: constants.OrderKindActivityPayment, ActivityID: activity.ID})
	require.NoError(t, err)
	require.NoError(t, f.db.Model(&models.Order{}).Where("id = ?", result.Order.ID).
		Updates(map[string]interface{}{"created_at": past, "expires_at": past.Add(15 * time.Minute)}).Error)

	count, err := f.orders.CancelUnpaidBefore(ctx, time.Now().Add(-15*time.Minute), 10)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrMemberNotFound)
	require.EqualValues(t, 1, count)

	order, err := f.orders.Get(result.Order.ID, 0)
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusCancelled, order.Status)
	stuck, err := f.orders.Get(broken.ID, 0)
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusPendingPayment, stuck.Status)
}
