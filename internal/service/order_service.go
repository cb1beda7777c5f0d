package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/metrics"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/payment"
	"github.com/member-ledger/internal/queue"
	"github.com/member-ledger/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单生命周期服务
type OrderService struct {
	orderRepo     repository.OrderRepository
	goodsRepo     repository.GoodsRepository
	activityRepo  repository.ActivityRepository
	memberRepo    repository.MemberRepository
	members       *MemberService
	points        *PointsService
	gateway       payment.Gateway
	queueClient   *queue.Client
	settings      *SettingService
	expireMinutes int
}

// CreateOrderInput 创建订单输入
type CreateOrderInput struct {
	MemberID   uint
	Kind       string
	GoodsID    uint
	ActivityID uint
	TierID     uint
	Quantity   int
	AddressID  *uint
	FormData   string
	Remark     string
	ClientIP   string
}

// CreateOrderResult 创建订单结果
type CreateOrderResult struct {
	Order        *models.Order              `json:"order"`
	PaymentToken string                     `json:"payment_token,omitempty"`
	Enrollment   *models.ActivityEnrollment `json:"enrollment,omitempty"`
}

// NewOrderService 创建订单服务
func NewOrderService(
	orderRepo repository.OrderRepository,
	goodsRepo repository.GoodsRepository,
	activityRepo repository.ActivityRepository,
	memberRepo repository.MemberRepository,
	members *MemberService,
	points *PointsService,
	gateway payment.Gateway,
	queueClient *queue.Client,
	settings *SettingService,
	expireMinutes int,
) *OrderService {
	if expireMinutes <= 0 {
		expireMinutes = 15
	}
	return &OrderService{
		orderRepo:     orderRepo,
		goodsRepo:     goodsRepo,
		activityRepo:  activityRepo,
		memberRepo:    memberRepo,
		members:       members,
		points:        points,
		gateway:       gateway,
		queueClient:   queueClient,
		settings:      settings,
		expireMinutes: expireMinutes,
	}
}

// Create 创建订单：积分商品直接扣积分待发货，付费活动与会员购买进入待支付
func (s *OrderService) Create(ctx context.Context, input CreateOrderInput) (result *CreateOrderResult, err error) {
	start := time.Now()
	defer func() { metrics.ObserveWorkflow("order_create", start, err) }()

	input.Kind = strings.ToLower(strings.TrimSpace(input.Kind))
	switch input.Kind {
	case constants.OrderKindPointGoods:
		if input.Quantity == 0 {
			input.Quantity = 1
		}
		if input.Quantity < 0 {
			return nil, ErrInvalidQuantity
		}
	case constants.OrderKindActivityPayment, constants.OrderKindMembershipPurchase:
		input.Quantity = 1
	default:
		return nil, ErrInvalidOrderKind
	}
	if err := s.ensureMemberActive(input.MemberID); err != nil {
		return nil, err
	}
	expire := s.paymentExpire(ctx)

	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		var created *CreateOrderResult
		var err error
		switch input.Kind {
		case constants.OrderKindPointGoods:
			created, err = s.createPointGoodsOrder(tx, input, now)
		case constants.OrderKindActivityPayment:
			created, err = s.createActivityOrder(tx, input, now, expire)
		case constants.OrderKindMembershipPurchase:
			created, err = s.createMembershipOrder(tx, input, now, expire)
		}
		if err != nil {
			return err
		}
		// 网关调用放在事务最后一步，失败时整个下单回滚
		if created.Order.Status == constants.OrderStatusPendingPayment {
			token, err := s.requestPayment(ctx, created.Order, input.ClientIP)
			if err != nil {
				return err
			}
			if err := s.orderRepo.WithTx(tx).UpdatePaymentToken(created.Order.ID, token); err != nil {
				return err
			}
			created.Order.PaymentToken = token
			created.PaymentToken = token
		}
		result = created
		return nil
	})
	if err != nil {
		logger.Warnw("order_create_failed",
			"member_id", input.MemberID,
			"kind", input.Kind,
			"error_kind", string(KindOf(err)),
			"error", err,
		)
		return nil, err
	}

	if result.Order.Status == constants.OrderStatusPendingPayment {
		s.enqueueTimeoutCancel(result.Order, expire)
	}
	logger.Infow("order_created",
		"order_id", result.Order.ID,
		"order_no", result.Order.OrderNo,
		"kind", result.Order.Kind,
		"status", result.Order.Status,
	)
	return result, nil
}

func (s *OrderService) createPointGoodsOrder(tx *gorm.DB, input CreateOrderInput, now time.Time) (*CreateOrderResult, error) {
	goodsRepo := s.goodsRepo.WithTx(tx)
	goods, err := goodsRepo.GetByID(input.GoodsID)
	if err != nil {
		return nil, err
	}
	if goods == nil {
		return nil, ErrGoodsNotFound
	}
	if !goods.IsActive {
		return nil, ErrGoodsUnavailable
	}
	total := goods.Price.Decimal.Mul(decimal.NewFromInt(int64(input.Quantity))).Round(2)
	goodsID := goods.ID
	order := &models.Order{
		OrderNo:     generateOrderNo(now),
		Kind:        constants.OrderKindPointGoods,
		Status:      constants.OrderStatusAwaitingShipment,
		PayMode:     constants.PayModePoints,
		Title:       goods.Name,
		Price:       goods.Price,
		Quantity:    input.Quantity,
		TotalAmount: models.NewMoneyFromDecimal(total),
		GoodsID:     &goodsID,
		AddressID:   input.AddressID,
		MemberID:    input.MemberID,
		Remark:      strings.TrimSpace(input.Remark),
		PayTime:     &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
		return nil, err
	}
	if total.GreaterThan(decimal.Zero) {
		orderID := order.ID
		if _, err := s.points.DebitInTx(tx, PointChangeInput{
			MemberID:  input.MemberID,
			Amount:    total,
			Reason:    constants.PointReasonOrderPay,
			Remark:    fmt.Sprintf("积分兑换 %s", order.OrderNo),
			Reference: buildOrderPointReference(order.ID, constants.PointReasonOrderPay),
			OrderID:   &orderID,
		}); err != nil {
			return nil, err
		}
	}
	decremented, err := goodsRepo.DecrementStock(goods.ID, input.Quantity)
	if err != nil {
		return nil, err
	}
	if !decremented {
		return nil, ErrGoodsOutOfStock
	}
	return &CreateOrderResult{Order: order}, nil
}

func (s *OrderService) createActivityOrder(tx *gorm.DB, input CreateOrderInput, now time.Time, expire time.Duration) (*CreateOrderResult, error) {
	activityRepo := s.activityRepo.WithTx(tx)
	activity, err := activityRepo.GetByID(input.ActivityID)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	if !activityOpen(activity, now) {
		return nil, ErrActivityClosed
	}
	existing, err := activityRepo.GetEnrollment(activity.ID, input.MemberID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}
	reserved, err := activityRepo.ReserveSeat(activity.ID)
	if err != nil {
		return nil, err
	}
	if !reserved {
		return nil, ErrActivityFull
	}

	free := !activity.Price.IsPositive()
	activityID := activity.ID
	order := s.newPayableOrder(constants.OrderKindActivityPayment, activity.Name, activity.Price, input, now, expire)
	order.ActivityID = &activityID
	enrollmentStatus := constants.EnrollmentAwaitingPayment
	if free {
		order.Status = constants.OrderStatusCompleted
		order.PayTime = &now
		order.ExpiresAt = nil
		enrollmentStatus = constants.EnrollmentRegistered
	}
	if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
		return nil, err
	}
	orderID := order.ID
	enrollment := &models.ActivityEnrollment{
		ActivityID:   activity.ID,
		MemberID:     input.MemberID,
		SignInStatus: enrollmentStatus,
		FormData:     strings.TrimSpace(input.FormData),
		OrderID:      &orderID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := activityRepo.CreateEnrollment(enrollment); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}
	return &CreateOrderResult{Order: order, Enrollment: enrollment}, nil
}

func (s *OrderService) createMembershipOrder(tx *gorm.DB, input CreateOrderInput, now time.Time, expire time.Duration) (*CreateOrderResult, error) {
	tier, err := s.members.GetTierInTx(tx, input.TierID)
	if err != nil {
		return nil, err
	}
	if !tier.IsActive {
		return nil, ErrTierUnavailable
	}
	tierID := tier.ID
	order := s.newPayableOrder(constants.OrderKindMembershipPurchase, tier.Name, tier.Price, input, now, expire)
	order.TierID = &tierID
	free := !tier.Price.IsPositive()
	if free {
		order.Status = constants.OrderStatusCompleted
		order.PayTime = &now
		order.ExpiresAt = nil
	}
	if err := s.orderRepo.WithTx(tx).Create(order); err != nil {
		return nil, err
	}
	if free {
		if _, err := s.members.GrantTierInTx(tx, input.MemberID, tier.ID, now); err != nil {
			return nil, err
		}
	}
	return &CreateOrderResult{Order: order}, nil
}

func (s *OrderService) newPayableOrder(kind, title string, price models.Money, input CreateOrderInput, now time.Time, expire time.Duration) *models.Order {
	expiresAt := now.Add(expire)
	return &models.Order{
		OrderNo:     generateOrderNo(now),
		Kind:        kind,
		Status:      constants.OrderStatusPendingPayment,
		PayMode:     constants.PayModeMoney,
		Title:       title,
		Price:       price,
		Quantity:    1,
		TotalAmount: price,
		AddressID:   input.AddressID,
		MemberID:    input.MemberID,
		Remark:      strings.TrimSpace(input.Remark),
		ExpiresAt:   &expiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func (s *OrderService) requestPayment(ctx context.Context, order *models.Order, clientIP string) (string, error) {
	if s.gateway == nil {
		return "", fmt.Errorf("%w: gateway not configured", ErrPaymentGatewayFailed)
	}
	created, err := s.gateway.CreatePayment(ctx, payment.Request{
		Title:    order.Title,
		Amount:   order.TotalAmount.Decimal,
		OrderRef: order.OrderNo,
		ClientIP: clientIP,
	})
	if err != nil {
		logger.Errorw("order_payment_gateway_failed",
			"order_no", order.OrderNo,
			"provider", s.gateway.Provider(),
			"error", err,
		)
		return "", fmt.Errorf("%w: %v", ErrPaymentGatewayFailed, err)
	}
	if created == nil || strings.TrimSpace(created.Token) == "" {
		return "", fmt.Errorf("%w: empty payment token", ErrPaymentGatewayFailed)
	}
	return created.Token, nil
}

func (s *OrderService) enqueueTimeoutCancel(order *models.Order, delay time.Duration) {
	if s.queueClient == nil || !s.queueClient.Enabled() {
		return
	}
	if err := s.queueClient.EnqueueOrderTimeoutCancel(queue.OrderTimeoutCancelPayload{OrderID: order.ID}, delay); err != nil {
		// 入队失败时由对账任务兜底
		logger.Errorw("order_enqueue_timeout_cancel_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"error", err,
		)
	}
}

// Cancel 取消待支付订单并执行补偿；memberID 为 0 表示系统或管理员操作
func (s *OrderService) Cancel(ctx context.Context, orderID, memberID uint, reason string) (order *models.Order, err error) {
	start := time.Now()
	defer func() { metrics.ObserveWorkflow("order_cancel", start, err) }()

	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		current, err := repo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrOrderNotFound
		}
		if memberID != 0 && current.MemberID != memberID {
			return ErrOrderForbidden
		}
		if current.Status != constants.OrderStatusPendingPayment {
			return ErrOrderStatusInvalid
		}
		now := time.Now()
		updates := map[string]interface{}{"cancel_time": now}
		if remark := strings.TrimSpace(reason); remark != "" {
			updates["remark"] = remark
		}
		moved, err := repo.TransitionStatus(current.ID, []string{constants.OrderStatusPendingPayment}, constants.OrderStatusCancelled, updates)
		if err != nil {
			return err
		}
		if !moved {
			return ErrOrderStatusInvalid
		}
		if err := s.compensate(tx, current, constants.PointReasonOrderCancel); err != nil {
			return err
		}
		current.Status = constants.OrderStatusCancelled
		current.CancelTime = &now
		if remark, ok := updates["remark"].(string); ok {
			current.Remark = remark
		}
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("order_cancelled", "order_id", order.ID, "order_no", order.OrderNo, "reason", reason)
	return order, nil
}

// CancelExpiredOrder 超时取消单个订单，已支付或未到期时跳过
func (s *OrderService) CancelExpiredOrder(ctx context.Context, orderID uint) (bool, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return false, err
	}
	if order == nil || order.Status != constants.OrderStatusPendingPayment {
		return false, nil
	}
	deadline := order.CreatedAt.Add(s.paymentExpire(ctx))
	if order.ExpiresAt != nil {
		deadline = *order.ExpiresAt
	}
	if time.Now().Before(deadline) {
		return false, nil
	}
	if _, err := s.Cancel(ctx, orderID, 0, "支付超时自动取消"); err != nil {
		if KindOf(err) == KindInvalidState {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CancelUnpaidBefore 批量取消创建时间早于 before 的待支付订单
func (s *OrderService) CancelUnpaidBefore(ctx context.Context, before time.Time, limit int) (int64, error) {
	orders, err := s.orderRepo.ListPendingCreatedBefore(before, limit)
	if err != nil {
		return 0, err
	}
	var cancelled int64
	var failed []error
	for _, order := range orders {
		if _, err := s.Cancel(ctx, order.ID, 0, "支付超时自动取消"); err != nil {
			if KindOf(err) == KindInvalidState {
				continue
			}
			// 单笔失败不阻塞后续订单
			logger.Errorw("order_timeout_cancel_failed", "order_id", order.ID, "order_no", order.OrderNo, "error", err)
			failed = append(failed, fmt.Errorf("order %d: %w", order.ID, err))
			continue
		}
		cancelled++
	}
	return cancelled, errors.Join(failed...)
}

// ConfirmReceipt 会员确认收货
func (s *OrderService) ConfirmReceipt(orderID, memberID uint) (*models.Order, error) {
	return s.transition(orderID, memberID,
		[]string{constants.OrderStatusAwaitingReceipt},
		constants.OrderStatusCompleted,
		func(order *models.Order, now time.Time) map[string]interface{} {
			order.ReceiveTime = &now
			return map[string]interface{}{"receive_time": now}
		},
	)
}

// Ship 管理员发货
func (s *OrderService) Ship(orderID uint) (*models.Order, error) {
	return s.transition(orderID, 0,
		[]string{constants.OrderStatusAwaitingShipment},
		constants.OrderStatusAwaitingReceipt,
		func(order *models.Order, now time.Time) map[string]interface{} {
			order.ShipTime = &now
			return map[string]interface{}{"ship_time": now}
		},
	)
}

func (s *OrderService) transition(orderID, memberID uint, from []string, to string, apply func(order *models.Order, now time.Time) map[string]interface{}) (*models.Order, error) {
	var order *models.Order
	err := s.orderRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		current, err := repo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrOrderNotFound
		}
		if memberID != 0 && current.MemberID != memberID {
			return ErrOrderForbidden
		}
		if !containsStatus(from, current.Status) {
			return ErrOrderStatusInvalid
		}
		now := time.Now()
		updates := apply(current, now)
		moved, err := repo.TransitionStatus(current.ID, from, to, updates)
		if err != nil {
			return err
		}
		if !moved {
			return ErrOrderStatusInvalid
		}
		current.Status = to
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// MarkPaidInput 支付确认参数，Amount 为零时不校验金额
type MarkPaidInput struct {
	OrderNo string
	TradeNo string
	Amount  decimal.Decimal
}

// MarkPaid 支付回调确认，已完成的订单重复回调直接返回
func (s *OrderService) MarkPaid(ctx context.Context, input MarkPaidInput) (order *models.Order, err error) {
	start := time.Now()
	defer func() { metrics.ObserveWorkflow("order_mark_paid", start, err) }()

	orderNo := strings.TrimSpace(input.OrderNo)
	gatewayTradeNo := strings.TrimSpace(input.TradeNo)
	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		current, err := repo.GetByOrderNoForUpdate(orderNo)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrOrderNotFound
		}
		if current.PayMode == constants.PayModeMoney && current.PayTime != nil &&
			(current.Status == constants.OrderStatusCompleted || current.Status == constants.OrderStatusRefunded) {
			order = current
			return nil
		}
		if current.Status != constants.OrderStatusPendingPayment {
			return ErrOrderStatusInvalid
		}
		if !input.Amount.IsZero() && input.Amount.Cmp(current.TotalAmount.Decimal) != 0 {
			logger.Warnw("payment_callback_amount_mismatch",
				"order_no", current.OrderNo,
				"stored_amount", current.TotalAmount.String(),
				"callback_amount", input.Amount.String(),
			)
			return ErrPaymentAmountMismatch
		}
		now := time.Now()
		moved, err := repo.TransitionStatus(current.ID,
			[]string{constants.OrderStatusPendingPayment},
			constants.OrderStatusCompleted,
			map[string]interface{}{
				"pay_time":         now,
				"gateway_trade_no": gatewayTradeNo,
			},
		)
		if err != nil {
			return err
		}
		if !moved {
			return ErrOrderStatusInvalid
		}
		switch current.Kind {
		case constants.OrderKindActivityPayment:
			if err := s.confirmEnrollment(tx, current); err != nil {
				return err
			}
		case constants.OrderKindMembershipPurchase:
			if current.TierID == nil {
				return ErrTierNotFound
			}
			if _, err := s.members.GrantTierInTx(tx, current.MemberID, *current.TierID, now); err != nil {
				return err
			}
		}
		current.Status = constants.OrderStatusCompleted
		current.PayTime = &now
		current.GatewayTradeNo = gatewayTradeNo
		order = current
		return nil
	})
	if err != nil {
		logger.Warnw("order_mark_paid_failed", "order_no", orderNo, "error", err)
		return nil, err
	}
	logger.Infow("order_paid", "order_id", order.ID, "order_no", order.OrderNo, "trade_no", gatewayTradeNo)
	return order, nil
}

func (s *OrderService) confirmEnrollment(tx *gorm.DB, order *models.Order) error {
	activityRepo := s.activityRepo.WithTx(tx)
	enrollment, err := activityRepo.GetEnrollmentByOrderID(order.ID)
	if err != nil {
		return err
	}
	// 报名记录缺失或已变更时订单不可再支付
	if enrollment == nil {
		return ErrEnrollmentStatusInvalid
	}
	moved, err := activityRepo.TransitionEnrollment(enrollment.ID,
		[]string{constants.EnrollmentAwaitingPayment},
		constants.EnrollmentRegistered,
		nil,
	)
	if err != nil {
		return err
	}
	if !moved {
		return ErrEnrollmentStatusInvalid
	}
	return nil
}

// Refund 管理员退款，积分商品退回积分与库存，付费报名释放名额
func (s *OrderService) Refund(ctx context.Context, orderID uint, remark string) (order *models.Order, err error) {
	start := time.Now()
	defer func() { metrics.ObserveWorkflow("order_refund", start, err) }()

	refundable := []string{
		constants.OrderStatusPendingPayment,
		constants.OrderStatusCompleted,
		constants.OrderStatusAwaitingShipment,
	}
	err = s.orderRepo.Transaction(func(tx *gorm.DB) error {
		repo := s.orderRepo.WithTx(tx)
		current, err := repo.GetByIDForUpdate(orderID)
		if err != nil {
			return err
		}
		if current == nil {
			return ErrOrderNotFound
		}
		if !containsStatus(refundable, current.Status) {
			return ErrOrderStatusInvalid
		}
		now := time.Now()
		updates := map[string]interface{}{"refund_time": now}
		if trimmed := strings.TrimSpace(remark); trimmed != "" {
			updates["remark"] = trimmed
			current.Remark = trimmed
		}
		moved, err := repo.TransitionStatus(current.ID, refundable, constants.OrderStatusRefunded, updates)
		if err != nil {
			return err
		}
		if !moved {
			return ErrOrderStatusInvalid
		}
		if err := s.compensate(tx, current, constants.PointReasonOrderRefund); err != nil {
			return err
		}
		current.Status = constants.OrderStatusRefunded
		current.RefundTime = &now
		order = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Infow("order_refunded", "order_id", order.ID, "order_no", order.OrderNo)
	return order, nil
}

// compensate 撤销下单时占用的资源
func (s *OrderService) compensate(tx *gorm.DB, order *models.Order, reason string) error {
	switch order.Kind {
	case constants.OrderKindPointGoods:
		if order.GoodsID != nil {
			if err := s.goodsRepo.WithTx(tx).IncrementStock(*order.GoodsID, order.Quantity); err != nil {
				return err
			}
		}
		if order.TotalAmount.IsPositive() {
			orderID := order.ID
			if _, err := s.points.CreditInTx(tx, PointChangeInput{
				MemberID:  order.MemberID,
				Amount:    order.TotalAmount.Decimal,
				Reason:    reason,
				Remark:    fmt.Sprintf("订单 %s 退回积分", order.OrderNo),
				Reference: buildOrderPointReference(order.ID, reason),
				OrderID:   &orderID,
			}); err != nil {
				return err
			}
		}
	case constants.OrderKindActivityPayment:
		activityRepo := s.activityRepo.WithTx(tx)
		enrollment, err := activityRepo.GetEnrollmentByOrderID(order.ID)
		if err != nil {
			return err
		}
		if enrollment == nil {
			return nil
		}
		deleted, err := activityRepo.DeleteEnrollment(enrollment.ID)
		if err != nil {
			return err
		}
		if deleted {
			return activityRepo.ReleaseSeat(enrollment.ActivityID)
		}
	}
	return nil
}

// Get 获取订单；memberID 非 0 时校验归属
func (s *OrderService) Get(orderID, memberID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if memberID != 0 && order.MemberID != memberID {
		return nil, ErrOrderForbidden
	}
	return order, nil
}

// List 分页查询订单
func (s *OrderService) List(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

func (s *OrderService) ensureMemberActive(memberID uint) error {
	if s.memberRepo == nil {
		return nil
	}
	member, err := s.memberRepo.GetByID(memberID)
	if err != nil {
		return err
	}
	if member == nil {
		return ErrMemberNotFound
	}
	if member.Status == constants.MemberStatusDisabled {
		return ErrMemberDisabled
	}
	return nil
}

func (s *OrderService) paymentExpire(ctx context.Context) time.Duration {
	if s.settings == nil {
		return time.Duration(s.expireMinutes) * time.Minute
	}
	return s.settings.OrderPaymentExpire(ctx, s.expireMinutes)
}

func activityOpen(activity *models.Activity, now time.Time) bool {
	if activity == nil || !activity.IsActive {
		return false
	}
	if activity.EndAt != nil && activity.EndAt.Before(now) {
		return false
	}
	return true
}

func containsStatus(statuses []string, status string) bool {
	for _, item := range statuses {
		if item == status {
			return true
		}
	}
	return false
}
