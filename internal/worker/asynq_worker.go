package worker

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/provider"
	"github.com/member-ledger/internal/queue"
	"github.com/member-ledger/internal/service"

	"github.com/hibiken/asynq"
)

// OrderExpirer 超时取消单个订单
type OrderExpirer interface {
	CancelExpiredOrder(ctx context.Context, orderID uint) (bool, error)
}

// Reconciler 执行一轮对账
type Reconciler interface {
	Run(ctx context.Context, trigger string) *service.ReconcileReport
}

// Consumer 异步任务消费者
type Consumer struct {
	orders    OrderExpirer
	reconcile Reconciler
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	consumer := &Consumer{}
	if c == nil {
		return consumer
	}
	if c.OrderService != nil {
		consumer.orders = c.OrderService
	}
	if c.ReconcileService != nil {
		consumer.reconcile = c.ReconcileService
	}
	return consumer
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderTimeoutCancel, c.handleOrderTimeoutCancel)
	mux.HandleFunc(queue.TaskReconcileRun, c.handleReconcileRun)
}

func (c *Consumer) handleOrderTimeoutCancel(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_timeout_cancel_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderTimeoutCancelPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_timeout_cancel_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_timeout_cancel_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	if c.orders == nil {
		logger.Warnw("worker_order_timeout_cancel_skip_order_service_nil", "order_id", payload.OrderID)
		return nil
	}
	cancelled, err := c.orders.CancelExpiredOrder(ctx, payload.OrderID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrOrderStatusInvalid):
			logger.Debugw("worker_order_timeout_cancel_skip", "order_id", payload.OrderID, "error", err)
			return nil
		default:
			logger.Warnw("worker_order_timeout_cancel_failed", "order_id", payload.OrderID, "error", err)
			return err
		}
	}
	if cancelled {
		logger.Infow("worker_order_timeout_cancelled", "order_id", payload.OrderID)
	}
	return nil
}

func (c *Consumer) handleReconcileRun(ctx context.Context, task *asynq.Task) error {
	if c == nil || task == nil || c.reconcile == nil {
		logger.Debugw("worker_reconcile_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	payload, err := queue.ParseReconcileRunPayload(task)
	if err != nil {
		logger.Warnw("worker_reconcile_unmarshal_failed", "error", err)
		return err
	}
	trigger := payload.Trigger
	if trigger == "" {
		trigger = "queue"
	}
	c.reconcile.Run(ctx, trigger)
	return nil
}
