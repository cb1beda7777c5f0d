package service

import (
	"context"
	"sync"
	"time"

	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/metrics"
)

// 对账任务名称
const (
	ReconcileJobExpireCoupons   = "expire_coupons"
	ReconcileJobCancelOrders    = "cancel_unpaid_orders"
	ReconcileJobCloseVolunteers = "close_abandoned_volunteers"
)

// ReconcileService 周期对账：过期券、超时未支付订单、遗留志愿者签到
type ReconcileService struct {
	coupons    *CouponService
	orders     *OrderService
	volunteers *VolunteerService
	batchSize  int

	mu sync.Mutex
}

// ReconcileJobResult 单个任务结果
type ReconcileJobResult struct {
	Job       string `json:"job"`
	Processed int64  `json:"processed"`
	Error     string `json:"error,omitempty"`
}

// ReconcileReport 一次对账的汇总
type ReconcileReport struct {
	Trigger    string               `json:"trigger"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt time.Time            `json:"finished_at"`
	Jobs       []ReconcileJobResult `json:"jobs"`
}

// NewReconcileService 创建对账服务
func NewReconcileService(coupons *CouponService, orders *OrderService, volunteers *VolunteerService, batchSize int) *ReconcileService {
	if batchSize <= 0 {
		batchSize = 200
	}
	return &ReconcileService{
		coupons:    coupons,
		orders:     orders,
		volunteers: volunteers,
		batchSize:  batchSize,
	}
}

// Run 依次执行三个任务，单个任务失败不影响后续任务
func (s *ReconcileService) Run(ctx context.Context, trigger string) *ReconcileReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	report := &ReconcileReport{Trigger: trigger, StartedAt: time.Now()}
	jobs := []struct {
		name string
		fn   func(ctx context.Context, now time.Time) (int64, error)
	}{
		{ReconcileJobExpireCoupons, s.expireCoupons},
		{ReconcileJobCancelOrders, s.cancelUnpaidOrders},
		{ReconcileJobCloseVolunteers, s.closeAbandonedVolunteers},
	}
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		processed, err := job.fn(ctx, time.Now())
		metrics.RecordReconcile(job.name, processed, err)
		result := ReconcileJobResult{Job: job.name, Processed: processed}
		if err != nil {
			result.Error = err.Error()
			logger.Warnw("reconcile_job_failed", "job", job.name, "trigger", trigger, "error", err)
		} else if processed > 0 {
			logger.Infow("reconcile_job_done", "job", job.name, "trigger", trigger, "processed", processed)
		}
		report.Jobs = append(report.Jobs, result)
	}
	report.FinishedAt = time.Now()
	return report
}

func (s *ReconcileService) expireCoupons(ctx context.Context, now time.Time) (int64, error) {
	if s.coupons == nil {
		return 0, nil
	}
	return s.coupons.ExpireStale(now)
}

func (s *ReconcileService) cancelUnpaidOrders(ctx context.Context, now time.Time) (int64, error) {
	if s.orders == nil {
		return 0, nil
	}
	return s.orders.CancelUnpaidBefore(ctx, now.Add(-s.orders.paymentExpire(ctx)), s.batchSize)
}

func (s *ReconcileService) closeAbandonedVolunteers(ctx context.Context, now time.Time) (int64, error) {
	if s.volunteers == nil {
		return 0, nil
	}
	return s.volunteers.ForceCloseAbandoned(ctx, now, s.batchSize)
}
