package worker

import (
	"context"
	"errors"
	"time"

	"github.com/member-ledger/internal/config"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/queue"

	"github.com/hibiken/asynq"
)

const defaultReconcileInterval = time.Minute

// Service 后台任务服务：asynq 消费者与对账定时器
type Service struct {
	name              string
	server            *asynq.Server
	mux               *asynq.ServeMux
	consumer          *Consumer
	reconcileEnabled  bool
	reconcileInterval time.Duration
}

// NewService 创建后台任务服务，队列关闭时只运行对账定时器
func NewService(queueCfg *config.QueueConfig, reconcileCfg config.ReconcileConfig, consumer *Consumer) (*Service, error) {
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	interval := time.Duration(reconcileCfg.IntervalSeconds) * time.Second
	if interval <= 0 {
		interval = defaultReconcileInterval
	}
	s := &Service{
		name:              "worker",
		consumer:          consumer,
		reconcileEnabled:  reconcileCfg.Enabled && consumer.reconcile != nil,
		reconcileInterval: interval,
	}
	if queueCfg != nil && queueCfg.Enabled {
		opt, serverCfg := queue.BuildServerConfig(queueCfg)
		s.server = asynq.NewServer(opt, serverCfg)
		s.mux = asynq.NewServeMux()
		consumer.Register(s.mux)
	}
	return s, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务并阻塞至 ctx 结束
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.consumer == nil {
		return errors.New("worker not initialized")
	}
	if s.server != nil {
		if err := s.server.Start(s.mux); err != nil {
			return err
		}
	}
	if s.reconcileEnabled {
		go s.runReconcileLoop(ctx)
	}
	<-ctx.Done()
	return nil
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

func (s *Service) runReconcileLoop(ctx context.Context) {
	runOnce := func() {
		report := s.consumer.reconcile.Run(ctx, "scheduled")
		if report == nil {
			return
		}
		for _, job := range report.Jobs {
			if job.Error != "" {
				logger.Warnw("worker_reconcile_job_error", "job", job.Job, "error", job.Error)
			}
		}
	}
	runOnce()

	ticker := time.NewTicker(s.reconcileInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
