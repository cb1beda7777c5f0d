package app

import (
	"errors"

	"github.com/member-ledger/internal/config"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/provider"
	"github.com/member-ledger/internal/router"
	"github.com/member-ledger/internal/worker"
)

// InitDatabase 连接数据库并迁移表结构
func InitDatabase(cfg *config.Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}, cfg.Server.Mode == "debug"); err != nil {
		return err
	}
	return models.AutoMigrate()
}

// BuildContainer 初始化依赖容器并创建初始管理员
func BuildContainer(cfg *config.Config) (*provider.Container, error) {
	container, err := provider.NewContainer(cfg)
	if err != nil {
		return nil, err
	}
	admin, created, err := container.AuthService.EnsureBootstrapAdmin()
	if err != nil {
		logger.Warnw("app_bootstrap_admin_failed", "error", err)
	} else if admin == nil {
		logger.Warnw("app_bootstrap_admin_skipped", "reason", "bootstrap credentials not configured")
	} else if created {
		logger.Infow("app_bootstrap_admin_ready", "admin_id", admin.ID, "username", admin.Username)
	}
	return container, nil
}

// BuildRunner 构建服务运行器
func BuildRunner(cfg *config.Config, mode string) (*Runner, error) {
	if cfg == nil {
		return nil, errors.New("config is nil")
	}
	if mode != ModeAll && mode != ModeAPI && mode != ModeWorker {
		return nil, errors.New("unknown mode: " + mode)
	}

	container, err := BuildContainer(cfg)
	if err != nil {
		return nil, err
	}

	var services []Service

	// 初始化 HTTP 服务
	if mode == ModeAll || mode == ModeAPI {
		engine := router.SetupRouter(cfg, container)
		addr := cfg.Server.Host + ":" + cfg.Server.Port
		services = append(services, NewHTTPService(addr, engine))
	}

	// 初始化 Worker 服务，队列未启用时只运行对账定时器
	if mode == ModeAll || mode == ModeWorker {
		workerService, err := worker.NewService(&cfg.Queue, cfg.Reconcile, worker.NewConsumer(container))
		if err != nil {
			container.Close()
			return nil, err
		}
		services = append(services, workerService)
	}

	runner := NewRunner(services...)
	runner.onStop = container.Close
	return runner, nil
}

// Run 应用启动入口
func Run(opts Options) error {
	opts = normalizeOptions(opts)
	if opts.Config == nil {
		return errors.New("config is nil")
	}

	runner, err := BuildRunner(opts.Config, opts.Mode)
	if err != nil {
		return err
	}

	addr := opts.Config.Server.Host + ":" + opts.Config.Server.Port
	opts.Logger.Infow("app_start", "addr", addr, "mode", opts.Mode)
	return RunWithOptions(runner, opts)
}
