package provider

import (
	"github.com/member-ledger/internal/authz"
	"github.com/member-ledger/internal/cache"
	"github.com/member-ledger/internal/config"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/payment"
	"github.com/member-ledger/internal/queue"
	"github.com/member-ledger/internal/repository"
	"github.com/member-ledger/internal/service"

	"gorm.io/gorm"
)

// Container 依赖注入容器
type Container struct {
	Config        *config.Config
	QueueClient   *queue.Client
	PaymentClient *payment.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	MemberRepo     repository.MemberRepository
	MembershipRepo repository.MembershipRepository
	PointRepo      repository.PointRepository
	CouponRepo     repository.CouponRepository
	GoodsRepo      repository.GoodsRepository
	ActivityRepo   repository.ActivityRepository
	OrderRepo      repository.OrderRepository
	VolunteerRepo  repository.VolunteerRepository
	SettingRepo    repository.SettingRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	SettingService      *service.SettingService
	MemberService       *service.MemberService
	PointsService       *service.PointsService
	CouponService       *service.CouponService
	CouponRedeemService *service.CouponRedeemService
	CatalogService      *service.CatalogService
	OrderService        *service.OrderService
	EnrollmentService   *service.EnrollmentService
	VolunteerService    *service.VolunteerService
	ReconcileService    *service.ReconcileService
}

// NewContainer 初始化容器
func NewContainer(cfg *config.Config) (*Container, error) {
	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	queueClient, err := queue.NewClient(&cfg.Queue)
	if err != nil {
		logger.Errorw("provider_init_queue_client_failed", "error", err)
		queueClient = nil
	}

	paymentClient, err := payment.New(cfg.Payment)
	if err != nil {
		logger.Errorw("provider_init_payment_failed", "provider", cfg.Payment.Provider, "error", err)
		return nil, err
	}

	c := &Container{
		Config:        cfg,
		QueueClient:   queueClient,
		PaymentClient: paymentClient,
	}

	c.initRepositories(models.DB)
	if err := c.initServices(models.DB); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Container) initRepositories(db *gorm.DB) {
	c.AdminRepo = repository.NewAdminRepository(db)
	c.MemberRepo = repository.NewMemberRepository(db)
	c.MembershipRepo = repository.NewMembershipRepository(db)
	c.PointRepo = repository.NewPointRepository(db)
	c.CouponRepo = repository.NewCouponRepository(db)
	c.GoodsRepo = repository.NewGoodsRepository(db)
	c.ActivityRepo = repository.NewActivityRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.VolunteerRepo = repository.NewVolunteerRepository(db)
	c.SettingRepo = repository.NewSettingRepository(db)
}

func (c *Container) initServices(db *gorm.DB) error {
	authzService, err := authz.NewService(db)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		return err
	}
	if err := authzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		return err
	}
	c.AuthzService = authzService

	cfg := c.Config
	c.AuthService = service.NewAuthService(cfg, c.AdminRepo, c.MemberRepo)
	c.SettingService = service.NewSettingService(c.SettingRepo, cfg.Points.DefaultRate)
	c.MemberService = service.NewMemberService(c.MemberRepo, c.MembershipRepo)
	c.PointsService = service.NewPointsService(c.PointRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.MemberRepo)
	c.CouponRedeemService = service.NewCouponRedeemService(c.CouponRepo, c.PointsService, c.MemberService, c.SettingService)
	c.CatalogService = service.NewCatalogService(c.GoodsRepo, c.ActivityRepo)
	c.OrderService = service.NewOrderService(
		c.OrderRepo,
		c.GoodsRepo,
		c.ActivityRepo,
		c.MemberRepo,
		c.MemberService,
		c.PointsService,
		c.PaymentClient,
		c.QueueClient,
		c.SettingService,
		cfg.Order.PaymentExpireMinutes,
	)
	c.EnrollmentService = service.NewEnrollmentService(c.ActivityRepo, c.MemberRepo, c.PointsService)
	c.VolunteerService = service.NewVolunteerService(c.VolunteerRepo, c.SettingService, cfg.Reconcile.VolunteerMaxOpenHours)
	c.ReconcileService = service.NewReconcileService(c.CouponService, c.OrderService, c.VolunteerService, cfg.Reconcile.BatchSize)
	return nil
}

// Close 释放外部连接
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.QueueClient != nil {
		if err := c.QueueClient.Close(); err != nil {
			logger.Warnw("provider_close_queue_client_failed", "error", err)
		}
	}
}
