package router

import (
	"fmt"
	"sort"
	"strings"

	"github.com/member-ledger/internal/authz"
	"github.com/member-ledger/internal/cache"
	"github.com/member-ledger/internal/config"
	adminhandlers "github.com/member-ledger/internal/http/handlers/admin"
	publichandlers "github.com/member-ledger/internal/http/handlers/public"
	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/metrics"
	"github.com/member-ledger/internal/provider"

	"github.com/gin-gonic/gin"
)

// SetupRouter 初始化路由
func SetupRouter(cfg *config.Config, c *provider.Container) *gin.Engine {
	log := logger.L
	if log == nil {
		log = logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	}
	r := gin.New()

	// 初始化 Handler（按前台/后台分组）
	publicHandler := publichandlers.New(c)
	adminHandler := adminhandlers.New(c)
	redisPrefix := strings.TrimSpace(cfg.Redis.Prefix)
	if redisPrefix == "" {
		redisPrefix = "ml"
	}
	redisClient := cache.Client()
	adminLoginRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:admin_login", redisPrefix),
		WindowSeconds: cfg.Security.LoginRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.LoginRateLimit.MaxRequests,
		MessageKey:    "error.login_too_many",
	}
	redeemRule := RateLimitRule{
		Prefix:        fmt.Sprintf("%s:rate:redeem", redisPrefix),
		WindowSeconds: cfg.Security.RedeemRateLimit.WindowSeconds,
		MaxRequests:   cfg.Security.RedeemRateLimit.MaxRequests,
		MessageKey:    "error.redeem_too_many",
	}

	// 中间件
	r.Use(gin.Recovery())
	r.Use(RequestIDMiddleware())
	r.Use(LoggerMiddleware(log))
	r.Use(CORSMiddleware(cfg.CORS))
	if cfg.Metrics.Enabled {
		r.Use(MetricsMiddleware())
	}

	// API 路由组
	apiV1 := r.Group("/api/v1")
	{
		// 公开目录
		public := apiV1.Group("/public")
		{
			public.GET("/goods", publicHandler.ListGoods)
			public.GET("/goods/:id", publicHandler.GetGoods)
			public.GET("/activities", publicHandler.ListActivities)
			public.GET("/activities/:id", publicHandler.GetActivity)
			public.GET("/tiers", publicHandler.ListTiers)
		}

		// 会员接口
		member := apiV1.Group("/member")
		member.Use(MemberJWTMiddleware(cfg.MemberJWT.SecretKey, c.AuthService))
		{
			member.GET("/me", publicHandler.GetMe)
			member.GET("/points", publicHandler.GetPoints)
			member.GET("/points/entries", publicHandler.ListPointEntries)
			member.GET("/coupons", publicHandler.ListMyCoupons)
			member.GET("/coupons/usable", publicHandler.ListUsableCoupons)
			member.GET("/verifications", publicHandler.ListMyVerifications)

			member.POST("/orders", publicHandler.CreateOrder)
			member.GET("/orders", publicHandler.ListOrders)
			member.GET("/orders/:id", publicHandler.GetOrder)
			member.POST("/orders/:id/cancel", publicHandler.CancelOrder)
			member.POST("/orders/:id/confirm", publicHandler.ConfirmReceipt)

			member.POST("/activities/:id/enroll", publicHandler.Enroll)
			member.DELETE("/activities/:id/enroll", publicHandler.CancelEnrollment)
			member.POST("/activities/:id/sign-in", publicHandler.SignIn)
			member.GET("/activities/:id/sign-info", publicHandler.GetSignInfo)

			member.POST("/volunteer/check-in", publicHandler.VolunteerCheckIn)
			member.POST("/volunteer/check-out", publicHandler.VolunteerCheckOut)
			member.GET("/volunteer/records", publicHandler.ListVolunteerRecords)
			member.GET("/volunteer/summary", publicHandler.VolunteerSummary)
		}

		// 商家核销接口
		merchant := apiV1.Group("/merchant")
		merchant.Use(MerchantJWTMiddleware(cfg.MemberJWT.SecretKey, c.AuthService))
		{
			merchant.POST("/coupons/check", publicHandler.CheckCoupon)
			merchant.POST("/coupons/redeem",
				RateLimitMiddleware(redisClient, redeemRule, KeyByContextID(handlershared.ContextMerchantID)),
				publicHandler.RedeemCoupon,
			)
			merchant.GET("/verifications", publicHandler.ListMerchantVerifications)
		}

		// 支付回调
		callback := apiV1.Group("/payments/callback")
		{
			callback.POST("/alipay", publicHandler.AlipayCallback)
			callback.POST("/wechat", publicHandler.WechatCallback)
		}

		// 管理员接口
		admin := apiV1.Group("/admin")
		{
			// 登录接口（无需鉴权）
			admin.POST("/login", RateLimitMiddleware(redisClient, adminLoginRule, KeyByIPAndJSONField("username")), adminHandler.AdminLogin)

			// 需要鉴权的接口
			authorized := admin.Use(JWTAuthMiddleware(cfg.JWT.SecretKey, c.AuthService, c.AdminRepo), AdminRBACMiddleware(c.AuthzService))
			{
				authorized.GET("/me", adminHandler.GetAdminMe)
				authorized.PUT("/password", adminHandler.UpdateAdminPassword)

				// 会员与商家
				authorized.GET("/members", adminHandler.ListMembers)
				authorized.POST("/members", adminHandler.CreateMember)
				authorized.GET("/members/:id", adminHandler.GetMember)
				authorized.POST("/members/:id/token", adminHandler.IssueMemberToken)
				authorized.POST("/members/:id/points", adminHandler.AdjustPoints)
				authorized.GET("/members/:id/points/audit", adminHandler.AuditPoints)
				authorized.GET("/members/:id/coupons", adminHandler.ListMemberCoupons)
				authorized.POST("/merchants", adminHandler.CreateMerchant)
				authorized.GET("/merchants/:id", adminHandler.GetMerchant)
				authorized.POST("/merchants/:id/token", adminHandler.IssueMerchantToken)
				authorized.GET("/tiers", adminHandler.ListTiers)
				authorized.POST("/tiers", adminHandler.CreateTier)
				authorized.GET("/point-entries", adminHandler.ListPointEntries)

				// 商品与活动
				authorized.GET("/goods", adminHandler.ListGoods)
				authorized.POST("/goods", adminHandler.CreateGoods)
				authorized.GET("/activities", adminHandler.ListActivities)
				authorized.POST("/activities", adminHandler.CreateActivity)
				authorized.GET("/activities/:id/enrollments", adminHandler.ListEnrollments)
				authorized.GET("/activities/:id/audit", adminHandler.AuditActivitySeats)

				// 优惠券
				authorized.GET("/coupon-templates", adminHandler.ListCouponTemplates)
				authorized.POST("/coupon-templates", adminHandler.CreateCouponTemplate)
				authorized.GET("/coupon-templates/:id", adminHandler.GetCouponTemplate)
				authorized.POST("/coupon-templates/:id/audit", adminHandler.AuditCouponTemplate)
				authorized.POST("/coupon-templates/:id/issue", adminHandler.IssueCoupon)
				authorized.GET("/verifications", adminHandler.ListVerifications)

				// 订单
				authorized.GET("/orders", adminHandler.ListOrders)
				authorized.GET("/orders/:id", adminHandler.GetOrder)
				authorized.POST("/orders/:id/ship", adminHandler.ShipOrder)
				authorized.POST("/orders/:id/refund", adminHandler.RefundOrder)
				authorized.POST("/orders/:id/cancel", adminHandler.CancelOrder)
				authorized.POST("/orders/:id/mark-paid", adminHandler.MarkOrderPaid)

				// 志愿服务
				authorized.GET("/volunteers", adminHandler.ListVolunteerRecords)
				authorized.POST("/volunteers/:id/check-out", adminHandler.CheckOutVolunteer)
				authorized.POST("/volunteers/:id/audit", adminHandler.AuditVolunteerRecord)

				// 对账
				authorized.POST("/reconcile", adminHandler.RunReconcile)

				// 设置
				authorized.GET("/settings", adminHandler.ListSettings)
				authorized.GET("/settings/:key", adminHandler.GetSetting)
				authorized.PUT("/settings/:key", adminHandler.UpdateSetting)

				// 权限管理
				authorized.GET("/authz/me", adminHandler.GetAuthzMe)
				authorized.GET("/authz/roles", adminHandler.ListAuthzRoles)
				authorized.POST("/authz/roles", adminHandler.CreateAuthzRole)
				authorized.GET("/authz/roles/:role/policies", adminHandler.GetAuthzRolePolicies)
				authorized.POST("/authz/policies", adminHandler.GrantAuthzPolicy)
				authorized.DELETE("/authz/policies", adminHandler.RevokeAuthzPolicy)
				authorized.GET("/authz/admins", adminHandler.ListAuthzAdmins)
				authorized.POST("/authz/admins", adminHandler.CreateAuthzAdmin)
				authorized.GET("/authz/admins/:id/roles", adminHandler.GetAuthzAdminRoles)
				authorized.PUT("/authz/admins/:id/roles", adminHandler.SetAuthzAdminRoles)
				authorized.GET("/authz/permissions/catalog", func(ctx *gin.Context) {
					response.Success(ctx, buildAdminPermissionCatalog(r))
				})
			}
		}
	}

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if cfg.Metrics.Enabled {
		path := strings.TrimSpace(cfg.Metrics.Path)
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(metrics.Handler()))
	}

	return r
}

type adminPermissionCatalogItem struct {
	Module     string `json:"module"`
	Method     string `json:"method"`
	Object     string `json:"object"`
	Permission string `json:"permission"`
}

func buildAdminPermissionCatalog(engine *gin.Engine) []adminPermissionCatalogItem {
	if engine == nil {
		return []adminPermissionCatalogItem{}
	}

	routes := engine.Routes()
	seen := make(map[string]struct{}, len(routes))
	items := make([]adminPermissionCatalogItem, 0, len(routes))

	for _, item := range routes {
		method := strings.ToUpper(strings.TrimSpace(item.Method))
		if method == "" || method == "OPTIONS" || method == "HEAD" {
			continue
		}
		if !strings.HasPrefix(item.Path, "/api/v1/admin/") {
			continue
		}
		if item.Path == "/api/v1/admin/login" {
			continue
		}
		object := authz.NormalizeObject(item.Path)
		permission := method + ":" + object
		if _, exists := seen[permission]; exists {
			continue
		}
		seen[permission] = struct{}{}
		items = append(items, adminPermissionCatalogItem{
			Module:     deriveAdminPermissionModule(object),
			Method:     method,
			Object:     object,
			Permission: permission,
		})
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Module == items[j].Module {
			if items[i].Object == items[j].Object {
				return items[i].Method < items[j].Method
			}
			return items[i].Object < items[j].Object
		}
		return items[i].Module < items[j].Module
	})

	return items
}

func deriveAdminPermissionModule(object string) string {
	normalized := strings.TrimPrefix(strings.TrimSpace(object), "/")
	if normalized == "" {
		return "system"
	}
	segments := strings.Split(normalized, "/")
	if len(segments) <= 1 {
		return segments[0]
	}
	if segments[0] != "admin" {
		return segments[0]
	}
	if segments[1] == "authz" {
		return "authz"
	}
	return segments[1]
}
