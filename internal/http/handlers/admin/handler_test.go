package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/member-ledger/internal/config"
	"github.com/member-ledger/internal/constants"
	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/payment"
	"github.com/member-ledger/internal/provider"
	"github.com/member-ledger/internal/repository"
	"github.com/member-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type adminFixture struct {
	db     *gorm.DB
	c      *provider.Container
	router *gin.Engine
}

func setupAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:admin_handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	gateway, err := payment.New(config.PaymentConfig{})
	require.NoError(t, err)
	cfg := &config.Config{
		JWT:       config.JWTConfig{SecretKey: "admin-secret", ExpireHours: 1},
		MemberJWT: config.JWTConfig{SecretKey: "member-secret", ExpireHours: 1},
		Bootstrap: config.BootstrapConfig{AdminUsername: "root", AdminPassword: "ledger2026"},
	}

	c := &provider.Container{Config: cfg, PaymentClient: gateway}
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

	c.AuthService = service.NewAuthService(cfg, c.AdminRepo, c.MemberRepo)
	c.SettingService = service.NewSettingService(c.SettingRepo, "1")
	c.MemberService = service.NewMemberService(c.MemberRepo, c.MembershipRepo)
	c.PointsService = service.NewPointsService(c.PointRepo)
	c.CouponService = service.NewCouponService(c.CouponRepo, c.MemberRepo)
	c.CouponRedeemService = service.NewCouponRedeemService(c.CouponRepo, c.PointsService, c.MemberService, c.SettingService)
	c.CatalogService = service.NewCatalogService(c.GoodsRepo, c.ActivityRepo)
	c.OrderService = service.NewOrderService(c.OrderRepo, c.GoodsRepo, c.ActivityRepo, c.MemberRepo,
		c.MemberService, c.PointsService, gateway, nil, c.SettingService, 15)
	c.EnrollmentService = service.NewEnrollmentService(c.ActivityRepo, c.MemberRepo, c.PointsService)
	c.VolunteerService = service.NewVolunteerService(c.VolunteerRepo, c.SettingService, 12)
	c.ReconcileService = service.NewReconcileService(c.CouponService, c.OrderService, c.VolunteerService, 50)

	h := New(c)
	router := gin.New()
	router.POST("/login", h.AdminLogin)
	group := router.Group("/admin", func(ctx *gin.Context) {
		ctx.Set(handlershared.ContextAdminID, uint(1))
		ctx.Set("username", "root")
		ctx.Next()
	})
	group.POST("/members/:id/points", h.AdjustPoints)
	group.GET("/members/:id/points/audit", h.AuditPoints)
	group.GET("/activities/:id/audit", h.AuditActivitySeats)
	group.GET("/members/:id/coupons", h.ListMemberCoupons)
	group.POST("/coupon-templates", h.CreateCouponTemplate)
	group.POST("/coupon-templates/:id/audit", h.AuditCouponTemplate)
	group.POST("/coupon-templates/:id/issue", h.IssueCoupon)
	group.POST("/orders/:id/refund", h.RefundOrder)
	group.POST("/orders/:id/mark-paid", h.MarkOrderPaid)
	group.POST("/volunteers/:id/check-out", h.CheckOutVolunteer)
	group.POST("/volunteers/:id/audit", h.AuditVolunteerRecord)
	group.POST("/reconcile", h.RunReconcile)
	group.PUT("/settings/:key", h.UpdateSetting)

	return &adminFixture{db: db, c: c, router: router}
}

func (f *adminFixture) do(t *testing.T, method, path string, body interface{}) (response.Response, map[string]interface{}) {
	t.Helper()
	var payload []byte
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		payload = raw
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data, _ := resp.Data.(map[string]interface{})
	return resp, data
}

func TestAdminLogin(t *testing.T) {
	f := setupAdminFixture(t)
	_, created, err := f.c.AuthService.EnsureBootstrapAdmin()
	require.NoError(t, err)
	require.True(t, created)

	resp, data := f.do(t, http.MethodPost, "/login", gin.H{"username": "root", "password": "ledger2026"})
	require.Equal(t, response.CodeOK, resp.StatusCode)
	require.NotEmpty(t, data["token"])

	resp, _ = f.do(t, http.MethodPost, "/login", gin.H{"username": "root", "password": "nope"})
	require.Equal(t, response.CodeUnauthorized, resp.StatusCode)
}

func TestMerchantTemplateAuditAndIssueByPhone(t *testing.T) {
	f := setupAdminFixture(t)
	member, err := f.c.MemberService.CreateMember("13600000001", "阿青")
	require.NoError(t, err)
	merchant, err := f.c.MemberService.CreateMerchant("花店")
	require.NoError(t, err)

	resp, data := f.do(t, http.MethodPost, "/admin/coupon-templates", gin.H{
		"name":               "到店立减",
		"type":               "cash",
		"value":              "15",
		"stock_quantity":     2,
		"scope_type":         constants.CouponScopeSpecificMerchants,
		"scope_merchant_ids": []uint{merchant.ID},
		"source_from":        constants.CouponSourceMerchant,
		"merchant_id":        merchant.ID,
	})
	require.Equal(t, response.CodeOK, resp.StatusCode)
	require.Equal(t, constants.AuditStatusPending, data["audit_status"])
	templateID := uint(data["id"].(float64))

	issuePath := fmt.Sprintf("/admin/coupon-templates/%d/issue", templateID)
	resp, _ = f.do(t, http.MethodPost, issuePath, gin.H{"phone": member.Phone})
	require.Equal(t, response.CodeConflict, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, fmt.Sprintf("/admin/coupon-templates/%d/audit", templateID), gin.H{"approve": true})
	require.Equal(t, response.CodeOK, resp.StatusCode)

	resp, data = f.do(t, http.MethodPost, issuePath, gin.H{"phone": member.Phone})
	require.Equal(t, response.CodeOK, resp.StatusCode)
	require.NotEmpty(t, data["coupon_code"])

	resp, _ = f.do(t, http.MethodPost, issuePath, gin.H{})
	require.Equal(t, response.CodeBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, issuePath, gin.H{"phone": "19999999999"})
	require.Equal(t, response.CodeNotFound, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, fmt.Sprintf("/admin/members/%d/coupons", member.ID), nil)
	require.Equal(t, response.CodeOK, resp.StatusCode)
}

func TestAdjustPointsAndAudit(t *testing.T) {
	f := setupAdminFixture(t)
	member, err := f.c.MemberService.CreateMember("13600000002", "")
	require.NoError(t, err)
	path := fmt.Sprintf("/admin/members/%d/points", member.ID)

	resp, _ := f.do(t, http.MethodPost, path, gin.H{"delta": "40", "remark": "活动补偿"})
	require.Equal(t, response.CodeOK, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, path, gin.H{"delta": "-50"})
	require.Equal(t, response.CodeInsufficientResource, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, path, gin.H{"delta": "0"})
	require.Equal(t, response.CodeBadRequest, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, "/admin/members/999/points", gin.H{"delta": "5"})
	require.Equal(t, response.CodeNotFound, resp.StatusCode)

	resp, data := f.do(t, http.MethodGet, path+"/audit", nil)
	require.Equal(t, response.CodeOK, resp.StatusCode)
	require.Equal(t, true, data["consistent"])
}

func TestAuditActivitySeatsHandler(t *testing.T) {
	f := setupAdminFixture(t)
	activity, err := f.c.CatalogService.CreateActivity(service.CreateActivityInput{Name: "茶艺课", Capacity: 3})
	require.NoError(t, err)
	member, err := f.c.MemberService.CreateMember("13600000012", "")
	require.NoError(t, err)
	_, err = f.c.EnrollmentService.Enroll(context.Background(), activity.ID, member.ID, "")
	require.NoError(t, err)

	resp, data := f.do(t, http.MethodGet, fmt.Sprintf("/admin/activities/%d/audit", activity.ID), nil)
	require.Equal(t, response.CodeOK, resp.StatusCode)
	require.Equal(t, true, data["consistent"])
	require.EqualValues(t, 1, data["enrollments"])

	resp, _ = f.do(t, http.MethodGet, "/admin/activities/999/audit", nil)
	require.Equal(t, response.CodeNotFound, resp.StatusCode)
}

func TestRefundPointGoodsOrder(t *testing.T) {
	f := setupAdminFixture(t)
	member, err := f.c.MemberService.CreateMember("13600000003", "")
	require.NoError(t, err)
	_, err = f.c.PointsService.Credit(member.ID, decimal.NewFromInt(50), "seed")
	require.NoError(t, err)
	goods, err := f.c.CatalogService.CreateGoods(service.CreateGoodsInput{Name: "笔记本", Price: decimal.NewFromInt(20), StockQuantity: 3})
	require.NoError(t, err)
	result, err := f.c.OrderService.Create(context.Background(), service.CreateOrderInput{
		MemberID: member.ID,
		Kind:     constants.OrderKindPointGoods,
		GoodsID:  goods.ID,
		Quantity: 2,
	})
	require.NoError(t, err)

	path := fmt.Sprintf("/admin/orders/%d/refund", result.Order.ID)
	resp, data := f.do(t, http.MethodPost, path, gin.H{"remark": "缺货"})
	require.Equal(t, response.CodeOK, resp.StatusCode)
	require.Equal(t, constants.OrderStatusRefunded, data["status"])

	balance, err := f.c.PointsService.GetBalance(member.ID)
	require.NoError(t, err)
	require.True(t, balance.Decimal.Equal(decimal.NewFromInt(50)))

	resp, _ = f.do(t, http.MethodPost, path, nil)
	require.Equal(t, response.CodeConflict, resp.StatusCode)
}

func TestMarkOrderPaidCompletesMembershipPurchase(t *testing.T) {
	f := setupAdminFixture(t)
	member, err := f.c.MemberService.CreateMember("13600000004", "")
	require.NoError(t, err)
	tier, err := f.c.MemberService.CreateTier(service.CreateTierInput{
		Name:         "金卡",
		PointRate:    decimal.NewFromFloat(1.5),
		Price:        decimal.NewFromInt(99),
		DurationDays: 30,
	})
	require.NoError(t, err)
	result, err := f.c.OrderService.Create(context.Background(), service.CreateOrderInput{
		MemberID: member.ID,
		Kind:     constants.OrderKindMembershipPurchase,
		TierID:   tier.ID,
		Quantity: 1,
	})
	require.NoError(t, err)
	require.Equal(t, constants.OrderStatusPendingPayment, result.Order.Status)

	resp, data := f.do(t, http.MethodPost, fmt.Sprintf("/admin/orders/%d/mark-paid", result.Order.ID), nil)
	require.Equal(t, response.CodeOK, resp.StatusCode)
	require.Equal(t, constants.OrderStatusCompleted, data["status"])

	granted, err := f.c.MemberService.GetMemberTier(member.ID)
	require.NoError(t, err)
	require.NotNil(t, granted)
	require.Equal(t, tier.ID, granted.TierID)
}

func TestAdminVolunteerCheckOutAndAudit(t *testing.T) {
	f := setupAdminFixture(t)
	member, err := f.c.MemberService.CreateMember("13600000005", "")
	require.NoError(t, err)
	record, err := f.c.VolunteerService.CheckIn(member.ID, time.Now().Add(-90*time.Minute), 8)
	require.NoError(t, err)

	resp, data := f.do(t, http.MethodPost, fmt.Sprintf("/admin/volunteers/%d/check-out", record.ID), gin.H{"approved": true})
	require.Equal(t, response.CodeOK, resp.StatusCode)
	require.Equal(t, constants.AuditStatusApproved, data["audit_status"])

	minutes, err := f.c.VolunteerService.TotalMinutes(member.ID)
	require.NoError(t, err)
	require.EqualValues(t, 90, minutes)

	resp, _ = f.do(t, http.MethodPost, fmt.Sprintf("/admin/volunteers/%d/audit", record.ID), gin.H{"approve": true})
	require.Equal(t, response.CodeConflict, resp.StatusCode)

	resp, _ = f.do(t, http.MethodPost, fmt.Sprintf("/admin/volunteers/%d/check-out", record.ID), gin.H{"approved": true})
	require.Equal(t, response.CodeConflict, resp.StatusCode)
}

func TestRunReconcileSynchronously(t *testing.T) {
	f := setupAdminFixture(t)

	resp, data := f.do(t, http.MethodPost, "/admin/reconcile?async=1", nil)
	require.Equal(t, response.CodeOK, resp.StatusCode)
	require.Equal(t, false, data["queued"])
	report, ok := data["report"].(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, reconcileTriggerAdmin, report["trigger"])
	require.Len(t, report["jobs"], 3)
}

func TestUpdateSettingValidatesValue(t *testing.T) {
	f := setupAdminFixture(t)

	resp, _ := f.do(t, http.MethodPut, "/admin/settings/"+constants.SettingKeyPointsPerCurrencyUnit, gin.H{"value": "2"})
	require.Equal(t, response.CodeOK, resp.StatusCode)

	rate, err := f.c.SettingService.PointsPerCurrencyUnit(context.Background())
	require.NoError(t, err)
	require.True(t, rate.Equal(decimal.NewFromInt(2)))

	resp, _ = f.do(t, http.MethodPut, "/admin/settings/"+constants.SettingKeyPointsPerCurrencyUnit, gin.H{"value": "-1"})
	require.Equal(t, response.CodeBadRequest, resp.StatusCode)
}
