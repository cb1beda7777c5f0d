package admin

import (
	"strings"
	"time"

	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/models"
	"github.com/member-ledger/internal/repository"
	"github.com/member-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateCouponTemplateRequest 创建优惠券模板请求
type CreateCouponTemplateRequest struct {
	Name             string          `json:"name" binding:"required"`
	Type             string          `json:"type" binding:"required"`
	Value            decimal.Decimal `json:"value"`
	UsageFloor       decimal.Decimal `json:"usage_floor"`
	Rules            string          `json:"rules"`
	ValidFrom        *time.Time      `json:"valid_from"`
	ValidEnd         *time.Time      `json:"valid_end"`
	StockQuantity    int             `json:"stock_quantity"`
	ScopeType        string          `json:"scope_type" binding:"required"`
	ScopeMerchantIDs []uint          `json:"scope_merchant_ids"`
	SourceFrom       string          `json:"source_from"`
	MerchantID       uint            `json:"merchant_id"`
}

// AuditCouponTemplateRequest 审核请求
type AuditCouponTemplateRequest struct {
	Approve bool   `json:"approve"`
	Remark  string `json:"remark"`
}

// IssueCouponRequest 发券请求，member_id 与 phone 二选一
type IssueCouponRequest struct {
	MemberID uint   `json:"member_id"`
	Phone    string `json:"phone"`
}

// ListCouponTemplates 优惠券模板列表
func (h *Handler) ListCouponTemplates(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	templates, total, err := h.CouponService.ListTemplates(repository.CouponTemplateListFilter{
		Page:        page,
		PageSize:    pageSize,
		MerchantID:  handlershared.QueryUint(c, "merchant_id"),
		SourceFrom:  strings.TrimSpace(c.Query("source_from")),
		AuditStatus: strings.TrimSpace(c.Query("audit_status")),
		Search:      strings.TrimSpace(c.Query("search")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, templates, page, pageSize, total)
}

// GetCouponTemplate 优惠券模板详情
func (h *Handler) GetCouponTemplate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	template, err := h.CouponService.GetTemplate(id)
	if err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, template)
}

// CreateCouponTemplate 创建优惠券模板
func (h *Handler) CreateCouponTemplate(c *gin.Context) {
	var req CreateCouponTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	template, err := h.CouponService.CreateTemplate(service.CreateCouponTemplateInput{
		Name:             req.Name,
		Type:             strings.TrimSpace(req.Type),
		Value:            req.Value,
		UsageFloor:       req.UsageFloor,
		Rules:            req.Rules,
		ValidFrom:        req.ValidFrom,
		ValidEnd:         req.ValidEnd,
		StockQuantity:    req.StockQuantity,
		ScopeType:        strings.TrimSpace(req.ScopeType),
		ScopeMerchantIDs: req.ScopeMerchantIDs,
		SourceFrom:       strings.TrimSpace(req.SourceFrom),
		MerchantID:       req.MerchantID,
	})
	if err != nil {
		respondServiceError(c, err, "error.save_failed")
		return
	}
	logger.Infow("admin_coupon_template_created",
		"operator_admin_id", currentAdminID(c),
		"template_id", template.ID,
		"audit_status", template.AuditStatus,
	)
	response.Success(c, template)
}

// AuditCouponTemplate 审核商家券模板
func (h *Handler) AuditCouponTemplate(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	var req AuditCouponTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	template, err := h.CouponService.AuditTemplate(id, req.Approve, req.Remark)
	if err != nil {
		respondServiceError(c, err, "error.save_failed")
		return
	}
	logger.Infow("admin_coupon_template_audited",
		"operator_admin_id", currentAdminID(c),
		"template_id", template.ID,
		"audit_status", template.AuditStatus,
	)
	response.Success(c, template)
}

// IssueCoupon 向会员发券
func (h *Handler) IssueCoupon(c *gin.Context) {
	templateID, ok := parseID(c)
	if !ok {
		return
	}
	var req IssueCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	var (
		coupon *models.MemberCoupon
		err    error
	)
	switch {
	case req.MemberID != 0:
		coupon, err = h.CouponService.Issue(templateID, req.MemberID)
	case strings.TrimSpace(req.Phone) != "":
		coupon, err = h.CouponService.IssueByPhone(templateID, req.Phone)
	default:
		respondError(c, response.CodeBadRequest, "error.coupon_receiver_required", nil)
		return
	}
	if err != nil {
		respondServiceError(c, err, "error.coupon_issue_failed")
		return
	}
	logger.Infow("admin_coupon_issued",
		"operator_admin_id", currentAdminID(c),
		"template_id", templateID,
		"member_id", coupon.MemberID,
		"coupon_code", coupon.CouponCode,
	)
	response.Success(c, coupon)
}

// ListMemberCoupons 会员持券列表
func (h *Handler) ListMemberCoupons(c *gin.Context) {
	memberID, ok := parseID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)
	coupons, total, err := h.CouponService.ListMemberCoupons(repository.MemberCouponListFilter{
		Page:     page,
		PageSize: pageSize,
		MemberID: memberID,
		Status:   strings.TrimSpace(c.Query("status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, coupons, page, pageSize, total)
}

// ListVerifications 核销记录
func (h *Handler) ListVerifications(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	logs, total, err := h.CouponRedeemService.ListVerificationLogs(repository.VerificationLogListFilter{
		Page:       page,
		PageSize:   pageSize,
		MerchantID: handlershared.QueryUint(c, "merchant_id"),
		MemberID:   handlershared.QueryUint(c, "member_id"),
		CouponCode: strings.TrimSpace(c.Query("code")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, logs, page, pageSize, total)
}
