package admin

import (
	"strings"
	"time"

	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/logger"
	"github.com/member-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateMemberRequest 创建会员请求
type CreateMemberRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Nickname string `json:"nickname"`
}

// CreateMerchantRequest 创建商家请求
type CreateMerchantRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateTierRequest 创建会员等级请求
type CreateTierRequest struct {
	Name         string          `json:"name" binding:"required"`
	PointRate    decimal.Decimal `json:"point_rate"`
	Price        decimal.Decimal `json:"price"`
	DurationDays int             `json:"duration_days"`
}

// ListMembers 会员列表
func (h *Handler) ListMembers(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	members, total, err := h.MemberService.ListMembers(page, pageSize, strings.TrimSpace(c.Query("search")))
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, members, page, pageSize, total)
}

// CreateMember 创建会员
func (h *Handler) CreateMember(c *gin.Context) {
	var req CreateMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if existing, err := h.MemberRepo.GetByPhone(strings.TrimSpace(req.Phone)); err != nil {
		respondError(c, response.CodeInternal, "error.save_failed", err)
		return
	} else if existing != nil {
		respondError(c, response.CodeConflict, "error.member_phone_exists", nil)
		return
	}
	member, err := h.MemberService.CreateMember(req.Phone, req.Nickname)
	if err != nil {
		respondServiceError(c, err, "error.save_failed")
		return
	}
	logger.Infow("admin_member_created", "operator_admin_id", currentAdminID(c), "member_id", member.ID)
	response.Success(c, member)
}

// GetMember 会员详情：资料、等级、积分余额、志愿时长
func (h *Handler) GetMember(c *gin.Context) {
	memberID, ok := parseID(c)
	if !ok {
		return
	}
	member, err := h.MemberService.GetMember(memberID)
	if err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	tier, err := h.MemberService.GetMemberTier(memberID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	balance, err := h.PointsService.GetBalance(memberID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	minutes, err := h.VolunteerService.TotalMinutes(memberID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"member":            member,
		"tier":              tier,
		"points_balance":    balance,
		"volunteer_minutes": minutes,
	})
}

// IssueMemberToken 为会员签发访问令牌
func (h *Handler) IssueMemberToken(c *gin.Context) {
	memberID, ok := parseID(c)
	if !ok {
		return
	}
	member, err := h.MemberService.GetMember(memberID)
	if err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	token, expiresAt, err := h.AuthService.GenerateMemberJWT(member)
	if err != nil {
		respondError(c, response.CodeInternal, "error.token_issue_failed", err)
		return
	}
	response.Success(c, gin.H{"token": token, "expires_at": expiresAt.Format(time.RFC3339)})
}

// CreateMerchant 创建商家
func (h *Handler) CreateMerchant(c *gin.Context) {
	var req CreateMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	merchant, err := h.MemberService.CreateMerchant(req.Name)
	if err != nil {
		respondServiceError(c, err, "error.save_failed")
		return
	}
	logger.Infow("admin_merchant_created", "operator_admin_id", currentAdminID(c), "merchant_id", merchant.ID)
	response.Success(c, merchant)
}

// GetMerchant 商家详情
func (h *Handler) GetMerchant(c *gin.Context) {
	merchantID, ok := parseID(c)
	if !ok {
		return
	}
	merchant, err := h.MemberService.GetMerchant(merchantID)
	if err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, merchant)
}

// IssueMerchantToken 为商家签发访问令牌
func (h *Handler) IssueMerchantToken(c *gin.Context) {
	merchantID, ok := parseID(c)
	if !ok {
		return
	}
	merchant, err := h.MemberService.GetMerchant(merchantID)
	if err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	token, expiresAt, err := h.AuthService.GenerateMerchantJWT(merchant)
	if err != nil {
		respondError(c, response.CodeInternal, "error.token_issue_failed", err)
		return
	}
	response.Success(c, gin.H{"token": token, "expires_at": expiresAt.Format(time.RFC3339)})
}

// ListTiers 会员等级列表
func (h *Handler) ListTiers(c *gin.Context) {
	tiers, err := h.MemberService.ListTiers(false)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, tiers)
}

// CreateTier 创建会员等级
func (h *Handler) CreateTier(c *gin.Context) {
	var req CreateTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	tier, err := h.MemberService.CreateTier(service.CreateTierInput{
		Name:         req.Name,
		PointRate:    req.PointRate,
		Price:        req.Price,
		DurationDays: req.DurationDays,
	})
	if err != nil {
		respondServiceError(c, err, "error.save_failed")
		return
	}
	response.Success(c, tier)
}
