package public

import (
	"strings"

	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/repository"

	"github.com/gin-gonic/gin"
)

// GetMe 当前会员概要：资料、等级、积分余额、志愿时长
func (h *Handler) GetMe(c *gin.Context) {
	memberID, ok := getMemberID(c)
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

// GetPoints 积分余额
func (h *Handler) GetPoints(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	balance, err := h.PointsService.GetBalance(memberID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, gin.H{"member_id": memberID, "balance": balance})
}

// ListPointEntries 积分流水
func (h *Handler) ListPointEntries(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)
	entries, total, err := h.PointsService.ListEntries(repository.PointEntryListFilter{
		Page:     page,
		PageSize: pageSize,
		MemberID: memberID,
		Reason:   strings.TrimSpace(c.Query("reason")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, entries, page, pageSize, total)
}

// ListMyCoupons 我的优惠券
func (h *Handler) ListMyCoupons(c *gin.Context) {
	memberID, ok := getMemberID(c)
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

// ListUsableCoupons 指定商家可用的优惠券
func (h *Handler) ListUsableCoupons(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	merchantID := handlershared.QueryUint(c, "merchant_id")
	if merchantID == 0 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	coupons, err := h.CouponService.ListUsableForMerchant(memberID, merchantID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, coupons)
}

// ListMyVerifications 我的核销记录
func (h *Handler) ListMyVerifications(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)
	logs, total, err := h.CouponRedeemService.ListVerificationLogs(repository.VerificationLogListFilter{
		Page:     page,
		PageSize: pageSize,
		MemberID: memberID,
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, logs, page, pageSize, total)
}
