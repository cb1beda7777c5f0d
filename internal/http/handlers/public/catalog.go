package public

import (
	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"

	"github.com/gin-gonic/gin"
)

// ListGoods 积分商品列表
func (h *Handler) ListGoods(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	goods, total, err := h.CatalogService.ListGoods(page, pageSize, true)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, goods, page, pageSize, total)
}

// GetGoods 积分商品详情
func (h *Handler) GetGoods(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	goods, err := h.CatalogService.GetGoods(id)
	if err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, goods)
}

// ListActivities 活动列表
func (h *Handler) ListActivities(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	activities, total, err := h.CatalogService.ListActivities(page, pageSize, true)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, activities, page, pageSize, total)
}

// GetActivity 活动详情
func (h *Handler) GetActivity(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	activity, err := h.CatalogService.GetActivity(id)
	if err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, activity)
}

// ListTiers 可购买的会员等级
func (h *Handler) ListTiers(c *gin.Context) {
	tiers, err := h.MemberService.ListTiers(true)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, tiers)
}
