package admin

import (
	"strings"
	"time"

	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/repository"
	"github.com/member-ledger/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// CreateGoodsRequest 创建积分商品请求
type CreateGoodsRequest struct {
	Name          string          `json:"name" binding:"required"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
}

// CreateActivityRequest 创建活动请求
type CreateActivityRequest struct {
	Name         string          `json:"name" binding:"required"`
	Capacity     int             `json:"capacity"`
	Price        decimal.Decimal `json:"price"`
	SignInPoints decimal.Decimal `json:"sign_in_points"`
	StartAt      *time.Time      `json:"start_at"`
	EndAt        *time.Time      `json:"end_at"`
}

// ListGoods 积分商品列表（含下架）
func (h *Handler) ListGoods(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	goods, total, err := h.CatalogService.ListGoods(page, pageSize, false)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, goods, page, pageSize, total)
}

// CreateGoods 创建积分商品
func (h *Handler) CreateGoods(c *gin.Context) {
	var req CreateGoodsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	goods, err := h.CatalogService.CreateGoods(service.CreateGoodsInput{
		Name:          req.Name,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
	})
	if err != nil {
		respondServiceError(c, err, "error.save_failed")
		return
	}
	response.Success(c, goods)
}

// ListActivities 活动列表（含已关闭）
func (h *Handler) ListActivities(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	activities, total, err := h.CatalogService.ListActivities(page, pageSize, false)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, activities, page, pageSize, total)
}

// CreateActivity 创建活动
func (h *Handler) CreateActivity(c *gin.Context) {
	var req CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	activity, err := h.CatalogService.CreateActivity(service.CreateActivityInput{
		Name:         req.Name,
		Capacity:     req.Capacity,
		Price:        req.Price,
		SignInPoints: req.SignInPoints,
		StartAt:      req.StartAt,
		EndAt:        req.EndAt,
	})
	if err != nil {
		respondServiceError(c, err, "error.save_failed")
		return
	}
	response.Success(c, activity)
}

// ListEnrollments 活动报名名单
func (h *Handler) ListEnrollments(c *gin.Context) {
	activityID, ok := parseID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)
	enrollments, total, err := h.EnrollmentService.ListEnrollments(repository.EnrollmentListFilter{
		Page:         page,
		PageSize:     pageSize,
		ActivityID:   activityID,
		MemberID:     handlershared.QueryUint(c, "member_id"),
		SignInStatus: strings.TrimSpace(c.Query("sign_in_status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, enrollments, page, pageSize, total)
}

// AuditActivitySeats 核对活动名额计数
func (h *Handler) AuditActivitySeats(c *gin.Context) {
	activityID, ok := parseID(c)
	if !ok {
		return
	}
	audit, err := h.CatalogService.AuditActivitySeats(activityID)
	if err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	if !audit.Consistent {
		requestLog(c).Warnw("activity_seat_count_inconsistent",
			"activity_id", activityID,
			"capacity", audit.Capacity,
			"enrolled_count", audit.EnrolledCount,
			"enrollments", audit.Enrollments,
		)
	}
	response.Success(c, audit)
}
