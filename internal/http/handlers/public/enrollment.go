package public

import (
	"github.com/member-ledger/internal/http/response"

	"github.com/gin-gonic/gin"
)

// EnrollRequest 报名请求
type EnrollRequest struct {
	FormData string `json:"form_data"`
}

// Enroll 报名免费活动
func (h *Handler) Enroll(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	activityID, ok := parseID(c)
	if !ok {
		return
	}
	var req EnrollRequest
	_ = c.ShouldBindJSON(&req)
	enrollment, err := h.EnrollmentService.Enroll(c.Request.Context(), activityID, memberID, req.FormData)
	if err != nil {
		respondServiceError(c, err, "error.enroll_failed")
		return
	}
	response.Success(c, enrollment)
}

// CancelEnrollment 取消报名
func (h *Handler) CancelEnrollment(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	activityID, ok := parseID(c)
	if !ok {
		return
	}
	removed, err := h.EnrollmentService.CancelEnrollment(c.Request.Context(), activityID, memberID)
	if err != nil {
		respondServiceError(c, err, "error.enroll_failed")
		return
	}
	response.Success(c, gin.H{"removed": removed})
}

// SignIn 活动签到
func (h *Handler) SignIn(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	activityID, ok := parseID(c)
	if !ok {
		return
	}
	result, err := h.EnrollmentService.SignIn(c.Request.Context(), activityID, memberID)
	if err != nil {
		respondServiceError(c, err, "error.sign_in_failed")
		return
	}
	response.Success(c, result)
}

// GetSignInfo 查询报名与签到状态
func (h *Handler) GetSignInfo(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	activityID, ok := parseID(c)
	if !ok {
		return
	}
	info, err := h.EnrollmentService.SignInfo(activityID, memberID)
	if err != nil {
		respondServiceError(c, err, "error.fetch_failed")
		return
	}
	response.Success(c, info)
}
