package public

import (
	"strings"
	"time"

	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/repository"
	"github.com/member-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// VolunteerCheckInRequest 志愿签到请求
type VolunteerCheckInRequest struct {
	TimeOffset int `json:"time_offset"`
}

// VolunteerCheckOutRequest 志愿签退请求
type VolunteerCheckOutRequest struct {
	Remark string `json:"remark"`
}

// VolunteerCheckIn 志愿服务签到
func (h *Handler) VolunteerCheckIn(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	var req VolunteerCheckInRequest
	_ = c.ShouldBindJSON(&req)
	if req.TimeOffset < -12 || req.TimeOffset > 14 {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	record, err := h.VolunteerService.CheckIn(memberID, time.Now(), req.TimeOffset)
	if err != nil {
		respondServiceError(c, err, "error.volunteer_failed")
		return
	}
	response.Success(c, record)
}

// VolunteerCheckOut 志愿服务签退，时长待管理员审核后计入
func (h *Handler) VolunteerCheckOut(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	var req VolunteerCheckOutRequest
	_ = c.ShouldBindJSON(&req)
	open, err := h.VolunteerService.LastOpenRecord(memberID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.volunteer_failed", err)
		return
	}
	if open == nil {
		respondServiceError(c, service.ErrNoOpenSession, "error.volunteer_failed")
		return
	}
	record, err := h.VolunteerService.CheckOut(service.CheckOutInput{
		RecordID: open.ID,
		EndTime:  time.Now(),
		Remark:   strings.TrimSpace(req.Remark),
	})
	if err != nil {
		respondServiceError(c, err, "error.volunteer_failed")
		return
	}
	response.Success(c, record)
}

// ListVolunteerRecords 我的志愿记录
func (h *Handler) ListVolunteerRecords(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	page, pageSize := handlershared.PageQuery(c)
	records, total, err := h.VolunteerService.ListRecords(repository.VolunteerRecordListFilter{
		Page:        page,
		PageSize:    pageSize,
		MemberID:    memberID,
		AuditStatus: strings.TrimSpace(c.Query("audit_status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, records, page, pageSize, total)
}

// VolunteerSummary 累计时长与当前未签退记录
func (h *Handler) VolunteerSummary(c *gin.Context) {
	memberID, ok := getMemberID(c)
	if !ok {
		return
	}
	minutes, err := h.VolunteerService.TotalMinutes(memberID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	open, err := h.VolunteerService.LastOpenRecord(memberID)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	response.Success(c, gin.H{
		"total_minutes": minutes,
		"open_record":   open,
	})
}
