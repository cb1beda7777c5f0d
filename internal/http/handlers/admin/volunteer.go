package admin

import (
	"strings"
	"time"

	handlershared "github.com/member-ledger/internal/http/handlers/shared"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/repository"
	"github.com/member-ledger/internal/service"

	"github.com/gin-gonic/gin"
)

// VolunteerCheckOutRequest 管理员代签退请求
type VolunteerCheckOutRequest struct {
	EndTime  *time.Time `json:"end_time"`
	Approved bool       `json:"approved"`
	Remark   string     `json:"remark"`
}

// VolunteerAuditRequest 志愿记录审核请求
type VolunteerAuditRequest struct {
	Approve bool   `json:"approve"`
	Remark  string `json:"remark"`
}

// ListVolunteerRecords 志愿记录列表
func (h *Handler) ListVolunteerRecords(c *gin.Context) {
	page, pageSize := handlershared.PageQuery(c)
	records, total, err := h.VolunteerService.ListRecords(repository.VolunteerRecordListFilter{
		Page:        page,
		PageSize:    pageSize,
		MemberID:    handlershared.QueryUint(c, "member_id"),
		Kind:        strings.TrimSpace(c.Query("kind")),
		AuditStatus: strings.TrimSpace(c.Query("audit_status")),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	handlershared.RespondPage(c, records, page, pageSize, total)
}

// CheckOutVolunteer 管理员代签退，可直接审核通过
func (h *Handler) CheckOutVolunteer(c *gin.Context) {
	recordID, ok := parseID(c)
	if !ok {
		return
	}
	var req VolunteerCheckOutRequest
	_ = c.ShouldBindJSON(&req)
	endTime := time.Now()
	if req.EndTime != nil {
		endTime = *req.EndTime
	}
	record, err := h.VolunteerService.CheckOut(service.CheckOutInput{
		RecordID:   recordID,
		EndTime:    endTime,
		Approved:   req.Approved,
		OperatorID: currentAdminID(c),
		Remark:     req.Remark,
	})
	if err != nil {
		respondServiceError(c, err, "error.volunteer_failed")
		return
	}
	response.Success(c, record)
}

// AuditVolunteerRecord 审核已签退的志愿记录
func (h *Handler) AuditVolunteerRecord(c *gin.Context) {
	recordID, ok := parseID(c)
	if !ok {
		return
	}
	var req VolunteerAuditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	record, err := h.VolunteerService.AuditRecord(recordID, req.Approve, req.Remark)
	if err != nil {
		respondServiceError(c, err, "error.volunteer_failed")
		return
	}
	response.Success(c, record)
}
