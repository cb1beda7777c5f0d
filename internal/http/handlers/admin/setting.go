package admin

import (
	"github.com/member-ledger/internal/constants"
	"github.com/member-ledger/internal/http/response"
	"github.com/member-ledger/internal/logger"

	"github.com/gin-gonic/gin"
)

// UpdateSettingRequest 更新设置请求
type UpdateSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

var adminSettingKeys = []string{
	constants.SettingKeyPointsPerCurrencyUnit,
	constants.SettingKeyOrderPaymentExpireMinutes,
	constants.SettingKeyVolunteerMaxOpenHours,
}

// ListSettings 可调整的运行参数
func (h *Handler) ListSettings(c *gin.Context) {
	items := make([]gin.H, 0, len(adminSettingKeys))
	for _, key := range adminSettingKeys {
		value, ok, err := h.SettingService.Get(c.Request.Context(), key)
		if err != nil {
			respondError(c, response.CodeInternal, "error.fetch_failed", err)
			return
		}
		items = append(items, gin.H{"key": key, "value": value, "configured": ok})
	}
	response.Success(c, items)
}

// GetSetting 读取单个设置
func (h *Handler) GetSetting(c *gin.Context) {
	key := decodePathParam(c.Param("key"))
	value, ok, err := h.SettingService.Get(c.Request.Context(), key)
	if err != nil {
		respondError(c, response.CodeInternal, "error.fetch_failed", err)
		return
	}
	if !ok {
		respondError(c, response.CodeNotFound, "error.setting_not_found", nil)
		return
	}
	response.Success(c, gin.H{"key": key, "value": value})
}

// UpdateSetting 写入设置
func (h *Handler) UpdateSetting(c *gin.Context) {
	key := decodePathParam(c.Param("key"))
	var req UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", err)
		return
	}
	if err := h.SettingService.Set(c.Request.Context(), key, req.Value); err != nil {
		respondServiceError(c, err, "error.save_failed")
		return
	}
	logger.Infow("admin_setting_updated",
		"operator_admin_id", currentAdminID(c),
		"key", key,
		"value", req.Value,
	)
	response.Success(c, gin.H{"key": key, "value": req.Value})
}
