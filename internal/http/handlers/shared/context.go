package shared

import (
	"strconv"
	"strings"

	"github.com/member-ledger/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextUintWithKeys 从上下文读取 uint 值并统一处理错误响应。
func GetContextUintWithKeys(c *gin.Context, key, invalidKey, typeInvalidKey string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	case float64:
		if v < 0 {
			RespondError(c, response.CodeBadRequest, invalidKey, nil)
			return 0, false
		}
		return uint(v), true
	default:
		RespondError(c, response.CodeInternal, typeInvalidKey, nil)
		return 0, false
	}
}

// 上下文键
const (
	ContextMemberID   = "member_id"
	ContextMerchantID = "merchant_id"
	ContextAdminID    = "admin_id"
)

// GetMemberID 当前会员 ID
func GetMemberID(c *gin.Context) (uint, bool) {
	return GetContextUintWithKeys(c, ContextMemberID, "error.member_id_invalid", "error.member_id_type_invalid")
}

// GetMerchantID 当前商家 ID
func GetMerchantID(c *gin.Context) (uint, bool) {
	return GetContextUintWithKeys(c, ContextMerchantID, "error.merchant_id_invalid", "error.merchant_id_type_invalid")
}

// ParseUintParam 解析路径中的正整数 ID，非法时直接写入响应
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Param(name)), 10, 64)
	if err != nil || value == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(value), true
}

// QueryUint 读取可选的正整数查询参数
func QueryUint(c *gin.Context, name string) uint {
	value, err := strconv.ParseUint(strings.TrimSpace(c.Query(name)), 10, 64)
	if err != nil {
		return 0
	}
	return uint(value)
}
