package handler

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"ink-studio-ai-api/internal/application/quota"
	"ink-studio-ai-api/internal/interfaces/http/dto"
)

// UsageHandler 用量查询处理器
type UsageHandler struct {
	quotaChecker *quota.TokenQuotaChecker
}

// NewUsageHandler 创建用量查询处理器
func NewUsageHandler(quotaChecker *quota.TokenQuotaChecker) *UsageHandler {
	return &UsageHandler{quotaChecker: quotaChecker}
}

// DailyUsage 查询用户自本地零点以来的 Token 用量
// @Summary 查询每日用量
// @Tags Usage
// @Produce json
// @Param user_id query string true "用户 ID"
// @Success 200 {object} dto.Response[dto.DailyUsageResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/usage/daily [get]
func (h *UsageHandler) DailyUsage(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		dto.BadRequest(c, "user_id is required")
		return
	}

	used, max, err := h.quotaChecker.CheckDailyTokens(c.Request.Context(), userID)
	if err != nil {
		// 超限对查询接口不算错误，照常返回用量
		var exceeded *quota.TokenQuotaExceededError
		if !errors.As(err, &exceeded) {
			dto.InternalError(c, "failed to query daily usage")
			return
		}
		used, max = exceeded.Used, exceeded.Max
	}

	dto.Success(c, dto.DailyUsageResponse{
		UserID:     userID,
		UsedTokens: used,
		MaxTokens:  max,
	})
}
