// Package quota 提供每日 Token 预算检查与使用计量
package quota

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ink-studio-ai-api/internal/config"
	"ink-studio-ai-api/internal/domain/repository"
)

// TokenQuotaExceededError 每日 Token 预算超限
type TokenQuotaExceededError struct {
	UserID string
	Max    int64
	Used   int64
}

func (e *TokenQuotaExceededError) Error() string {
	return fmt.Sprintf("daily token budget exceeded: user=%s used=%d max=%d", e.UserID, e.Used, e.Max)
}

// TokenQuotaChecker 按用户统计自本地零点以来的 Token 用量并与上限比较
type TokenQuotaChecker struct {
	usageRepo repository.UsageRecordRepository
	maxPerDay int64
	now       func() time.Time
}

// NewTokenQuotaChecker 创建预算检查器，上限来自配置，<=0 表示不限制
func NewTokenQuotaChecker(usageRepo repository.UsageRecordRepository, cfg *config.Config) *TokenQuotaChecker {
	var max int64
	if cfg != nil {
		max = cfg.Orchestrator.DailyTokenBudget
	}
	return &TokenQuotaChecker{
		usageRepo: usageRepo,
		maxPerDay: max,
		now:       time.Now,
	}
}

// WithNow 覆盖时钟来源，测试用
func (c *TokenQuotaChecker) WithNow(now func() time.Time) *TokenQuotaChecker {
	if now != nil {
		c.now = now
	}
	return c
}

// CheckDailyTokens 检查 userID 自本地零点以来的 Token 用量。
// 超限时返回 *TokenQuotaExceededError。
// 说明：读检查与后续的用量写入之间没有原子性，突发并发可能轻微超限，
// 零点后自动恢复，按可接受的松约束处理。
func (c *TokenQuotaChecker) CheckDailyTokens(ctx context.Context, userID string) (used, max int64, err error) {
	if c == nil || c.usageRepo == nil {
		return 0, 0, nil
	}
	if c.maxPerDay <= 0 {
		return 0, 0, nil
	}
	if strings.TrimSpace(userID) == "" {
		return 0, c.maxPerDay, nil
	}

	now := c.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	used, err = c.usageRepo.GetTokenUsage(ctx, userID, midnight, now)
	if err != nil {
		return 0, c.maxPerDay, fmt.Errorf("query daily token usage: %w", err)
	}
	if used > c.maxPerDay {
		return used, c.maxPerDay, &TokenQuotaExceededError{UserID: userID, Max: c.maxPerDay, Used: used}
	}
	return used, c.maxPerDay, nil
}
