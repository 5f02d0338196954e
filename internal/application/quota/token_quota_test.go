package quota

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ink-studio-ai-api/internal/config"
	"ink-studio-ai-api/internal/domain/entity"
)

// fakeUsageRepo 固定聚合值的仓储桩，记录查询窗口
type fakeUsageRepo struct {
	total     int64
	err       error
	createErr error
	lastStart time.Time
	lastEnd   time.Time
	created   []*entity.UsageRecord
}

func (r *fakeUsageRepo) Create(ctx context.Context, record *entity.UsageRecord) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, record)
	return nil
}

func (r *fakeUsageRepo) GetTokenUsage(ctx context.Context, userID string, startInclusive, endExclusive time.Time) (int64, error) {
	r.lastStart = startInclusive
	r.lastEnd = endExclusive
	return r.total, r.err
}

func budgetConfig(max int64) *config.Config {
	cfg := &config.Config{}
	cfg.Orchestrator.DailyTokenBudget = max
	return cfg
}

func TestCheckDailyTokensWindowIsLocalMidnight(t *testing.T) {
	repo := &fakeUsageRepo{total: 1000}
	loc := time.FixedZone("UTC+8", 8*3600)
	now := time.Date(2026, 8, 29, 15, 4, 5, 0, loc)

	checker := NewTokenQuotaChecker(repo, budgetConfig(150_000)).WithNow(func() time.Time { return now })

	used, max, err := checker.CheckDailyTokens(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(1000), used)
	assert.Equal(t, int64(150_000), max)

	// 统计窗口从本地零点到当前时刻
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, loc), repo.lastStart)
	assert.Equal(t, now, repo.lastEnd)
}

func TestCheckDailyTokensAtLimitAllowed(t *testing.T) {
	repo := &fakeUsageRepo{total: 150_000}
	checker := NewTokenQuotaChecker(repo, budgetConfig(150_000))

	used, max, err := checker.CheckDailyTokens(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(150_000), used)
	assert.Equal(t, int64(150_000), max)
}

func TestCheckDailyTokensExceeded(t *testing.T) {
	repo := &fakeUsageRepo{total: 150_001}
	checker := NewTokenQuotaChecker(repo, budgetConfig(150_000))

	used, max, err := checker.CheckDailyTokens(context.Background(), "u1")
	require.Error(t, err)
	assert.Equal(t, int64(150_001), used)
	assert.Equal(t, int64(150_000), max)

	var exceeded *TokenQuotaExceededError
	require.True(t, errors.As(err, &exceeded))
	assert.Equal(t, "u1", exceeded.UserID)
	assert.Equal(t, int64(150_001), exceeded.Used)
	assert.Equal(t, int64(150_000), exceeded.Max)
	assert.Contains(t, exceeded.Error(), "daily token budget exceeded")
}

func TestCheckDailyTokensUnlimitedWhenBudgetZero(t *testing.T) {
	repo := &fakeUsageRepo{total: 999_999_999}
	checker := NewTokenQuotaChecker(repo, budgetConfig(0))

	used, max, err := checker.CheckDailyTokens(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), used)
	assert.Equal(t, int64(0), max)
}

func TestCheckDailyTokensAnonymousAllowed(t *testing.T) {
	repo := &fakeUsageRepo{total: 999_999_999}
	checker := NewTokenQuotaChecker(repo, budgetConfig(150_000))

	used, max, err := checker.CheckDailyTokens(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, int64(0), used)
	assert.Equal(t, int64(150_000), max)
}

func TestCheckDailyTokensRepoErrorWrapped(t *testing.T) {
	repo := &fakeUsageRepo{err: fmt.Errorf("connection refused")}
	checker := NewTokenQuotaChecker(repo, budgetConfig(150_000))

	_, _, err := checker.CheckDailyTokens(context.Background(), "u1")
	require.Error(t, err)

	// 读失败是普通错误，不是超限错误
	var exceeded *TokenQuotaExceededError
	assert.False(t, errors.As(err, &exceeded))
	assert.Contains(t, err.Error(), "query daily token usage")
}
