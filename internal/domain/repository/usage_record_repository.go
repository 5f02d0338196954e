// Package repository 定义数据访问层接口
package repository

import (
	"context"
	"time"

	"ink-studio-ai-api/internal/domain/entity"
)

// UsageRecordRepository 计量流水仓储，只追加 + 区间聚合
type UsageRecordRepository interface {
	Create(ctx context.Context, record *entity.UsageRecord) error
	// GetTokenUsage 统计用户在 [startInclusive, endExclusive) 内的 Token 总量
	GetTokenUsage(ctx context.Context, userID string, startInclusive, endExclusive time.Time) (int64, error)
}
