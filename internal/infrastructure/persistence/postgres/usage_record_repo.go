// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"
	"time"

	"ink-studio-ai-api/internal/domain/entity"
	"ink-studio-ai-api/internal/domain/repository"
)

// UsageRecordRepository 计量流水仓储，只追加不更新
type UsageRecordRepository struct {
	client *Client
}

var _ repository.UsageRecordRepository = (*UsageRecordRepository)(nil)

func NewUsageRecordRepository(client *Client) *UsageRecordRepository {
	return &UsageRecordRepository{client: client}
}

func (r *UsageRecordRepository) Create(ctx context.Context, record *entity.UsageRecord) error {
	ctx, span := tracer.Start(ctx, "postgres.UsageRecordRepository.Create")
	defer span.End()

	if err := r.client.db.WithContext(ctx).Create(record).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create usage record: %w", err)
	}
	return nil
}

func (r *UsageRecordRepository) GetTokenUsage(ctx context.Context, userID string, startInclusive, endExclusive time.Time) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.UsageRecordRepository.GetTokenUsage")
	defer span.End()

	var total int64
	if err := r.client.db.WithContext(ctx).Model(&entity.UsageRecord{}).
		Where("user_id = ? AND created_at >= ? AND created_at < ?", userID, startInclusive, endExclusive).
		Select("COALESCE(SUM(COALESCE(tokens_prompt,0) + COALESCE(tokens_completion,0)),0)").
		Scan(&total).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to get token usage: %w", err)
	}
	return total, nil
}
