package quota

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"ink-studio-ai-api/internal/domain/entity"
	"ink-studio-ai-api/internal/domain/repository"
	"ink-studio-ai-api/internal/domain/service"
	"ink-studio-ai-api/pkg/logger"
)

// UsageRecorder 计量流水记录器：计算成本并追加一条 UsageRecord。
// 持久化失败只记日志不向上传播，计量不得阻断生成主流程。
type UsageRecorder struct {
	usageRepo repository.UsageRecordRepository
}

var _ service.UsageRecorder = (*UsageRecorder)(nil)

func NewUsageRecorder(usageRepo repository.UsageRecordRepository) *UsageRecorder {
	return &UsageRecorder{usageRepo: usageRepo}
}

// Record 落一条计量流水。缓存命中按零 Token 零成本记录。
func (r *UsageRecorder) Record(ctx context.Context, in service.UsageInput) error {
	if r == nil || r.usageRepo == nil {
		return nil
	}
	if strings.TrimSpace(in.Model) == "" {
		return nil
	}

	var cost int64
	if !in.CacheHit {
		cost = service.CostCents(in.Model, in.PromptTokens, in.CompletionTokens)
	}

	rec := &entity.UsageRecord{
		ID:               uuid.NewString(),
		UserID:           strings.TrimSpace(in.UserID),
		Provider:         in.Provider,
		Model:            in.Model,
		TaskType:         in.TaskType,
		TokensPrompt:     in.PromptTokens,
		TokensCompletion: in.CompletionTokens,
		CostCents:        cost,
		CacheHit:         in.CacheHit,
	}
	if err := r.usageRepo.Create(ctx, rec); err != nil {
		logger.FromContext(ctx).Error("计量流水写入失败",
			"user_id", rec.UserID,
			"provider", rec.Provider,
			"model", rec.Model,
			"cost_cents", cost,
			"error", err.Error(),
		)
		return nil
	}

	logger.FromContext(ctx).Debug("计量流水已记录",
		"user_id", rec.UserID,
		"model", rec.Model,
		"tokens_prompt", rec.TokensPrompt,
		"tokens_completion", rec.TokensCompletion,
		"cost_cents", cost,
		"cache_hit", rec.CacheHit,
		"duration_ms", in.DurationMs,
	)
	return nil
}
