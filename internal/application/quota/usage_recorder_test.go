package quota

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ink-studio-ai-api/internal/domain/service"
)

func TestRecordWritesUsageRecord(t *testing.T) {
	repo := &fakeUsageRepo{}
	rec := NewUsageRecorder(repo)

	err := rec.Record(context.Background(), service.UsageInput{
		UserID:           "u1",
		TaskType:         "outline",
		Provider:         "gemini",
		Model:            "gemini-2.0-flash",
		PromptTokens:     1_000_000,
		CompletionTokens: 1_000_000,
		DurationMs:       120,
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)

	got := repo.created[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, "outline", got.TaskType)
	assert.Equal(t, "gemini", got.Provider)
	assert.Equal(t, "gemini-2.0-flash", got.Model)
	assert.Equal(t, 1_000_000, got.TokensPrompt)
	assert.Equal(t, 1_000_000, got.TokensCompletion)
	// gemini-2.0-flash: 10 + 40 美分每百万 Token
	assert.Equal(t, int64(50), got.CostCents)
	assert.False(t, got.CacheHit)
}

func TestRecordCacheHitHasZeroCost(t *testing.T) {
	repo := &fakeUsageRepo{}
	rec := NewUsageRecorder(repo)

	err := rec.Record(context.Background(), service.UsageInput{
		UserID:   "u1",
		Model:    "gpt-4o",
		CacheHit: true,
	})
	require.NoError(t, err)
	require.Len(t, repo.created, 1)
	assert.Equal(t, int64(0), repo.created[0].CostCents)
	assert.True(t, repo.created[0].CacheHit)
}

func TestRecordSkipsEmptyModel(t *testing.T) {
	repo := &fakeUsageRepo{}
	rec := NewUsageRecorder(repo)

	err := rec.Record(context.Background(), service.UsageInput{UserID: "u1", Model: "  "})
	require.NoError(t, err)
	assert.Empty(t, repo.created)
}

func TestRecordSwallowsCreateError(t *testing.T) {
	repo := &fakeUsageRepo{createErr: assert.AnError}
	rec := NewUsageRecorder(repo)

	// 落库失败不向上传播，不得阻断生成主流程
	err := rec.Record(context.Background(), service.UsageInput{Model: "gpt-4o", PromptTokens: 10})
	assert.NoError(t, err)
}
