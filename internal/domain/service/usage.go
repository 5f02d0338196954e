package service

import "context"

// UsageInput 表示一次 LLM 调用的可计费与可观测数据。
// 说明：该结构位于 domain/service，作为跨层的稳定契约（port），避免基础设施层依赖应用层实现。
type UsageInput struct {
	UserID string

	TaskType string
	Provider string
	Model    string

	PromptTokens     int
	CompletionTokens int
	CacheHit         bool
	DurationMs       int
}

// UsageRecorder 负责记录 LLM 使用量（成本计算 + 流水落库）。
// 约定：实现应尽量“best-effort”，不应阻塞主业务流程。
type UsageRecorder interface {
	Record(ctx context.Context, in UsageInput) error
}
