package service

import (
	"context"
	"strings"
)

type llmCtxKey string

const (
	llmCtxKeyTask     llmCtxKey = "llm_task"
	llmCtxKeyProvider llmCtxKey = "llm_provider"
)

// WithTask 在上下文中标记当前任务类别，供可观测性回调读取
func WithTask(ctx context.Context, task string) context.Context {
	if ctx == nil {
		return nil
	}
	t := strings.TrimSpace(task)
	if t == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyTask, t)
}

// WithProvider 在上下文中标记当前提供商
func WithProvider(ctx context.Context, provider string) context.Context {
	if ctx == nil {
		return nil
	}
	p := strings.TrimSpace(provider)
	if p == "" {
		return ctx
	}
	return context.WithValue(ctx, llmCtxKeyProvider, p)
}

// WithTaskProvider 同时标记任务类别与提供商
func WithTaskProvider(ctx context.Context, task, provider string) context.Context {
	return WithProvider(WithTask(ctx, task), provider)
}

// TaskFromContext 读取任务类别，缺失返回 "unknown"
func TaskFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	v := ctx.Value(llmCtxKeyTask)
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return strings.TrimSpace(s)
}

// ProviderFromContext 读取提供商，缺失返回 "unknown"
func ProviderFromContext(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	v := ctx.Value(llmCtxKeyProvider)
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "unknown"
	}
	return strings.TrimSpace(s)
}
