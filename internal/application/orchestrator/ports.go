package orchestrator

import (
	"context"

	"github.com/cloudwego/eino/components/model"
)

// ProviderRegistry 提供商注册表。
// 通过模型名解析提供商、取回退提供商、获取 ChatModel 客户端，
// 新增提供商只需在配置中加一条注册项。
type ProviderRegistry interface {
	// Resolve 按模型名前缀解析提供商名
	Resolve(modelName string) (string, error)
	// Fallback 返回与 primary 不同的回退提供商及其默认模型，没有可用回退时 ok 为 false
	Fallback(primary string) (provider, modelName string, ok bool)
	// Get 获取指定提供商的 ChatModel 客户端
	Get(ctx context.Context, provider string) (model.BaseChatModel, error)
}

// DailyQuota 每日 Token 预算检查
type DailyQuota interface {
	// CheckDailyTokens 返回用户自本地零点以来的用量与上限，超限时返回 *quota.TokenQuotaExceededError
	CheckDailyTokens(ctx context.Context, userID string) (used, max int64, err error)
}
