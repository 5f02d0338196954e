// Package llm 提供 LLM 提供商客户端的创建与注册
package llm

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"ink-studio-ai-api/internal/application/orchestrator"
	"ink-studio-ai-api/internal/config"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// EinoFactory 管理多个 Eino ChatModel 客户端实例，
// 并按配置中的模型名前缀把模型解析到提供商。
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

var _ orchestrator.ProviderRegistry = (*EinoFactory)(nil)

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Resolve 按模型名前缀解析提供商，未匹配时落到默认提供商
func (f *EinoFactory) Resolve(modelName string) (string, error) {
	name := strings.TrimSpace(modelName)
	for provider, providerCfg := range f.config.Providers {
		for _, prefix := range providerCfg.ModelPrefixes {
			if prefix != "" && strings.HasPrefix(name, prefix) {
				return provider, nil
			}
		}
	}
	if f.config.DefaultProvider != "" {
		if _, ok := f.config.Providers[f.config.DefaultProvider]; ok {
			return f.config.DefaultProvider, nil
		}
	}
	return "", fmt.Errorf("no provider registered for model %s", modelName)
}

// Fallback 返回回退链中第一个与 primary 不同的提供商及其默认模型
func (f *EinoFactory) Fallback(primary string) (provider, modelName string, ok bool) {
	for _, name := range f.config.FallbackChain {
		if name == primary {
			continue
		}
		providerCfg, exists := f.config.Providers[name]
		if !exists {
			continue
		}
		return name, providerCfg.Model, true
	}
	return "", "", false
}

// Get 获取指定名称的 ChatModel，如果未指定则返回默认客户端
func (f *EinoFactory) Get(ctx context.Context, name string) (model.BaseChatModel, error) {
	if name == "" {
		name = f.config.DefaultProvider
	}

	f.mu.RLock()
	m, ok := f.models[name]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[name]; ok {
		return m, nil
	}

	providerCfg, ok := f.config.Providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %s not found in LLM config", name)
	}

	// 使用 Eino 的 OpenAI 适配器，所有提供商走 OpenAI 兼容接口
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      providerCfg.APIKey,
		BaseURL:     providerCfg.BaseURL,
		Model:       providerCfg.Model,
		MaxTokens:   &providerCfg.MaxTokens,
		Temperature: ptrFloat32(float32(providerCfg.Temperature)),
		Timeout:     providerCfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", name, err)
	}

	f.models[name] = chatModel
	return chatModel, nil
}

func ptrFloat32(f float32) *float32 {
	return &f
}
