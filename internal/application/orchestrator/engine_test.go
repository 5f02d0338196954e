package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ink-studio-ai-api/internal/application/quota"
	"ink-studio-ai-api/internal/config"
	"ink-studio-ai-api/internal/domain/entity"
	"ink-studio-ai-api/internal/domain/service"
	"ink-studio-ai-api/internal/infrastructure/persistence/memory"
	apperrors "ink-studio-ai-api/pkg/errors"
)

// fakeChatModel 可编程的 ChatModel 桩
type fakeChatModel struct {
	generateFn func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error)
	streamFn   func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error)
	calls      atomic.Int64
}

func (m *fakeChatModel) Generate(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	m.calls.Add(1)
	if m.generateFn == nil {
		return nil, fmt.Errorf("generate not configured")
	}
	return m.generateFn(ctx, in, opts...)
}

func (m *fakeChatModel) Stream(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	m.calls.Add(1)
	if m.streamFn == nil {
		return nil, fmt.Errorf("stream not configured")
	}
	return m.streamFn(ctx, in, opts...)
}

// fakeRegistry 固定解析结果的注册表桩
type fakeRegistry struct {
	primary       string
	fallbackName  string
	fallbackModel string
	models        map[string]model.BaseChatModel
}

func (r *fakeRegistry) Resolve(modelName string) (string, error) {
	if r.primary == "" {
		return "", fmt.Errorf("no provider for model %s", modelName)
	}
	return r.primary, nil
}

func (r *fakeRegistry) Fallback(primary string) (string, string, bool) {
	if r.fallbackName == "" || r.fallbackName == primary {
		return "", "", false
	}
	return r.fallbackName, r.fallbackModel, true
}

func (r *fakeRegistry) Get(ctx context.Context, provider string) (model.BaseChatModel, error) {
	m, ok := r.models[provider]
	if !ok {
		return nil, fmt.Errorf("provider %s not registered", provider)
	}
	return m, nil
}

// fakeQuota 固定返回值的预算检查桩
type fakeQuota struct {
	used, max int64
	err       error
	calls     atomic.Int64
}

func (q *fakeQuota) CheckDailyTokens(ctx context.Context, userID string) (int64, int64, error) {
	q.calls.Add(1)
	return q.used, q.max, q.err
}

// capturingRecorder 记录所有计量输入
type capturingRecorder struct {
	mu     sync.Mutex
	inputs []service.UsageInput
}

func (r *capturingRecorder) Record(ctx context.Context, in service.UsageInput) error {
	r.mu.Lock()
	r.inputs = append(r.inputs, in)
	r.mu.Unlock()
	return nil
}

func (r *capturingRecorder) all() []service.UsageInput {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]service.UsageInput, len(r.inputs))
	copy(out, r.inputs)
	return out
}

func assistantMessage(content string, promptTokens, completionTokens int) *schema.Message {
	msg := schema.AssistantMessage(content, nil)
	if promptTokens > 0 || completionTokens > 0 {
		msg.ResponseMeta = &schema.ResponseMeta{
			Usage: &schema.TokenUsage{
				PromptTokens:     promptTokens,
				CompletionTokens: completionTokens,
				TotalTokens:      promptTokens + completionTokens,
			},
		}
	}
	return msg
}

func newTestEngine(reg ProviderRegistry, dailyQuota DailyQuota, recorder *capturingRecorder) (*Engine, *memory.ResponseCache) {
	cache := memory.NewResponseCache(config.ResponseCacheConfig{TTL: time.Hour})
	var rec service.UsageRecorder
	if recorder != nil {
		rec = recorder
	}
	// 关闭概率清理，避免测试抖动
	e := NewEngine(reg, cache, dailyQuota, rec, nil).WithRand(func() float64 { return 1 })
	return e, cache
}

func TestGenerateRejectsEmptyPrompt(t *testing.T) {
	e, _ := newTestEngine(&fakeRegistry{}, nil, nil)

	_, err := e.Generate(context.Background(), &entity.GenerationRequest{Prompt: "   "})
	assert.Error(t, err)

	_, err = e.Generate(context.Background(), nil)
	assert.Error(t, err)
}

func TestGenerateCacheIdempotence(t *testing.T) {
	cm := &fakeChatModel{
		generateFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
			return assistantMessage("three act outline", 100, 50), nil
		},
	}
	reg := &fakeRegistry{primary: "gemini", models: map[string]model.BaseChatModel{"gemini": cm}}
	rec := &capturingRecorder{}
	e, _ := newTestEngine(reg, nil, rec)

	req := &entity.GenerationRequest{Prompt: "Outline a mystery novel", TaskType: entity.TaskOutline, UserID: "u1"}

	first, err := e.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, first.Cached)
	assert.Equal(t, 100, first.PromptTokens)
	assert.Equal(t, 50, first.CompletionTokens)
	assert.Greater(t, first.CostCents, int64(0))

	second, err := e.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.Content, second.Content)
	// 命中返回原始 Token 数但成本为零
	assert.Equal(t, 100, second.PromptTokens)
	assert.Equal(t, 50, second.CompletionTokens)
	assert.Equal(t, int64(0), second.CostCents)

	// 第二次不再触达提供商
	assert.Equal(t, int64(1), cm.calls.Load())

	// 两次都有计量流水，第二条是零 Token 的命中流水
	inputs := rec.all()
	require.Len(t, inputs, 2)
	assert.False(t, inputs[0].CacheHit)
	assert.True(t, inputs[1].CacheHit)
	assert.Equal(t, 0, inputs[1].PromptTokens)
	assert.Equal(t, 0, inputs[1].CompletionTokens)
}

func TestGenerateSkipCacheBypassesReadAndWrite(t *testing.T) {
	cm := &fakeChatModel{
		generateFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
			return assistantMessage("draft text", 10, 20), nil
		},
	}
	reg := &fakeRegistry{primary: "openai", models: map[string]model.BaseChatModel{"openai": cm}}
	e, cache := newTestEngine(reg, nil, nil)

	req := &entity.GenerationRequest{Prompt: "Write a scene", TaskType: entity.TaskDraft, SkipCache: true}

	for i := 0; i < 2; i++ {
		res, err := e.Generate(context.Background(), req)
		require.NoError(t, err)
		assert.False(t, res.Cached)
	}
	assert.Equal(t, int64(2), cm.calls.Load())
	assert.Equal(t, 0, cache.Len())
}

func TestGenerateBudgetExceeded(t *testing.T) {
	cm := &fakeChatModel{
		generateFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
			return assistantMessage("should not run", 1, 1), nil
		},
	}
	reg := &fakeRegistry{primary: "openai", models: map[string]model.BaseChatModel{"openai": cm}}
	dq := &fakeQuota{
		used: 150_001,
		max:  150_000,
		err:  &quota.TokenQuotaExceededError{UserID: "u1", Max: 150_000, Used: 150_001},
	}
	e, _ := newTestEngine(reg, dq, nil)

	_, err := e.Generate(context.Background(), &entity.GenerationRequest{Prompt: "hello", TaskType: entity.TaskChat, UserID: "u1"})
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeBudgetExceeded, appErr.Code)

	// 超限请求不得触达提供商
	assert.Equal(t, int64(0), cm.calls.Load())
}

func TestGenerateBudgetReadFailureAllows(t *testing.T) {
	cm := &fakeChatModel{
		generateFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
			return assistantMessage("ok", 5, 5), nil
		},
	}
	reg := &fakeRegistry{primary: "openai", models: map[string]model.BaseChatModel{"openai": cm}}
	dq := &fakeQuota{err: fmt.Errorf("database unreachable")}
	e, _ := newTestEngine(reg, dq, nil)

	// 预算读取故障放行，不阻断生成
	res, err := e.Generate(context.Background(), &entity.GenerationRequest{Prompt: "hello", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "ok", res.Content)
}

func TestGenerateAnonymousSkipsBudgetCheck(t *testing.T) {
	cm := &fakeChatModel{
		generateFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
			return assistantMessage("ok", 5, 5), nil
		},
	}
	reg := &fakeRegistry{primary: "openai", models: map[string]model.BaseChatModel{"openai": cm}}
	dq := &fakeQuota{err: &quota.TokenQuotaExceededError{UserID: "", Max: 1, Used: 2}}
	e, _ := newTestEngine(reg, dq, nil)

	_, err := e.Generate(context.Background(), &entity.GenerationRequest{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), dq.calls.Load())
}

func TestGenerateFallbackSingleHop(t *testing.T) {
	primary := &fakeChatModel{
		generateFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
			return nil, fmt.Errorf("upstream 503")
		},
	}
	fallback := &fakeChatModel{
		generateFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
			return assistantMessage("rescued", 30, 40), nil
		},
	}
	reg := &fakeRegistry{
		primary:       "gemini",
		fallbackName:  "openai",
		fallbackModel: "gpt-4o-mini",
		models:        map[string]model.BaseChatModel{"gemini": primary, "openai": fallback},
	}
	e, cache := newTestEngine(reg, nil, nil)

	res, err := e.Generate(context.Background(), &entity.GenerationRequest{Prompt: "Expand this paragraph", TaskType: entity.TaskExpand})
	require.NoError(t, err)
	assert.Equal(t, "openai", res.Provider)
	assert.Equal(t, "gpt-4o-mini", res.Model)
	assert.Equal(t, "rescued", res.Content)

	// 主备各调用一次，回退结果不写缓存
	assert.Equal(t, int64(1), primary.calls.Load())
	assert.Equal(t, int64(1), fallback.calls.Load())
	assert.Equal(t, 0, cache.Len())
}

func TestGenerateFallbackBothFail(t *testing.T) {
	failing := &fakeChatModel{
		generateFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
			return nil, fmt.Errorf("boom")
		},
	}
	reg := &fakeRegistry{
		primary:       "gemini",
		fallbackName:  "openai",
		fallbackModel: "gpt-4o-mini",
		models:        map[string]model.BaseChatModel{"gemini": failing, "openai": failing},
	}
	e, _ := newTestEngine(reg, nil, nil)

	_, err := e.Generate(context.Background(), &entity.GenerationRequest{Prompt: "hello"})
	require.Error(t, err)

	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeProviderFailure, appErr.Code)

	// 单跳回退：总共恰好两次调用，不会继续尝试
	assert.Equal(t, int64(2), failing.calls.Load())
}

func TestGenerateNoFallbackAvailable(t *testing.T) {
	failing := &fakeChatModel{
		generateFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
			return nil, fmt.Errorf("boom")
		},
	}
	reg := &fakeRegistry{primary: "gemini", models: map[string]model.BaseChatModel{"gemini": failing}}
	e, _ := newTestEngine(reg, nil, nil)

	_, err := e.Generate(context.Background(), &entity.GenerationRequest{Prompt: "hello"})
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeProviderFailure, appErr.Code)
	assert.Equal(t, int64(1), failing.calls.Load())
}

func TestGenerateEstimatesTokensWhenUsageMissing(t *testing.T) {
	content := "abcdefghij" // 10 字符 -> 3 tokens
	cm := &fakeChatModel{
		generateFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.Message, error) {
			return assistantMessage(content, 0, 0), nil
		},
	}
	reg := &fakeRegistry{primary: "openai", models: map[string]model.BaseChatModel{"openai": cm}}
	e, _ := newTestEngine(reg, nil, nil)

	prompt := "12345678"    // 8 字符 -> 2 tokens
	system := "abcde"       // 5 字符 -> 2 tokens
	res, err := e.Generate(context.Background(), &entity.GenerationRequest{
		Prompt:       prompt,
		SystemPrompt: system,
	})
	require.NoError(t, err)
	assert.Equal(t, 4, res.PromptTokens)
	assert.Equal(t, 3, res.CompletionTokens)
}

func TestGenerateStreamDeliversChunksInOrder(t *testing.T) {
	chunks := []string{"Once ", "upon ", "a time"}
	cm := &fakeChatModel{
		streamFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
			sr, sw := schema.Pipe[*schema.Message](len(chunks) + 1)
			go func() {
				defer sw.Close()
				for _, c := range chunks {
					sw.Send(schema.AssistantMessage(c, nil), nil)
				}
				// 流尾带用量的空消息
				sw.Send(assistantMessage("", 12, 34), nil)
			}()
			return sr, nil
		},
	}
	reg := &fakeRegistry{primary: "gemini", models: map[string]model.BaseChatModel{"gemini": cm}}
	e, _ := newTestEngine(reg, nil, nil)

	var got []string
	res, err := e.GenerateStream(context.Background(), &entity.GenerationRequest{Prompt: "Tell a story", TaskType: entity.TaskDraft}, func(chunk string) {
		got = append(got, chunk)
	})
	require.NoError(t, err)
	assert.Equal(t, chunks, got)
	assert.Equal(t, "Once upon a time", res.Content)
	assert.Equal(t, 12, res.PromptTokens)
	assert.Equal(t, 34, res.CompletionTokens)
	assert.False(t, res.Cached)
}

func TestGenerateStreamFallbackOnOpenFailure(t *testing.T) {
	primary := &fakeChatModel{
		streamFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
			return nil, fmt.Errorf("connection refused")
		},
	}
	fallback := &fakeChatModel{
		streamFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
			sr, sw := schema.Pipe[*schema.Message](1)
			go func() {
				defer sw.Close()
				sw.Send(assistantMessage("fallback content", 3, 4), nil)
			}()
			return sr, nil
		},
	}
	reg := &fakeRegistry{
		primary:       "gemini",
		fallbackName:  "openai",
		fallbackModel: "gpt-4o-mini",
		models:        map[string]model.BaseChatModel{"gemini": primary, "openai": fallback},
	}
	e, _ := newTestEngine(reg, nil, nil)

	res, err := e.GenerateStream(context.Background(), &entity.GenerationRequest{Prompt: "hello"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", res.Provider)
	assert.Equal(t, "fallback content", res.Content)
}

func TestGenerateStreamMidStreamErrorAborts(t *testing.T) {
	cm := &fakeChatModel{
		streamFn: func(ctx context.Context, in []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
			sr, sw := schema.Pipe[*schema.Message](2)
			go func() {
				defer sw.Close()
				sw.Send(schema.AssistantMessage("partial", nil), nil)
				sw.Send(nil, fmt.Errorf("stream reset"))
			}()
			return sr, nil
		},
	}
	reg := &fakeRegistry{primary: "gemini", models: map[string]model.BaseChatModel{"gemini": cm}}
	e, _ := newTestEngine(reg, nil, nil)

	_, err := e.GenerateStream(context.Background(), &entity.GenerationRequest{Prompt: "hello"}, nil)
	require.Error(t, err)
	appErr := apperrors.AsAppError(err)
	assert.Equal(t, apperrors.CodeStreamFailed, appErr.Code)
}

func TestFingerprintSensitivity(t *testing.T) {
	base := Fingerprint("prompt", "system", "gpt-4o")
	assert.Equal(t, base, Fingerprint("prompt", "system", "gpt-4o"))
	assert.NotEqual(t, base, Fingerprint("prompt!", "system", "gpt-4o"))
	assert.NotEqual(t, base, Fingerprint("prompt", "system!", "gpt-4o"))
	assert.NotEqual(t, base, Fingerprint("prompt", "system", "gpt-4o-mini"))
	// 分隔符防止字段拼接歧义
	assert.NotEqual(t, Fingerprint("ab", "c", "m"), Fingerprint("a", "bc", "m"))
}

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, estimateTokens(""))
	assert.Equal(t, 1, estimateTokens("a"))
	assert.Equal(t, 1, estimateTokens("abcd"))
	assert.Equal(t, 2, estimateTokens("abcde"))
}

func TestBuildMessagesJSONMode(t *testing.T) {
	msgs := buildMessages(&entity.GenerationRequest{Prompt: "list three titles", JSONMode: true})
	require.Len(t, msgs, 2)
	assert.Equal(t, schema.System, msgs[0].Role)
	assert.Equal(t, jsonModeInstruction, msgs[0].Content)

	msgs = buildMessages(&entity.GenerationRequest{Prompt: "p", SystemPrompt: "You are an editor.", JSONMode: true})
	require.Len(t, msgs, 2)
	assert.Contains(t, msgs[0].Content, "You are an editor.")
	assert.Contains(t, msgs[0].Content, jsonModeInstruction)

	msgs = buildMessages(&entity.GenerationRequest{Prompt: "p"})
	require.Len(t, msgs, 1)
	assert.Equal(t, schema.User, msgs[0].Role)
}
