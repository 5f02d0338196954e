package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"ink-studio-ai-api/internal/application/quota"
	"ink-studio-ai-api/internal/config"
	"ink-studio-ai-api/internal/domain/entity"
	"ink-studio-ai-api/internal/domain/repository"
	"ink-studio-ai-api/internal/domain/service"
	apperrors "ink-studio-ai-api/pkg/errors"
	"ink-studio-ai-api/pkg/logger"
	"ink-studio-ai-api/pkg/metrics"
)

// jsonModeInstruction JSONMode 追加到 system 轮的指令
const jsonModeInstruction = "Respond with valid JSON only. Do not include markdown fences or any commentary."

// Engine 生成编排引擎。
// 单次生成流程：预算检查 -> 模型路由 -> 缓存查询 -> 提供商调用（失败时单跳回退）
// -> Token 统计 -> 成本计算 -> 缓存写入 -> 计量落库。
type Engine struct {
	registry ProviderRegistry
	cache    repository.ResponseCacheStore
	quota    DailyQuota
	recorder service.UsageRecorder

	batchConcurrency int
	sweepProbability float64
	// randFloat 可注入，测试用
	randFloat func() float64
}

// NewEngine 创建生成编排引擎
func NewEngine(
	registry ProviderRegistry,
	cache repository.ResponseCacheStore,
	dailyQuota DailyQuota,
	recorder service.UsageRecorder,
	cfg *config.Config,
) *Engine {
	e := &Engine{
		registry:         registry,
		cache:            cache,
		quota:            dailyQuota,
		recorder:         recorder,
		batchConcurrency: 3,
		sweepProbability: 0.01,
		randFloat:        rand.Float64,
	}
	if cfg != nil {
		if cfg.Orchestrator.BatchConcurrency > 0 {
			e.batchConcurrency = cfg.Orchestrator.BatchConcurrency
		}
		if cfg.Cache.Response.SweepProbability > 0 {
			e.sweepProbability = cfg.Cache.Response.SweepProbability
		}
	}
	return e
}

// WithRand 覆盖随机源，测试用
func (e *Engine) WithRand(f func() float64) *Engine {
	if f != nil {
		e.randFloat = f
	}
	return e
}

// Fingerprint 计算请求指纹：prompt、system、model 以 NUL 分隔后取 SHA-256
func Fingerprint(prompt, systemPrompt, modelName string) string {
	h := sha256.Sum256([]byte(prompt + "\x00" + systemPrompt + "\x00" + modelName))
	return hex.EncodeToString(h[:])
}

// estimateTokens 提供商未返回用量时的估算：ceil(字符数 / 4)
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	return (len(text) + 3) / 4
}

// Generate 执行单次阻塞生成
func (e *Engine) Generate(ctx context.Context, req *entity.GenerationRequest) (*entity.GenerationResult, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	if err := e.checkBudget(ctx, req); err != nil {
		return nil, err
	}

	modelName := ResolveModel(req)
	provider, err := e.registry.Resolve(modelName)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "无法解析模型提供商")
	}

	fp := Fingerprint(req.Prompt, req.SystemPrompt, modelName)
	if req.SkipCache {
		metrics.CacheLookupTotal.WithLabelValues("bypass").Inc()
	} else if cached := e.cacheLookup(ctx, fp); cached != nil {
		metrics.CacheLookupTotal.WithLabelValues("hit").Inc()
		metrics.GenerationTotal.WithLabelValues(string(req.TaskType), "cached").Inc()
		// 命中也落一条零 Token 零成本的流水，保证可观测
		e.recordUsage(ctx, req, provider, modelName, 0, 0, true, 0)
		return &entity.GenerationResult{
			Content:          cached.Content,
			Model:            modelName,
			Provider:         provider,
			Cached:           true,
			PromptTokens:     cached.PromptTokens,
			CompletionTokens: cached.CompletionTokens,
			CostCents:        0,
		}, nil
	} else {
		metrics.CacheLookupTotal.WithLabelValues("miss").Inc()
	}

	e.maybeSweep(ctx)

	start := time.Now()
	usedProvider, usedModel := provider, modelName
	outMsg, err := e.invoke(ctx, req, provider, modelName)
	fellBack := false
	if err != nil {
		fbProvider, fbModel, ok := e.registry.Fallback(provider)
		if !ok {
			metrics.GenerationTotal.WithLabelValues(string(req.TaskType), "error").Inc()
			return nil, apperrors.Wrap(err, apperrors.CodeProviderFailure, "生成调用失败且无可用回退")
		}
		logger.FromContext(ctx).Warn("主提供商调用失败，尝试回退提供商",
			"primary", provider,
			"fallback", fbProvider,
			"model", modelName,
			"error", err.Error(),
		)
		metrics.GenerationFallbackTotal.WithLabelValues(provider, fbProvider).Inc()

		// 单跳回退：只尝试一次，回退也失败则错误直接上抛
		outMsg, err = e.invoke(ctx, req, fbProvider, fbModel)
		if err != nil {
			metrics.GenerationTotal.WithLabelValues(string(req.TaskType), "error").Inc()
			return nil, apperrors.Wrap(err, apperrors.CodeProviderFailure, "主提供商与回退提供商均调用失败")
		}
		usedProvider, usedModel = fbProvider, fbModel
		fellBack = true
	}
	elapsed := time.Since(start)

	promptTokens, completionTokens := tokensFromMessage(outMsg)
	if promptTokens == 0 && completionTokens == 0 {
		promptTokens = estimateTokens(req.Prompt) + estimateTokens(req.SystemPrompt)
		completionTokens = estimateTokens(outMsg.Content)
	}
	cost := service.CostCents(usedModel, promptTokens, completionTokens)

	// 回退结果不写缓存，指纹对应的是原始模型
	if !req.SkipCache && !fellBack {
		e.cachePut(ctx, fp, &entity.CachedResponse{
			Content:          outMsg.Content,
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			CreatedAt:        time.Now(),
		})
	}

	e.recordUsage(ctx, req, usedProvider, usedModel, promptTokens, completionTokens, false, elapsed)

	metrics.GenerationTotal.WithLabelValues(string(req.TaskType), "success").Inc()
	metrics.GenerationDuration.WithLabelValues(string(req.TaskType)).Observe(elapsed.Seconds())
	metrics.GenerationCostCents.WithLabelValues(usedProvider, usedModel).Add(float64(cost))

	return &entity.GenerationResult{
		Content:          outMsg.Content,
		Model:            usedModel,
		Provider:         usedProvider,
		Cached:           false,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		CostCents:        cost,
	}, nil
}

// GenerateStream 执行单次流式生成。
// onChunk 按到达顺序同步回调，不得阻塞；计量在流完整结束后一次性记录。
// 流式调用不读写缓存。
func (e *Engine) GenerateStream(ctx context.Context, req *entity.GenerationRequest, onChunk func(string)) (*entity.GenerationResult, error) {
	if req == nil {
		return nil, fmt.Errorf("request is nil")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, fmt.Errorf("prompt is required")
	}

	if err := e.checkBudget(ctx, req); err != nil {
		return nil, err
	}

	modelName := ResolveModel(req)
	provider, err := e.registry.Resolve(modelName)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeGenerationFailed, "无法解析模型提供商")
	}

	start := time.Now()
	usedProvider, usedModel := provider, modelName
	reader, err := e.openStream(ctx, req, provider, modelName)
	if err != nil {
		fbProvider, fbModel, ok := e.registry.Fallback(provider)
		if !ok {
			return nil, apperrors.Wrap(err, apperrors.CodeProviderFailure, "流式生成调用失败且无可用回退")
		}
		logger.FromContext(ctx).Warn("主提供商流式调用失败，尝试回退提供商",
			"primary", provider,
			"fallback", fbProvider,
			"model", modelName,
			"error", err.Error(),
		)
		metrics.GenerationFallbackTotal.WithLabelValues(provider, fbProvider).Inc()

		reader, err = e.openStream(ctx, req, fbProvider, fbModel)
		if err != nil {
			metrics.GenerationTotal.WithLabelValues(string(req.TaskType), "error").Inc()
			return nil, apperrors.Wrap(err, apperrors.CodeProviderFailure, "主提供商与回退提供商均调用失败")
		}
		usedProvider, usedModel = fbProvider, fbModel
	}
	defer reader.Close()

	var sb strings.Builder
	var promptTokens, completionTokens int
	for {
		msg, recvErr := reader.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			metrics.GenerationTotal.WithLabelValues(string(req.TaskType), "error").Inc()
			return nil, apperrors.Wrap(recvErr, apperrors.CodeStreamFailed, "流式生成中断")
		}
		if msg == nil {
			continue
		}
		if msg.Content != "" {
			sb.WriteString(msg.Content)
			if onChunk != nil {
				onChunk(msg.Content)
			}
		}
		// 流尾可能出现 Content 为空但带 Usage 的消息
		if msg.ResponseMeta != nil && msg.ResponseMeta.Usage != nil {
			promptTokens = msg.ResponseMeta.Usage.PromptTokens
			completionTokens = msg.ResponseMeta.Usage.CompletionTokens
		}
	}
	elapsed := time.Since(start)

	content := sb.String()
	if promptTokens == 0 && completionTokens == 0 {
		promptTokens = estimateTokens(req.Prompt) + estimateTokens(req.SystemPrompt)
		completionTokens = estimateTokens(content)
	}
	cost := service.CostCents(usedModel, promptTokens, completionTokens)

	e.recordUsage(ctx, req, usedProvider, usedModel, promptTokens, completionTokens, false, elapsed)

	metrics.GenerationTotal.WithLabelValues(string(req.TaskType), "success").Inc()
	metrics.GenerationDuration.WithLabelValues(string(req.TaskType)).Observe(elapsed.Seconds())
	metrics.GenerationCostCents.WithLabelValues(usedProvider, usedModel).Add(float64(cost))

	return &entity.GenerationResult{
		Content:          content,
		Model:            usedModel,
		Provider:         usedProvider,
		Cached:           false,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		CostCents:        cost,
	}, nil
}

// checkBudget 预算前置检查。
// 预算读取失败时放行并记日志，计量故障不应阻断生成。
func (e *Engine) checkBudget(ctx context.Context, req *entity.GenerationRequest) error {
	if e.quota == nil || strings.TrimSpace(req.UserID) == "" {
		return nil
	}
	used, max, err := e.quota.CheckDailyTokens(ctx, req.UserID)
	if err == nil {
		return nil
	}
	var exceeded *quota.TokenQuotaExceededError
	if errors.As(err, &exceeded) {
		metrics.BudgetRejectedTotal.WithLabelValues(string(req.TaskType)).Inc()
		logger.FromContext(ctx).Warn("每日 Token 预算超限，拒绝请求",
			"user_id", req.UserID,
			"used", used,
			"max", max,
		)
		return apperrors.Wrap(err, apperrors.CodeBudgetExceeded, "今日 Token 预算已用尽")
	}
	logger.FromContext(ctx).Warn("每日预算读取失败，放行本次请求",
		"user_id", req.UserID,
		"error", err.Error(),
	)
	return nil
}

// invoke 对指定提供商发起一次阻塞式调用
func (e *Engine) invoke(ctx context.Context, req *entity.GenerationRequest, provider, modelName string) (*schema.Message, error) {
	ctx = service.WithTaskProvider(ctx, string(req.TaskType), provider)
	chatModel, err := e.registry.Get(ctx, provider)
	if err != nil {
		return nil, err
	}

	outMsg, err := chatModel.Generate(ctx, buildMessages(req), buildModelOptions(req, modelName)...)
	if err != nil {
		return nil, err
	}
	if outMsg == nil {
		return nil, fmt.Errorf("empty llm response")
	}
	return outMsg, nil
}

// openStream 对指定提供商发起一次流式调用，调用方负责 Close
func (e *Engine) openStream(ctx context.Context, req *entity.GenerationRequest, provider, modelName string) (*schema.StreamReader[*schema.Message], error) {
	ctx = service.WithTaskProvider(ctx, string(req.TaskType), provider)
	chatModel, err := e.registry.Get(ctx, provider)
	if err != nil {
		return nil, err
	}
	return chatModel.Stream(ctx, buildMessages(req), buildModelOptions(req, modelName)...)
}

// buildMessages 组装消息序列：可选 system 轮 + prompt 轮
func buildMessages(req *entity.GenerationRequest) []*schema.Message {
	system := strings.TrimSpace(req.SystemPrompt)
	if req.JSONMode {
		if system == "" {
			system = jsonModeInstruction
		} else {
			system = system + "\n\n" + jsonModeInstruction
		}
	}

	msgs := make([]*schema.Message, 0, 2)
	if system != "" {
		msgs = append(msgs, schema.SystemMessage(system))
	}
	msgs = append(msgs, schema.UserMessage(req.Prompt))
	return msgs
}

func buildModelOptions(req *entity.GenerationRequest, modelName string) []model.Option {
	opts := make([]model.Option, 0, 3)
	if modelName != "" {
		opts = append(opts, model.WithModel(modelName))
	}
	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(*req.Temperature))
	}
	if req.MaxTokens != nil {
		opts = append(opts, model.WithMaxTokens(*req.MaxTokens))
	}
	return opts
}

func tokensFromMessage(msg *schema.Message) (promptTokens, completionTokens int) {
	if msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return 0, 0
	}
	return msg.ResponseMeta.Usage.PromptTokens, msg.ResponseMeta.Usage.CompletionTokens
}

// cacheLookup 查缓存，存储故障按未命中处理
func (e *Engine) cacheLookup(ctx context.Context, fp string) *entity.CachedResponse {
	if e.cache == nil {
		return nil
	}
	cached, err := e.cache.Get(ctx, fp)
	if err != nil {
		logger.FromContext(ctx).Warn("响应缓存读取失败", "error", err.Error())
		return nil
	}
	return cached
}

// cachePut 写缓存，失败只记日志
func (e *Engine) cachePut(ctx context.Context, fp string, resp *entity.CachedResponse) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Put(ctx, fp, resp); err != nil {
		logger.FromContext(ctx).Warn("响应缓存写入失败", "error", err.Error())
	}
}

// maybeSweep 以配置概率触发一次全量过期清理
func (e *Engine) maybeSweep(ctx context.Context) {
	if e.cache == nil || e.sweepProbability <= 0 {
		return
	}
	if e.randFloat() >= e.sweepProbability {
		return
	}
	removed, err := e.cache.Sweep(ctx)
	if err != nil {
		logger.FromContext(ctx).Warn("响应缓存清理失败", "error", err.Error())
		return
	}
	if removed > 0 {
		metrics.CacheSweepRemoved.Add(float64(removed))
		logger.FromContext(ctx).Debug("响应缓存清理完成", "removed", removed)
	}
}

func (e *Engine) recordUsage(ctx context.Context, req *entity.GenerationRequest, provider, modelName string, promptTokens, completionTokens int, cacheHit bool, elapsed time.Duration) {
	if e.recorder == nil {
		return
	}
	_ = e.recorder.Record(ctx, service.UsageInput{
		UserID:           req.UserID,
		TaskType:         string(req.TaskType),
		Provider:         provider,
		Model:            modelName,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		CacheHit:         cacheHit,
		DurationMs:       int(elapsed.Milliseconds()),
	})
}
