// Package wire 提供依赖注入配置
package wire

import (
	"strings"

	"github.com/google/wire"

	"ink-studio-ai-api/internal/application/manuscript"
	"ink-studio-ai-api/internal/application/orchestrator"
	"ink-studio-ai-api/internal/application/quota"
	"ink-studio-ai-api/internal/config"
	"ink-studio-ai-api/internal/domain/repository"
	"ink-studio-ai-api/internal/domain/service"
	"ink-studio-ai-api/internal/infrastructure/llm"
	"ink-studio-ai-api/internal/infrastructure/persistence/memory"
	"ink-studio-ai-api/internal/infrastructure/persistence/postgres"
	"ink-studio-ai-api/internal/infrastructure/persistence/redis"
	"ink-studio-ai-api/internal/interfaces/http/handler"
	"ink-studio-ai-api/internal/interfaces/http/middleware"
	"ink-studio-ai-api/internal/interfaces/http/router"
)

// DataSet 数据层提供者集合
var DataSet = wire.NewSet(
	ProvidePostgresClient,
	ProvideRedisClient,
	ProvideResponseCacheStore,
	postgres.NewUsageRecordRepository,
	redis.NewRateLimiter,
	wire.Bind(new(repository.UsageRecordRepository), new(*postgres.UsageRecordRepository)),
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// AppSet 应用层提供者集合
var AppSet = wire.NewSet(
	llm.NewEinoFactory,
	quota.NewTokenQuotaChecker,
	quota.NewUsageRecorder,
	orchestrator.NewEngine,
	manuscript.NewAnalyzer,
	wire.Bind(new(orchestrator.ProviderRegistry), new(*llm.EinoFactory)),
	wire.Bind(new(orchestrator.DailyQuota), new(*quota.TokenQuotaChecker)),
	wire.Bind(new(service.UsageRecorder), new(*quota.UsageRecorder)),
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewGenerationHandler,
	handler.NewUsageHandler,
	handler.NewManuscriptHandler,
	router.New,
)

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideResponseCacheStore 按配置选择响应缓存后端
func ProvideResponseCacheStore(cfg *config.Config, redisClient *redis.Client) repository.ResponseCacheStore {
	if strings.EqualFold(cfg.Cache.Response.Backend, "redis") {
		return redis.NewResponseCache(redisClient, cfg.Cache.Response)
	}
	return memory.NewResponseCache(cfg.Cache.Response)
}
