package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ink-studio-ai-api/internal/config"
	"ink-studio-ai-api/internal/domain/entity"
	"ink-studio-ai-api/internal/domain/repository"
)

const responseCacheKeyPrefix = "genresp:"

// ResponseCache 基于 Redis 的生成结果缓存。
// 依赖 Redis 原生 TTL 做过期，Sweep 为空操作。
type ResponseCache struct {
	client *Client
	ttl    time.Duration
}

var _ repository.ResponseCacheStore = (*ResponseCache)(nil)

// NewResponseCache 创建 Redis 响应缓存
func NewResponseCache(client *Client, cfg config.ResponseCacheConfig) *ResponseCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &ResponseCache{client: client, ttl: ttl}
}

// Get 按指纹查询，未命中或已过期返回 (nil, nil)
func (c *ResponseCache) Get(ctx context.Context, fingerprint string) (*entity.CachedResponse, error) {
	raw, err := c.client.Get(ctx, responseCacheKeyPrefix+fingerprint)
	if err != nil {
		if IsNil(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("response cache get: %w", err)
	}

	var resp entity.CachedResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		// 损坏条目按未命中处理并顺手删掉
		_ = c.client.Del(ctx, responseCacheKeyPrefix+fingerprint)
		return nil, nil
	}
	// TTL 配置可能在条目写入后缩短过，再按创建时间兜底校验
	if time.Since(resp.CreatedAt) >= c.ttl {
		_ = c.client.Del(ctx, responseCacheKeyPrefix+fingerprint)
		return nil, nil
	}
	return &resp, nil
}

// Put 无条件覆盖写入，有效期取配置 TTL
func (c *ResponseCache) Put(ctx context.Context, fingerprint string, resp *entity.CachedResponse) error {
	if resp == nil {
		return nil
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("response cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, responseCacheKeyPrefix+fingerprint, raw, c.ttl); err != nil {
		return fmt.Errorf("response cache put: %w", err)
	}
	return nil
}

// Sweep 空操作，过期由 Redis 原生 TTL 负责
func (c *ResponseCache) Sweep(ctx context.Context) (int, error) {
	return 0, nil
}
