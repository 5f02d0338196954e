// Package memory 提供进程内缓存实现
package memory

import (
	"context"
	"sync"
	"time"

	"ink-studio-ai-api/internal/config"
	"ink-studio-ai-api/internal/domain/entity"
	"ink-studio-ai-api/internal/domain/repository"
)

// ResponseCache 进程内生成结果缓存。
// 读取时惰性判过期，不主动删除；全量清理依赖调用方触发 Sweep。
// 两次 Sweep 之间允许无上界增长。
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]*entity.CachedResponse
	ttl     time.Duration
	now     func() time.Time
}

var _ repository.ResponseCacheStore = (*ResponseCache)(nil)

// NewResponseCache 创建内存响应缓存
func NewResponseCache(cfg config.ResponseCacheConfig) *ResponseCache {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 6 * time.Hour
	}
	return &ResponseCache{
		entries: make(map[string]*entity.CachedResponse),
		ttl:     ttl,
		now:     time.Now,
	}
}

// WithNow 覆盖时钟来源，测试用
func (c *ResponseCache) WithNow(now func() time.Time) *ResponseCache {
	if now != nil {
		c.now = now
	}
	return c
}

// Get 按指纹查询。过期条目视为不存在但不删除（惰性过期）。
func (c *ResponseCache) Get(ctx context.Context, fingerprint string) (*entity.CachedResponse, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	resp, ok := c.entries[fingerprint]
	if !ok {
		return nil, nil
	}
	if c.now().Sub(resp.CreatedAt) >= c.ttl {
		return nil, nil
	}
	return resp, nil
}

// Put 无条件覆盖写入
func (c *ResponseCache) Put(ctx context.Context, fingerprint string, resp *entity.CachedResponse) error {
	if resp == nil {
		return nil
	}
	c.mu.Lock()
	c.entries[fingerprint] = resp
	c.mu.Unlock()
	return nil
}

// Sweep 删除所有过期条目，返回删除数量
func (c *ResponseCache) Sweep(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for fp, resp := range c.entries {
		if now.Sub(resp.CreatedAt) >= c.ttl {
			delete(c.entries, fp)
			removed++
		}
	}
	return removed, nil
}

// Len 当前条目数（含未清理的过期条目）
func (c *ResponseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
