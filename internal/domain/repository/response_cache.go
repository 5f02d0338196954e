// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"ink-studio-ai-api/internal/domain/entity"
)

// ResponseCacheStore 生成结果缓存存储。
// 约定：超过 TTL 的条目视为不存在，任何实现都不得返回过期条目。
type ResponseCacheStore interface {
	// Get 按指纹查询，未命中或已过期返回 (nil, nil)
	Get(ctx context.Context, fingerprint string) (*entity.CachedResponse, error)
	// Put 无条件覆盖写入
	Put(ctx context.Context, fingerprint string, resp *entity.CachedResponse) error
	// Sweep 清理所有过期条目，返回清理数量
	Sweep(ctx context.Context) (int, error)
}
