package orchestrator

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"ink-studio-ai-api/internal/domain/entity"
	"ink-studio-ai-api/pkg/metrics"
)

// ProgressFunc 批量进度回调，每个条目完成后触发一次。
// completed 严格递增；回调在持锁状态下执行，不得阻塞。
type ProgressFunc func(completed, total int, lastID string)

// GenerateBatch 批量生成：按固定窗口分批，窗口内并发，窗口间串行。
// 并发上限为配置的 batch_concurrency，用于尊重上游限流。
// 窗口内任一条目失败会中止整批，已完成条目的结果随错误一并返回。
func (e *Engine) GenerateBatch(ctx context.Context, items []entity.BatchItem, onProgress ProgressFunc) (map[string]*entity.GenerationResult, error) {
	results := make(map[string]*entity.GenerationResult, len(items))
	if len(items) == 0 {
		return results, nil
	}

	width := e.batchConcurrency
	if width <= 0 {
		width = 3
	}
	if len(items) > 0 {
		metrics.BatchItemsTotal.WithLabelValues(string(items[0].Request.TaskType)).Observe(float64(len(items)))
	}

	var mu sync.Mutex
	completed := 0
	total := len(items)

	for start := 0; start < total; start += width {
		end := start + width
		if end > total {
			end = total
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, item := range items[start:end] {
			item := item
			g.Go(func() error {
				res, err := e.Generate(gctx, &item.Request)
				if err != nil {
					return fmt.Errorf("batch item %s: %w", item.ID, err)
				}
				mu.Lock()
				results[item.ID] = res
				completed++
				if onProgress != nil {
					onProgress(completed, total, item.ID)
				}
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return results, err
		}
	}
	return results, nil
}
