package manuscript

import (
	"context"

	"ink-studio-ai-api/internal/domain/entity"
	"ink-studio-ai-api/pkg/logger"
	"ink-studio-ai-api/pkg/metrics"
)

// AnalyzeOptions 书稿分析选项
type AnalyzeOptions struct {
	// DetectImages 为 false 时不返回章节内的图片引用
	DetectImages bool
	// TrimSize 开本，空值按 6x9 处理
	TrimSize string
	// FontSize 字号（磅），0 表示不做修正
	FontSize float64
}

// Analyzer 书稿分析服务，纯内存计算，可安全并发使用
type Analyzer struct{}

func NewAnalyzer() *Analyzer {
	return &Analyzer{}
}

// ExtractChapters 章节切分
func (a *Analyzer) ExtractChapters(ctx context.Context, text string) []entity.Chapter {
	chapters := ExtractChapters(text)
	metrics.ManuscriptAnalysisTotal.WithLabelValues("chapters", "success").Inc()
	logger.FromContext(ctx).Debug("章节切分完成", "chapters", len(chapters))
	return chapters
}

// AnalyzeManuscript 结构识别 + 内容统计的组合分析
func (a *Analyzer) AnalyzeManuscript(ctx context.Context, text string, opts AnalyzeOptions) entity.ManuscriptAnalysis {
	structure := DetectStructure(text)
	if !opts.DetectImages {
		for i := range structure.Chapters {
			structure.Chapters[i].ImageRefs = nil
		}
	}
	content := AnalyzeContent(text, structure.Chapters, opts.TrimSize, opts.FontSize)

	metrics.ManuscriptAnalysisTotal.WithLabelValues("analysis", "success").Inc()
	metrics.ManuscriptWordCount.Observe(float64(content.TotalWordCount))
	logger.FromContext(ctx).Info("书稿分析完成",
		"chapters", len(structure.Chapters),
		"words", content.TotalWordCount,
		"estimated_pages", content.EstimatedPages,
	)

	return entity.ManuscriptAnalysis{
		Structure: structure,
		Content:   content,
	}
}

// CalculateReadinessScore 出版就绪评分
func (a *Analyzer) CalculateReadinessScore(ctx context.Context, meta entity.ProjectMetadata) entity.PublicationReadiness {
	readiness := CalculateReadinessScore(meta)
	metrics.ManuscriptAnalysisTotal.WithLabelValues("readiness", "success").Inc()
	logger.FromContext(ctx).Debug("出版就绪评分完成",
		"score", readiness.Score,
		"percentage", readiness.Percentage,
	)
	return readiness
}
