package dto

import (
	"ink-studio-ai-api/internal/domain/entity"
)

// ChapterExtractRequest 章节切分请求
type ChapterExtractRequest struct {
	Text string `json:"text"`
}

// ChapterExtractResponse 章节切分响应
type ChapterExtractResponse struct {
	Chapters []entity.Chapter `json:"chapters"`
}

// ManuscriptAnalysisRequest 书稿分析请求
type ManuscriptAnalysisRequest struct {
	Text         string  `json:"text" binding:"required"`
	DetectImages bool    `json:"detect_images,omitempty"`
	TrimSize     string  `json:"trim_size,omitempty"`
	FontSize     float64 `json:"font_size,omitempty"`
}

// ReadinessRequest 出版就绪评分请求
type ReadinessRequest struct {
	Title          string `json:"title,omitempty"`
	Author         string `json:"author,omitempty"`
	Genre          string `json:"genre,omitempty"`
	TargetAudience string `json:"target_audience,omitempty"`
	HasCover       bool   `json:"has_cover,omitempty"`
	TrimSize       string `json:"trim_size,omitempty"`
	Text           string `json:"text" binding:"required"`
}

// ToMetadata 转换为领域元数据
func (r *ReadinessRequest) ToMetadata() entity.ProjectMetadata {
	if r == nil {
		return entity.ProjectMetadata{}
	}
	return entity.ProjectMetadata{
		Title:          r.Title,
		Author:         r.Author,
		Genre:          r.Genre,
		TargetAudience: r.TargetAudience,
		HasCover:       r.HasCover,
		Text:           r.Text,
		TrimSize:       r.TrimSize,
	}
}
