package dto

import (
	"ink-studio-ai-api/internal/domain/entity"
)

// GenerateRequest 单次生成请求
type GenerateRequest struct {
	Prompt       string   `json:"prompt" binding:"required"`
	SystemPrompt string   `json:"system_prompt,omitempty"`
	TaskType     string   `json:"task_type,omitempty"`
	Model        string   `json:"model,omitempty"`
	MaxTokens    *int     `json:"max_tokens,omitempty"`
	Temperature  *float32 `json:"temperature,omitempty"`
	SkipCache    bool     `json:"skip_cache,omitempty"`
	JSONMode     bool     `json:"json_mode,omitempty"`
	UserID       string   `json:"user_id,omitempty"`
}

// ToEntity 转换为领域请求
func (r *GenerateRequest) ToEntity() *entity.GenerationRequest {
	if r == nil {
		return nil
	}
	return &entity.GenerationRequest{
		Prompt:       r.Prompt,
		SystemPrompt: r.SystemPrompt,
		TaskType:     entity.TaskType(r.TaskType),
		Model:        r.Model,
		MaxTokens:    r.MaxTokens,
		Temperature:  r.Temperature,
		SkipCache:    r.SkipCache,
		JSONMode:     r.JSONMode,
		UserID:       r.UserID,
	}
}

// BatchGenerateItem 批量生成中的单个条目
type BatchGenerateItem struct {
	ID           string `json:"id" binding:"required"`
	Prompt       string `json:"prompt" binding:"required"`
	SystemPrompt string `json:"system_prompt,omitempty"`
	TaskType     string `json:"task_type,omitempty"`
	Model        string `json:"model,omitempty"`
}

// BatchGenerateRequest 批量生成请求，共享选项对所有条目生效
type BatchGenerateRequest struct {
	Items       []BatchGenerateItem `json:"items" binding:"required,min=1,dive"`
	MaxTokens   *int                `json:"max_tokens,omitempty"`
	Temperature *float32            `json:"temperature,omitempty"`
	SkipCache   bool                `json:"skip_cache,omitempty"`
	UserID      string              `json:"user_id,omitempty"`
}

// ToEntities 转换为领域批量条目
func (r *BatchGenerateRequest) ToEntities() []entity.BatchItem {
	if r == nil {
		return nil
	}
	out := make([]entity.BatchItem, 0, len(r.Items))
	for _, item := range r.Items {
		out = append(out, entity.BatchItem{
			ID: item.ID,
			Request: entity.GenerationRequest{
				Prompt:       item.Prompt,
				SystemPrompt: item.SystemPrompt,
				TaskType:     entity.TaskType(item.TaskType),
				Model:        item.Model,
				MaxTokens:    r.MaxTokens,
				Temperature:  r.Temperature,
				SkipCache:    r.SkipCache,
				UserID:       r.UserID,
			},
		})
	}
	return out
}

// BatchGenerateResponse 批量生成响应
type BatchGenerateResponse struct {
	Results   map[string]*entity.GenerationResult `json:"results"`
	Completed int                                 `json:"completed"`
	Total     int                                 `json:"total"`
}

// DailyUsageResponse 每日用量响应
type DailyUsageResponse struct {
	UserID     string `json:"user_id"`
	UsedTokens int64  `json:"used_tokens"`
	MaxTokens  int64  `json:"max_tokens"`
}
