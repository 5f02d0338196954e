// Package entity 定义领域实体
package entity

import "time"

// TaskType 生成任务类别，仅用于路由默认模型
type TaskType string

// 预定义任务类别
const (
	TaskOutline     TaskType = "outline"
	TaskDraft       TaskType = "draft"
	TaskExpand      TaskType = "expand"
	TaskRefine      TaskType = "refine"
	TaskResearch    TaskType = "research"
	TaskMarketing   TaskType = "marketing"
	TaskScreenplay  TaskType = "screenplay"
	TaskCourse      TaskType = "course"
	TaskChat        TaskType = "chat"
	TaskCompliance  TaskType = "compliance"
	TaskImagePrompt TaskType = "image_prompt"
)

// GenerationRequest 单次生成请求，按调用构造，不可变
type GenerationRequest struct {
	Prompt       string
	SystemPrompt string
	TaskType     TaskType

	// Model 显式模型覆盖，优先于任务路由
	Model       string
	MaxTokens   *int
	Temperature *float32

	// SkipCache 跳过缓存读写
	SkipCache bool
	// JSONMode 要求模型输出结构化 JSON
	JSONMode bool

	// UserID 计量归属，空值表示匿名/系统调用
	UserID string
}

// GenerationResult 单次生成结果，按值返回给调用方
type GenerationResult struct {
	Content          string `json:"content"`
	Model            string `json:"model"`
	Provider         string `json:"provider"`
	Cached           bool   `json:"cached"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	CostCents        int64  `json:"cost_cents"`
}

// CachedResponse 响应缓存条目
type CachedResponse struct {
	Content          string    `json:"content"`
	PromptTokens     int       `json:"prompt_tokens"`
	CompletionTokens int       `json:"completion_tokens"`
	CreatedAt        time.Time `json:"created_at"`
}

// BatchItem 批量生成中的一个独立请求
type BatchItem struct {
	ID      string
	Request GenerationRequest
}
