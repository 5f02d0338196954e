// Package orchestrator 实现生成任务的端到端编排：
// 预算检查 -> 缓存 -> 提供商调用（含单跳回退）-> 计费 -> 计量落库。
package orchestrator

import "ink-studio-ai-api/internal/domain/entity"

// taskModelDefaults 任务类别到默认模型的静态路由表。
// 高频低价任务走最便宜的可用模型，质量敏感任务走高端模型。
var taskModelDefaults = map[entity.TaskType]string{
	entity.TaskOutline:     "gemini-2.0-flash",
	entity.TaskDraft:       "gemini-2.0-flash",
	entity.TaskExpand:      "gemini-2.0-flash",
	entity.TaskRefine:      "gpt-4o",
	entity.TaskResearch:    "gemini-2.5-pro",
	entity.TaskMarketing:   "gemini-2.0-flash",
	entity.TaskScreenplay:  "gpt-4o",
	entity.TaskCourse:      "gemini-2.5-pro",
	entity.TaskChat:        "gemini-2.0-flash-lite",
	entity.TaskCompliance:  "gpt-4o",
	entity.TaskImagePrompt: "gemini-2.0-flash",
}

// fallbackModel 未知任务类别的兜底模型，与 chat 任务一致
const fallbackModel = "gemini-2.0-flash-lite"

// ResolveModel 解析本次请求使用的模型：显式覆盖 > 任务路由 > 兜底
func ResolveModel(req *entity.GenerationRequest) string {
	if req.Model != "" {
		return req.Model
	}
	if m, ok := taskModelDefaults[req.TaskType]; ok {
		return m
	}
	return fallbackModel
}
