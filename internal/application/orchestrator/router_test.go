package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"ink-studio-ai-api/internal/domain/entity"
)

func TestResolveModelExplicitOverrideWins(t *testing.T) {
	req := &entity.GenerationRequest{TaskType: entity.TaskOutline, Model: "gpt-4o"}
	assert.Equal(t, "gpt-4o", ResolveModel(req))
}

func TestResolveModelByTask(t *testing.T) {
	cases := map[entity.TaskType]string{
		entity.TaskOutline:    "gemini-2.0-flash",
		entity.TaskRefine:     "gpt-4o",
		entity.TaskResearch:   "gemini-2.5-pro",
		entity.TaskChat:       "gemini-2.0-flash-lite",
		entity.TaskCompliance: "gpt-4o",
	}
	for task, want := range cases {
		got := ResolveModel(&entity.GenerationRequest{TaskType: task})
		assert.Equal(t, want, got, "task %s", task)
	}
}

func TestResolveModelUnknownTaskFallsBack(t *testing.T) {
	req := &entity.GenerationRequest{TaskType: entity.TaskType("nonexistent")}
	assert.Equal(t, fallbackModel, ResolveModel(req))
}
