package handler

import (
	"io"

	"github.com/gin-gonic/gin"

	"ink-studio-ai-api/internal/application/orchestrator"
	"ink-studio-ai-api/internal/domain/entity"
	"ink-studio-ai-api/internal/interfaces/http/dto"
	"ink-studio-ai-api/pkg/logger"
)

// GenerationHandler 内容生成处理器
type GenerationHandler struct {
	engine *orchestrator.Engine
}

// NewGenerationHandler 创建内容生成处理器
func NewGenerationHandler(engine *orchestrator.Engine) *GenerationHandler {
	return &GenerationHandler{engine: engine}
}

// Generate 单次阻塞生成
// @Summary 单次内容生成
// @Tags Generations
// @Accept json
// @Produce json
// @Param request body dto.GenerateRequest true "生成请求"
// @Success 200 {object} dto.Response[entity.GenerationResult]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/generations [post]
func (h *GenerationHandler) Generate(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.engine.Generate(c.Request.Context(), req.ToEntity())
	if err != nil {
		dto.FromAppError(c, err)
		return
	}
	dto.Success(c, result)
}

// GenerateStream 流式生成，SSE 输出
// @Summary 流式内容生成
// @Tags Generations
// @Accept json
// @Produce text/event-stream
// @Param request body dto.GenerateRequest true "生成请求"
// @Success 200 "SSE stream"
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/generations/stream [post]
func (h *GenerationHandler) GenerateStream(c *gin.Context) {
	var req dto.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	// 设置 SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	contentChan := make(chan string, 64)
	resultChan := make(chan *entity.GenerationResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(contentChan)
		result, err := h.engine.GenerateStream(c.Request.Context(), req.ToEntity(), func(chunk string) {
			contentChan <- chunk
		})
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- result
	}()

	index := 0
	c.Stream(func(w io.Writer) bool {
		select {
		case chunk, ok := <-contentChan:
			if !ok {
				// 内容结束：发送最终结果或错误
				select {
				case result := <-resultChan:
					c.SSEvent("done", result)
				case err := <-errChan:
					c.SSEvent("error", gin.H{"message": err.Error()})
				case <-c.Request.Context().Done():
				}
				return false
			}
			c.SSEvent("content", gin.H{
				"chunk": chunk,
				"index": index,
			})
			index++
			return true

		case <-c.Request.Context().Done():
			// 客户端断开
			return false
		}
	})
}

// GenerateBatch 批量生成
// @Summary 批量内容生成
// @Tags Generations
// @Accept json
// @Produce json
// @Param request body dto.BatchGenerateRequest true "批量生成请求"
// @Success 200 {object} dto.Response[dto.BatchGenerateResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/generations/batch [post]
func (h *GenerationHandler) GenerateBatch(c *gin.Context) {
	var req dto.BatchGenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	items := req.ToEntities()
	results, err := h.engine.GenerateBatch(c.Request.Context(), items, func(completed, total int, lastID string) {
		logger.FromContext(c.Request.Context()).Debug("批量生成进度",
			"completed", completed,
			"total", total,
			"last_id", lastID,
		)
	})
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	dto.Success(c, dto.BatchGenerateResponse{
		Results:   results,
		Completed: len(results),
		Total:     len(items),
	})
}
