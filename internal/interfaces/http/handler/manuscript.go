package handler

import (
	"github.com/gin-gonic/gin"

	"ink-studio-ai-api/internal/application/manuscript"
	"ink-studio-ai-api/internal/interfaces/http/dto"
)

// ManuscriptHandler 书稿分析处理器
type ManuscriptHandler struct {
	analyzer *manuscript.Analyzer
}

// NewManuscriptHandler 创建书稿分析处理器
func NewManuscriptHandler(analyzer *manuscript.Analyzer) *ManuscriptHandler {
	return &ManuscriptHandler{analyzer: analyzer}
}

// ExtractChapters 章节切分
// @Summary 章节切分
// @Tags Manuscripts
// @Accept json
// @Produce json
// @Param request body dto.ChapterExtractRequest true "书稿文本"
// @Success 200 {object} dto.Response[dto.ChapterExtractResponse]
// @Router /v1/manuscripts/chapters [post]
func (h *ManuscriptHandler) ExtractChapters(c *gin.Context) {
	var req dto.ChapterExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	chapters := h.analyzer.ExtractChapters(c.Request.Context(), req.Text)
	dto.Success(c, dto.ChapterExtractResponse{Chapters: chapters})
}

// Analyze 结构 + 内容组合分析
// @Summary 书稿分析
// @Tags Manuscripts
// @Accept json
// @Produce json
// @Param request body dto.ManuscriptAnalysisRequest true "分析请求"
// @Success 200 {object} dto.Response[entity.ManuscriptAnalysis]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/manuscripts/analysis [post]
func (h *ManuscriptHandler) Analyze(c *gin.Context) {
	var req dto.ManuscriptAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	analysis := h.analyzer.AnalyzeManuscript(c.Request.Context(), req.Text, manuscript.AnalyzeOptions{
		DetectImages: req.DetectImages,
		TrimSize:     req.TrimSize,
		FontSize:     req.FontSize,
	})
	dto.Success(c, analysis)
}

// Readiness 出版就绪评分
// @Summary 出版就绪评分
// @Tags Manuscripts
// @Accept json
// @Produce json
// @Param request body dto.ReadinessRequest true "评分请求"
// @Success 200 {object} dto.Response[entity.PublicationReadiness]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/manuscripts/readiness [post]
func (h *ManuscriptHandler) Readiness(c *gin.Context) {
	var req dto.ReadinessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	readiness := h.analyzer.CalculateReadinessScore(c.Request.Context(), req.ToMetadata())
	dto.Success(c, readiness)
}
