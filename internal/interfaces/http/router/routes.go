// Package router 提供 HTTP 路由配置
package router

import (
	"ink-studio-ai-api/internal/interfaces/http/handler"

	"github.com/gin-gonic/gin"
)

// RegisterV1Routes 注册 v1 版本路由
func RegisterV1Routes(
	v1 *gin.RouterGroup,
	generationHandler *handler.GenerationHandler,
	usageHandler *handler.UsageHandler,
	manuscriptHandler *handler.ManuscriptHandler,
) {
	// 内容生成
	generations := v1.Group("/generations")
	{
		generations.POST("", generationHandler.Generate)
		generations.POST("/stream", generationHandler.GenerateStream)
		generations.POST("/batch", generationHandler.GenerateBatch)
	}

	// 用量查询
	usage := v1.Group("/usage")
	{
		usage.GET("/daily", usageHandler.DailyUsage)
	}

	// 书稿分析
	manuscripts := v1.Group("/manuscripts")
	{
		manuscripts.POST("/chapters", manuscriptHandler.ExtractChapters)
		manuscripts.POST("/analysis", manuscriptHandler.Analyze)
		manuscripts.POST("/readiness", manuscriptHandler.Readiness)
	}
}
