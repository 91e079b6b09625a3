package router

import (
	"github.com/ashwinyue/market-pulse/internal/handler"
	"github.com/ashwinyue/market-pulse/internal/middleware"
	"github.com/gin-gonic/gin"
)

// SetupRouter 设置路由
func SetupRouter(h *handler.Handlers) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(middleware.RecoveryMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.CORSMiddleware())

	// 健康检查
	r.GET("/health", h.System.Health)

	// 聊天
	r.POST("/chat", h.Chat.HandleChat)

	// 报告下载
	r.GET("/download-report/:sessionId", h.Report.DownloadReport)

	// 文件上传
	r.POST("/upload", h.File.Upload)

	return r
}
