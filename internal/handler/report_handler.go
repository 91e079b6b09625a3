package handler

import (
	"net/http"
	"time"

	"github.com/ashwinyue/market-pulse/internal/service"
	"github.com/ashwinyue/market-pulse/internal/service/report"
	"github.com/gin-gonic/gin"
)

// ReportHandler 报告下载处理器
type ReportHandler struct {
	svc *service.Services
}

// NewReportHandler 创建报告下载处理器
func NewReportHandler(svc *service.Services) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// DownloadReport 下载分析报告
// GET /download-report/:sessionId
// 会话没有完整的查询/回答对时返回 404 引导信息
func (h *ReportHandler) DownloadReport(c *gin.Context) {
	sessionID := c.Param("sessionId")

	query, answer, ok := h.svc.Sessions.Analysis(sessionID)
	if !ok {
		NotFound(c, "No analysis found for this session. Ask me to research something first.")
		return
	}

	body := report.Build(query, answer, time.Now())
	filename := report.Filename(query)

	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.String(http.StatusOK, body)
}
