package handler

import (
	"net/http"

	"github.com/ashwinyue/market-pulse/internal/service"
	"github.com/gin-gonic/gin"
)

// FileHandler 文件上传处理器
type FileHandler struct {
	svc *service.Services
}

// NewFileHandler 创建文件上传处理器
func NewFileHandler(svc *service.Services) *FileHandler {
	return &FileHandler{svc: svc}
}

// Upload 上传文件
// POST /upload
// 接收任意 multipart 文件字段，返回保存数量；目前不接入助手管线
func (h *FileHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		BadRequest(c, "invalid multipart form: "+err.Error())
		return
	}

	saved := 0
	for _, files := range form.File {
		for _, fileHeader := range files {
			if _, err := h.svc.File.Save(fileHeader); err != nil {
				BadRequest(c, err.Error())
				return
			}
			saved++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "upload complete",
		"files":   saved,
	})
}
