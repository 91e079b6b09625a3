// Package handler 提供 HTTP 处理器
package handler

import (
	"github.com/ashwinyue/market-pulse/internal/service"
)

// Handlers 处理器集合
type Handlers struct {
	Chat   *ChatHandler
	Report *ReportHandler
	File   *FileHandler
	System *SystemHandler
}

// NewHandlers 创建所有处理器
func NewHandlers(svc *service.Services) *Handlers {
	return &Handlers{
		Chat:   NewChatHandler(svc),
		Report: NewReportHandler(svc),
		File:   NewFileHandler(svc),
		System: NewSystemHandler(svc),
	}
}
