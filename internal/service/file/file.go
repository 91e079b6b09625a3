// Package file 提供本地文件上传存储
package file

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/ashwinyue/market-pulse/internal/config"
	"github.com/google/uuid"
)

// Service 文件存储服务
type Service struct {
	cfg *config.UploadConfig
}

// NewService 创建文件存储服务，确保上传目录存在
func NewService(cfg *config.UploadConfig) (*Service, error) {
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Service{cfg: cfg}, nil
}

// Save 保存一个上传文件，返回存储文件名
// 超过大小上限的文件直接拒绝
func (s *Service) Save(fileHeader *multipart.FileHeader) (string, error) {
	if fileHeader.Size > s.cfg.MaxFileSize() {
		return "", fmt.Errorf("file %s exceeds size limit of %dMB", fileHeader.Filename, s.cfg.MaxFileSizeMB)
	}

	src, err := fileHeader.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	// 存储名: {uuid}{原扩展名}
	storedName := uuid.New().String() + filepath.Ext(fileHeader.Filename)
	fullPath := filepath.Join(s.cfg.Dir, storedName)

	dst, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	return storedName, nil
}
