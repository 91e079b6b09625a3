package service

import (
	"context"
	"fmt"

	"github.com/ashwinyue/market-pulse/internal/config"
	"github.com/ashwinyue/market-pulse/internal/service/assistant"
	"github.com/ashwinyue/market-pulse/internal/service/chat"
	"github.com/ashwinyue/market-pulse/internal/service/evidence"
	"github.com/ashwinyue/market-pulse/internal/service/file"
	"github.com/ashwinyue/market-pulse/internal/service/session"
)

// Services 服务集合
type Services struct {
	Config   *config.Config
	Sessions *session.Manager
	Evidence *evidence.Gatherer
	Chat     *chat.Service
	File     *file.Service
}

// NewServices 创建所有服务
// 会话清理任务随 ctx 生命周期运行
func NewServices(ctx context.Context, cfg *config.Config) (*Services, error) {
	sessions := session.NewManager()
	sessions.StartSweeper(ctx, cfg.Session.SweepInterval(), cfg.Session.TTL())

	gatherer := evidence.NewGatherer(&cfg.Search)

	orchestrator := assistant.NewOrchestrator(
		assistant.NewClient(&cfg.OpenAI),
		&cfg.OpenAI,
		sessions,
		gatherer,
	)

	fileSvc, err := file.NewService(&cfg.Upload)
	if err != nil {
		return nil, fmt.Errorf("failed to init file service: %w", err)
	}

	return &Services{
		Config:   cfg,
		Sessions: sessions,
		Evidence: gatherer,
		Chat:     chat.NewService(sessions, orchestrator),
		File:     fileSvc,
	}, nil
}
