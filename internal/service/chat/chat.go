// Package chat 提供会话级消息路由：
// 报告请求 → 报告流程；闲聊 → 固定应答；其余 → 助手编排器
package chat

import (
	"context"
	"fmt"
	"log"

	"github.com/ashwinyue/market-pulse/internal/service/assistant"
	"github.com/ashwinyue/market-pulse/internal/service/intent"
	"github.com/ashwinyue/market-pulse/internal/service/session"
)

const (
	reportGuidance = "I haven't completed any research for you yet. Ask me to analyze a " +
		"brand or topic first, then I can prepare a downloadable report."
	degradedReply = "I'm experiencing technical difficulties processing your request. " +
		"Please try again in a moment."
)

// Service 聊天路由服务
type Service struct {
	sessions     *session.Manager
	orchestrator *assistant.Orchestrator
}

// NewService 创建聊天路由服务
func NewService(sessions *session.Manager, orchestrator *assistant.Orchestrator) *Service {
	return &Service{
		sessions:     sessions,
		orchestrator: orchestrator,
	}
}

// HandleMessage 处理一条用户消息
// 返回的 error 非空表示编排失败，响应文本仍为可直接展示的降级文案
func (s *Service) HandleMessage(ctx context.Context, sessionKey, message string) (string, error) {
	s.sessions.GetOrCreate(sessionKey)

	switch intent.Classify(message) {
	case intent.ReportRequest:
		// 报告请求短路，绝不触达助手
		if _, _, ok := s.sessions.Analysis(sessionKey); ok {
			return fmt.Sprintf("Your report is ready! Download it here: /download-report/%s", sessionKey), nil
		}
		return reportGuidance, nil

	case intent.Conversational:
		// 固定应答，不创建线程，不改动会话状态
		return intent.CannedReply(message), nil

	default:
		answer, err := s.orchestrator.Analyze(ctx, sessionKey, message)
		if err != nil {
			log.Printf("orchestration failed for session %s: %v", sessionKey, err)
			return degradedReply, fmt.Errorf("%s (%w)", degradedReply, err)
		}
		return answer, nil
	}
}
