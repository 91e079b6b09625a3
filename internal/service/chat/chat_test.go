// Package chat 提供消息路由单元测试
package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ashwinyue/market-pulse/internal/config"
	"github.com/ashwinyue/market-pulse/internal/service/assistant"
	"github.com/ashwinyue/market-pulse/internal/service/evidence"
	"github.com/ashwinyue/market-pulse/internal/service/session"
	openai "github.com/sashabaranov/go-openai"
)

// fakeAPI 最小化的助手服务替身：立即完成运行并返回固定回答
type fakeAPI struct {
	threadsCreated int
	failThread     error
	reply          string
}

func (f *fakeAPI) CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error) {
	if f.failThread != nil {
		return openai.Thread{}, f.failThread
	}
	f.threadsCreated++
	return openai.Thread{ID: "thread_1"}, nil
}

func (f *fakeAPI) CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error) {
	return openai.Message{ID: "msg_1"}, nil
}

func (f *fakeAPI) CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error) {
	return openai.Run{ID: "run_1", Status: openai.RunStatusQueued}, nil
}

func (f *fakeAPI) RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error) {
	return openai.Run{ID: runID, Status: openai.RunStatusCompleted}, nil
}

func (f *fakeAPI) SubmitToolOutputs(ctx context.Context, threadID string, runID string, request openai.SubmitToolOutputsRequest) (openai.Run, error) {
	return openai.Run{ID: runID}, nil
}

func (f *fakeAPI) ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error) {
	return openai.MessagesList{
		Messages: []openai.Message{
			{
				Role: openai.ChatMessageRoleAssistant,
				Content: []openai.MessageContent{
					{Type: "text", Text: &openai.MessageText{Value: f.reply}},
				},
			},
		},
	}, nil
}

func newTestService(api assistant.API) (*Service, *session.Manager) {
	sessions := session.NewManager()
	gatherer := evidence.NewGatherer(&config.SearchConfig{
		RedditURL:  "http://127.0.0.1:1/search.json",
		NewsURL:    "http://127.0.0.1:1/rss",
		UserAgent:  "test",
		Timeout:    1,
		MaxResults: 3,
	})
	orchestrator := assistant.NewOrchestrator(api, &config.OpenAIConfig{
		AssistantID:     "asst_test",
		PollIntervalMs:  1,
		MaxPollAttempts: 10,
	}, sessions, gatherer)
	return NewService(sessions, orchestrator), sessions
}

// ========== HandleMessage 路由测试 ==========

func TestHandleMessageConversational(t *testing.T) {
	api := &fakeAPI{reply: "should never be used"}
	svc, sessions := newTestService(api)

	response, err := svc.HandleMessage(context.Background(), "client-1", "hello")
	if err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	if !strings.Contains(response, "market research assistant") {
		t.Errorf("response = %q, want greeting", response)
	}

	// 闲聊不创建线程
	if api.threadsCreated != 0 {
		t.Errorf("threadsCreated = %d, want 0", api.threadsCreated)
	}
	if sessions.ThreadID("client-1") != "" {
		t.Error("conversational message must not bind a thread")
	}
}

func TestHandleMessageReportBeforeResearch(t *testing.T) {
	api := &fakeAPI{}
	svc, _ := newTestService(api)

	response, err := svc.HandleMessage(context.Background(), "client-1", "pdf")
	if err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	if !strings.Contains(response, "haven't completed any research") {
		t.Errorf("response = %q, want guidance message", response)
	}
	// 报告请求绝不触达助手
	if api.threadsCreated != 0 {
		t.Errorf("threadsCreated = %d, want 0", api.threadsCreated)
	}
}

func TestHandleMessageReportAfterResearch(t *testing.T) {
	api := &fakeAPI{reply: "Analysis result."}
	svc, sessions := newTestService(api)

	if _, err := svc.HandleMessage(context.Background(), "client-1", "What about Nike?"); err != nil {
		t.Fatalf("research turn failed: %v", err)
	}
	if _, _, ok := sessions.Analysis("client-1"); !ok {
		t.Fatal("analysis should be stored after research turn")
	}

	response, err := svc.HandleMessage(context.Background(), "client-1", "pdf")
	if err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	// 下载链接指向该会话
	if !strings.Contains(response, "/download-report/client-1") {
		t.Errorf("response = %q, want download link", response)
	}
	// 报告轮次不追加线程
	if api.threadsCreated != 1 {
		t.Errorf("threadsCreated = %d, want 1", api.threadsCreated)
	}
}

func TestHandleMessageResearch(t *testing.T) {
	api := &fakeAPI{reply: "Nike is trending positively."}
	svc, sessions := newTestService(api)

	response, err := svc.HandleMessage(context.Background(), "client-1", "What are people saying about Nike?")
	if err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	if response != "Nike is trending positively." {
		t.Errorf("response = %q", response)
	}
	if api.threadsCreated != 1 {
		t.Errorf("threadsCreated = %d, want 1", api.threadsCreated)
	}
	if sessions.ThreadID("client-1") == "" {
		t.Error("research turn must bind a thread")
	}
}

func TestHandleMessageOrchestrationFailure(t *testing.T) {
	api := &fakeAPI{failThread: errors.New("service unavailable")}
	svc, _ := newTestService(api)

	response, err := svc.HandleMessage(context.Background(), "client-1", "What about Nike?")
	if err == nil {
		t.Fatal("HandleMessage() should surface orchestration failure")
	}
	// 降级文案始终可展示，错误信息携带诊断
	if !strings.Contains(response, "technical difficulties") {
		t.Errorf("response = %q, want degraded message", response)
	}
	if !strings.Contains(err.Error(), "service unavailable") {
		t.Errorf("err = %v, want diagnostic cause", err)
	}
}

func TestHandleMessageEmptyMessage(t *testing.T) {
	api := &fakeAPI{}
	svc, _ := newTestService(api)

	response, err := svc.HandleMessage(context.Background(), "client-1", "   ")
	if err != nil {
		t.Fatalf("HandleMessage() error: %v", err)
	}
	if response == "" {
		t.Error("empty message should get the generic conversational fallback")
	}
	if api.threadsCreated != 0 {
		t.Error("empty message must not reach the assistant")
	}
}
