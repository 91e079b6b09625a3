// Package assistant 实现托管助手的编排循环：
// 线程复用 → 追加消息 → 创建运行 → 轮询 → 工具分发 → 取回答案
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ashwinyue/market-pulse/internal/config"
	"github.com/ashwinyue/market-pulse/internal/service/evidence"
	"github.com/ashwinyue/market-pulse/internal/service/session"
	"github.com/kaptinlin/jsonrepair"
	openai "github.com/sashabaranov/go-openai"
)

// 助手未产出任何消息时的兜底回答
const noResponsePlaceholder = "I wasn't able to generate a response. Please try again."

var (
	// ErrRunFailed 运行进入非 completed 的终态
	ErrRunFailed = errors.New("assistant run failed")
	// ErrPollBudget 轮询次数耗尽（远端运行疑似卡死）
	ErrPollBudget = errors.New("assistant run polling budget exhausted")
)

// API 托管助手服务的窄接口，便于测试注入
// *openai.Client 直接满足该接口
type API interface {
	CreateThread(ctx context.Context, request openai.ThreadRequest) (openai.Thread, error)
	CreateMessage(ctx context.Context, threadID string, request openai.MessageRequest) (openai.Message, error)
	CreateRun(ctx context.Context, threadID string, request openai.RunRequest) (openai.Run, error)
	RetrieveRun(ctx context.Context, threadID string, runID string) (openai.Run, error)
	SubmitToolOutputs(ctx context.Context, threadID string, runID string, request openai.SubmitToolOutputsRequest) (openai.Run, error)
	ListMessage(ctx context.Context, threadID string, limit *int, order *string, after *string, before *string, runID *string) (openai.MessagesList, error)
}

// Orchestrator 助手编排器
type Orchestrator struct {
	api      API
	cfg      *config.OpenAIConfig
	sessions *session.Manager
	gatherer *evidence.Gatherer
}

// NewOrchestrator 创建助手编排器
func NewOrchestrator(api API, cfg *config.OpenAIConfig, sessions *session.Manager, gatherer *evidence.Gatherer) *Orchestrator {
	return &Orchestrator{
		api:      api,
		cfg:      cfg,
		sessions: sessions,
		gatherer: gatherer,
	}
}

// NewClient 根据配置创建 OpenAI 客户端
func NewClient(cfg *config.OpenAIConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// Analyze 对一条研究查询执行完整编排
// 成功时更新会话的最近查询/回答并返回助手答案；
// 任何失败以单个错误上浮，由请求边界转换为降级响应
func (o *Orchestrator) Analyze(ctx context.Context, sessionKey, message string) (string, error) {
	threadID, err := o.ensureThread(ctx, sessionKey)
	if err != nil {
		return "", fmt.Errorf("ensure thread: %w", err)
	}

	if _, err := o.api.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	}); err != nil {
		return "", fmt.Errorf("append message: %w", err)
	}

	run, err := o.api.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: o.cfg.AssistantID,
	})
	if err != nil {
		return "", fmt.Errorf("create run: %w", err)
	}

	answer, err := o.pollRun(ctx, threadID, run.ID, message)
	if err != nil {
		return "", err
	}

	o.sessions.SetAnalysis(sessionKey, message, answer)
	return answer, nil
}

// ensureThread 返回会话绑定的线程，没有则创建并绑定
// 线程一经创建在会话生命周期内复用
func (o *Orchestrator) ensureThread(ctx context.Context, sessionKey string) (string, error) {
	o.sessions.GetOrCreate(sessionKey)

	if threadID := o.sessions.ThreadID(sessionKey); threadID != "" {
		return threadID, nil
	}

	thread, err := o.api.CreateThread(ctx, openai.ThreadRequest{})
	if err != nil {
		return "", err
	}
	o.sessions.SetThreadID(sessionKey, thread.ID)

	// 并发同键请求可能已经抢先绑定，以管理器里的为准
	return o.sessions.ThreadID(sessionKey), nil
}

// pollRun 以固定间隔轮询运行状态直至终态或预算耗尽
func (o *Orchestrator) pollRun(ctx context.Context, threadID, runID, query string) (string, error) {
	maxAttempts := o.cfg.MaxPollAttempts
	if maxAttempts <= 0 {
		maxAttempts = 200
	}

	for attempt := 0; attempt < maxAttempts; attempt++ {
		run, err := o.api.RetrieveRun(ctx, threadID, runID)
		if err != nil {
			return "", fmt.Errorf("retrieve run: %w", err)
		}

		switch run.Status {
		case openai.RunStatusRequiresAction:
			if err := o.handleRequiredAction(ctx, threadID, runID, run, query); err != nil {
				return "", err
			}
		case openai.RunStatusQueued, openai.RunStatusInProgress:
			if err := sleepCtx(ctx, o.cfg.PollInterval()); err != nil {
				return "", err
			}
		case openai.RunStatusCompleted:
			return o.latestAssistantMessage(ctx, threadID)
		default:
			return "", fmt.Errorf("%w: status %s", ErrRunFailed, run.Status)
		}
	}

	return "", fmt.Errorf("%w after %d attempts", ErrPollBudget, maxAttempts)
}

// handleRequiredAction 分发全部待处理工具调用并提交输出
// 每个调用恰好提交一个输出，未知函数名提交错误对象而非静默丢弃，
// 保证运行不会因缺失输出而停滞
func (o *Orchestrator) handleRequiredAction(ctx context.Context, threadID, runID string, run openai.Run, query string) error {
	if run.RequiredAction == nil || run.RequiredAction.SubmitToolOutputs == nil {
		return fmt.Errorf("%w: requires_action without tool calls", ErrRunFailed)
	}

	calls := run.RequiredAction.SubmitToolOutputs.ToolCalls
	outputs := make([]openai.ToolOutput, 0, len(calls))
	for _, call := range calls {
		outputs = append(outputs, openai.ToolOutput{
			ToolCallID: call.ID,
			Output:     o.dispatchTool(ctx, call, query),
		})
	}

	if _, err := o.api.SubmitToolOutputs(ctx, threadID, runID, openai.SubmitToolOutputsRequest{
		ToolOutputs: outputs,
	}); err != nil {
		return fmt.Errorf("submit tool outputs: %w", err)
	}
	return nil
}

// dispatchTool 按函数名分发单个工具调用，返回 JSON 字符串输出
func (o *Orchestrator) dispatchTool(ctx context.Context, call openai.ToolCall, query string) string {
	switch call.Function.Name {
	case "search_web_data":
		q := parseQueryArgument(call.Function.Arguments, query)
		payload := o.gatherer.Gather(ctx, q)
		out, err := json.Marshal(payload)
		if err != nil {
			return `{"error":"failed to encode search results"}`
		}
		return string(out)

	case "analyze_market_data":
		return marketAnalysisMock(parseQueryArgument(call.Function.Arguments, query))

	default:
		log.Printf("unknown tool function requested: %s", call.Function.Name)
		return fmt.Sprintf(`{"error":"unknown function: %s"}`, call.Function.Name)
	}
}

// parseQueryArgument 从工具参数中提取 query 字段
// 模型产出的 JSON 可能残缺，先尝试原文，再尝试修复；都失败则退回本轮用户消息
func parseQueryArgument(arguments, fallback string) string {
	var args struct {
		Query string `json:"query"`
	}
	if err := json.Unmarshal([]byte(arguments), &args); err != nil {
		repaired, rerr := jsonrepair.JSONRepair(arguments)
		if rerr != nil || json.Unmarshal([]byte(repaired), &args) != nil {
			return fallback
		}
	}
	if args.Query == "" {
		return fallback
	}
	return args.Query
}

// marketAnalysisMock 市场分析模拟工具：返回确定性的指标负载
func marketAnalysisMock(query string) string {
	out, _ := json.Marshal(map[string]interface{}{
		"topic":           query,
		"sentiment":       "mixed",
		"sentiment_score": 0.62,
		"mention_volume":  "moderate",
		"trend":           "stable",
		"note":            "simulated analysis metrics",
	})
	return string(out)
}

// latestAssistantMessage 取回线程中最新的助手消息文本
// 没有任何助手消息时返回固定占位文本，调用方总能得到字符串
func (o *Orchestrator) latestAssistantMessage(ctx context.Context, threadID string) (string, error) {
	limit := 10
	order := "desc"
	messages, err := o.api.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("list messages: %w", err)
	}

	for _, msg := range messages.Messages {
		if msg.Role != openai.ChatMessageRoleAssistant {
			continue
		}
		for _, content := range msg.Content {
			if content.Text != nil && content.Text.Value != "" {
				return content.Text.Value, nil
			}
		}
	}
	return noResponsePlaceholder, nil
}

// sleepCtx 可取消的固定延迟
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
