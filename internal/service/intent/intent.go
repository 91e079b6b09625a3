// Package intent 提供消息意图分类（纯函数，不依赖会话状态）
package intent

import (
	"regexp"
	"strings"
)

// Kind 消息意图类别
type Kind int

const (
	// Research 研究查询，交给助手编排器处理
	Research Kind = iota
	// Conversational 闲聊，返回固定应答
	Conversational
	// ReportRequest 报告下载请求
	ReportRequest
)

// 报告请求模式：提到 pdf/report/download，或纯肯定答复
var reportPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bpdf\b`),
	regexp.MustCompile(`(?i)\breport\b`),
	regexp.MustCompile(`(?i)\bdownload\b`),
	regexp.MustCompile(`(?i)^\s*(yes|yes\s+please|yeah|yep|sure|ok|okay)\s*[.!]*\s*$`),
}

// 闲聊模式：问候、致谢、能力询问
var conversationalPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(hi|hello|hey|good\s+(morning|afternoon|evening))\b`),
	regexp.MustCompile(`(?i)\bthank(s|\s+you)?\b`),
	regexp.MustCompile(`(?i)\bwhat\s+can\s+you\s+do\b`),
	regexp.MustCompile(`(?i)^\s*help\s*[?!.]*\s*$`),
	regexp.MustCompile(`(?i)\bhow\s+are\s+you\b`),
}

const (
	greetingReply = "Hello! I'm your market research assistant. Ask me about any brand, " +
		"product, or market trend and I'll analyze what people are saying about it."
	capabilityReply = "I can research market sentiment for you. Ask me something like " +
		"\"What are people saying about Nike?\" and I'll gather discussions and news, " +
		"analyze them, and prepare a downloadable report."
	thanksReply  = "You're welcome! Let me know if you'd like to research anything else."
	genericReply = "I'm here to help with market research. Tell me which brand, product, " +
		"or topic you'd like me to look into."
)

// Classify 对消息分类
// 优先级：报告请求 > 闲聊 > 研究查询；报告请求绝不落入助手路径
func Classify(message string) Kind {
	if IsReportRequest(message) {
		return ReportRequest
	}
	if IsConversational(message) {
		return Conversational
	}
	return Research
}

// IsReportRequest 判断消息是否在请求报告
func IsReportRequest(message string) bool {
	for _, p := range reportPatterns {
		if p.MatchString(message) {
			return true
		}
	}
	return false
}

// IsConversational 判断消息是否为闲聊
// 报告模式在此刻意重复判断，保证报告请求永不穿透到助手
func IsConversational(message string) bool {
	if strings.TrimSpace(message) == "" {
		return true
	}
	for _, p := range conversationalPatterns {
		if p.MatchString(message) {
			return true
		}
	}
	return IsReportRequest(message)
}

// CannedReply 返回闲聊消息的固定应答
// 同一消息的应答是确定的，与会话状态无关
func CannedReply(message string) string {
	msg := strings.ToLower(strings.TrimSpace(message))
	switch {
	case strings.Contains(msg, "what can you do"), msg == "help", strings.HasPrefix(msg, "help"):
		return capabilityReply
	case hasGreetingPrefix(msg):
		return greetingReply
	case strings.Contains(msg, "thank"):
		return thanksReply
	default:
		return genericReply
	}
}

func hasGreetingPrefix(msg string) bool {
	for _, prefix := range []string{"hi", "hello", "hey", "good morning", "good afternoon", "good evening"} {
		if msg == prefix || strings.HasPrefix(msg, prefix+" ") || strings.HasPrefix(msg, prefix+",") || strings.HasPrefix(msg, prefix+"!") {
			return true
		}
	}
	return false
}
