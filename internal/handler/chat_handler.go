package handler

import (
	"net/http"

	"github.com/ashwinyue/market-pulse/internal/service"
	"github.com/gin-gonic/gin"
)

// ChatHandler 聊天处理器
type ChatHandler struct {
	svc *service.Services
}

// NewChatHandler 创建聊天处理器
func NewChatHandler(svc *service.Services) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// ChatRequest 聊天请求
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse 聊天响应
type ChatResponse struct {
	Response string `json:"response"`
}

// HandleChat 处理聊天消息
// POST /chat
// 会话键取 X-Session-ID，缺省退回客户端地址
func (h *ChatHandler) HandleChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	sessionKey := c.GetHeader("X-Session-ID")
	if sessionKey == "" {
		sessionKey = c.ClientIP()
	}

	response, err := h.svc.Chat.HandleMessage(c.Request.Context(), sessionKey, req.Message)
	if err != nil {
		// 编排失败：单条降级文案携带诊断信息
		InternalServerError(c, err.Error())
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Response: response})
}
