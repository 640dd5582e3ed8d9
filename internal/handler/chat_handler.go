package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/internal/service"
)

// Fixed caller-facing messages for upstream failures.
const (
	msgRateLimited    = "Rate limit exceeded. Please try again in a moment."
	msgQuotaExhausted = "AI credits exhausted. Please add credits."
	msgUnavailable    = "AI service temporarily unavailable"
)

// ChatHandler proxies chat completions to the AI gateway. Its error bodies
// are a bare {"error": ...} object rather than the API envelope, and every
// response carries permissive CORS headers so browser clients on any origin
// can call it directly.
type ChatHandler struct {
	service *service.ChatService
	metrics *service.MetricsService
	logger  *zap.Logger
}

// NewChatHandler constructs a chat handler.
func NewChatHandler(svc *service.ChatService, metrics *service.MetricsService, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatHandler{service: svc, metrics: metrics, logger: logger}
}

// Stream godoc
// @Summary Stream an AI chat completion
// @Tags Chat
// @Accept json
// @Produce text/event-stream
// @Param payload body models.ChatRequest true "Conversation payload"
// @Success 200 {string} string "server-sent event stream"
// @Router /chat [post]
func (h *ChatHandler) Stream(c *gin.Context) {
	h.allowAnyOrigin(c)

	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, http.StatusInternalServerError, err.Error())
		return
	}

	resp, err := h.service.Stream(c.Request.Context(), req)
	if err != nil {
		h.logger.Error("chat proxy failed before upstream responded", zap.Error(err))
		h.fail(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		h.logger.Error("AI gateway error",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
		)
		switch resp.StatusCode {
		case http.StatusTooManyRequests:
			h.fail(c, http.StatusTooManyRequests, msgRateLimited)
		case http.StatusPaymentRequired:
			h.fail(c, http.StatusPaymentRequired, msgQuotaExhausted)
		default:
			h.fail(c, http.StatusInternalServerError, msgUnavailable)
		}
		return
	}

	h.metrics.RecordChatStream()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	h.relay(c, resp.Body)
}

// Preflight godoc
// @Summary CORS preflight for the chat proxy
// @Tags Chat
// @Success 200
// @Router /chat [options]
func (h *ChatHandler) Preflight(c *gin.Context) {
	h.allowAnyOrigin(c)
	c.Status(http.StatusOK)
}

// relay copies the upstream SSE body to the client unmodified, flushing
// after each chunk so deltas reach the browser as they arrive.
func (h *ChatHandler) relay(c *gin.Context, upstream io.Reader) {
	buf := make([]byte, 4096)
	for {
		n, err := upstream.Read(buf)
		if n > 0 {
			if _, werr := c.Writer.Write(buf[:n]); werr != nil {
				return
			}
			c.Writer.Flush()
		}
		if err != nil {
			if err != io.EOF {
				h.logger.Warn("chat stream interrupted", zap.Error(err))
			}
			return
		}
	}
}

func (h *ChatHandler) fail(c *gin.Context, status int, message string) {
	h.metrics.RecordChatFailure(status)
	if message == "" {
		message = "Unknown error"
	}
	c.JSON(status, gin.H{"error": message})
}

func (h *ChatHandler) allowAnyOrigin(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
	// A wildcard origin may not be combined with credentials.
	c.Writer.Header().Del("Access-Control-Allow-Credentials")
}
