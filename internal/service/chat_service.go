package service

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/classdesk/classdesk-api/internal/ai"
	"github.com/classdesk/classdesk-api/internal/models"
)

type completionGateway interface {
	StreamCompletion(ctx context.Context, systemPrompt string, messages []models.ChatMessage) (*http.Response, error)
}

// ChatService resolves the system prompt for a request and opens the
// upstream completion stream. Status mapping and relaying stay in the
// handler, which owns the response writer.
type ChatService struct {
	gateway completionGateway
	logger  *zap.Logger
}

// NewChatService constructs the service.
func NewChatService(gateway completionGateway, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{gateway: gateway, logger: logger}
}

// Stream prepends the mode-selected system prompt and opens the upstream
// stream. The caller owns the returned response and must close its body.
func (s *ChatService) Stream(ctx context.Context, req models.ChatRequest) (*http.Response, error) {
	prompt := ai.SystemPrompt(string(req.Mode), req.Subject, req.ClassTitle)
	return s.gateway.StreamCompletion(ctx, prompt, req.Messages)
}
