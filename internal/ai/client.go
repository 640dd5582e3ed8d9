package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/classdesk/classdesk-api/internal/models"
	"github.com/classdesk/classdesk-api/pkg/config"
)

// ErrMissingAPIKey is returned when the gateway key is not configured.
var ErrMissingAPIKey = errors.New("AI_GATEWAY_API_KEY is not configured")

// completionRequest is the upstream wire format.
type completionRequest struct {
	Model    string               `json:"model"`
	Messages []models.ChatMessage `json:"messages"`
	Stream   bool                 `json:"stream"`
}

// Client talks to the hosted chat-completion gateway.
type Client struct {
	gatewayURL string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient constructs a gateway client from configuration.
func NewClient(cfg config.AIConfig) *Client {
	return &Client{
		gatewayURL: cfg.GatewayURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// StreamCompletion prepends the system prompt to the conversation and opens a
// streaming completion against the gateway. The caller owns the returned
// response and must close its body; non-2xx responses are returned as-is so
// the handler can map the upstream status.
func (c *Client) StreamCompletion(ctx context.Context, systemPrompt string, messages []models.ChatMessage) (*http.Response, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	payload := completionRequest{
		Model:    c.model,
		Messages: append([]models.ChatMessage{{Role: "system", Content: systemPrompt}}, messages...),
		Stream:   true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.gatewayURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call AI gateway: %w", err)
	}

	return resp, nil
}
