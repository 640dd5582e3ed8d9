package handler

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classdesk/classdesk-api/internal/ai"
	"github.com/classdesk/classdesk-api/internal/service"
	"github.com/classdesk/classdesk-api/pkg/config"
	corsmiddleware "github.com/classdesk/classdesk-api/pkg/middleware/cors"
)

func newChatRouter(t *testing.T, upstream http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	client := ai.NewClient(config.AIConfig{
		GatewayURL: server.URL,
		APIKey:     "test-key",
		Model:      "google/gemini-3-flash-preview",
	})
	chatSvc := service.NewChatService(client, nil)
	h := NewChatHandler(chatSvc, service.NewMetricsService(), nil)

	r := gin.New()
	r.POST("/chat", h.Stream)
	r.OPTIONS("/chat", h.Preflight)
	return r
}

func postChat(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestChatStreamPassthrough(t *testing.T) {
	const stream = "data: {\"choices\":[{\"delta\":{\"content\":\"hi\"}}]}\n\ndata: [DONE]\n\n"

	var upstreamBody string
	r := newChatRouter(t, func(w http.ResponseWriter, req *http.Request) {
		raw, _ := io.ReadAll(req.Body)
		upstreamBody = string(raw)
		assert.Equal(t, "Bearer test-key", req.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(stream))
	})

	w := postChat(r, `{"messages":[{"role":"user","content":"hello"}],"mode":"doubt","subject":"Math","classTitle":"Algebra I"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, stream, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	// The system prompt is prepended before the caller's messages.
	assert.Contains(t, upstreamBody, `"role":"system"`)
	assert.Contains(t, upstreamBody, "Algebra I")
	assert.Contains(t, upstreamBody, `"stream":true`)
	sys := strings.Index(upstreamBody, `"role":"system"`)
	user := strings.Index(upstreamBody, `"role":"user"`)
	assert.Less(t, sys, user)
}

func TestChatStreamUpstreamStatusMapping(t *testing.T) {
	tests := []struct {
		name           string
		upstreamStatus int
		wantStatus     int
		wantBody       string
	}{
		{"rate limited", http.StatusTooManyRequests, http.StatusTooManyRequests, `{"error":"Rate limit exceeded. Please try again in a moment."}`},
		{"quota exhausted", http.StatusPaymentRequired, http.StatusPaymentRequired, `{"error":"AI credits exhausted. Please add credits."}`},
		{"other failure", http.StatusServiceUnavailable, http.StatusInternalServerError, `{"error":"AI service temporarily unavailable"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newChatRouter(t, func(w http.ResponseWriter, req *http.Request) {
				http.Error(w, "upstream detail", tt.upstreamStatus)
			})

			w := postChat(r, `{"messages":[{"role":"user","content":"hello"}]}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.JSONEq(t, tt.wantBody, w.Body.String())
			assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestChatStreamMalformedBody(t *testing.T) {
	r := newChatRouter(t, func(w http.ResponseWriter, req *http.Request) {
		t.Fatal("upstream must not be called")
	})

	w := postChat(r, `{not json`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"error"`)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestChatStreamMissingAPIKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	client := ai.NewClient(config.AIConfig{GatewayURL: "http://127.0.0.1:0", APIKey: ""})
	h := NewChatHandler(service.NewChatService(client, nil), service.NewMetricsService(), nil)

	r := gin.New()
	r.POST("/chat", h.Stream)

	w := postChat(r, `{"messages":[{"role":"user","content":"hello"}]}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"AI_GATEWAY_API_KEY is not configured"}`, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestChatPreflight(t *testing.T) {
	r := newChatRouter(t, func(w http.ResponseWriter, req *http.Request) {
		t.Fatal("upstream must not be called")
	})

	req := httptest.NewRequest(http.MethodOptions, "/chat", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

// newRestrictedRouter wires the chat routes behind the global CORS middleware
// with a restricted allow-list, the way the server assembles them.
func newRestrictedRouter(t *testing.T, upstream http.HandlerFunc) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	server := httptest.NewServer(upstream)
	t.Cleanup(server.Close)

	client := ai.NewClient(config.AIConfig{
		GatewayURL: server.URL,
		APIKey:     "test-key",
		Model:      "google/gemini-3-flash-preview",
	})
	h := NewChatHandler(service.NewChatService(client, nil), service.NewMetricsService(), nil)

	r := gin.New()
	r.Use(corsmiddleware.New([]string{"https://app.example.com"}))
	api := r.Group("/api/v1")
	api.POST("/chat", h.Stream)
	api.OPTIONS("/chat", h.Preflight)
	api.GET("/classes", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestChatPreflightBypassesOriginAllowList(t *testing.T) {
	r := newRestrictedRouter(t, func(w http.ResponseWriter, req *http.Request) {
		t.Fatal("upstream must not be called")
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/chat", nil)
	req.Header.Set("Origin", "https://other.example.org")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
}

func TestChatPostPermissiveBehindOriginAllowList(t *testing.T) {
	const stream = "data: [DONE]\n\n"
	r := newRestrictedRouter(t, func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(stream))
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", strings.NewReader(`{"messages":[{"role":"user","content":"hello"}]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://other.example.org")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, stream, w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestPreflightForOtherRoutesStaysWithMiddleware(t *testing.T) {
	r := newRestrictedRouter(t, func(w http.ResponseWriter, req *http.Request) {
		t.Fatal("upstream must not be called")
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/classes", nil)
	req.Header.Set("Origin", "https://other.example.org")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"), "disallowed origins get no allow-origin on the rest of the API")
}
