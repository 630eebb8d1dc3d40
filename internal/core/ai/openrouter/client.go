package openrouter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/provider"
	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const (
	backendName  = "openrouter"
	systemPrompt = "You are a health-focused chef AI. Output only valid JSON."
)

// Client OpenRouter API 客戶端
type Client struct {
	client *resty.Client
	config config.OpenRouterConfig
}

// Message 消息結構
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request 表示 API 請求
type Request struct {
	Messages    []Message `json:"messages"`
	Model       string    `json:"model,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
	Stream      bool      `json:"stream,omitempty"`
}

// Response OpenRouter 響應結構
type Response struct {
	ID      string    `json:"id"`
	Choices []Choice  `json:"choices"`
	Usage   UsageInfo `json:"usage"`
}

// Choice 選擇結構
type Choice struct {
	Message Message `json:"message"`
}

// UsageInfo 使用量信息
type UsageInfo struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// NewClient 創建新的 OpenRouter 客戶端
func NewClient(cfg config.OpenRouterConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.APIKey)).
		SetHeader("X-Title", "PantryWizard")

	return &Client{
		client: client,
		config: cfg,
	}
}

// Name 後端名稱
func (c *Client) Name() string {
	return backendName
}

// sanitizeResponse 清理響應內容，避免把 base64 圖片寫進日誌
func sanitizeResponse(body []byte) string {
	s := string(body)
	if strings.Contains(s, "data:image/") {
		return "[IMAGE_DATA_REMOVED]"
	}
	if len(body) > 100 && strings.Contains(s, "base64") {
		return "[BASE64_DATA_REMOVED]"
	}
	return common.Truncate(s, 512)
}

// Generate 生成回應
func (c *Client) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := provider.WithTimeout(ctx, timeout)
	defer cancel()

	req := &Request{
		Model: c.config.Model,
		Messages: []Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	common.LogDebug("Sending request to OpenRouter",
		zap.String("model", req.Model),
		zap.Int("messages", len(req.Messages)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/chat/completions")
	if err != nil {
		return "", provider.Classify(err)
	}

	sanitizedBody := sanitizeResponse(resp.Body())

	if resp.StatusCode() != http.StatusOK {
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", req.Model),
			zap.String("response", sanitizedBody),
		)
		return "", &provider.StatusError{
			Backend: backendName,
			Status:  resp.StatusCode(),
			Body:    sanitizedBody,
		}
	}

	var response Response
	if err := json.Unmarshal(resp.Body(), &response); err != nil {
		return "", provider.Unavailable("failed to parse %s response: %v", backendName, err)
	}

	if len(response.Choices) == 0 {
		return "", provider.Unavailable("empty choices in %s response", backendName)
	}

	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", provider.Unavailable("empty content in %s response", backendName)
	}

	common.LogDebug("Successfully generated response from OpenRouter",
		zap.String("model", req.Model),
		zap.Int("content_length", len(content)),
		zap.Int("total_tokens", response.Usage.TotalTokens),
	)

	return content, nil
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
