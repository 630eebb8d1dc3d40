package ollama

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

const backendName = "ollama"

// Client 本機 Ollama 模型伺服器客戶端
type Client struct {
	client *resty.Client
	config config.OllamaConfig
}

// Options 生成參數
type Options struct {
	Temperature float64 `json:"temperature,omitempty"`
	TopP        float64 `json:"top_p,omitempty"`
}

// GenerateRequest /api/generate 請求
type GenerateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	Stream  bool     `json:"stream"`
	Format  string   `json:"format,omitempty"`
	Options *Options `json:"options,omitempty"`
}

// GenerateResponse /api/generate 響應；圖片模型可能回傳 image 或 images
type GenerateResponse struct {
	Model    string   `json:"model"`
	Response string   `json:"response"`
	Image    string   `json:"image,omitempty"`
	Images   []string `json:"images,omitempty"`
	Done     bool     `json:"done"`
}

// NewClient 創建 Ollama 客戶端
func NewClient(cfg config.OllamaConfig) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Content-Type", "application/json")

	return &Client{
		client: client,
		config: cfg,
	}
}

// Name 後端名稱
func (c *Client) Name() string {
	return backendName
}

// Generate 以設定的文字模型生成回應
func (c *Client) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	resp, err := c.GenerateRaw(ctx, &GenerateRequest{
		Model:  c.config.Model,
		Prompt: prompt,
		Format: "json",
		Options: &Options{
			Temperature: c.config.Temperature,
			TopP:        c.config.TopP,
		},
	}, timeout)
	if err != nil {
		return "", err
	}

	content := strings.TrimSpace(resp.Response)
	if content == "" {
		return "", provider.Unavailable("empty response from %s", backendName)
	}
	return content, nil
}

// GenerateRaw 呼叫 /api/generate 並回傳完整響應
func (c *Client) GenerateRaw(ctx context.Context, req *GenerateRequest, timeout time.Duration) (*GenerateResponse, error) {
	ctx, cancel := provider.WithTimeout(ctx, timeout)
	defer cancel()

	req.Stream = false

	common.LogDebug("Sending request to Ollama",
		zap.String("model", req.Model),
		zap.Int("prompt_length", len(req.Prompt)),
	)

	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		Post("/api/generate")
	if err != nil {
		return nil, provider.Classify(err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, &provider.StatusError{
			Backend: backendName,
			Status:  resp.StatusCode(),
			Body:    common.Truncate(resp.String(), 512),
		}
	}

	var result GenerateResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, provider.Unavailable("failed to parse %s response: %v", backendName, err)
	}
	return &result, nil
}

// CheckModel 確認模型已安裝，只記錄警告不阻止啟動
func (c *Client) CheckModel(ctx context.Context) error {
	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&tags).
		Get("/api/tags")
	if err != nil {
		return fmt.Errorf("cannot connect to ollama at %s: %w", c.config.BaseURL, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("ollama tags returned status %d", resp.StatusCode())
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name == c.config.Model {
			common.LogInfo("Ollama model is available", zap.String("model", c.config.Model))
			return nil
		}
		names = append(names, m.Name)
	}
	return fmt.Errorf("model %q not found in ollama (available: %s); install it with: ollama pull %s",
		c.config.Model, strings.Join(names, ", "), c.config.Model)
}

// Close 關閉客戶端
func (c *Client) Close() error {
	c.client.GetClient().CloseIdleConnections()
	return nil
}
