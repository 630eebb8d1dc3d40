package embedded

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/provider"
)

const backendName = "embedded"

// Model 行程內模型：直接在本行程內由 prompt 推論出文字
type Model interface {
	Predict(ctx context.Context, prompt string) (string, error)
}

// Backend 行程內生成後端
type Backend struct {
	model Model
}

// NewBackend 創建行程內後端
func NewBackend(model Model) *Backend {
	if model == nil {
		model = NewPantryChef()
	}
	return &Backend{model: model}
}

// Name 後端名稱
func (b *Backend) Name() string {
	return backendName
}

type prediction struct {
	text string
	err  error
}

// Generate 在 timeout 內執行推論，逾時回傳 ErrBackendTimeout
func (b *Backend) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := provider.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan prediction, 1)
	go func() {
		text, err := b.model.Predict(ctx, prompt)
		done <- prediction{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: %s inference exceeded %s", provider.ErrBackendTimeout, backendName, timeout)
		}
		return "", provider.Classify(ctx.Err())
	case p := <-done:
		if p.err != nil {
			return "", provider.Classify(p.err)
		}
		if p.text == "" {
			return "", provider.Unavailable("empty output from %s model", backendName)
		}
		return p.text, nil
	}
}

// Close 無需釋放資源
func (b *Backend) Close() error {
	return nil
}
