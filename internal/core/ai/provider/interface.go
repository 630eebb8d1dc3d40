package provider

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"
)

// 後端錯誤分類，所有變體都只回傳這兩種
var (
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrBackendTimeout     = errors.New("backend timeout")
)

// Backend 文字生成後端：給定 prompt 回傳模型原始輸出
// 實作不得自行重試，重試策略屬於呼叫端
type Backend interface {
	// Generate 在 timeout 內取得模型輸出
	Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error)

	// Name 後端名稱（用於日誌）
	Name() string

	// Close 釋放連線
	Close() error
}

// StatusError 遠端回傳非 2xx 狀態
type StatusError struct {
	Backend string
	Status  int
	Body    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Backend, e.Status, e.Body)
}

// Unwrap 遠端 4xx/5xx 一律歸類為 ErrBackendUnavailable
func (e *StatusError) Unwrap() error {
	return ErrBackendUnavailable
}

// Unavailable 建立 ErrBackendUnavailable 錯誤
func Unavailable(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrBackendUnavailable, fmt.Sprintf(format, args...))
}

// Classify 將底層錯誤歸類為 ErrBackendTimeout 或 ErrBackendUnavailable
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrBackendTimeout) || errors.Is(err, ErrBackendUnavailable) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrBackendTimeout, err)
	}
	return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
}

// WithTimeout timeout <= 0 時沿用原本的 ctx
func WithTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
