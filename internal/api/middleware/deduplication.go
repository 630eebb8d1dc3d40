package middleware

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Deduplicator 在時間窗內拒絕完全相同的 POST 請求
type Deduplicator struct {
	window time.Duration

	mu       sync.Mutex
	requests map[string]time.Time
	now      func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

// NewDeduplicator 創建去重器並啟動清理 goroutine
func NewDeduplicator(window time.Duration) *Deduplicator {
	if window <= 0 {
		window = time.Second
	}
	d := &Deduplicator{
		window:   window,
		requests: make(map[string]time.Time),
		now:      time.Now,
		done:     make(chan struct{}),
	}
	interval := 10 * window
	if interval < time.Minute {
		interval = time.Minute
	}
	go d.cleanup(interval)
	return d
}

// Handler 請求去重中間件
func (d *Deduplicator) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 只處理 POST 請求
		if c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		fingerprint, err := d.fingerprint(c)
		if err != nil {
			common.LogError("Failed to read request body", zap.Error(err))
			c.Next()
			return
		}

		if d.seen(fingerprint) {
			common.LogInfo("Duplicate request rejected",
				zap.String("path", c.Request.URL.Path),
				zap.String("ip", c.ClientIP()),
			)
			common.WriteError(c, common.ErrTooManyRequests)
			return
		}

		c.Next()
	}
}

// Close 停止清理 goroutine
func (d *Deduplicator) Close() {
	d.closeOnce.Do(func() { close(d.done) })
}

// fingerprint 以方法、路徑、憑證與請求體組成指紋，不同使用者互不影響
func (d *Deduplicator) fingerprint(c *gin.Context) (string, error) {
	h := sha256.New()
	h.Write([]byte(c.Request.Method + ":" + c.Request.URL.Path + ":" + c.GetHeader("Authorization") + ":"))

	if c.Request.Body != nil {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return "", err
		}
		h.Write(body)
		// 恢復請求體
		c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// seen 檢查並記錄指紋
func (d *Deduplicator) seen(fingerprint string) bool {
	now := d.now()

	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.requests[fingerprint]; ok && now.Sub(last) <= d.window {
		return true
	}
	d.requests[fingerprint] = now
	return false
}

func (d *Deduplicator) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			now := d.now()
			d.mu.Lock()
			for k, t := range d.requests {
				if now.Sub(t) > d.window {
					delete(d.requests, k)
				}
			}
			d.mu.Unlock()
		}
	}
}
