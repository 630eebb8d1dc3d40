package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/queue"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readyTimeout 就緒檢查的資料庫 ping 逾時
const readyTimeout = 2 * time.Second

// HealthResponse 健康檢查響應
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Backend   string                 `json:"backend,omitempty"`
	Runtime   map[string]interface{} `json:"runtime"`
	Queue     *queue.Status          `json:"queue,omitempty"`
}

// Pinger 檢查外部依賴
type Pinger func(ctx context.Context) error

// QueueReporter 回報後端隊列狀態
type QueueReporter interface {
	GetQueueStatus() *queue.Status
}

// Handler 健康檢查處理器
type Handler struct {
	version string
	db      Pinger
	queue   QueueReporter
}

// NewHandler 創建健康檢查處理器，db 與 queue 可為 nil
func NewHandler(version string, db Pinger, q QueueReporter) *Handler {
	return &Handler{version: version, db: db, queue: q}
}

// HealthCheck 健康檢查處理器
func (h *Handler) HealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   h.version,
		Runtime: map[string]interface{}{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]interface{}{
				"alloc":       m.Alloc,
				"total_alloc": m.TotalAlloc,
				"sys":         m.Sys,
				"num_gc":      m.NumGC,
			},
		},
	}
	if h.queue != nil {
		response.Queue = h.queue.GetQueueStatus()
		response.Backend = response.Queue.Backend
	}

	common.LogDebug("Health check request",
		zap.String("client_ip", c.ClientIP()),
		zap.String("path", c.Request.URL.Path),
	)

	c.JSON(http.StatusOK, response)
}

// ReadinessCheck 就緒檢查處理器，資料庫無法連線時回傳 503
func (h *Handler) ReadinessCheck(c *gin.Context) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		if err := h.db(ctx); err != nil {
			common.LogWarn("Readiness check failed", zap.Error(err))
			common.WriteError(c, common.ErrServiceUnavailable.Wrap(err))
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
	})
}

// LivenessCheck 存活檢查處理器
func (h *Handler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}
