package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/provider"
	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"go.uber.org/zap"
)

// Request 隊列請求
type Request struct {
	Context context.Context
	Prompt  string
	Timeout time.Duration
	Result  chan Result
}

// Result 處理結果
type Result struct {
	Text  string
	Error error
}

// Status 隊列狀態
type Status struct {
	Backend        string `json:"backend"`
	QueueLength    int    `json:"queue_length"`
	ProcessedCount int    `json:"processed_count"`
	MaxQueueSize   int    `json:"max_queue_size"`
	Workers        int    `json:"workers"`
}

// Manager 隊列管理器
// 以固定數量的 worker 呼叫後端，本身也實作 provider.Backend
type Manager struct {
	backend   provider.Backend
	config    config.QueueConfig
	queue     chan *Request
	done      chan struct{}
	processed int64
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewManager 創建新的隊列管理器並啟動 worker
func NewManager(backend provider.Backend, cfg config.QueueConfig) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = cfg.Workers
	}

	m := &Manager{
		backend: backend,
		config:  cfg,
		queue:   make(chan *Request, cfg.MaxSize),
		done:    make(chan struct{}),
	}

	for i := 0; i < cfg.Workers; i++ {
		m.wg.Add(1)
		go m.worker(i)
	}
	return m
}

// Name 回傳被包裝後端的名稱
func (m *Manager) Name() string {
	return m.backend.Name()
}

// Generate 將請求排入隊列並等待結果
// 隊列已滿或已關閉時回傳 ErrBackendUnavailable；排隊時間也計入 timeout
func (m *Manager) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	ctx, cancel := provider.WithTimeout(ctx, timeout)
	defer cancel()

	req := &Request{
		Context: ctx,
		Prompt:  prompt,
		Timeout: timeout,
		Result:  make(chan Result, 1),
	}

	if err := m.enqueue(req); err != nil {
		return "", err
	}

	select {
	case res := <-req.Result:
		return res.Text, res.Error
	case <-ctx.Done():
		return "", provider.Classify(ctx.Err())
	}
}

// enqueue 不阻塞地加入隊列
func (m *Manager) enqueue(req *Request) error {
	select {
	case <-m.done:
		return provider.Unavailable("queue manager is closed")
	default:
	}

	select {
	case m.queue <- req:
		common.LogDebug("Request enqueued",
			zap.Int("queue_length", len(m.queue)),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
		return nil
	default:
		common.LogWarn("Backend queue is full",
			zap.String("backend", m.backend.Name()),
			zap.Int("max_queue_size", m.config.MaxSize),
		)
		return provider.Unavailable("queue is full")
	}
}

func (m *Manager) worker(id int) {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return
		case req := <-m.queue:
			m.process(id, req)
		}
	}
}

func (m *Manager) process(id int, req *Request) {
	// 呼叫端已放棄等待
	if err := req.Context.Err(); err != nil {
		req.Result <- Result{Error: provider.Classify(err)}
		return
	}

	start := time.Now()
	text, err := m.backend.Generate(req.Context, req.Prompt, req.Timeout)
	duration := time.Since(start)

	atomic.AddInt64(&m.processed, 1)
	common.LogAICall(m.backend.Name(), duration, err)
	common.LogDebug("Worker finished request", zap.Int("worker", id))

	req.Result <- Result{Text: text, Error: err}
}

// GetQueueStatus 獲取隊列狀態
func (m *Manager) GetQueueStatus() *Status {
	return &Status{
		Backend:        m.backend.Name(),
		QueueLength:    len(m.queue),
		ProcessedCount: int(atomic.LoadInt64(&m.processed)),
		MaxQueueSize:   m.config.MaxSize,
		Workers:        m.config.Workers,
	}
}

// Close 停止 worker 並關閉後端
func (m *Manager) Close() error {
	var err error
	m.closeOnce.Do(func() {
		close(m.done)
		m.wg.Wait()
		err = m.backend.Close()
	})
	return err
}
