package service

import (
	"fmt"

	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/embedded"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/ollama"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/openrouter"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/provider"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/queue"
	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"go.uber.org/zap"
)

// Service 啟動時選定的文字生成後端，外層包一層隊列
type Service struct {
	*queue.Manager
	mode string
}

// NewService 依 llm.mode 建立後端，程序啟動後不再切換
func NewService(cfg *config.Config) (*Service, error) {
	backend, err := newBackend(cfg)
	if err != nil {
		return nil, err
	}

	common.LogInfo("Generation backend selected",
		zap.String("mode", cfg.LLM.Mode),
		zap.Int("workers", cfg.Queue.Workers),
		zap.Duration("timeout", cfg.LLM.Timeout),
	)

	return &Service{
		Manager: queue.NewManager(backend, cfg.Queue),
		mode:    cfg.LLM.Mode,
	}, nil
}

func newBackend(cfg *config.Config) (provider.Backend, error) {
	switch cfg.LLM.Mode {
	case config.LLMModeOllama:
		return ollama.NewClient(cfg.Ollama), nil
	case config.LLMModeOpenRouter:
		return openrouter.NewClient(cfg.OpenRouter), nil
	case config.LLMModeEmbedded:
		return embedded.NewBackend(embedded.NewPantryChef()), nil
	default:
		return nil, fmt.Errorf("unsupported llm mode: %s", cfg.LLM.Mode)
	}
}

// Mode 目前使用的後端模式
func (s *Service) Mode() string {
	return s.mode
}
