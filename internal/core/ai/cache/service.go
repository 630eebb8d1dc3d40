package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// Service Redis 緩存服務，多個實例共用
type Service struct {
	client *redis.Client
	config config.CacheConfig
}

// NewService 創建緩存服務，連線由呼叫端管理
func NewService(client *redis.Client, cfg config.CacheConfig) *Service {
	return &Service{
		client: client,
		config: cfg,
	}
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, dish string) (string, error) {
	url, err := s.client.Get(ctx, generateKey(dish)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			common.LogCacheMiss("redis")
			return "", common.ErrCacheMiss
		}
		return "", fmt.Errorf("failed to get cache: %w", err)
	}

	common.LogCacheHit("redis")
	return url, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, dish, url string) error {
	if err := s.client.Set(ctx, generateKey(dish), url, s.config.TTL).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 連線由 main 關閉
func (s *Service) Close() error {
	return nil
}
