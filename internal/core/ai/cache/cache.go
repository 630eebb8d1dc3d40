package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"

	"github.com/go-redis/redis/v8"
)

// Cache 以菜名為鍵保存圖片 URL
// 未命中回傳 common.ErrCacheMiss
type Cache interface {
	Get(ctx context.Context, dish string) (string, error)
	Set(ctx context.Context, dish, url string) error
	Close() error
}

// New 有 Redis 連線時使用 Service，否則使用行程內 CacheManager
// 快取停用時回傳 nil
func New(cfg config.CacheConfig, client *redis.Client) Cache {
	if !cfg.Enabled {
		return nil
	}
	if client != nil {
		return NewService(client, cfg)
	}
	return NewManager(cfg)
}

// generateKey 生成緩存鍵，菜名忽略大小寫與多餘空白
func generateKey(dish string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(dish)), " ")
	hash := sha256.Sum256([]byte(normalized))
	return "image:" + hex.EncodeToString(hash[:])
}
