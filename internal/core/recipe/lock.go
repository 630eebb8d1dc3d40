package recipe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/go-redis/redis/v8"
)

// Locker 以鍵取得互斥鎖，阻塞直到取得或 ctx 結束
type Locker interface {
	Lock(ctx context.Context, key string, ttl time.Duration) (unlock func(), err error)
}

// MemoryLocker 行程內的鍵鎖
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewMemoryLocker 創建行程內鍵鎖
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*keyLock)}
}

// Lock 取得鍵鎖；ttl 在行程內不適用
func (l *MemoryLocker) Lock(ctx context.Context, key string, _ time.Duration) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *MemoryLocker) release(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// unlockScript 只刪除自己持有的鎖
var unlockScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker 以 SETNX 實作的分散式鎖，多個實例共用
type RedisLocker struct {
	client *redis.Client
	poll   time.Duration
}

// NewRedisLocker 創建 Redis 鎖
func NewRedisLocker(client *redis.Client, poll time.Duration) *RedisLocker {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	return &RedisLocker{client: client, poll: poll}
}

// Lock 輪詢直到 SETNX 成功；鎖在 ttl 後自動過期
func (l *RedisLocker) Lock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := common.GenerateUUID()
	key = "lock:" + key

	for {
		ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}
		if ok {
			break
		}

		timer := time.NewTimer(l.poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = unlockScript.Run(ctx, l.client, []string{key}, token).Err()
		})
	}, nil
}
