package slots

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aidarkhanov/nanoid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// releaseScript deletes a slot key only while it still holds our token, so a
// holder whose key already expired never frees a slot taken by someone else.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type RedisConfig struct {
	// Prefix namespaces the slot keys, usually shared.SlotKeyPrefix plus the model repo
	Prefix string
	Size   int
	// TTL bounds how long a crashed holder keeps its slot
	TTL  time.Duration
	Poll time.Duration
}

type RedisLimiter struct {
	client redis.Cmdable
	cfg    RedisConfig
	log    *zap.SugaredLogger
}

func NewRedisLimiter(client redis.Cmdable, cfg RedisConfig, log *zap.SugaredLogger) (*RedisLimiter, error) {
	if client == nil {
		return nil, errors.New("redis client is required")
	}
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("redis limiter needs at least one slot, got %d", cfg.Size)
	}
	if cfg.TTL <= 0 {
		return nil, errors.New("redis limiter ttl must be positive")
	}
	if cfg.Poll <= 0 {
		cfg.Poll = 250 * time.Millisecond
	}
	return &RedisLimiter{client: client, cfg: cfg, log: log}, nil
}

func (r *RedisLimiter) key(i int) string {
	return fmt.Sprintf("%s:%d", r.cfg.Prefix, i)
}

func (r *RedisLimiter) Acquire(ctx context.Context) (func(), error) {
	token, err := nanoid.Generate("0123456789abcdefghijklmnopqrstuvwxyz", 21)
	if err != nil {
		return nil, fmt.Errorf("generate slot token: %w", err)
	}

	ticker := time.NewTicker(r.cfg.Poll)
	defer ticker.Stop()
	for {
		key, err := r.tryAcquire(ctx, token)
		if err != nil {
			return nil, err
		}
		if key != "" {
			return onceRelease(func() { r.release(key, token) }), nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

func (r *RedisLimiter) tryAcquire(ctx context.Context, token string) (string, error) {
	for i := range r.cfg.Size {
		key := r.key(i)
		ok, err := r.client.SetNX(ctx, key, token, r.cfg.TTL).Result()
		if err != nil {
			return "", fmt.Errorf("acquire slot %s: %w", key, err)
		}
		if ok {
			return key, nil
		}
	}
	return "", nil
}

func (r *RedisLimiter) release(key, token string) {
	// The request context may already be canceled, release on a fresh one
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, r.client, []string{key}, token).Err(); err != nil {
		r.log.Warnw("Failed to release generation slot", "key", key, "error", err)
	}
}
