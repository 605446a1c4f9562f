package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	redis_v9 "github.com/redis/go-redis/v9"
)

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis_v9.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type LockRepository struct {
	client *redis_v9.Client
	prefix string
}

func NewLockRepository(client *redis_v9.Client, prefix string) *LockRepository {
	return &LockRepository{
		client: client,
		prefix: prefix,
	}
}

// Acquire takes the lock for key if nobody holds it. The returned token
// must be passed to Release.
func (r *LockRepository) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.prefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	return token, ok, nil
}

func (r *LockRepository) Release(ctx context.Context, key, token string) error {
	if err := releaseScript.Run(ctx, r.client, []string{r.prefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release lock %s: %w", key, err)
	}
	return nil
}
