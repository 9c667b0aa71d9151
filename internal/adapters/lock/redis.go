package lock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"secretsanta/internal/domain"
)

const (
	keyPrefix        = "santa:draw-lock:"
	minRetryInterval = 10 * time.Millisecond
	maxRetryInterval = 250 * time.Millisecond
	releaseTimeout   = 2 * time.Second
)

// releaseScript deletes the key only if it still holds our token, so an expired lock taken over
// by another instance is never released by us.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Redis is a GroupLocker shared by every instance connected to the same Redis.
// The TTL bounds how long a crashed holder blocks the group; the database commit stays
// authoritative either way.
type Redis struct {
	client redisClient
	ttl    time.Duration
	logger *slog.Logger
}

var _ domain.GroupLocker = (*Redis)(nil)

func NewRedis(client redisClient, ttl time.Duration, logger *slog.Logger) *Redis {
	return &Redis{client: client, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.MaxRetries = 5
	opts.MinRetryBackoff = 8 * time.Millisecond
	opts.MaxRetryBackoff = 512 * time.Millisecond
	opts.DialTimeout = 5 * time.Second
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Lock polls SET NX with a growing interval until it holds the key or ctx is done.
func (r *Redis) Lock(ctx context.Context, groupID string) (func(), error) {
	key := keyPrefix + groupID
	token := uuid.NewString()
	wait := minRetryInterval
	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("acquire draw lock: %w", err)
		}
		if ok {
			return func() { r.release(key, token) }, nil
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
		wait = min(wait*2, maxRetryInterval)
	}
}

func (r *Redis) release(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer cancel()
	err := r.client.Eval(ctx, releaseScript, []string{key}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		r.logger.Warn("release draw lock", "key", key, "err", err)
	}
}
