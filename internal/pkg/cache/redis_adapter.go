package cache

import (
	"context"
	"errors"
	"time"

	redisrepo "garden-console/internal/repository/redis"
)

// RedisAdapter redis 를 Cache 로 감싼 L2. 키 없음은 빈 문자열로 돌려준다.
type RedisAdapter struct{ c *redisrepo.Client }

func NewRedisAdapter(c *redisrepo.Client) *RedisAdapter { return &RedisAdapter{c: c} }

func (r *RedisAdapter) Get(ctx context.Context, key string) (string, error) {
	b, err := r.c.GetBytes(ctx, key)
	if errors.Is(err, redisrepo.ErrNil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *RedisAdapter) SetEX(ctx context.Context, key, val string, ttl time.Duration) error {
	return r.c.SetTTL(ctx, key, val, ttl)
}

func (r *RedisAdapter) Del(ctx context.Context, keys ...string) error {
	return r.c.Del(ctx, keys...)
}

// RemainingTTL -2(없음), -1(만료 없음) 은 false
func (r *RedisAdapter) RemainingTTL(ctx context.Context, key string) (time.Duration, bool) {
	d, err := r.c.Client.TTL(ctx, key).Result()
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}
