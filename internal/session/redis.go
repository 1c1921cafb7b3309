package session

import (
	"context"
	"errors"
	"time"

	redisrepo "garden-console/internal/repository/redis"
)

// RedisPersister 콘솔 서버 기본 저장소. 저장할 때마다 TTL 이 다시 시작된다.
type RedisPersister struct {
	c      *redisrepo.Client
	prefix string
	ttl    time.Duration
}

func NewRedisPersister(c *redisrepo.Client, prefix string, ttl time.Duration) *RedisPersister {
	return &RedisPersister{c: c, prefix: prefix, ttl: ttl}
}

func (r *RedisPersister) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := r.c.GetBytes(ctx, r.prefix+key)
	if errors.Is(err, redisrepo.ErrNil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (r *RedisPersister) Save(ctx context.Context, key string, data []byte) error {
	return r.c.SetTTL(ctx, r.prefix+key, data, r.ttl)
}

func (r *RedisPersister) Delete(ctx context.Context, key string) error {
	return r.c.Del(ctx, r.prefix+key)
}

// Touch 활동 중인 세션의 만료를 연장한다.
func (r *RedisPersister) Touch(ctx context.Context, key string) error {
	return r.c.Expire(ctx, r.prefix+key, r.ttl).Err()
}
