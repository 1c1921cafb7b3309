package cache

import (
	"context"
	"sync"
	"time"
)

// Cache 문자열 키/값 캐시. 값의 JSON 인코딩은 호출 측 책임.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	SetEX(ctx context.Context, key, val string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// TTLFetcher 남은 TTL 조회. L2 -> L1 되채움 시 사용한다.
type TTLFetcher interface {
	RemainingTTL(ctx context.Context, key string) (time.Duration, bool)
}

type item struct {
	val string
	exp time.Time
}

func (it item) expired(now time.Time) bool { return !it.exp.IsZero() && now.After(it.exp) }

// Local 프로세스 내 TTL 캐시 (L1). 만료 항목은 조회 시 또는 Sweep 에서 지운다.
type Local struct {
	mu   sync.RWMutex
	data map[string]item
	ttl  time.Duration
}

// NewLocal ttl 은 SetEX 에 0 이 들어왔을 때의 기본값
func NewLocal(ttl time.Duration) *Local { return &Local{data: make(map[string]item), ttl: ttl} }

func (c *Local) Get(_ context.Context, key string) (string, error) {
	c.mu.RLock()
	it, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || it.expired(time.Now()) {
		return "", nil
	}
	return it.val, nil
}

func (c *Local) SetEX(_ context.Context, key, val string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.ttl
	}
	var exp time.Time
	if ttl > 0 {
		exp = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.data[key] = item{val: val, exp: exp}
	c.mu.Unlock()
	return nil
}

func (c *Local) Del(_ context.Context, keys ...string) error {
	c.mu.Lock()
	for _, k := range keys {
		delete(c.data, k)
	}
	c.mu.Unlock()
	return nil
}

func (c *Local) RemainingTTL(_ context.Context, key string) (time.Duration, bool) {
	c.mu.RLock()
	it, ok := c.data[key]
	c.mu.RUnlock()
	if !ok || it.exp.IsZero() || it.expired(time.Now()) {
		return 0, false
	}
	return time.Until(it.exp), true
}

// Sweep 만료 항목 정리. 지운 개수를 돌려준다.
func (c *Local) Sweep() int {
	now := time.Now()
	n := 0
	c.mu.Lock()
	for k, it := range c.data {
		if it.expired(now) {
			delete(c.data, k)
			n++
		}
	}
	c.mu.Unlock()
	return n
}

func (c *Local) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
