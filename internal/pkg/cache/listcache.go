package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
	"time"

	"garden-console/internal/metrics"
	redisrepo "garden-console/internal/repository/redis"
)

// Versioner 네임스페이스 버전. 버전이 오르면 이전 키는 더 이상 조회되지 않는다.
type Versioner interface {
	Version(ctx context.Context, ns string) (int64, error)
	Bump(ctx context.Context, ns string) error
}

// LocalVersions 단일 인스턴스용
type LocalVersions struct {
	mu sync.Mutex
	v  map[string]int64
}

func NewLocalVersions() *LocalVersions { return &LocalVersions{v: make(map[string]int64)} }

func (l *LocalVersions) Version(_ context.Context, ns string) (int64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.v[ns], nil
}

func (l *LocalVersions) Bump(_ context.Context, ns string) error {
	l.mu.Lock()
	l.v[ns]++
	l.mu.Unlock()
	return nil
}

// RedisVersions 여러 콘솔 인스턴스가 무효화를 공유한다.
type RedisVersions struct {
	c      *redisrepo.Client
	prefix string
}

func NewRedisVersions(c *redisrepo.Client, prefix string) *RedisVersions {
	return &RedisVersions{c: c, prefix: prefix}
}

func (r *RedisVersions) Version(ctx context.Context, ns string) (int64, error) {
	b, err := r.c.GetBytes(ctx, r.prefix+ns)
	if errors.Is(err, redisrepo.ErrNil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(string(b), 10, 64)
}

func (r *RedisVersions) Bump(ctx context.Context, ns string) error {
	_, err := r.c.Incr(ctx, r.prefix+ns)
	return err
}

// ListCache 백엔드 목록 응답을 짧게 캐시한다. 키 = 네임스페이스 + 버전 + 직렬화된 쿼리.
type ListCache struct {
	c   Cache
	ver Versioner
	ttl time.Duration
}

func NewListCache(c Cache, ver Versioner, ttl time.Duration) *ListCache {
	if ver == nil {
		ver = NewLocalVersions()
	}
	return &ListCache{c: c, ver: ver, ttl: ttl}
}

// Backend 저장소 (정리 작업용)
func (l *ListCache) Backend() Cache {
	if l == nil {
		return nil
	}
	return l.c
}

func (l *ListCache) enabled() bool { return l != nil && l.c != nil && l.ttl > 0 }

func (l *ListCache) key(ctx context.Context, ns, query string) (string, bool) {
	v, err := l.ver.Version(ctx, ns)
	if err != nil {
		return "", false
	}
	return "console:list:" + ns + ":v" + strconv.FormatInt(v, 10) + ":" + query, true
}

// Invalidate ns 의 모든 캐시 항목을 무효화한다.
func (l *ListCache) Invalidate(ctx context.Context, ns string) error {
	if !l.enabled() {
		return nil
	}
	return l.ver.Bump(ctx, ns)
}

// Cached 캐시에 있으면 디코딩해 돌려주고, 없으면 load 결과를 저장한다.
// load 오류는 캐시하지 않는다.
func Cached[T any](ctx context.Context, l *ListCache, ns, query string, load func(context.Context) (T, error)) (T, error) {
	if !l.enabled() {
		return load(ctx)
	}
	key, ok := l.key(ctx, ns, query)
	if !ok {
		return load(ctx)
	}
	if raw, _ := l.c.Get(ctx, key); raw != "" {
		var out T
		if err := json.Unmarshal([]byte(raw), &out); err == nil {
			metrics.ListCacheResult.WithLabelValues(ns, "hit").Inc()
			return out, nil
		}
	}
	metrics.ListCacheResult.WithLabelValues(ns, "miss").Inc()
	out, err := load(ctx)
	if err != nil {
		return out, err
	}
	if b, err := json.Marshal(out); err == nil {
		_ = l.c.SetEX(ctx, key, string(b), l.ttl)
	}
	return out, nil
}
