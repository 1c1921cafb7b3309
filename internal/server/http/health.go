package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"garden-console/internal/discovery/etcd"
	"garden-console/internal/gardenapi"
	"garden-console/internal/metrics"
	"garden-console/internal/mq/kafka"
	redisrepo "garden-console/internal/repository/redis"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

type depCheck struct {
	name    string
	timeout time.Duration
	gauge   prometheus.Gauge
	fn      func(ctx context.Context) error
}

type depResult struct {
	Dep        string  `json:"dep"`
	Up         bool    `json:"up"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// HealthChecker liveness / readiness. 설정되지 않은 의존성은 검사하지 않는다.
type HealthChecker struct {
	checks []depCheck

	cacheMu     sync.Mutex
	cacheResult map[string]interface{}
	cacheExpiry time.Time
	cacheTTL    time.Duration
}

func NewHealthChecker(db *gorm.DB, r *redisrepo.Client, p *kafka.Producer, e *etcd.Client, upstream *gardenapi.Client) *HealthChecker {
	h := &HealthChecker{cacheTTL: 2 * time.Second}
	if upstream != nil {
		h.checks = append(h.checks, depCheck{name: "upstream", timeout: time.Second, gauge: metrics.UpstreamUp, fn: func(ctx context.Context) error {
			// HTTP 응답이 오기만 하면 살아 있는 것으로 본다
			_, err := upstream.Request(ctx, gardenapi.Call{Op: "health.ping", Method: http.MethodGet, Path: "/", SkipSessionCheck: true})
			return err
		}})
	}
	if db != nil {
		h.checks = append(h.checks, depCheck{name: "db", timeout: 300 * time.Millisecond, gauge: metrics.DBUp, fn: func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}})
	}
	if r != nil {
		h.checks = append(h.checks, depCheck{name: "redis", timeout: 250 * time.Millisecond, gauge: metrics.RedisUp, fn: r.Ping})
	}
	if p != nil {
		h.checks = append(h.checks, depCheck{name: "kafka", timeout: 250 * time.Millisecond, gauge: metrics.KafkaUp, fn: p.Ping})
	}
	if e != nil {
		h.checks = append(h.checks, depCheck{name: "etcd", timeout: 250 * time.Millisecond, gauge: metrics.EtcdUp, fn: func(ctx context.Context) error {
			_, err := e.Get(ctx, "health")
			return err
		}})
	}
	return h
}

// Liveness 프로세스 생존만 본다
func (h *HealthChecker) Liveness() map[string]interface{} {
	return map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	}
}

// Invalidate 다음 Readiness 호출이 캐시를 건너뛰게 한다
func (h *HealthChecker) Invalidate() {
	h.cacheMu.Lock()
	h.cacheExpiry = time.Time{}
	h.cacheMu.Unlock()
}

// Readiness 의존성을 병렬로 검사한다. 결과는 cacheTTL 동안 재사용.
func (h *HealthChecker) Readiness(ctx context.Context) (map[string]interface{}, int) {
	h.cacheMu.Lock()
	if time.Now().Before(h.cacheExpiry) && h.cacheResult != nil {
		res := h.cacheResult
		h.cacheMu.Unlock()
		return res, statusOf(res)
	}
	h.cacheMu.Unlock()

	results := make([]depResult, len(h.checks))
	var wg sync.WaitGroup
	for i, chk := range h.checks {
		wg.Add(1)
		go func(i int, chk depCheck) {
			defer wg.Done()
			start := time.Now()
			cctx, cancel := context.WithTimeout(ctx, chk.timeout)
			err := chk.fn(cctx)
			cancel()
			dur := time.Since(start)
			out := depResult{Dep: chk.name, Up: err == nil, DurationMS: float64(dur.Microseconds()) / 1000.0}
			if err != nil {
				out.Error = err.Error()
				chk.gauge.Set(0)
			} else {
				chk.gauge.Set(1)
			}
			metrics.DependencyCheckDuration.WithLabelValues(chk.name).Observe(dur.Seconds())
			results[i] = out
		}(i, chk)
	}
	wg.Wait()

	res := map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
		"detail": results,
	}
	for _, r := range results {
		if r.Up {
			res[r.Dep] = "up"
			continue
		}
		res[r.Dep] = r.Error
		res["status"] = "degraded"
	}

	h.cacheMu.Lock()
	h.cacheResult = res
	h.cacheExpiry = time.Now().Add(h.cacheTTL)
	h.cacheMu.Unlock()
	return res, statusOf(res)
}

func statusOf(res map[string]interface{}) int {
	if res["status"] != "ok" {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
