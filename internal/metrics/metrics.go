package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency distribution",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})
	RequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "method", "status"})
	Inflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "In-flight HTTP requests",
	})

	// 메모리얼 백엔드 호출
	UpstreamTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "upstream_requests_total",
		Help: "Calls to the memorial backend by operation and outcome (ok|session_expired|error|transport)",
	}, []string{"op", "outcome"})
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "upstream_request_duration_seconds",
		Help:    "Latency of memorial backend calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})

	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "console_active_sessions",
		Help: "Console sessions held in memory",
	})
	DashboardFetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_fetch_failures_total",
		Help: "Dashboard stat fetches that failed and were defaulted to zero",
	}, []string{"stat"})

	ListCacheResult = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "list_cache_requests_total",
		Help: "Upstream list cache lookups (hit|miss)",
	}, []string{"ns", "result"})

	AuditEnqueue = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_kafka_enqueue_total",
		Help: "Audit events enqueued (ok|dropped)",
	}, []string{"result"})
	AuditQueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "audit_kafka_queue_depth",
		Help: "Audit events waiting in queue",
	})
	AuditFlushTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_kafka_flush_total",
		Help: "Audit batch flushes by reason (size|timeout|shutdown)",
	}, []string{"reason"})
	AuditErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "audit_kafka_errors_total",
		Help: "Audit events that failed to write",
	})

	DBUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_up",
		Help: "Database connectivity (1=up,0=down)",
	})
	RedisUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "redis_up",
		Help: "Redis connectivity (1=up,0=down)",
	})
	KafkaUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kafka_up",
		Help: "Kafka connectivity (1=up,0=down)",
	})
	EtcdUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "etcd_up",
		Help: "Etcd connectivity (1=up,0=down)",
	})
	UpstreamUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "upstream_up",
		Help: "Memorial backend reachability (1=up,0=down)",
	})
	DependencyCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dependency_check_duration_seconds",
		Help:    "Latency of dependency health checks",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1},
	}, []string{"dep"})
)
