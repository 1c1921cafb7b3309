package boot

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"garden-console/internal/config"
	"garden-console/internal/dashboard"
	"garden-console/internal/discovery/etcd"
	"garden-console/internal/domain/model"
	"garden-console/internal/gardenapi"
	"garden-console/internal/logging"
	"garden-console/internal/metrics"
	"garden-console/internal/mq/kafka"
	"garden-console/internal/pkg/cache"
	"garden-console/internal/repository/postgres"
	redisrepo "garden-console/internal/repository/redis"
	"garden-console/internal/security/jwt"
	"garden-console/internal/server/http/middleware"
	"garden-console/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	clientv3 "go.etcd.io/etcd/client/v3"
	go_otel "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Logger   *logging.Logger
	DB       *gorm.DB
	Redis    *redisrepo.Client
	Kafka    *kafka.Producer
	Audit    *kafka.AsyncSender
	Etcd     *etcd.Client
	Upstream *gardenapi.Client
	Sessions *session.Manager
	HTTP     *gin.Engine

	regMu      sync.Mutex
	serviceKey string
	leaseID    clientv3.LeaseID
	tracerProv *trace.TracerProvider
	janitor    *Janitor
	stop       context.CancelFunc
}

// 아래 provider 는 설정되지 않은 외부 의존성에 대해 nil 을 돌려준다.

func NewLogger(c *config.Config) (*logging.Logger, error) {
	return logging.New(c.Log.Level, c.Log.Format)
}

func NewPostgres(c *config.Config) (*gorm.DB, error) {
	if c.Postgres.DSN == "" {
		return nil, nil
	}
	return postgres.New(postgres.Config{
		DSN: c.Postgres.DSN, MaxOpen: c.Postgres.MaxOpen, MaxIdle: c.Postgres.MaxIdle,
		AutoMigrate: c.Postgres.AutoMigrate, LogLevel: c.Postgres.LogLevel, Tracing: c.OTel.Enable,
	})
}

func NewRedis(c *config.Config) *redisrepo.Client {
	if c.Redis.Addr == "" {
		return nil
	}
	return redisrepo.New(redisrepo.Config{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB,
		DialTimeout:  time.Duration(c.Redis.DialTimeoutMS) * time.Millisecond,
		ReadTimeout:  time.Duration(c.Redis.ReadTimeoutMS) * time.Millisecond,
		WriteTimeout: time.Duration(c.Redis.WriteTimeoutMS) * time.Millisecond,
	})
}

func NewKafkaProducer(c *config.Config) *kafka.Producer {
	if len(c.Kafka.Brokers) == 0 {
		return nil
	}
	return kafka.NewProducer(kafka.Config{Brokers: c.Kafka.Brokers, Topic: c.Kafka.AuditTopic})
}

// NewAuditSender producer 가 없으면 nil (감사 이벤트 비활성)
func NewAuditSender(c *config.Config, p *kafka.Producer, l *logging.Logger) *kafka.AsyncSender {
	if p == nil {
		return nil
	}
	s := kafka.NewAsyncSender(p, l, c.Kafka.QueueSize, c.Kafka.Workers, c.Kafka.MaxBatch, time.Duration(c.Kafka.MaxWaitMS)*time.Millisecond)
	s.Start()
	return s
}

func NewEtcd(c *config.Config) (*etcd.Client, error) {
	if len(c.Etcd.Endpoints) == 0 {
		return nil, nil
	}
	return etcd.New(etcd.Config{Endpoints: c.Etcd.Endpoints, TTL: c.Etcd.TTL})
}

func NewJWTManager(c *config.Config) *jwt.Manager {
	return jwt.NewManager(c.JWT.Secret, c.JWT.ExpireSeconds, c.JWT.Issuer)
}

func NewUpstream(c *config.Config) (*gardenapi.Client, error) {
	return gardenapi.New(gardenapi.Options{BaseURL: c.Upstream.BaseURL, Timeout: c.UpstreamTimeout(), UserAgent: c.Upstream.UserAgent})
}

// NewSessionPersister session.driver 에 따라 저장소를 고른다
func NewSessionPersister(c *config.Config, r *redisrepo.Client, db *gorm.DB) (session.Persister, error) {
	switch c.Session.Driver {
	case "redis":
		if r == nil {
			return nil, fmt.Errorf("session.driver=redis but redis is not configured")
		}
		return session.NewRedisPersister(r, c.Session.KeyPrefix, c.SessionTTL()), nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("session.driver=postgres but postgres is not configured")
		}
		if err := postgres.AutoMigrateModels(db, &model.ConsoleSession{}); err != nil {
			return nil, fmt.Errorf("migrate console_session: %w", err)
		}
		return session.NewGormPersister(db, c.SessionTTL()), nil
	default:
		return session.NewMemoryPersister(), nil
	}
}

func NewSessionManager(p session.Persister, l *logging.Logger) *session.Manager {
	return session.NewManager(p, l)
}

// NewListCache L1 로컬 + L2 Redis. Redis 가 없으면 로컬만 쓴다.
func NewListCache(c *config.Config, r *redisrepo.Client) *cache.ListCache {
	l1 := cache.NewLocal(time.Duration(c.Cache.L1TTLSeconds) * time.Second)
	if r == nil {
		return cache.NewListCache(l1, cache.NewLocalVersions(), c.ListCacheTTL())
	}
	return cache.NewListCache(cache.NewLayered(l1, cache.NewRedisAdapter(r)), cache.NewRedisVersions(r, c.Session.KeyPrefix+"listver:"), c.ListCacheTTL())
}

func NewLoginLimiter(c *config.Config) *middleware.IPLimiter {
	return middleware.NewIPLimiter(c.RateLimit.LoginPerMinute, c.RateLimit.LoginBurst)
}

func NewDashboard(l *logging.Logger) *dashboard.Service { return dashboard.NewService(l) }

func NewApp(c *config.Config, l *logging.Logger, db *gorm.DB, r *redisrepo.Client, k *kafka.Producer, audit *kafka.AsyncSender, e *etcd.Client,
	up *gardenapi.Client, sessions *session.Manager, p session.Persister, lists *cache.ListCache, limiter *middleware.IPLimiter, engine *gin.Engine) *App {
	ctx, cancel := context.WithCancel(context.Background())
	app := &App{Config: c, Logger: l, DB: db, Redis: r, Kafka: k, Audit: audit, Etcd: e, Upstream: up, Sessions: sessions, HTTP: engine, stop: cancel}

	if r != nil {
		pingCtx, pingCancel := context.WithTimeout(ctx, time.Duration(c.Redis.PingTimeoutMS)*time.Millisecond)
		if err := r.Ping(pingCtx); err != nil {
			l.Error("redis_ping_failed", zap.Error(err), zap.String("addr", c.Redis.Addr))
		} else {
			l.Info("redis_ping_ok", zap.String("addr", c.Redis.Addr))
		}
		pingCancel()
		go app.redisHeartbeat(ctx)
	}
	app.janitor = NewJanitor(l)
	if gp, ok := p.(*session.GormPersister); ok {
		app.must(app.janitor.Every("console_session_purge", "@every 10m", func(ctx context.Context) { app.purgeSessions(ctx, gp) }))
	}
	if local := localOf(lists.Backend()); local != nil {
		app.must(app.janitor.Every("list_cache_sweep", "@every 1m", func(context.Context) { local.Sweep() }))
	}
	if limiter != nil {
		app.must(app.janitor.Every("login_limiter_sweep", "@every 5m", func(context.Context) { limiter.Sweep() }))
	}
	app.janitor.Start()
	if e != nil {
		go app.register(ctx)
	}
	if c.OTel.Enable {
		app.initTracing(ctx)
	}
	return app
}

func (a *App) redisHeartbeat(ctx context.Context) {
	c := a.Config
	interval := time.Duration(c.Redis.HeartbeatSec) * time.Second
	if interval < 2*time.Second {
		interval = 2 * time.Second
	}
	lastUp := true
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			pctx, cancel := context.WithTimeout(ctx, time.Duration(c.Redis.PingTimeoutMS)*time.Millisecond)
			err := a.Redis.Ping(pctx)
			cancel()
			if err != nil {
				metrics.RedisUp.Set(0)
				if lastUp {
					a.Logger.Warn("redis_down", zap.Error(err))
				}
				lastUp = false
				continue
			}
			metrics.RedisUp.Set(1)
			if !lastUp {
				a.Logger.Info("redis_recovered")
			}
			lastUp = true
		}
	}
}

// purgeSessions 만료된 console_session 행 정리
func (a *App) purgeSessions(ctx context.Context, gp *session.GormPersister) {
	n, err := gp.Purge(ctx)
	if err != nil {
		a.Logger.Warn("console_session_purge_failed", zap.Error(err))
		return
	}
	if n > 0 {
		a.Logger.Info("console_session_purged", zap.Int64("rows", n))
	}
}

func (a *App) must(err error) {
	if err != nil {
		a.Logger.Error("janitor_register_failed", zap.Error(err))
	}
}

// register etcd 에 인스턴스를 등록한다. 실패하면 지수 백오프로 몇 번 재시도.
func (a *App) register(ctx context.Context) {
	c := a.Config
	port := "0"
	if _, p, err := net.SplitHostPort(c.HTTP.Addr); err == nil && p != "" {
		port = p
	}
	ip := firstNonLoopbackIPv4()
	if ip == "" {
		ip = "127.0.0.1"
	}
	key := fmt.Sprintf("%s/%s/%s/%s:%s", c.Etcd.Prefix, c.AppMeta.Env, c.AppMeta.Version, ip, port)
	val, _ := json.Marshal(etcd.Instance{
		InstanceID:  uuid.NewString(),
		Env:         c.AppMeta.Env,
		Version:     c.AppMeta.Version,
		Addr:        net.JoinHostPort(ip, port),
		Upstream:    c.Upstream.BaseURL,
		StartupUnix: time.Now().Unix(),
	})
	const maxAttempts = 5
	for attempt := 1; ; attempt++ {
		leaseID, err := a.Etcd.Register(ctx, key, string(val), int64(c.Etcd.TTL))
		if err == nil {
			a.setRegistration(key, leaseID)
			metrics.EtcdUp.Set(1)
			a.Logger.Info("etcd_registered", zap.String("key", key))
			return
		}
		if attempt >= maxAttempts {
			a.Logger.Error("etcd_register_failed", zap.Error(err), zap.Int("attempt", attempt))
			return
		}
		backoff := time.Duration(1<<attempt) * 100 * time.Millisecond
		a.Logger.Warn("etcd_register_retry", zap.Error(err), zap.Int("attempt", attempt), zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

func (a *App) setRegistration(key string, leaseID clientv3.LeaseID) {
	a.regMu.Lock()
	a.serviceKey, a.leaseID = key, leaseID
	a.regMu.Unlock()
}

// registration 등록 전이면 빈 값
func (a *App) registration() (string, clientv3.LeaseID) {
	a.regMu.Lock()
	defer a.regMu.Unlock()
	return a.serviceKey, a.leaseID
}

func (a *App) initTracing(ctx context.Context) {
	c := a.Config
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(c.OTel.Endpoint)}
	if c.OTel.Insecure {
		opts = append(opts, otlptracegrpc.WithInsecure())
	} else {
		opts = append(opts, otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(credentials.NewClientTLSFromCert(nil, ""))))
	}
	exp, err := otlptracegrpc.New(ctx, opts...)
	if err != nil {
		a.Logger.Error("otel_exporter_init_failed", zap.Error(err))
		return
	}
	res, _ := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceNameKey.String(c.AppMeta.Name),
		semconv.ServiceVersionKey.String(c.AppMeta.Version),
		semconv.DeploymentEnvironmentKey.String(c.AppMeta.Env),
	))
	sampler := trace.ParentBased(trace.TraceIDRatioBased(c.OTel.SamplerRatio))
	a.tracerProv = trace.NewTracerProvider(trace.WithBatcher(exp), trace.WithResource(res), trace.WithSampler(sampler))
	go_otel.SetTracerProvider(a.tracerProv)
	go_otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(propagation.TraceContext{}, propagation.Baggage{}))
	a.Logger.Info("otel_tracer_provider_initialized", zap.String("endpoint", c.OTel.Endpoint))
}

func (a *App) Close() {
	if a.stop != nil {
		a.stop()
	}
	if a.janitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		a.janitor.Stop(ctx)
		cancel()
	}
	if key, leaseID := a.registration(); a.Etcd != nil && key != "" && leaseID != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.Etcd.Deregister(ctx, key, leaseID); err != nil {
			a.Logger.Error("etcd_deregister_failed", zap.Error(err))
		}
		cancel()
		metrics.EtcdUp.Set(0)
	}
	if a.Audit != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := a.Audit.Close(ctx); err != nil {
			a.Logger.Warn("audit_sender_close_timeout", zap.Error(err))
		}
		cancel()
	}
	if a.Kafka != nil {
		if err := a.Kafka.Close(); err != nil {
			a.Logger.Error("kafka_close_error", zap.Error(err))
		}
	}
	if a.DB != nil {
		if err := postgres.Close(a.DB); err != nil {
			a.Logger.Error("db_close_error", zap.Error(err))
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("redis_close_error", zap.Error(err))
		}
	}
	if a.Etcd != nil {
		if err := a.Etcd.Close(); err != nil {
			a.Logger.Error("etcd_close_error", zap.Error(err))
		}
	}
	if a.tracerProv != nil {
		if err := a.tracerProv.Shutdown(context.Background()); err != nil {
			a.Logger.Error("otel_tracer_shutdown_error", zap.Error(err))
		}
	}
	_ = a.Logger.Sync()
}

func localOf(c cache.Cache) *cache.Local {
	switch v := c.(type) {
	case *cache.Local:
		return v
	case *cache.LayeredCache:
		l, _ := v.L1.(*cache.Local)
		return l
	}
	return nil
}

// firstNonLoopbackIPv4 등록 주소용
func firstNonLoopbackIPv4() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return ""
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip4 := ip.To4(); ip4 != nil {
				return ip4.String()
			}
		}
	}
	return ""
}
