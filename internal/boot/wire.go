package boot

import (
	"garden-console/internal/config"
	"garden-console/internal/dashboard"
	"garden-console/internal/discovery/etcd"
	"garden-console/internal/gardenapi"
	"garden-console/internal/logging"
	"garden-console/internal/mq/kafka"
	"garden-console/internal/pkg/cache"
	redisrepo "garden-console/internal/repository/redis"
	jwtsec "garden-console/internal/security/jwt"
	httpSrv "garden-console/internal/server/http"
	handlerset "garden-console/internal/server/http/handler"
	consoleh "garden-console/internal/server/http/handler/console"
	"garden-console/internal/server/http/middleware"
	"garden-console/internal/server/http/middleware/security"
	"garden-console/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/wire"
	"gorm.io/gorm"
)

// ProvideConfig wire 에 설정 파일 경로를 넘긴다
func ProvideConfig(path string) (*config.Config, error) { return config.Load(path) }

func ProvideAuthenticator(c *config.Config, j *jwtsec.Manager, m *session.Manager, up *gardenapi.Client, l *logging.Logger) *security.Authenticator {
	return &security.Authenticator{JWT: j, Sessions: m, Upstream: up, CookieName: c.HTTP.CookieName, Logger: l}
}

func ProvideHandlers(c *config.Config, up *gardenapi.Client, m *session.Manager, auth *security.Authenticator, dash *dashboard.Service, lists *cache.ListCache, l *logging.Logger) *handlerset.HandlerSet {
	return handlerset.NewHandlerSet(consoleh.Dependencies{
		Upstream:     up,
		Sessions:     m,
		Auth:         auth,
		Dashboard:    dash,
		Lists:        lists,
		Logger:       l,
		CookieSecure: c.HTTP.CookieSecure,
	})
}

func ProvideHealthChecker(db *gorm.DB, r *redisrepo.Client, p *kafka.Producer, e *etcd.Client, up *gardenapi.Client) *httpSrv.HealthChecker {
	return httpSrv.NewHealthChecker(db, r, p, e, up)
}

func ProvideRouter(c *config.Config, l *logging.Logger, hc *httpSrv.HealthChecker, auth *security.Authenticator, limiter *middleware.IPLimiter, audit *kafka.AsyncSender, h *handlerset.HandlerSet) *gin.Engine {
	if c.AppMeta.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	return httpSrv.NewRouter(c, l, hc, auth, limiter, audit, h)
}

var ProviderSet = wire.NewSet(
	ProvideConfig,
	NewLogger,
	NewPostgres,
	NewRedis,
	NewKafkaProducer,
	NewAuditSender,
	NewEtcd,
	NewJWTManager,
	NewUpstream,
	NewSessionPersister,
	NewSessionManager,
	NewListCache,
	NewLoginLimiter,
	NewDashboard,
	ProvideAuthenticator,
	ProvideHandlers,
	ProvideHealthChecker,
	ProvideRouter,
	NewApp,
)
