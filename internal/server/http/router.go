package http

import (
	"context"
	"net/http"
	"time"

	"garden-console/internal/authz"
	"garden-console/internal/config"
	"garden-console/internal/logging"
	"garden-console/internal/mq/kafka"
	handlerset "garden-console/internal/server/http/handler"
	"garden-console/internal/server/http/middleware"
	obs "garden-console/internal/server/http/middleware/observability"
	sec "garden-console/internal/server/http/middleware/security"
	"garden-console/internal/util/retcode"
	"garden-console/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter 라우트 그룹과 미들웨어만 조립한다. audit 이 nil 이면 감사 이벤트를 내보내지 않는다.
func NewRouter(cfg *config.Config, logger *logging.Logger, hc *HealthChecker, auth *sec.Authenticator, limiter *middleware.IPLimiter, audit *kafka.AsyncSender, h *handlerset.HandlerSet) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(cfg.HTTP.AllowedOrigins), obs.Trace(), obs.AccessLog(logger), obs.Metrics())
	if audit != nil {
		r.Use(obs.Audit(audit))
	}

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, hc.Liveness()) })
	r.GET("/readyz", func(c *gin.Context) {
		if c.Query("refresh") == "1" {
			hc.Invalidate()
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		res, code := hc.Readiness(ctx)
		c.JSON(code, res)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	con := r.Group("/console")
	{
		authGrp := con.Group("/auth")
		{
			authGrp.POST("/login", middleware.RateLimit(limiter), h.Auth.Login)
			authGrp.POST("/logout", auth.Optional(), h.Auth.Logout)
			authGrp.GET("/me", auth.Auth(), h.Auth.Me)
		}

		s := con.Group("", auth.Auth())
		{
			s.GET("/nav", h.Auth.Nav)
			s.GET("/dashboard", h.Dashboard.Stats)

			s.GET("/flower-messages", h.Message.ListFlowers)
			s.PUT("/flower-messages/:id", h.Message.UpdateFlower)
			s.DELETE("/flower-messages/:id", h.Message.DeleteFlower)
			s.GET("/leaf-messages", h.Message.ListLeaves)
			s.DELETE("/leaf-messages/:id", h.Message.DeleteLeaf)
			s.GET("/messages/excel", h.Message.Export)

			s.PUT("/accounts/me", h.Account.UpdateMe)
			s.PUT("/accounts/me/password", h.Account.UpdateMyPassword)

			admins := s.Group("/accounts", sec.RequireCapability(authz.ManageAdmins))
			{
				admins.GET("", h.Account.List)
				admins.POST("", h.Account.Create)
				admins.PUT("/:idx", h.Account.Update)
				admins.DELETE("/:idx", h.Account.Delete)
				admins.POST("/:idx/password-reset", h.Account.ResetPassword)
				admins.PUT("/:idx/unlock", h.Account.Unlock)
			}

			logs := s.Group("/logs", sec.RequireCapability(authz.ViewLogs))
			{
				logs.GET("/logins", h.Log.Logins)
				logs.GET("/activities", h.Log.Activities)
			}
		}
	}

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, http.StatusNotFound, retcode.NOT_EXISTS, "")
	})
	return r
}
