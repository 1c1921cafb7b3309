package observability

import (
	"time"

	"garden-console/internal/logging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AccessLog method, path, status, latency, ip. trace_id / admin_id 는 요청 컨텍스트에서 붙는다.
func AccessLog(l *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		lg := l.WithContext(c.Request.Context())
		if c.Writer.Status() >= 500 {
			lg.Warn("http_access", fields...)
			return
		}
		lg.Info("http_access", fields...)
	}
}
