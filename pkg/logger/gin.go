package logger

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

// GinLogger writes one structured record per request. Paths in skip are
// not logged.
func GinLogger(lg *slog.Logger, skip ...string) gin.HandlerFunc {
	skipped := lo.SliceToMap(skip, func(p string) (string, struct{}) {
		return p, struct{}{}
	})
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		c.Next()

		if _, ok := skipped[path]; ok {
			return
		}
		status := c.Writer.Status()
		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		attrs := []any{
			"method", c.Request.Method,
			"path", path,
			"status", status,
			"latency", time.Since(start).String(),
			"client_ip", c.ClientIP(),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, "errors", c.Errors.ByType(gin.ErrorTypePrivate).String())
		}
		lg.Log(c.Request.Context(), level, "http request", attrs...)
	}
}
