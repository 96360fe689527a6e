package web

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	SessionCookie = "powcaptcha_session"

	sessionCtxKey = "powcaptcha.session"
	sessionMaxAge = 24 * time.Hour
)

// sessions assigns every client a random session id kept in a cookie.
// Ids that are not UUIDs are replaced.
func (s *Server) sessions(c *gin.Context) {
	id, err := c.Cookie(SessionCookie)
	if err == nil {
		if _, perr := uuid.Parse(id); perr != nil {
			err = perr
		}
	}
	if err != nil {
		id = uuid.NewString()
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(SessionCookie, id, int(sessionMaxAge.Seconds()), "/", "", s.opts.SecureCookie, true)
	}
	c.Set(sessionCtxKey, id)
	c.Next()
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionCtxKey)
}

func (s *Server) observe(c *gin.Context) {
	c.Next()
	s.metrics.HTTPRequest(c.FullPath(), c.Writer.Status())
}

func (s *Server) rateLimit(c *gin.Context) {
	if !s.limiter.Allow(c.ClientIP()) {
		s.log.Debug("challenge request rate limited", "client_ip", c.ClientIP())
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
		return
	}
	c.Next()
}
