package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dayanaadylkhanova/powcaptcha/internal/entity"
)

const verificationFailed = "verification failed"

func (s *Server) widget(c *gin.Context) {
	token := s.tokens.Issue(sessionID(c))
	markup, err := renderWidget(
		s.opts.FieldName,
		c.Query("id"),
		c.Query("class"),
		s.opts.Autosolve,
		s.labels,
		ChallengePath,
		token,
	)
	if err != nil {
		s.log.Error("widget render failed", "err", err)
		c.Status(http.StatusInternalServerError)
		return
	}
	c.Header(TokenHeader, token)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/html; charset=utf-8", markup)
}

// challenge hands out a fresh challenge. Requests without a valid
// anti-forgery token get an empty object.
func (s *Server) challenge(c *gin.Context) {
	id := sessionID(c)
	token := c.Query(tokenParam)
	if token == "" {
		token = c.GetHeader(TokenHeader)
	}
	if !s.tokens.Valid(id, token) {
		s.log.Debug("challenge request without valid token", "client_ip", c.ClientIP())
		c.JSON(http.StatusForbidden, gin.H{})
		return
	}

	ch, err := s.captcha.IssueChallenge(c.Request.Context(), s.store.Session(id))
	if err != nil {
		s.log.Error("challenge create failed", "err", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "challenge unavailable"})
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, ch)
}

// verify accepts the solution either as a form field or as
// {"payload": "..."}.
func (s *Server) verify(c *gin.Context) {
	code := c.PostForm(s.opts.FieldName)
	if code == "" && strings.HasPrefix(c.ContentType(), gin.MIMEJSON) {
		var sol entity.Solution
		if err := c.ShouldBindJSON(&sol); err == nil {
			code = sol.Payload
		}
	}

	if !s.captcha.CheckAnswer(c.Request.Context(), s.store.Session(sessionID(c)), code) {
		c.JSON(http.StatusUnprocessableEntity, entity.VerifyResult{Verified: false, Error: verificationFailed})
		return
	}
	c.JSON(http.StatusOK, entity.VerifyResult{Verified: true})
}

func (s *Server) healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := s.store.Ping(ctx); err != nil {
		s.log.Warn("healthz: session store unreachable", "err", err)
		c.String(http.StatusServiceUnavailable, "session store unavailable")
		return
	}
	c.String(http.StatusOK, "ok")
}
