package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/dayanaadylkhanova/powcaptcha/internal/adapter/ratelimit"
	"github.com/dayanaadylkhanova/powcaptcha/pkg/logger"
)

const (
	RoutePrefix      = "/powcaptcha"
	ChallengePath    = RoutePrefix + "/challenge"
	WidgetPath       = RoutePrefix + "/widget"
	VerifyPath       = RoutePrefix + "/verify"
	HealthzPath      = "/healthz"
	MetricsPath      = "/metrics"
	TokenHeader      = "X-CSRF-Token"
	DefaultField     = "altcha"
	DefaultAutosolve = "onfocus"

	defaultShutdownWait = 5 * time.Second

	tokenParam = "token"
)

type Options struct {
	Addr         string
	MetricsAddr  string
	ShutdownWait time.Duration

	FieldName    string
	Autosolve    string
	Labels       *WidgetStrings
	SecureCookie bool

	RateLimit rate.Limit
	RateBurst int
}

type Server struct {
	log      *slog.Logger
	opts     Options
	captcha  Captcha
	store    Sessions
	tokens   *Tokens
	metrics  Metrics
	limiter  *ratelimit.PerIP
	labels   WidgetStrings
	router   *gin.Engine
	mrouter  *gin.Engine
	boundAPI chan string
}

func NewServer(log *slog.Logger, opts Options, captcha Captcha, store Sessions, tokens *Tokens, metrics Metrics) *Server {
	if opts.FieldName == "" {
		opts.FieldName = DefaultField
	}
	if opts.Autosolve == "" {
		opts.Autosolve = DefaultAutosolve
	}
	if opts.ShutdownWait <= 0 {
		opts.ShutdownWait = defaultShutdownWait
	}
	s := &Server{
		log:      log,
		opts:     opts,
		captcha:  captcha,
		store:    store,
		tokens:   tokens,
		metrics:  metrics,
		limiter:  ratelimit.New(opts.RateLimit, opts.RateBurst),
		labels:   DefaultWidgetStrings,
		boundAPI: make(chan string, 1),
	}
	if opts.Labels != nil {
		s.labels = *opts.Labels
	}
	s.router = s.newRouter()
	s.mrouter = s.newMetricsRouter()
	return s
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(
		logger.GinLogger(s.log),
		gin.Recovery(),
		s.observe,
	)
	g := router.Group(RoutePrefix, s.sessions)
	g.GET("/widget", s.widget)
	g.GET("/challenge", s.rateLimit, s.challenge)
	g.POST("/verify", s.verify)
	return router
}

func (s *Server) newMetricsRouter() *gin.Engine {
	router := gin.New()
	router.Use(logger.GinLogger(s.log, HealthzPath), gin.Recovery())
	router.GET(HealthzPath, s.healthz)
	router.GET(MetricsPath, gin.WrapH(s.metrics.Handler()))
	return router
}

// Handler is the public API router.
func (s *Server) Handler() http.Handler { return s.router }

// MetricsHandler serves /healthz and /metrics.
func (s *Server) MetricsHandler() http.Handler { return s.mrouter }

// Run serves until ctx is canceled, then drains both listeners within
// ShutdownWait.
func (s *Server) Run(ctx context.Context) error {
	defer s.limiter.Stop()

	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	servers := []*http.Server{{Handler: s.router, ReadHeaderTimeout: 10 * time.Second}}
	listeners := []net.Listener{ln}

	if s.opts.MetricsAddr != "" {
		mln, err := net.Listen("tcp", s.opts.MetricsAddr)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("listen metrics: %w", err)
		}
		servers = append(servers, &http.Server{Handler: s.mrouter, ReadHeaderTimeout: 10 * time.Second})
		listeners = append(listeners, mln)
		s.log.Info("metrics server started", "addr", mln.Addr().String())
	}
	s.log.Info("http server started", "addr", ln.Addr().String())
	s.boundAPI <- ln.Addr().String()

	errCh := make(chan error, len(servers))
	for i := range servers {
		srv, l := servers[i], listeners[i]
		go func() {
			if err := srv.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	select {
	case <-ctx.Done():
		s.log.Info("shutdown: draining http servers")
		sctx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownWait)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			if err := srv.Shutdown(sctx); err != nil {
				s.log.Warn("shutdown: force-close http server", "err", err)
				errs = append(errs, srv.Close())
			}
		}
		return errors.Join(errs...)
	case err := <-errCh:
		for _, srv := range servers {
			_ = srv.Close()
		}
		return fmt.Errorf("serve: %w", err)
	}
}

// Addr blocks until Run has bound the API listener.
func (s *Server) Addr(ctx context.Context) (string, error) {
	select {
	case addr := <-s.boundAPI:
		return addr, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
