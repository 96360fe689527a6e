package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/dayanaadylkhanova/powcaptcha/internal/adapter/guard"
	"github.com/dayanaadylkhanova/powcaptcha/internal/adapter/metrics"
	"github.com/dayanaadylkhanova/powcaptcha/internal/adapter/transport/tcp"
	"github.com/dayanaadylkhanova/powcaptcha/internal/adapter/transport/web"
	"github.com/dayanaadylkhanova/powcaptcha/internal/app"
	"github.com/dayanaadylkhanova/powcaptcha/internal/service"
	"github.com/dayanaadylkhanova/powcaptcha/pkg/config"
	"github.com/dayanaadylkhanova/powcaptcha/pkg/logger"
)

// keys outlive their challenge so an expired solution is still reported
// as expired instead of unknown
const guardTTLMargin = time.Minute

func main() {
	cfg := config.Parse()

	log := logger.NewJSON(logger.LevelFromEnv(cfg.LogLevel), "powcaptcha-server")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", slog.Any("err", err))
		os.Exit(2)
	}
	difficulty, _ := cfg.Difficulty()
	if logger.LevelFromEnv(cfg.LogLevel) > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	store, err := guard.Open(ctx, log, guard.Options{
		Kind:          guard.Kind(cfg.StoreBackend),
		TTL:           cfg.PowExpiration + guardTTLMargin,
		MaxEntries:    cfg.StoreMaxEntries,
		EtcdEndpoints: cfg.EtcdEndpoints,
		EtcdPrefix:    cfg.EtcdPrefix,
		NatsURL:       cfg.NatsURL,
		NatsBucket:    cfg.NatsBucket,
	})
	cancel()
	if err != nil {
		log.Error("open session store failed", slog.String("backend", cfg.StoreBackend), slog.Any("err", err))
		os.Exit(1)
	}
	defer store.Close()

	prom := metrics.NewPrometheus()

	captcha, err := service.NewPowCaptcha(log, service.Options{
		Difficulty: difficulty,
		Expiration: cfg.PowExpiration,
		Secret:     []byte(cfg.PowSecret),
	}, service.WithRecorder(prom))
	if err != nil {
		log.Error("captcha init failed", slog.Any("err", err))
		os.Exit(1)
	}

	tokens, err := web.NewTokens([]byte(cfg.PowSecret))
	if err != nil {
		log.Error("token init failed", slog.Any("err", err))
		os.Exit(1)
	}

	runners := []app.Runner{
		web.NewServer(log, web.Options{
			Addr:         cfg.ListenAddr,
			MetricsAddr:  cfg.MetricsListenAddr,
			ShutdownWait: cfg.ShutdownWait,
			FieldName:    cfg.PowFieldName,
			Autosolve:    cfg.PowAutosolve,
			SecureCookie: cfg.SecureCookie,
			RateLimit:    rate.Limit(cfg.RateLimit),
			RateBurst:    cfg.RateBurst,
		}, captcha, store, tokens, prom),
	}
	if cfg.TCPListenAddr != "" {
		runners = append(runners, tcp.NewServer(log, cfg.TCPListenAddr, cfg.PowExpiration, cfg.ShutdownWait, captcha, store, prom,
			tcp.WithRateLimit(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		))
	}

	log.Info("starting powcaptcha",
		slog.String("difficulty", difficulty.String()),
		slog.Int64("maxnumber", difficulty.MaxNumber()),
		slog.String("backend", cfg.StoreBackend),
		slog.Duration("expiration", cfg.PowExpiration),
	)

	if err := app.New(runners...).Run(); err != nil {
		log.Error("server stopped with error", slog.Any("err", err))
		store.Close()
		os.Exit(1)
	}
}
