package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dayanaadylkhanova/powcaptcha/pkg/logger"
)

type options struct {
	timeout time.Duration
	workers int
	level   string
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func main() {
	var opts options
	var log *slog.Logger

	root := &cobra.Command{
		Use:           "powcaptcha-client",
		Short:         "Solve a powcaptcha challenge over TCP or HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			log = logger.NewJSON(logger.LevelFromEnv(opts.level), "powcaptcha-client")
		},
	}
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", 60*time.Second, "overall deadline")
	root.PersistentFlags().IntVar(&opts.workers, "workers", runtime.NumCPU(), "solver goroutines")
	root.PersistentFlags().StringVar(&opts.level, "log-level", getenv("LOG_LEVEL", "info"), "log level")

	root.AddCommand(
		buildTCPCmd(&opts, func() *slog.Logger { return log }),
		buildHTTPCmd(&opts, func() *slog.Logger { return log }),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		if log != nil {
			log.Error("client failed", slog.Any("err", err))
		}
		stop()
		os.Exit(1)
	}
}
