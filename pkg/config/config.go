package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/dayanaadylkhanova/powcaptcha/internal/entity"
)

var (
	ErrMissingSecret    = errors.New("POW_SECRET is required")
	ErrInvalidAutosolve = errors.New("invalid POW_AUTOSOLVE")
)

var autosolveModes = []string{"off", "onfocus", "onload", "onsubmit"}

type Config struct {
	ListenAddr        string
	TCPListenAddr     string
	MetricsListenAddr string
	LogLevel          string
	ShutdownWait      time.Duration
	SecureCookie      bool

	PowDifficulty string
	PowMaxNumber  int64
	PowExpiration time.Duration
	PowAutosolve  string
	PowSecret     string
	PowFieldName  string

	StoreBackend    string
	StoreMaxEntries int64
	EtcdEndpoints   []string
	EtcdPrefix      string
	NatsURL         string
	NatsBucket      string

	RateLimit float64
	RateBurst int
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

func atoi64(s string, def int64) int64 {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	return def
}

func atof(s string, def float64) float64 {
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return def
}

// seconds accepts a Go duration or a plain number of seconds.
func seconds(s string, def time.Duration) time.Duration {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(n) * time.Second
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d
	}
	return def
}

func list(s string) []string {
	return lo.Compact(lo.Map(strings.Split(s, ","), func(v string, _ int) string {
		return strings.TrimSpace(v)
	}))
}

func Parse() Config {
	wait, _ := time.ParseDuration(getenv("SHUTDOWN_WAIT", "5s"))
	secure, _ := strconv.ParseBool(getenv("COOKIE_SECURE", "false"))
	return Config{
		ListenAddr:        getenv("LISTEN_ADDR", ":8080"),
		TCPListenAddr:     os.Getenv("TCP_LISTEN_ADDR"),
		MetricsListenAddr: getenv("METRICS_LISTEN_ADDR", ":9090"),
		LogLevel:          getenv("LOG_LEVEL", "info"),
		ShutdownWait:      wait,
		SecureCookie:      secure,

		PowDifficulty: getenv("POW_DIFFICULTY", "moderate"),
		PowMaxNumber:  atoi64(getenv("POW_MAXNUMBER", "250000"), 250000),
		PowExpiration: seconds(getenv("POW_EXPIRATION", "300"), 300*time.Second),
		PowAutosolve:  strings.ToLower(getenv("POW_AUTOSOLVE", "onfocus")),
		PowSecret:     os.Getenv("POW_SECRET"),
		PowFieldName:  getenv("POW_FIELD_NAME", "altcha"),

		StoreBackend:    strings.ToLower(getenv("STORE_BACKEND", "memory")),
		StoreMaxEntries: atoi64(getenv("STORE_MAX_ENTRIES", "100000"), 100000),
		EtcdEndpoints:   list(getenv("ETCD_ENDPOINTS", "127.0.0.1:2379")),
		EtcdPrefix:      getenv("ETCD_PREFIX", "/powcaptcha"),
		NatsURL:         getenv("NATS_URL", "nats://127.0.0.1:4222"),
		NatsBucket:      getenv("NATS_BUCKET", "powcaptcha"),

		RateLimit: atof(getenv("RATE_LIMIT", "1"), 1),
		RateBurst: atoi(getenv("RATE_BURST", "5"), 5),
	}
}

// Difficulty resolves POW_DIFFICULTY together with POW_MAXNUMBER.
func (c Config) Difficulty() (entity.Difficulty, error) {
	return entity.ParseDifficulty(c.PowDifficulty, c.PowMaxNumber)
}

func (c Config) Validate() error {
	if c.PowSecret == "" {
		return ErrMissingSecret
	}
	if _, err := c.Difficulty(); err != nil {
		return fmt.Errorf("POW_DIFFICULTY: %w", err)
	}
	if c.PowExpiration <= 0 {
		return fmt.Errorf("POW_EXPIRATION must be positive, got %s", c.PowExpiration)
	}
	if !lo.Contains(autosolveModes, c.PowAutosolve) {
		return fmt.Errorf("%w: %q", ErrInvalidAutosolve, c.PowAutosolve)
	}
	return nil
}
