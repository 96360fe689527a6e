// Package ratelimit throttles challenge issuance per client IP.
package ratelimit

import (
	"net"
	"sync"
	"time"

	"github.com/karlseguin/ccache/v3"
	"golang.org/x/time/rate"
)

const (
	idle       = 10 * time.Minute
	maxClients = 10_000
)

// PerIP keeps one token bucket per client IP. Idle buckets are evicted by
// the cache. A zero or infinite limit disables it.
type PerIP struct {
	limit   rate.Limit
	burst   int
	buckets *ccache.Cache[*rate.Limiter]
	once    sync.Once
}

func New(limit rate.Limit, burst int) *PerIP {
	if burst <= 0 {
		burst = 1
	}
	return &PerIP{
		limit:   limit,
		burst:   burst,
		buckets: ccache.New(ccache.Configure[*rate.Limiter]().MaxSize(maxClients)),
	}
}

func (l *PerIP) Allow(ip string) bool {
	if l == nil || l.limit <= 0 || l.limit == rate.Inf {
		return true
	}
	item, err := l.buckets.Fetch(ip, idle, func() (*rate.Limiter, error) {
		return rate.NewLimiter(l.limit, l.burst), nil
	})
	if err != nil {
		return true
	}
	item.Extend(idle)
	return item.Value().Allow()
}

// AllowAddr limits by the host part of addr.
func (l *PerIP) AllowAddr(addr net.Addr) bool {
	if addr == nil {
		return l.Allow("")
	}
	host, _, err := net.SplitHostPort(addr.String())
	if err != nil {
		host = addr.String()
	}
	return l.Allow(host)
}

func (l *PerIP) Stop() {
	if l == nil {
		return
	}
	l.once.Do(l.buckets.Stop)
}
