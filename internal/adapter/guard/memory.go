package guard

import (
	"context"
	"sync"
	"time"

	"github.com/dayanaadylkhanova/powcaptcha/internal/service"
	"github.com/karlseguin/ccache/v3"
)

const DefaultMaxEntries = 100_000

// Memory keeps keys in a size-bounded TTL cache. It is only safe for a
// single server process.
type Memory struct {
	mu    sync.Mutex
	cache *ccache.Cache[bool]
	ttl   time.Duration
	once  sync.Once
}

func NewMemory(ttl time.Duration, maxEntries int64) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		cache: ccache.New(ccache.Configure[bool]().MaxSize(maxEntries).ItemsToPrune(15)),
		ttl:   ttl,
	}
}

func (m *Memory) Session(id string) service.SessionStore { return newScoped(m, id) }

func (m *Memory) Get(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.outstanding(key), nil
}

func (m *Memory) Set(_ context.Context, key string, outstanding bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache.Set(key, outstanding, m.ttl)
	return nil
}

func (m *Memory) ConsumeIfPresent(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.outstanding(key) {
		return false, nil
	}
	// Replace keeps the existing expiry.
	return m.cache.Replace(key, false), nil
}

func (m *Memory) outstanding(key string) bool {
	item := m.cache.Get(key)
	if item == nil || item.Expired() {
		return false
	}
	return item.Value()
}

func (m *Memory) Ping(context.Context) error { return nil }

func (m *Memory) Close() error {
	m.once.Do(m.cache.Stop)
	return nil
}
