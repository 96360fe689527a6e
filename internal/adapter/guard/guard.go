// Package guard stores one-time challenge keys per client session.
//
// Every backend keeps a single flat keyspace; Session scopes it to one
// session id so keys issued to one client are invisible to another.
package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dayanaadylkhanova/powcaptcha/internal/service"
)

type Kind string

const (
	KindMemory Kind = "memory"
	KindEtcd   Kind = "etcd"
	KindNATS   Kind = "nats"
)

// DefaultTTL outlives the default challenge expiration.
const DefaultTTL = 10 * time.Minute

const (
	valueOutstanding = "1"
	valueConsumed    = "0"
)

var (
	ErrUnknownKind  = errors.New("unknown store backend")
	ErrEmptySession = errors.New("empty session id")
)

// Backend is a replay guard shared by all sessions.
type Backend interface {
	service.SessionStore
	Session(id string) service.SessionStore
	Ping(ctx context.Context) error
	Close() error
}

type Options struct {
	Kind Kind
	// TTL bounds how long a key, outstanding or consumed, is remembered.
	TTL        time.Duration
	MaxEntries int64

	EtcdEndpoints []string
	EtcdPrefix    string

	NatsURL    string
	NatsBucket string
}

func Open(ctx context.Context, log *slog.Logger, opts Options) (Backend, error) {
	switch Kind(strings.ToLower(string(opts.Kind))) {
	case KindMemory, "":
		return NewMemory(opts.TTL, opts.MaxEntries), nil
	case KindEtcd:
		return NewEtcd(ctx, log, opts.EtcdEndpoints, opts.EtcdPrefix, opts.TTL)
	case KindNATS:
		return NewJetStream(ctx, log, opts.NatsURL, opts.NatsBucket, opts.TTL)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, opts.Kind)
	}
}

type scoped struct {
	b  service.SessionStore
	id string
}

func newScoped(b service.SessionStore, id string) service.SessionStore {
	return &scoped{b: b, id: id}
}

func (s *scoped) key(k string) (string, error) {
	if s.id == "" {
		return "", ErrEmptySession
	}
	return s.id + "." + k, nil
}

func (s *scoped) Get(ctx context.Context, k string) (bool, error) {
	key, err := s.key(k)
	if err != nil {
		return false, err
	}
	return s.b.Get(ctx, key)
}

func (s *scoped) Set(ctx context.Context, k string, outstanding bool) error {
	key, err := s.key(k)
	if err != nil {
		return err
	}
	return s.b.Set(ctx, key, outstanding)
}

func (s *scoped) ConsumeIfPresent(ctx context.Context, k string) (bool, error) {
	key, err := s.key(k)
	if err != nil {
		return false, err
	}
	return s.b.ConsumeIfPresent(ctx, key)
}

func encode(outstanding bool) string {
	if outstanding {
		return valueOutstanding
	}
	return valueConsumed
}
