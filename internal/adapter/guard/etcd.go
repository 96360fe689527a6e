package guard

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"time"

	"github.com/dayanaadylkhanova/powcaptcha/internal/service"
	clientv3 "go.etcd.io/etcd/client/v3"
)

const (
	DefaultEtcdPrefix = "/powcaptcha"

	defaultEtcdTimeout = 5 * time.Second
)

// Etcd shares keys between server replicas. Every key is attached to a
// lease so etcd forgets it after the TTL.
type Etcd struct {
	log    *slog.Logger
	client *clientv3.Client
	prefix string
	ttl    time.Duration
	owned  bool
}

func NewEtcd(ctx context.Context, log *slog.Logger, endpoints []string, prefix string, ttl time.Duration) (*Etcd, error) {
	cli, err := clientv3.New(clientv3.Config{
		Endpoints:   endpoints,
		DialTimeout: defaultEtcdTimeout,
		Context:     ctx,
	})
	if err != nil {
		return nil, fmt.Errorf("etcd client: %w", err)
	}
	log.Info("connecting to etcd", "endpoints", endpoints)
	e := NewEtcdWithClient(log, cli, prefix, ttl)
	e.owned = true
	return e, nil
}

// NewEtcdWithClient uses an existing client; Close leaves it open.
func NewEtcdWithClient(log *slog.Logger, cli *clientv3.Client, prefix string, ttl time.Duration) *Etcd {
	if prefix == "" {
		prefix = DefaultEtcdPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Etcd{log: log, client: cli, prefix: prefix, ttl: ttl}
}

func (e *Etcd) Session(id string) service.SessionStore { return newScoped(e, id) }

func (e *Etcd) qualified(key string) string {
	return path.Join(e.prefix, key)
}

func (e *Etcd) Get(ctx context.Context, key string) (bool, error) {
	resp, err := e.client.Get(ctx, e.qualified(key))
	if err != nil {
		return false, fmt.Errorf("etcd get: %w", err)
	}
	if len(resp.Kvs) == 0 {
		return false, nil
	}
	return string(resp.Kvs[0].Value) == valueOutstanding, nil
}

func (e *Etcd) Set(ctx context.Context, key string, outstanding bool) error {
	lease, err := e.client.Grant(ctx, int64(e.ttl.Seconds()))
	if err != nil {
		return fmt.Errorf("etcd grant: %w", err)
	}
	if _, err := e.client.Put(ctx, e.qualified(key), encode(outstanding), clientv3.WithLease(lease.ID)); err != nil {
		return fmt.Errorf("etcd put: %w", err)
	}
	return nil
}

// ConsumeIfPresent flips "1" to "0" in a single transaction, keeping the
// key's lease.
func (e *Etcd) ConsumeIfPresent(ctx context.Context, key string) (bool, error) {
	k := e.qualified(key)
	resp, err := e.client.Txn(ctx).
		If(clientv3.Compare(clientv3.Value(k), "=", valueOutstanding)).
		Then(clientv3.OpPut(k, valueConsumed, clientv3.WithIgnoreLease())).
		Commit()
	if err != nil {
		return false, fmt.Errorf("etcd txn: %w", err)
	}
	return resp.Succeeded, nil
}

func (e *Etcd) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, defaultEtcdTimeout)
	defer cancel()
	_, err := e.client.Get(ctx, e.prefix, clientv3.WithCountOnly())
	return err
}

func (e *Etcd) Close() error {
	if !e.owned {
		return nil
	}
	e.log.Debug("closing etcd client")
	return e.client.Close()
}
