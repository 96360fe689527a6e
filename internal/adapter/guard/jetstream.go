package guard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dayanaadylkhanova/powcaptcha/internal/service"
	"github.com/nats-io/nats.go"
)

const DefaultNatsBucket = "powcaptcha"

// JetStream keeps keys in a NATS KV bucket whose TTL expires them.
// Consumption is a compare-and-set on the entry revision.
type JetStream struct {
	log *slog.Logger
	nc  *nats.Conn
	kv  nats.KeyValue
}

func NewJetStream(ctx context.Context, log *slog.Logger, url, bucket string, ttl time.Duration) (*JetStream, error) {
	nc, err := nats.Connect(url,
		nats.Name("powcaptcha"),
		nats.MaxReconnects(-1),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(c *nats.Conn, err error) {
			log.Warn("disconnected from jetstream", "err", err)
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			log.Info("reconnected to jetstream",
				"server", c.ConnectedAddr(),
				"id", c.ConnectedServerId(),
			)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := nc.JetStream(nats.Context(ctx))
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	s, err := NewJetStreamWithContext(log, js, bucket, ttl)
	if err != nil {
		nc.Close()
		return nil, err
	}
	s.nc = nc
	return s, nil
}

// NewJetStreamWithContext creates (or opens) the bucket on an existing
// JetStream context. Close leaves the connection open.
func NewJetStreamWithContext(log *slog.Logger, js nats.JetStreamContext, bucket string, ttl time.Duration) (*JetStream, error) {
	if bucket == "" {
		bucket = DefaultNatsBucket
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	kv, err := js.CreateKeyValue(&nats.KeyValueConfig{
		Bucket:      bucket,
		Description: "powcaptcha challenge keys",
		TTL:         ttl,
		History:     1,
		Storage:     nats.FileStorage,
		Replicas:    1,
	})
	if err != nil {
		return nil, fmt.Errorf("create bucket %q: %w", bucket, err)
	}
	log.Info("jetstream bucket ready", "bucket", bucket, "ttl", ttl.String())
	return &JetStream{log: log, kv: kv}, nil
}

func (j *JetStream) Session(id string) service.SessionStore { return newScoped(j, id) }

func (j *JetStream) Get(_ context.Context, key string) (bool, error) {
	entry, err := j.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv get: %w", err)
	}
	return string(entry.Value()) == valueOutstanding, nil
}

func (j *JetStream) Set(_ context.Context, key string, outstanding bool) error {
	if _, err := j.kv.PutString(key, encode(outstanding)); err != nil {
		return fmt.Errorf("kv put: %w", err)
	}
	return nil
}

func (j *JetStream) ConsumeIfPresent(_ context.Context, key string) (bool, error) {
	entry, err := j.kv.Get(key)
	if errors.Is(err, nats.ErrKeyNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("kv get: %w", err)
	}
	if string(entry.Value()) != valueOutstanding {
		return false, nil
	}
	_, err = j.kv.Update(key, []byte(valueConsumed), entry.Revision())
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, nats.ErrKeyExists):
		// another submission won the revision
		return false, nil
	default:
		return false, fmt.Errorf("kv update: %w", err)
	}
}

func (j *JetStream) Ping(context.Context) error {
	if j.nc == nil {
		return nil
	}
	if _, err := j.nc.RTT(); err != nil {
		return fmt.Errorf("nats rtt: %w", err)
	}
	return nil
}

func (j *JetStream) Close() error {
	if j.nc != nil {
		j.log.Debug("closing nats connection")
		j.nc.Close()
	}
	return nil
}
