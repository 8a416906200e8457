package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// SessionsBucket is the KV bucket holding all run artifacts.
const SessionsBucket = "ARCHFLOW_SESSIONS"

// DefaultSessionTTL bounds how long abandoned run state is retained.
const DefaultSessionTTL = 30 * 24 * time.Hour

// NATSStore persists run artifacts in a NATS JetStream KV bucket.
type NATSStore struct {
	bucket jetstream.KeyValue
	logger *slog.Logger
}

// NATSStoreOption configures a NATSStore.
type NATSStoreOption func(*natsStoreConfig)

type natsStoreConfig struct {
	ttl    time.Duration
	logger *slog.Logger
}

// WithSessionTTL overrides the bucket TTL for run artifacts.
func WithSessionTTL(ttl time.Duration) NATSStoreOption {
	return func(c *natsStoreConfig) {
		c.ttl = ttl
	}
}

// WithLogger sets the logger for the store.
func WithLogger(logger *slog.Logger) NATSStoreOption {
	return func(c *natsStoreConfig) {
		c.logger = logger
	}
}

// NewNATSStore connects the store to a JetStream KV bucket, creating the
// bucket when it does not exist yet. The context bounds bucket creation.
func NewNATSStore(ctx context.Context, nc *nats.Conn, opts ...NATSStoreOption) (*NATSStore, error) {
	if nc == nil {
		return nil, fmt.Errorf("session: NATS connection required")
	}

	cfg := natsStoreConfig{
		ttl:    DefaultSessionTTL,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("session: get jetstream: %w", err)
	}

	// CreateOrUpdateKeyValue is idempotent and handles race conditions
	bucket, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      SessionsBucket,
		Description: "Design pipeline session artifacts",
		TTL:         cfg.ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("session: create/update kv bucket: %w", err)
	}

	return &NATSStore{bucket: bucket, logger: cfg.logger}, nil
}

// Save writes a JSON-encoded value under the scoped key. Last write wins.
func (s *NATSStore) Save(ctx context.Context, scope Scope, key string, value any) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("session: marshal %s: %w", key, err)
	}

	if _, err := s.bucket.Put(ctx, kvKey(scope, key), data); err != nil {
		return fmt.Errorf("session: save %s: %w", key, err)
	}

	s.logger.Debug("session value saved",
		"scope", scope.String(),
		"key", key,
		"bytes", len(data))
	return nil
}

// Load reads the scoped key into out. Returns ErrNotFound for keys that
// were never written.
func (s *NATSStore) Load(ctx context.Context, scope Scope, key string, out any) error {
	if err := scope.Validate(); err != nil {
		return err
	}

	entry, err := s.bucket.Get(ctx, kvKey(scope, key))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s in %s", ErrNotFound, key, scope.String())
		}
		return fmt.Errorf("session: load %s: %w", key, err)
	}

	if err := json.Unmarshal(entry.Value(), out); err != nil {
		return fmt.Errorf("session: unmarshal %s: %w", key, err)
	}
	return nil
}

// kvKey builds the bucket key for a scoped value. NATS KV keys allow
// [-/_=.a-zA-Z0-9] with '.' as the hierarchy separator, so scope components
// are sanitized before joining.
func kvKey(scope Scope, key string) string {
	return strings.Join([]string{
		sanitizeKeyPart(scope.MemoryID),
		sanitizeKeyPart(scope.SessionID),
		sanitizeKeyPart(scope.ActorID),
		sanitizeKeyPart(key),
	}, ".")
}

func sanitizeKeyPart(part string) string {
	var b strings.Builder
	b.Grow(len(part))
	for _, r := range part {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '_', r == '=':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
