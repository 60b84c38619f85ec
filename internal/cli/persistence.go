package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/arbor/internal/adapters/file"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/pkg/adapters/bolt"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/persistence/middleware"
	"github.com/aretw0/arbor/pkg/ports"
)

// Persistence bundles the configured snapshot store with the resources it holds.
type Persistence struct {
	Store ports.SnapshotStore
	// Locker is set for the redis backend when redis.lock is enabled.
	Locker ports.DistributedLocker
	close  func() error
}

// Close releases the backend connection, if any.
func (p *Persistence) Close() error {
	if p.close == nil {
		return nil
	}
	return p.close()
}

// OpenPersistence builds the snapshot store named by cfg.Snapshot.Backend and
// wraps it with the redaction and encryption middlewares when configured.
// Redaction runs first so masked values never reach the cipher.
func OpenPersistence(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Persistence, error) {
	p := &Persistence{}

	switch cfg.Snapshot.Backend {
	case config.BackendMemory:
		p.Store = memory.NewStore()
	case config.BackendFile:
		p.Store = file.New(cfg.Snapshot.Path)
	case config.BackendBolt:
		store, err := bolt.Open(cfg.Snapshot.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to open bolt store: %w", err)
		}
		p.Store, p.close = store, store.Close
	case config.BackendRedis:
		opts := []redis.Option{redis.WithPrefix(cfg.Redis.Prefix)}
		if cfg.Redis.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.Redis.TTL))
		}
		store := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, opts...)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		if cfg.Redis.Lock {
			p.Locker = redis.NewLocker(store.Client(), cfg.Redis.Prefix)
		}
		p.Store, p.close = store, store.Close
	default:
		return nil, fmt.Errorf("unknown snapshot backend %q", cfg.Snapshot.Backend)
	}

	var mws []middleware.Middleware
	if len(cfg.Redact) > 0 {
		mw, err := middleware.NewRedactionMiddleware(cfg.Redact)
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		mws = append(mws, mw)
	}
	key, err := cfg.Key()
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	if key != nil {
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			_ = p.Close()
			return nil, err
		}
		mws = append(mws, mw)
	}
	p.Store = middleware.Chain(p.Store, mws...)

	logger.Debug("Snapshot store ready",
		"backend", cfg.Snapshot.Backend,
		"redacted", len(cfg.Redact) > 0,
		"encrypted", key != nil,
	)
	return p, nil
}
