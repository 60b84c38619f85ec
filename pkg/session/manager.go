package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/runner"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed lock outlives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// ErrSessionNotFound is returned for container IDs with no live session.
var ErrSessionNotFound = errors.New("session not found")

// Factory creates the rendered target of a new session. The target's first
// pass must already be scheduled; Open flushes it.
type Factory func(ctx context.Context, id string) (runner.Target, error)

// Session is a live container.
type Session struct {
	ID      string
	Target  runner.Target
	Created time.Time
}

// Frame is a container's committed tree together with the report of the
// commit that produced it.
type Frame struct {
	ID     string
	Tree   *domain.Snapshot
	Report domain.CommitReport
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates container access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store   ports.SnapshotStore
	factory Factory

	mu       sync.Mutex
	locks    map[string]*lockEntry
	sessions map[string]*Session

	locker  ports.DistributedLocker
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager that builds sessions with factory and
// persists their snapshots to store.
func NewManager(store ports.SnapshotStore, factory Factory, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		factory:  factory,
		locks:    make(map[string]*lockEntry),
		sessions: make(map[string]*Session),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller must lock entry.mu, and call release(id) after unlocking.
func (m *Manager) acquire(id string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		entry = &lockEntry{}
		m.locks[id] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[id]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, id)
	}
}

// WithLock executes fn while holding the lock for the container.
func (m *Manager) WithLock(ctx context.Context, id string, fn func(context.Context) error) error {
	entry := m.acquire(id)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(id)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, id, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"container_id", id,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Open returns the live session for id, creating, flushing and persisting
// it when absent. An empty id gets a generated one.
func (m *Manager) Open(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		id = uuid.NewString()
	}

	var sess *Session
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		if existing := m.get(id); existing != nil {
			sess = existing
			return nil
		}

		target, err := m.factory(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to create session %s: %w", id, err)
		}
		created := &Session{ID: id, Target: target, Created: time.Now()}
		if err := m.commit(ctx, created); err != nil {
			return err
		}

		m.mu.Lock()
		m.sessions[id] = created
		m.mu.Unlock()
		sess = created

		m.logger.Info("Session opened", "container_id", id)
		return nil
	})
	return sess, err
}

// Do runs fn on the live session under its lock, then flushes the pass fn
// scheduled (if any) and persists the new snapshot.
func (m *Manager) Do(ctx context.Context, id string, fn func(context.Context, *Session) error) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		return m.run(ctx, id, fn)
	})
}

// run is Do for callers already holding the lock.
func (m *Manager) run(ctx context.Context, id string, fn func(context.Context, *Session) error) error {
	sess := m.get(id)
	if sess == nil {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if err := fn(ctx, sess); err != nil {
		return err
	}
	return m.commit(ctx, sess)
}

// Dispatch delivers an event to the node whose id attribute is target and
// commits whatever the listener scheduled.
func (m *Manager) Dispatch(ctx context.Context, id, target, event string, payload any) (bool, error) {
	_, handled, err := m.DispatchFrame(ctx, id, target, event, payload)
	return handled, err
}

// DispatchFrame is Dispatch returning the frame left by its own commit,
// captured before the container lock is released.
func (m *Manager) DispatchFrame(ctx context.Context, id, target, event string, payload any) (Frame, bool, error) {
	var (
		frame   Frame
		handled bool
	)
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		err := m.run(ctx, id, func(ctx context.Context, s *Session) error {
			var err error
			handled, err = s.Target.Dispatch(target, event, payload)
			return err
		})
		if err != nil {
			return err
		}
		frame, err = m.capture(id)
		return err
	})
	return frame, handled, err
}

// Frame reads the committed tree and last report of a live session.
func (m *Manager) Frame(ctx context.Context, id string) (Frame, error) {
	var frame Frame
	err := m.WithLock(ctx, id, func(ctx context.Context) error {
		var err error
		frame, err = m.capture(id)
		return err
	})
	return frame, err
}

// capture must run under the session lock.
func (m *Manager) capture(id string) (Frame, error) {
	sess := m.get(id)
	if sess == nil {
		return Frame{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	snap, err := sess.Target.Snapshot()
	if err != nil {
		return Frame{}, fmt.Errorf("failed to snapshot session %s: %w", id, err)
	}
	return Frame{ID: id, Tree: snap, Report: sess.Target.LastCommit()}, nil
}

// commit flushes pending work and saves the snapshot when a commit happened.
func (m *Manager) commit(ctx context.Context, s *Session) error {
	before := s.Target.LastCommit().Pass
	if err := runner.Flush(ctx, s.Target); err != nil {
		return err
	}
	report := s.Target.LastCommit()
	if report.Pass == before && before != 0 {
		return nil
	}

	snap, err := s.Target.Snapshot()
	if err != nil {
		return fmt.Errorf("failed to snapshot session %s: %w", s.ID, err)
	}
	if err := m.store.Save(ctx, s.ID, snap); err != nil {
		return fmt.Errorf("failed to persist session %s: %w", s.ID, err)
	}
	m.logger.Debug("Session committed", "container_id", s.ID, "pass", report.Pass, "effects", len(report.Effects))
	return nil
}

// Get returns the live session for id.
func (m *Manager) Get(id string) (*Session, bool) {
	s := m.get(id)
	return s, s != nil
}

func (m *Manager) get(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[id]
}

// Snapshot returns the last persisted frame of a container, live or not.
func (m *Manager) Snapshot(ctx context.Context, id string) (*domain.Snapshot, error) {
	return m.store.Load(ctx, id)
}

// Close drops the live session and its persisted snapshot.
func (m *Manager) Close(ctx context.Context, id string) error {
	return m.WithLock(ctx, id, func(ctx context.Context) error {
		m.mu.Lock()
		delete(m.sessions, id)
		m.mu.Unlock()
		return m.store.Delete(ctx, id)
	})
}

// Live returns the IDs of the sessions held in this process, sorted.
func (m *Manager) Live() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// List delegates to the store: every container with a persisted snapshot.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying snapshot store.
func (m *Manager) Store() ports.SnapshotStore {
	return m.store
}
