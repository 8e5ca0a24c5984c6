package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// UserKey is the session key of a signed-in user's cart.
func UserKey(userID string) string {
	return "user:" + userID
}

// GuestKey is the session key of a guest cart.
func GuestKey(guestID string) string {
	return "guest:" + guestID
}

const (
	// DefaultIdleTTL is how long an untouched store stays open.
	DefaultIdleTTL = 30 * time.Minute
	// DefaultMaxOpen caps the number of open stores.
	DefaultMaxOpen = 10000
)

// Sessions owns the open cart stores. A store is created and hydrated on first use
// and dropped by Close when its session ends, when it has been idle for longer than
// the idle TTL, or when the registry is full and it is the least recently used. The
// snapshot outlives it.
type Sessions struct {
	mu        sync.Mutex
	stores    map[string]*session
	snapshots SnapshotStore
	logger    *zap.Logger

	idleTTL   time.Duration
	maxOpen   int
	lastSweep time.Time
	now       func() time.Time
}

type session struct {
	store    *Store
	lastUsed time.Time
}

// SessionsOption configures Sessions.
type SessionsOption func(*Sessions)

// WithIdleTTL sets how long an unused store stays open. Zero or less keeps the default.
func WithIdleTTL(d time.Duration) SessionsOption {
	return func(s *Sessions) {
		if d > 0 {
			s.idleTTL = d
		}
	}
}

// WithMaxOpen caps the number of open stores. Zero or less keeps the default.
func WithMaxOpen(n int) SessionsOption {
	return func(s *Sessions) {
		if n > 0 {
			s.maxOpen = n
		}
	}
}

func NewSessions(snapshots SnapshotStore, logger *zap.Logger, opts ...SessionsOption) *Sessions {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Sessions{
		stores:    make(map[string]*session),
		snapshots: snapshots,
		logger:    logger,
		idleTTL:   DefaultIdleTTL,
		maxOpen:   DefaultMaxOpen,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.lastSweep = s.now()
	return s
}

// Open returns the store for key. A store that is already open is reloaded from its
// snapshot; otherwise a new one is hydrated.
func (s *Sessions) Open(ctx context.Context, key string) *Store {
	s.mu.Lock()
	now := s.now()
	if now.Sub(s.lastSweep) >= s.idleTTL {
		s.evictIdleLocked(now)
	}
	if sess, ok := s.stores[key]; ok {
		sess.lastUsed = now
		s.mu.Unlock()
		sess.store.Refresh(ctx)
		return sess.store
	}
	s.mu.Unlock()

	fresh := Open(ctx, key, s.snapshots, s.logger)

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.stores[key]; ok {
		sess.lastUsed = s.now()
		return sess.store
	}
	if len(s.stores) >= s.maxOpen {
		s.evictOldestLocked()
	}
	s.stores[key] = &session{store: fresh, lastUsed: s.now()}
	return fresh
}

// Close forgets the in-memory store for key. Mutations already applied are kept.
func (s *Sessions) Close(key string) {
	s.mu.Lock()
	delete(s.stores, key)
	s.mu.Unlock()
}

// EvictIdle closes every store unused for longer than the idle TTL and returns how
// many were closed.
func (s *Sessions) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictIdleLocked(s.now())
}

func (s *Sessions) evictIdleLocked(now time.Time) int {
	s.lastSweep = now
	n := 0
	for key, sess := range s.stores {
		if now.Sub(sess.lastUsed) > s.idleTTL {
			delete(s.stores, key)
			n++
		}
	}
	if n > 0 {
		s.logger.Debug("idle carts closed", zap.Int("count", n))
	}
	return n
}

func (s *Sessions) evictOldestLocked() {
	var (
		oldestKey string
		oldest    time.Time
	)
	for key, sess := range s.stores {
		if oldestKey == "" || sess.lastUsed.Before(oldest) {
			oldestKey, oldest = key, sess.lastUsed
		}
	}
	if oldestKey != "" {
		delete(s.stores, oldestKey)
	}
}

// Len is the number of open stores.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

// Merge moves the guest cart at fromKey into the cart at toKey, summing quantities
// for shared products, then empties and closes the guest cart. It reports whether
// anything was moved.
func (s *Sessions) Merge(ctx context.Context, fromKey, toKey string) (bool, error) {
	if fromKey == toKey {
		return false, nil
	}
	from := s.Open(ctx, fromKey)
	items := from.Items()
	if len(items) == 0 {
		s.Close(fromKey)
		return false, nil
	}

	to := s.Open(ctx, toKey)
	if err := to.absorb(ctx, items); err != nil {
		return false, err
	}
	if err := from.Clear(ctx); err != nil {
		s.logger.Warn("guest cart not cleared after merge", zap.String("session", fromKey), zap.Error(err))
	}
	if err := s.snapshots.Delete(ctx, fromKey); err != nil {
		s.logger.Warn("guest cart snapshot not deleted", zap.String("session", fromKey), zap.Error(err))
	}
	s.Close(fromKey)
	return true, nil
}
