// Package session manages ephemeral per-sender conversation state.
//
// Sessions are keyed by canonical phone number and live only in
// process memory: a restart forgets all in-flight conversations,
// while submitted workflow records survive in the store.
package session

import (
	"log/slog"
	"sync"
	"time"

	"github.com/BTreeMap/LeavePipe/internal/directory"
	"github.com/BTreeMap/LeavePipe/internal/models"
)

// DefaultIdleTTL is how long a session may sit untouched before the
// sweeper discards it.
const DefaultIdleTTL = 30 * time.Minute

// DefaultSweepInterval is how often the sweeper scans for expired sessions.
const DefaultSweepInterval = 1 * time.Minute

// Opts holds configuration options for the session store.
type Opts struct {
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// Option defines a configuration option for the session store.
type Option func(*Opts)

// WithIdleTTL overrides the idle expiry for sessions.
func WithIdleTTL(ttl time.Duration) Option {
	return func(o *Opts) { o.IdleTTL = ttl }
}

// WithSweepInterval overrides how often expired sessions are collected.
func WithSweepInterval(interval time.Duration) Option {
	return func(o *Opts) { o.SweepInterval = interval }
}

// Store keeps active conversation sessions in a guarded map.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session

	idleTTL       time.Duration
	sweepInterval time.Duration
	stopSweep     chan struct{}
	sweepOnce     sync.Once
}

// NewStore creates an empty session store and starts its expiry sweeper.
func NewStore(opts ...Option) *Store {
	cfg := Opts{IdleTTL: DefaultIdleTTL, SweepInterval: DefaultSweepInterval}
	for _, opt := range opts {
		opt(&cfg)
	}
	s := &Store{
		sessions:      make(map[string]*models.Session),
		idleTTL:       cfg.IdleTTL,
		sweepInterval: cfg.SweepInterval,
		stopSweep:     make(chan struct{}),
	}
	go s.sweep()
	return s
}

// Get returns the active session for a phone number, or nil. An
// expired session is treated as absent and removed.
func (s *Store) Get(phone string) *models.Session {
	key := directory.CanonicalPhone(phone)
	s.mu.RLock()
	sess, ok := s.sessions[key]
	s.mu.RUnlock()
	if !ok {
		return nil
	}
	if time.Since(sess.UpdatedAt) > s.idleTTL {
		slog.Debug("Session store dropping expired session", "phone", key)
		s.Delete(phone)
		return nil
	}
	copy := *sess
	return &copy
}

// Save stores a session, stamping its timestamps.
func (s *Store) Save(sess *models.Session) {
	key := directory.CanonicalPhone(sess.Phone)
	now := time.Now()
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = now
	}
	sess.UpdatedAt = now

	stored := *sess
	s.mu.Lock()
	s.sessions[key] = &stored
	s.mu.Unlock()
	slog.Debug("Session store saved session", "phone", key, "state", sess.State)
}

// Delete removes the session for a phone number, if any.
func (s *Store) Delete(phone string) {
	key := directory.CanonicalPhone(phone)
	s.mu.Lock()
	delete(s.sessions, key)
	s.mu.Unlock()
	slog.Debug("Session store deleted session", "phone", key)
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the expiry sweeper.
func (s *Store) Close() {
	s.sweepOnce.Do(func() { close(s.stopSweep) })
}

// sweep discards sessions idle longer than the TTL.
func (s *Store) sweep() {
	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopSweep:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-s.idleTTL)
			s.mu.Lock()
			for key, sess := range s.sessions {
				if sess.UpdatedAt.Before(cutoff) {
					delete(s.sessions, key)
					slog.Debug("Session store swept expired session", "phone", key, "state", sess.State)
				}
			}
			s.mu.Unlock()
		}
	}
}
