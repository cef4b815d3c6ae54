package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/db"
	"github.com/pro-grammer-SD/multi-tool-ai-app-farewell-to-codingal/internal/metrics"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var ErrNotFound = errors.New("session not found")

const DefaultIdleTimeout = 30 * time.Minute

// Manager owns every live session. Expiring a session drops its histories
// from the store and closes its client.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	store  db.Store
	idle   time.Duration
	logger *zap.Logger
	now    func() time.Time
}

func NewManager(store db.Store, idle time.Duration, logger *zap.Logger) *Manager {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		sessions: make(map[string]*Session),
		store:    store,
		idle:     idle,
		logger:   logger,
		now:      time.Now,
	}
}

// Create starts a new session with empty histories.
func (m *Manager) Create() *Session {
	s := newSession(uuid.NewString(), m.now())

	m.mu.Lock()
	m.sessions[s.ID] = s
	n := len(m.sessions)
	m.mu.Unlock()

	metrics.ActiveSessions.Set(float64(n))
	m.logger.Debug("session created", zap.String("session_id", s.ID))
	return s
}

// Get returns the live session id and marks it as used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Expire removes the session, its histories and its client. It waits for
// a running action of the session to finish first.
func (m *Manager) Expire(ctx context.Context, id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	n := len(m.sessions)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	metrics.ActiveSessions.Set(float64(n))

	s.busy.Lock()
	s.expired = true
	err := multierr.Append(m.store.Drop(ctx, id), s.close())
	s.busy.Unlock()
	m.logger.Debug("session expired", zap.String("session_id", id), zap.Error(err))
	return err
}

// Sweep expires every session idle for longer than the idle timeout and
// returns how many were removed.
func (m *Manager) Sweep(ctx context.Context) int {
	cutoff := m.now().Add(-m.idle)

	m.mu.RLock()
	var stale []string
	for id, s := range m.sessions {
		if s.idleSince().Before(cutoff) {
			stale = append(stale, id)
		}
	}
	m.mu.RUnlock()

	for _, id := range stale {
		if err := m.Expire(ctx, id); err != nil && !errors.Is(err, ErrNotFound) {
			m.logger.Warn("failed to expire session", zap.String("session_id", id), zap.Error(err))
		}
	}
	return len(stale)
}

// Run sweeps every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(ctx); n > 0 {
				m.logger.Info("expired idle sessions", zap.Int("count", n))
			}
		}
	}
}

// Shutdown expires every session.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	var err error
	for _, id := range ids {
		if e := m.Expire(ctx, id); e != nil && !errors.Is(e, ErrNotFound) {
			err = multierr.Append(err, e)
		}
	}
	return err
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
