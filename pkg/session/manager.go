package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/relay/internal/logging"
	"github.com/aretw0/relay/pkg/domain"
	"github.com/aretw0/relay/pkg/ports"
	"github.com/google/uuid"
)

// Manager orchestrates session access, ensuring safe concurrent operations.
type Manager struct {
	store  ports.SessionStore
	locks  *Locks
	logger *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocks shares a set of keyed locks (e.g. one backed by a distributed locker).
func WithLocks(locks *Locks) Option {
	return func(m *Manager) {
		m.locks = locks
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:  store,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.locks == nil {
		m.locks = NewLocks(WithLocksLogger(m.logger))
	}
	return m
}

// NewID returns a fresh session identifier.
func NewID() string {
	return uuid.NewString()
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session *domain.Session
	err := m.locks.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, sessionID)
		return err
	})
	return session, err
}

// LoadOrCreate tries to load a session. If not found, it initializes and persists a new one.
// An empty sessionID creates a session with a generated ID.
func (m *Manager) LoadOrCreate(ctx context.Context, sessionID string) (*domain.Session, error) {
	if sessionID == "" {
		sessionID = NewID()
	}
	var session *domain.Session
	err := m.locks.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, sessionID)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrSessionNotFound) {
			return fmt.Errorf("failed to check session existence: %w", err)
		}

		session = domain.NewSession(sessionID)
		// Persist immediately to reserve the ID
		if err := m.store.Save(ctx, session); err != nil {
			return fmt.Errorf("failed to initialize session: %w", err)
		}
		m.logger.Debug("session created", "session_id", sessionID)
		return nil
	})
	return session, err
}

// Update applies fn to the stored session under its lock and persists the result.
func (m *Manager) Update(ctx context.Context, sessionID string, fn func(*domain.Session) error) (*domain.Session, error) {
	var session *domain.Session
	err := m.locks.WithLock(ctx, sessionID, func(ctx context.Context) error {
		loaded, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		if loaded.Answered == nil {
			loaded.Answered = make(map[string]domain.ToolResult)
		}
		if err := fn(loaded); err != nil {
			return err
		}
		loaded.UpdatedAt = time.Now().UTC()
		if err := m.store.Save(ctx, loaded); err != nil {
			return err
		}
		session = loaded
		return nil
	})
	return session, err
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, session *domain.Session) error {
	return m.locks.WithLock(ctx, session.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, session)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.locks.WithLock(ctx, sessionID, func(ctx context.Context) error {
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// Ledger returns a durable CallLedger backed by the given session record.
func (m *Manager) Ledger(sessionID string) ports.CallLedger {
	return &ledger{manager: m, sessionID: sessionID}
}
