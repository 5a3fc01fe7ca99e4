package wizard

import (
	"context"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	defaultIdleTTL       = 30 * time.Minute
	defaultSweepInterval = 5 * time.Minute
)

// ManagerOption customises the session manager.
type ManagerOption func(*Manager)

// WithIdleTTL overrides how long an untouched session survives.
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *Manager) {
		if ttl > 0 {
			m.idleTTL = ttl
		}
	}
}

// WithSweepInterval overrides how often Run checks for idle sessions.
func WithSweepInterval(interval time.Duration) ManagerOption {
	return func(m *Manager) {
		if interval > 0 {
			m.sweepInterval = interval
		}
	}
}

// WithManagerClock injects a custom clock for tests.
func WithManagerClock(clock func() time.Time) ManagerOption {
	return func(m *Manager) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithSessionIDGen overrides session id generation.
func WithSessionIDGen(idGen func() string) ManagerOption {
	return func(m *Manager) {
		if idGen != nil {
			m.idGen = idGen
		}
	}
}

type managedSession struct {
	session  *Session
	lastSeen time.Time
}

// Manager owns the live wizard sessions, keyed by generated id, and expires
// the ones left idle.
type Manager struct {
	mu            sync.Mutex
	deps          SessionDeps
	sessions      map[string]*managedSession
	idleTTL       time.Duration
	sweepInterval time.Duration
	clock         func() time.Time
	idGen         func() string
}

// NewManager constructs a session manager over the given collaborators.
func NewManager(deps SessionDeps, opts ...ManagerOption) *Manager {
	manager := &Manager{
		deps:          deps,
		sessions:      map[string]*managedSession{},
		idleTTL:       defaultIdleTTL,
		sweepInterval: defaultSweepInterval,
		clock:         time.Now,
		idGen:         func() string { return ulid.Make().String() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(manager)
		}
	}
	return manager
}

// StartAdd opens a fresh add-flow session and returns its id.
func (m *Manager) StartAdd(ctx context.Context) (string, *Session, error) {
	session, err := NewSession(ctx, m.deps)
	if err != nil {
		return "", nil, err
	}
	return m.track(session), session, nil
}

// StartEdit opens an edit-flow session hydrated from the stored product.
func (m *Manager) StartEdit(ctx context.Context, productID string) (string, *Session, error) {
	session, err := NewEditSession(ctx, m.deps, productID)
	if err != nil {
		return "", nil, err
	}
	return m.track(session), session, nil
}

func (m *Manager) track(session *Session) string {
	id := m.idGen()
	m.mu.Lock()
	m.sessions[id] = &managedSession{session: session, lastSeen: m.clock()}
	m.mu.Unlock()
	return id
}

// Get returns the session with the given id and refreshes its idle deadline.
func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	managed, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	managed.lastSeen = m.clock()
	return managed.session, nil
}

// Release drops a submitted or abandoned session. The session is closed so
// outstanding preview resources are freed.
func (m *Manager) Release(sessionID string) error {
	m.mu.Lock()
	managed, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	m.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	managed.session.Close()
	return nil
}

// Sweep closes and removes every session idle longer than the TTL, returning
// how many were dropped.
func (m *Manager) Sweep() int {
	deadline := m.clock().Add(-m.idleTTL)

	m.mu.Lock()
	var expired []*managedSession
	for id, managed := range m.sessions {
		if managed.lastSeen.Before(deadline) {
			expired = append(expired, managed)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, managed := range expired {
		managed.session.Close()
	}
	return len(expired)
}

// Len reports the number of live sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Run sweeps idle sessions until the context is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := time.NewTicker(m.sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Sweep()
		}
	}
}
