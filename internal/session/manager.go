package session

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/claude/posecoach/internal/catalog"
	"github.com/claude/posecoach/internal/metrics"
)

// CatalogSource is the catalog a Manager serves sessions from.
type CatalogSource interface {
	RegistrySource
	Reload() (*catalog.Result, error)
}

// Config controls how a Manager creates sessions.
type Config struct {
	DefaultExercise string
	Settings        Settings
	// MaxSessions limits concurrent sessions; 0 means unlimited.
	MaxSessions int
}

// Manager owns every open session, keyed by id.
type Manager struct {
	catalog CatalogSource
	cfg     Config
	metrics *metrics.Metrics
	log     *slog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
	attached map[string]bool // sessions owned by a live stream
}

// NewManager creates an empty manager.
func NewManager(src CatalogSource, cfg Config, m *metrics.Metrics, log *slog.Logger) *Manager {
	return &Manager{
		catalog:  src,
		cfg:      cfg,
		metrics:  m,
		log:      log,
		sessions: make(map[string]*Session),
		attached: make(map[string]bool),
	}
}

// Registry returns the catalog currently in effect.
func (m *Manager) Registry() *catalog.Registry {
	return m.catalog.Registry()
}

// Create opens a session. An empty exercise uses the configured default;
// a named exercise must exist in the catalog.
func (m *Manager) Create(exercise string) (*Session, error) {
	return m.create(exercise, false)
}

// CreateAttached opens a session already owned by the calling stream.
func (m *Manager) CreateAttached(exercise string) (*Session, error) {
	return m.create(exercise, true)
}

func (m *Manager) create(exercise string, attach bool) (*Session, error) {
	if exercise == "" {
		exercise = m.cfg.DefaultExercise
	} else if !m.catalog.Registry().Has(exercise) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownExercise, exercise)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cfg.MaxSessions > 0 && len(m.sessions) >= m.cfg.MaxSessions {
		return nil, fmt.Errorf("%w: limit is %d", ErrTooManySessions, m.cfg.MaxSessions)
	}

	s := New(uuid.NewString(), m.catalog, exercise, m.cfg.Settings, m.metrics)
	m.sessions[s.ID()] = s
	if attach {
		m.attached[s.ID()] = true
	}
	m.metrics.SessionOpened()
	m.log.Info("session started", "session", s.ID(), "exercise", s.Exercise())
	return s, nil
}

// Get returns an open session.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// Attach claims an open session for a stream. A session has at most one
// stream; a second claim fails with ErrSessionAttached until Detach.
func (m *Manager) Attach(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	if m.attached[id] {
		return nil, fmt.Errorf("%w: %s", ErrSessionAttached, id)
	}
	m.attached[id] = true
	return s, nil
}

// Detach releases a stream's claim. The session stays open.
func (m *Manager) Detach(id string) {
	m.mu.Lock()
	delete(m.attached, id)
	m.mu.Unlock()
}

// End closes a session and discards its state.
func (m *Manager) End(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	delete(m.attached, id)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	m.metrics.SessionClosed()
	st := s.Stats()
	m.log.Info("session ended", "session", id, "exercise", st.CurrentExercise, "frames", st.FramesProcessed)
	return nil
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// List returns stats for every open session, oldest first.
func (m *Manager) List() []Stats {
	m.mu.RLock()
	out := make([]Stats, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, s.Stats())
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Reload re-reads the catalog for all sessions. Sessions keep their
// exercise name even if it disappeared from the catalog.
func (m *Manager) Reload() (*catalog.Result, error) {
	res, err := m.catalog.Reload()
	if err != nil {
		return nil, fmt.Errorf("reloading catalog: %w", err)
	}
	return res, nil
}

// Close ends every open session.
func (m *Manager) Close() {
	m.mu.Lock()
	n := len(m.sessions)
	for id := range m.sessions {
		delete(m.sessions, id)
		m.metrics.SessionClosed()
	}
	clear(m.attached)
	m.mu.Unlock()

	if n > 0 {
		m.log.Info("closed open sessions", "count", n)
	}
}
