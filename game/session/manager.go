package session

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wricardo/puzzle-search/game/engine"
	"github.com/wricardo/puzzle-search/game/service"
	"github.com/wricardo/puzzle-search/logging"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// maxIDAttempts bounds how many generated IDs Create tries before giving up.
const maxIDAttempts = 16

// Manager handles game session lifecycle. IDs are case-insensitive.
type Manager struct {
	sessions    map[string]*service.Session
	persistence SessionPersistence
	newID       func() string
	mu          sync.RWMutex
}

// NewManager creates a new session manager
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*service.Session),
		newID:    generateSessionID,
	}
}

// NewManagerWithPersistence creates a new session manager with persistence
func NewManagerWithPersistence(persistence SessionPersistence) *Manager {
	return &Manager{
		sessions:    make(map[string]*service.Session),
		persistence: persistence,
		newID:       generateSessionID,
	}
}

// Create creates a session. An empty id gets a generated one, retried on
// collision; configID is empty for sessions built from an inline config.
func (m *Manager) Create(id, configID string, config *engine.PuzzleConfig) (*service.Session, error) {
	if id != "" && !validID.MatchString(id) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		if id, err = m.uniqueID(); err != nil {
			return nil, err
		}
	} else if m.taken(id) {
		return nil, fmt.Errorf("%w: %s", ErrSessionAlreadyExists, id)
	}
	key := strings.ToLower(id)

	now := time.Now()
	session := &service.Session{
		ID:             id,
		ConfigID:       configID,
		Engine:         eng,
		Config:         config,
		CreatedAt:      now,
		LastAccessedAt: now,
	}
	m.sessions[key] = session

	m.persist(session)
	return session, nil
}

// Get retrieves a session by ID, falling back to persistence.
func (m *Manager) Get(id string) (*service.Session, error) {
	if !validID.MatchString(id) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	key := strings.ToLower(id)

	m.mu.RLock()
	session, exists := m.sessions[key]
	m.mu.RUnlock()
	if exists {
		return session, nil
	}

	if m.persistence == nil || !m.persistence.Exists(key) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if session, exists := m.sessions[key]; exists {
		return session, nil
	}

	session, err := m.persistence.Load(key)
	if err != nil {
		return nil, fmt.Errorf("failed to load persisted session: %w", err)
	}
	m.sessions[key] = session
	return session, nil
}

// List returns all in-memory sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

// Delete removes a session from memory and persistence.
func (m *Manager) Delete(id string) error {
	if !validID.MatchString(id) {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	key := strings.ToLower(id)

	m.mu.Lock()
	defer m.mu.Unlock()

	_, inMemory := m.sessions[key]
	delete(m.sessions, key)

	if m.persistence != nil && m.persistence.Exists(key) {
		if err := m.persistence.Delete(key); err != nil {
			return fmt.Errorf("failed to delete persisted session: %w", err)
		}
		return nil
	}

	if !inMemory {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return nil
}

// DeleteFromMemory evicts a session without touching persistence.
func (m *Manager) DeleteFromMemory(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(m.sessions, key)
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	session.LastAccessedAt = time.Now()
	return nil
}

// Save writes a session to persistence. It is a no-op without persistence.
func (m *Manager) Save(id string) error {
	if m.persistence == nil {
		return nil
	}

	m.mu.RLock()
	session, exists := m.sessions[strings.ToLower(id)]
	m.mu.RUnlock()
	if !exists {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	return m.persistence.Save(session)
}

// CleanupExpiredSessions evicts sessions idle for longer than maxAge from
// memory. Persisted copies stay on disk.
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for key, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			m.persist(session)
			delete(m.sessions, key)
			removed++
		}
	}
	return removed
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// taken reports whether id is used in memory or on disk. m.mu must be held.
func (m *Manager) taken(id string) bool {
	key := strings.ToLower(id)
	if _, exists := m.sessions[key]; exists {
		return true
	}
	return m.persistence != nil && m.persistence.Exists(key)
}

// uniqueID draws generated IDs until one is free. m.mu must be held.
func (m *Manager) uniqueID() (string, error) {
	for range maxIDAttempts {
		id := m.newID()
		if !m.taken(id) {
			return id, nil
		}
		logging.Debug().Add(
			logging.Component("session"),
			logging.SessionID(id),
		).Msg("generated session id collided, retrying")
	}
	return "", fmt.Errorf("%w: no free id after %d attempts", ErrSessionAlreadyExists, maxIDAttempts)
}

// generateSessionID returns the first 8 hex characters of a random UUID.
func generateSessionID() string {
	return uuid.NewString()[:8]
}

// persist saves without failing the caller. m.mu must be held.
func (m *Manager) persist(session *service.Session) {
	if m.persistence == nil {
		return
	}
	if err := m.persistence.Save(session); err != nil {
		logging.Warn().Add(
			logging.Component("session"),
			logging.SessionID(session.ID),
			logging.ErrorField(err),
		).Msg("failed to persist session")
	}
}

// LoadPersistedSessions loads all persisted sessions into memory
func (m *Manager) LoadPersistedSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessionIDs, err := m.persistence.ListAll()
	if err != nil {
		return fmt.Errorf("failed to list persisted sessions: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	loaded := 0
	for _, id := range sessionIDs {
		key := strings.ToLower(id)
		if _, exists := m.sessions[key]; exists {
			continue
		}

		session, err := m.persistence.Load(id)
		if err != nil {
			logging.Warn().Add(
				logging.Component("session"),
				logging.SessionID(id),
				logging.ErrorField(err),
			).Msg("failed to load persisted session")
			continue
		}

		m.sessions[key] = session
		loaded++
	}

	if loaded > 0 {
		logging.Info().Add(logging.Component("session"), logging.Count("sessions", loaded)).Msg("loaded persisted sessions")
	}
	return nil
}

// SaveAllSessions saves all in-memory sessions to persistence
func (m *Manager) SaveAllSessions() error {
	if m.persistence == nil {
		return nil
	}

	sessions := m.List()
	failed := 0
	for _, session := range sessions {
		if err := m.persistence.Save(session); err != nil {
			logging.Warn().Add(
				logging.Component("session"),
				logging.SessionID(session.ID),
				logging.ErrorField(err),
			).Msg("failed to save session")
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("failed to save %d sessions", failed)
	}
	return nil
}
