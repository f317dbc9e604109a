package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"calagent/internal/agent"
	"calagent/internal/instrumentation"
)

// DefaultSessionTimeout is how long an idle chat session is retained.
const DefaultSessionTimeout = 24 * time.Hour

// ErrSessionNotFound is returned when a session ID is unknown or expired.
var ErrSessionNotFound = errors.New("session not found")

// ChatSession holds the conversation state for one chat client. The
// history includes the system message and all tool exchanges so a
// follow-up request continues where the previous one left off.
type ChatSession struct {
	ID         string
	Account    string
	Timezone   string
	History    []agent.Message
	lastAccess time.Time

	// runMu serializes agent runs on this session. Concurrent requests
	// for one session ID would otherwise read History while another
	// run replaces it, and interleave two conversations.
	runMu sync.Mutex
}

// LockRun takes the session's run lock. Callers must pair it with
// UnlockRun around one agent run, history read included.
func (s *ChatSession) LockRun() {
	s.runMu.Lock()
}

// UnlockRun releases the session's run lock.
func (s *ChatSession) UnlockRun() {
	s.runMu.Unlock()
}

// SessionManager tracks chat sessions for the HTTP transport. Each
// session gets its own conversation history, allowing multiple users
// or accounts to share one server instance.
type SessionManager struct {
	sessions       map[string]*ChatSession
	mu             sync.RWMutex
	cleanupTicker  *time.Ticker
	cleanupDone    chan bool
	sessionTimeout time.Duration
	logger         *slog.Logger
	metrics        *instrumentation.Metrics
}

// NewSessionManager creates a new session manager with default timeout and logger.
func NewSessionManager() *SessionManager {
	return NewSessionManagerWithLogger(DefaultSessionTimeout, slog.Default(), nil)
}

// NewSessionManagerWithLogger creates a new session manager with custom
// timeout, logger, and optional metrics recorder.
func NewSessionManagerWithLogger(timeout time.Duration, logger *slog.Logger, metrics *instrumentation.Metrics) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}

	m := &SessionManager{
		sessions:       make(map[string]*ChatSession),
		cleanupTicker:  time.NewTicker(10 * time.Minute),
		cleanupDone:    make(chan bool),
		sessionTimeout: timeout,
		logger:         logger,
		metrics:        metrics,
	}

	// Start cleanup goroutine
	go m.cleanupExpiredSessions()

	return m
}

// Create starts a new session for the given account and timezone and
// returns it. The session ID is a fresh UUID.
func (m *SessionManager) Create(account, timezone string) *ChatSession {
	session := &ChatSession{
		ID:         uuid.NewString(),
		Account:    account,
		Timezone:   timezone,
		lastAccess: time.Now(),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	if m.metrics != nil {
		m.metrics.IncrementActiveSessions(context.Background())
	}

	return session
}

// Get returns the session with the given ID and refreshes its last
// access time. Returns ErrSessionNotFound for unknown or expired IDs.
func (m *SessionManager) Get(sessionID string) (*ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	session.lastAccess = time.Now()
	return session, nil
}

// UpdateHistory replaces the session's conversation history after an
// agent run completes.
func (m *SessionManager) UpdateHistory(sessionID string, history []agent.Message) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session, ok := m.sessions[sessionID]; ok {
		session.History = history
		session.lastAccess = time.Now()
	}
}

// Remove removes a session from the manager.
func (m *SessionManager) Remove(sessionID string) {
	m.mu.Lock()
	_, existed := m.sessions[sessionID]
	delete(m.sessions, sessionID)
	m.mu.Unlock()

	if existed && m.metrics != nil {
		m.metrics.DecrementActiveSessions(context.Background())
	}
}

// ListSessions returns all active session IDs.
func (m *SessionManager) ListSessions() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]string, 0, len(m.sessions))
	for sessionID := range m.sessions {
		sessions = append(sessions, sessionID)
	}
	return sessions
}

// cleanupExpiredSessions periodically removes expired sessions.
func (m *SessionManager) cleanupExpiredSessions() {
	for {
		select {
		case <-m.cleanupTicker.C:
			m.mu.Lock()
			now := time.Now()
			expiredCount := 0
			for sessionID, session := range m.sessions {
				if now.Sub(session.lastAccess) > m.sessionTimeout {
					delete(m.sessions, sessionID)
					expiredCount++
				}
			}
			m.mu.Unlock()
			if expiredCount > 0 {
				if m.metrics != nil {
					for i := 0; i < expiredCount; i++ {
						m.metrics.DecrementActiveSessions(context.Background())
					}
				}
				m.logger.Info("Cleaned up expired sessions", "count", expiredCount)
			}
		case <-m.cleanupDone:
			return
		}
	}
}

// Stop stops the session cleanup goroutine.
func (m *SessionManager) Stop() {
	if m.cleanupTicker != nil {
		m.cleanupTicker.Stop()
	}
	if m.cleanupDone != nil {
		close(m.cleanupDone)
	}
}
