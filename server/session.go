package main

import (
	"sort"
	"sync"
	"time"
)

const maxSessions = 100

// SessionIdleTimeout is how long an empty session survives before cleanup
var SessionIdleTimeout = 60 * time.Second

// Session represents a game session that players can join
type Session struct {
	ID         string
	Name       string
	Room       *Room
	createdAt  time.Time
	lastActive time.Time
}

// SessionManager handles creation and lookup of sessions
type SessionManager struct {
	mu        sync.RWMutex
	sessions  map[string]*Session
	cfg       ServerConfig
	db        *DB
	analytics *Analytics
}

// NewSessionManager creates a new SessionManager
func NewSessionManager(cfg ServerConfig, db *DB, analytics *Analytics) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		cfg:       cfg,
		db:        db,
		analytics: analytics,
	}
}

// CreateSession creates a new game session. Returns nil if limit reached.
// A session nobody joins is cleaned up like an abandoned one.
func (sm *SessionManager) CreateSession(name string, mode GameMode) *Session {
	sm.mu.Lock()
	if len(sm.sessions) >= maxSessions {
		sm.mu.Unlock()
		return nil
	}

	id := GenerateUUID()
	room := NewRoom(id, mode, sm.cfg, sm.db, sm.analytics)
	now := time.Now()
	sess := &Session{
		ID:         id,
		Name:       name,
		Room:       room,
		createdAt:  now,
		lastActive: now,
	}
	sm.sessions[id] = sess
	count := len(sm.sessions)
	sm.mu.Unlock()

	go room.Run()
	sm.analytics.SetActiveSessions(count)
	sm.analytics.Track(EvtSessionStart, 0, id, "")
	sm.scheduleCleanup(id, SessionIdleTimeout)
	return sess
}

// GetSession returns a session by ID
func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// MarkActive pushes back idle cleanup for a session
func (sm *SessionManager) MarkActive(id string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sess, ok := sm.sessions[id]; ok {
		sess.lastActive = time.Now()
	}
}

// RemovePlayer removes a player from a session; an emptied session is
// removed once it has stayed empty for SessionIdleTimeout
func (sm *SessionManager) RemovePlayer(sessionID, playerID string) {
	sess := sm.GetSession(sessionID)
	if sess == nil {
		return
	}
	sess.Room.RemovePlayer(playerID)

	if sess.Room.PlayerCount() == 0 {
		sm.MarkActive(sessionID)
		sm.scheduleCleanup(sessionID, SessionIdleTimeout)
	}
}

func (sm *SessionManager) scheduleCleanup(id string, after time.Duration) {
	time.AfterFunc(after, func() { sm.cleanupIfIdle(id) })
}

func (sm *SessionManager) cleanupIfIdle(id string) {
	sm.mu.Lock()
	sess, ok := sm.sessions[id]
	if !ok || sess.Room.PlayerCount() > 0 {
		sm.mu.Unlock()
		return
	}
	if idle := time.Since(sess.lastActive); idle < SessionIdleTimeout {
		sm.mu.Unlock()
		sm.scheduleCleanup(id, SessionIdleTimeout-idle)
		return
	}
	delete(sm.sessions, id)
	count := len(sm.sessions)
	sm.mu.Unlock()

	sess.Room.Stop()
	sm.analytics.SetActiveSessions(count)
	sm.analytics.Track(EvtSessionEnd, 0, id, "")
}

// ListSessions returns info about all active sessions, oldest first
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	sessions := make([]*Session, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		sessions = append(sessions, sess)
	}
	sm.mu.RUnlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].createdAt.Before(sessions[j].createdAt)
	})
	list := make([]SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		list = append(list, SessionInfo{
			ID:      sess.ID,
			Name:    sess.Name,
			Mode:    sess.Room.Mode().String(),
			Phase:   sess.Room.Phase().String(),
			Players: sess.Room.PlayerCount(),
		})
	}
	return list
}

// Count returns the number of live sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}
