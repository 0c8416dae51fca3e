package riskmap

import (
	"sync"

	"github.com/google/uuid"

	"github.com/agrosafe/farmguard/models"
)

// SessionManager hands out one LayoutSession per user for the life of
// the process. A user has exactly one farm map, so the user id is the
// whole key.
type SessionManager struct {
	svc *Service

	mu       sync.Mutex
	sessions map[uuid.UUID]*LayoutSession
}

func NewSessionManager(svc *Service) *SessionManager {
	return &SessionManager{
		svc:      svc,
		sessions: make(map[uuid.UUID]*LayoutSession),
	}
}

// Get returns the user's session, creating one in Viewing mode against
// the given map on first use.
func (sm *SessionManager) Get(userID uuid.UUID, m *models.FarmMap) *LayoutSession {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[userID]; ok {
		return s
	}
	s := NewLayoutSession(sm.svc, m, userID)
	sm.sessions[userID] = s
	return s
}

// Lookup returns an existing session without creating one.
func (sm *SessionManager) Lookup(userID uuid.UUID) (*LayoutSession, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, ok := sm.sessions[userID]
	return s, ok
}

// Drop closes and removes the user's session.
func (sm *SessionManager) Drop(userID uuid.UUID) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if s, ok := sm.sessions[userID]; ok {
		s.Close()
		delete(sm.sessions, userID)
	}
}
