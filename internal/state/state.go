package state

import (
	"context"
	"fmt"
	"sync"

	"github.com/sukalov/cifras/internal/logger"
	"github.com/sukalov/cifras/internal/users"
)

// SessionStore persists sessions between restarts
type SessionStore interface {
	GetSessions(ctx context.Context) ([]users.Session, error)
	SetSessions(ctx context.Context, sessions []users.Session) error
}

type StateManager struct {
	mu       sync.RWMutex
	sessions map[int64]users.Session
	store    SessionStore
}

func NewStateManager(store SessionStore) *StateManager {
	return &StateManager{
		sessions: map[int64]users.Session{},
		store:    store,
	}
}

// Init loads the stored sessions
func (sm *StateManager) Init(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	list, err := sm.store.GetSessions(ctx)
	if err != nil {
		return fmt.Errorf("failed to load sessions: %w", err)
	}
	sm.sessions = make(map[int64]users.Session, len(list))
	for _, s := range list {
		sm.sessions[s.ChatID] = s
	}
	return nil
}

func (sm *StateManager) Get(chatID int64) (users.Session, bool) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	s, ok := sm.sessions[chatID]
	return s, ok
}

func (sm *StateManager) GetAll() []users.Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return users.Sorted(sm.sessions)
}

func (sm *StateManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

func (sm *StateManager) Set(ctx context.Context, session users.Session) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions[session.ChatID] = session
	return sm.sync(ctx)
}

func (sm *StateManager) Remove(ctx context.Context, chatID int64) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, chatID)
	return sm.sync(ctx)
}

func (sm *StateManager) Clear(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.sessions = map[int64]users.Session{}
	return sm.sync(ctx)
}

// sync must be called with the lock held
func (sm *StateManager) sync(ctx context.Context) error {
	if err := sm.store.SetSessions(ctx, users.Sorted(sm.sessions)); err != nil {
		return logger.LogWithErr("error happened while updating the stored sessions", err)
	}
	return nil
}
