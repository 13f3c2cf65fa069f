package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sukalov/cifras/internal/users"
)

type memoryStore struct {
	sessions []users.Session
	err      error
	writes   int
}

func (m *memoryStore) GetSessions(ctx context.Context) ([]users.Session, error) {
	return m.sessions, m.err
}

func (m *memoryStore) SetSessions(ctx context.Context, sessions []users.Session) error {
	if m.err != nil {
		return m.err
	}
	m.writes++
	m.sessions = sessions
	return nil
}

func TestStateManager(t *testing.T) {
	ctx := context.Background()

	t.Run("Init", func(t *testing.T) {
		store := &memoryStore{sessions: []users.Session{{ChatID: 7, SongID: "abc", Key: "G"}}}
		sm := NewStateManager(store)
		if err := sm.Init(ctx); err != nil {
			t.Fatalf("Init failed: %v", err)
		}
		s, ok := sm.Get(7)
		if !ok || s.SongID != "abc" {
			t.Errorf("expected stored session, got %+v, %v", s, ok)
		}
	})

	t.Run("SetMirrorsToStore", func(t *testing.T) {
		store := &memoryStore{}
		sm := NewStateManager(store)

		if err := sm.Set(ctx, users.Session{ChatID: 1, Key: "C", UpdatedAt: time.Now()}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		if err := sm.Set(ctx, users.Session{ChatID: 2, Key: "D", UpdatedAt: time.Now()}); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		if store.writes != 2 || len(store.sessions) != 2 {
			t.Errorf("expected 2 writes with 2 sessions, got %d writes and %d sessions", store.writes, len(store.sessions))
		}
		if sm.Count() != 2 {
			t.Errorf("expected 2 sessions, got %d", sm.Count())
		}
	})

	t.Run("RemoveAndClear", func(t *testing.T) {
		store := &memoryStore{}
		sm := NewStateManager(store)
		sm.Set(ctx, users.Session{ChatID: 1})
		sm.Set(ctx, users.Session{ChatID: 2})

		if err := sm.Remove(ctx, 1); err != nil {
			t.Fatalf("Remove failed: %v", err)
		}
		if _, ok := sm.Get(1); ok {
			t.Error("expected session 1 to be removed")
		}

		if err := sm.Clear(ctx); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		if sm.Count() != 0 || len(store.sessions) != 0 {
			t.Error("expected no sessions after Clear")
		}
	})

	t.Run("StoreError", func(t *testing.T) {
		boom := errors.New("boom")
		sm := NewStateManager(&memoryStore{err: boom})

		if err := sm.Init(ctx); !errors.Is(err, boom) {
			t.Errorf("expected Init to return the store error, got %v", err)
		}
		if err := sm.Set(ctx, users.Session{ChatID: 1}); !errors.Is(err, boom) {
			t.Errorf("expected Set to return the store error, got %v", err)
		}
	})
}
