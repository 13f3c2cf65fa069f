package users

import (
	"testing"
	"time"
)

func TestSorted(t *testing.T) {
	now := time.Now()
	sessions := map[int64]Session{
		1: {ChatID: 1, UpdatedAt: now},
		2: {ChatID: 2, UpdatedAt: now.Add(-time.Hour)},
		3: {ChatID: 3, UpdatedAt: now.Add(time.Hour)},
	}

	sorted := Sorted(sessions)
	for i, want := range []int64{2, 1, 3} {
		if sorted[i].ChatID != want {
			t.Errorf("position %d: expected chat %d, got %d", i, want, sorted[i].ChatID)
		}
	}
}

func TestWithKey(t *testing.T) {
	original := Session{ChatID: 1, Key: "G"}
	changed := original.WithKey("A")

	if original.Key != "G" {
		t.Error("WithKey must not modify the receiver")
	}
	if changed.Key != "A" || changed.UpdatedAt.IsZero() {
		t.Errorf("unexpected session %+v", changed)
	}
}
