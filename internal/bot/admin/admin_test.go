package admin

import (
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/sukalov/cifras/internal/db"
)

func TestAdminSet(t *testing.T) {
	admins := adminSet([]string{"@ana", "bruno"})
	if !admins["ana"] || !admins["bruno"] || admins["carla"] {
		t.Errorf("unexpected admin set %v", admins)
	}
}

func TestTakeClear(t *testing.T) {
	h := NewAdminHandlers(nil, nil, nil)
	if h.takeClear() {
		t.Error("expected no pending clear")
	}

	h.clearInProgress = true
	if !h.takeClear() {
		t.Error("expected a pending clear")
	}
	if h.takeClear() {
		t.Error("expected the pending clear to be consumed")
	}
}

func TestFormatSongList(t *testing.T) {
	songs := []db.Song{
		{Title: "Oceanos", Artist: sql.NullString{String: "Hillsong", Valid: true}, Counter: 1234, CreatedAt: time.Now()},
		{Title: "Santo", Counter: 2, CreatedAt: time.Now()},
	}

	got := FormatSongList(songs)
	if !strings.HasPrefix(got, "1. Hillsong - Oceanos (1,234, ") {
		t.Errorf("unexpected first line in %q", got)
	}
	if !strings.Contains(got, "2. Santo (2, ") {
		t.Errorf("unexpected second line in %q", got)
	}
}

func TestFormatKeyUsage(t *testing.T) {
	got := FormatKeyUsage(map[string]int{"G": 3, "A": 10, "original": 3})
	want := "A: 10, G: 3, original: 3"
	if got != want {
		t.Errorf("FormatKeyUsage() = %q, want %q", got, want)
	}
}
