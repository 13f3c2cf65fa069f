package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := Open(Options{URL: ":memory:"})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := Migrate(context.Background(), database); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return database
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func TestDriverFor(t *testing.T) {
	tests := []struct {
		url, token  string
		driver, dsn string
	}{
		{"libsql://cifras.turso.io", "tok", "libsql", "libsql://cifras.turso.io?authToken=tok"},
		{"https://cifras.turso.io", "", "libsql", "https://cifras.turso.io"},
		{"./cifras.db", "tok", "sqlite3", "./cifras.db"},
		{":memory:", "", "sqlite3", ":memory:"},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			driver, dsn := driverFor(tt.url, tt.token)
			if driver != tt.driver || dsn != tt.dsn {
				t.Errorf("driverFor(%q) = %q, %q; want %q, %q", tt.url, driver, dsn, tt.driver, tt.dsn)
			}
		})
	}
}

func TestOpenEmptyURL(t *testing.T) {
	if _, err := Open(Options{}); err == nil {
		t.Error("expected error for empty url")
	}
}

func TestSongbook(t *testing.T) {
	ctx := context.Background()
	songbook := NewSongbook(newTestDB(t))

	song := &Song{
		Title:       "Ruja o Leão",
		Artist:      nullString("Ministério Ipiranga"),
		Link:        "https://www.cifraclub.com.br/ministerio-ipiranga/ruja-o-leao/",
		OriginalKey: nullString("G"),
		Content:     "Ruja o Leão\nG  D\nlinha",
	}

	t.Run("SaveSong", func(t *testing.T) {
		if err := songbook.SaveSong(ctx, song); err != nil {
			t.Fatalf("SaveSong failed: %v", err)
		}
		if song.ID == "" {
			t.Error("expected an id to be assigned")
		}
		if song.CreatedAt.IsZero() {
			t.Error("expected created_at to be assigned")
		}
	})

	t.Run("SaveSongSameLinkKeepsID", func(t *testing.T) {
		again := &Song{Title: "Ruja o Leão (ao vivo)", Link: song.Link, Content: "novo"}
		if err := songbook.SaveSong(ctx, again); err != nil {
			t.Fatalf("SaveSong failed: %v", err)
		}
		if again.ID != song.ID {
			t.Errorf("expected id %s to be kept, got %s", song.ID, again.ID)
		}
		if again.Content != "novo" {
			t.Errorf("expected content to be replaced, got %q", again.Content)
		}
	})

	t.Run("FindSongByID", func(t *testing.T) {
		found, err := songbook.FindSongByID(ctx, song.ID)
		if err != nil {
			t.Fatalf("FindSongByID failed: %v", err)
		}
		if found.Link != song.Link {
			t.Errorf("unexpected link %s", found.Link)
		}
	})

	t.Run("FindSongByLink", func(t *testing.T) {
		if _, err := songbook.FindSongByLink(ctx, "https://example.com/none"); !errors.Is(err, ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("IncrementSongCounter", func(t *testing.T) {
		if err := songbook.IncrementSongCounter(ctx, song.ID); err != nil {
			t.Fatalf("IncrementSongCounter failed: %v", err)
		}
		found, _ := songbook.FindSongByID(ctx, song.ID)
		if found.Counter != 1 {
			t.Errorf("expected counter 1, got %d", found.Counter)
		}
		if err := songbook.IncrementSongCounter(ctx, "missing"); !errors.Is(err, ErrSongNotFound) {
			t.Errorf("expected ErrSongNotFound, got %v", err)
		}
	})

	t.Run("ListAndSearch", func(t *testing.T) {
		other := &Song{Title: "Oceanos", Artist: nullString("Hillsong"), Link: "https://www.cifraclub.com.br/hillsong/oceanos/", Content: "x"}
		if err := songbook.SaveSong(ctx, other); err != nil {
			t.Fatalf("SaveSong failed: %v", err)
		}

		songs, err := songbook.ListSongs(ctx, 10)
		if err != nil {
			t.Fatalf("ListSongs failed: %v", err)
		}
		if len(songs) != 2 || songs[0].ID != song.ID {
			t.Errorf("expected most opened song first, got %+v", songs)
		}

		found, err := songbook.SearchSongs(ctx, "hillsong")
		if err != nil {
			t.Fatalf("SearchSongs failed: %v", err)
		}
		if len(found) != 1 || found[0].Title != "Oceanos" {
			t.Errorf("unexpected search result %+v", found)
		}
	})
}

func TestFormatSongName(t *testing.T) {
	if got := FormatSongName(Song{Title: "Oceanos", Artist: nullString("Hillsong")}); got != "Hillsong - Oceanos" {
		t.Errorf("got %q", got)
	}
	if got := FormatSongName(Song{Title: "Oceanos"}); got != "Oceanos" {
		t.Errorf("got %q", got)
	}
}

func TestUsers(t *testing.T) {
	ctx := context.Background()
	users := NewUsers(newTestDB(t))

	isNew, err := users.RegisterUser(ctx, 42, "ana", "Ana")
	if err != nil || !isNew {
		t.Fatalf("expected new user, got %v, %v", isNew, err)
	}
	isNew, err = users.RegisterUser(ctx, 42, "ana", "Ana")
	if err != nil || isNew {
		t.Fatalf("expected existing user, got %v, %v", isNew, err)
	}

	if err := users.IncrementSheetsOpened(ctx, 42); err != nil {
		t.Fatalf("IncrementSheetsOpened failed: %v", err)
	}
	user, err := users.GetUserByChatID(ctx, 42)
	if err != nil {
		t.Fatalf("GetUserByChatID failed: %v", err)
	}
	if user.SheetsOpened != 1 || user.Username.String != "ana" {
		t.Errorf("unexpected user %+v", user)
	}

	if _, err := users.GetUserByChatID(ctx, 7); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}
