package cifras

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/sukalov/cifras/internal/cifras/parsers/cifraclub"
	"github.com/sukalov/cifras/internal/db"
)

const testPage = `<html><head>
<meta property="og:title" content="Santo - Fernandinho - Cifra Club">
</head><body>
<span id="cifra_tom">tom: <a href="#">A</a></span>
<pre>[Intro] <b>A</b>  <b>D</b>

[Refrão]
<b>A</b>        <b>E</b>/<b>G#</b>
   Santo, santo
</pre></body></html>`

const testURL = "https://www.cifraclub.com.br/fernandinho/santo/"

type fakeFetcher struct {
	page  string
	err   error
	calls int
}

func (f *fakeFetcher) FetchPage(ctx context.Context, pageURL string) (string, error) {
	f.calls++
	return f.page, f.err
}

type fakeStore struct {
	songs map[string]db.Song
}

func newFakeStore() *fakeStore {
	return &fakeStore{songs: map[string]db.Song{}}
}

func (f *fakeStore) SaveSong(ctx context.Context, song *db.Song) error {
	song.ID = "id-" + song.Link
	f.songs[song.Link] = *song
	return nil
}

func (f *fakeStore) FindSongByLink(ctx context.Context, link string) (db.Song, error) {
	song, ok := f.songs[link]
	if !ok {
		return db.Song{}, db.ErrSongNotFound
	}
	return song, nil
}

type fakeCache struct {
	pages map[string]string
}

func (f *fakeCache) GetPage(ctx context.Context, url string) (string, bool, error) {
	page, ok := f.pages[url]
	return page, ok, nil
}

func (f *fakeCache) SetPage(ctx context.Context, url string, page string) error {
	f.pages[url] = page
	return nil
}

func TestImport(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchParseSave", func(t *testing.T) {
		fetcher := &fakeFetcher{page: testPage}
		store := newFakeStore()
		cache := &fakeCache{pages: map[string]string{}}
		service := NewService(fetcher, store, cache)

		song, err := service.Import(ctx, testURL+"?utm_source=x")
		if err != nil {
			t.Fatalf("Import failed: %v", err)
		}

		if song.Title != "Santo" || song.Artist.String != "Fernandinho" {
			t.Errorf("unexpected song %q by %q", song.Title, song.Artist.String)
		}
		if song.OriginalKey.String != "A" {
			t.Errorf("expected original key A, got %q", song.OriginalKey.String)
		}
		if song.Link != testURL {
			t.Errorf("expected canonical link, got %s", song.Link)
		}
		if !strings.HasPrefix(song.Content, "Santo\n\n") {
			t.Errorf("expected content to start with the title, got %q", song.Content)
		}
		if _, ok := cache.pages[testURL]; !ok {
			t.Error("expected the page to be cached")
		}
	})

	t.Run("StoredSongSkipsFetch", func(t *testing.T) {
		fetcher := &fakeFetcher{page: testPage}
		service := NewService(fetcher, newFakeStore(), nil)

		if _, err := service.Import(ctx, testURL); err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if _, err := service.Import(ctx, testURL); err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if fetcher.calls != 1 {
			t.Errorf("expected one fetch, got %d", fetcher.calls)
		}
	})

	t.Run("CachedPageSkipsFetch", func(t *testing.T) {
		fetcher := &fakeFetcher{err: cifraclub.ErrFetchFailed}
		cache := &fakeCache{pages: map[string]string{testURL: testPage}}
		service := NewService(fetcher, newFakeStore(), cache)

		if _, err := service.Import(ctx, testURL); err != nil {
			t.Fatalf("Import failed: %v", err)
		}
		if fetcher.calls != 0 {
			t.Errorf("expected no fetch, got %d", fetcher.calls)
		}
	})

	t.Run("UnsupportedSource", func(t *testing.T) {
		service := NewService(&fakeFetcher{}, newFakeStore(), nil)
		if _, err := service.Import(ctx, "https://amdm.ru/akkordi/song/"); !errors.Is(err, ErrUnsupportedSource) {
			t.Errorf("expected ErrUnsupportedSource, got %v", err)
		}
	})

	t.Run("NoContent", func(t *testing.T) {
		service := NewService(&fakeFetcher{page: "<html></html>"}, newFakeStore(), nil)
		if _, err := service.Import(ctx, testURL); !errors.Is(err, cifraclub.ErrContentNotFound) {
			t.Errorf("expected ErrContentNotFound, got %v", err)
		}
	})
}

func TestRender(t *testing.T) {
	song := db.Song{
		Title:       "Santo",
		OriginalKey: sql.NullString{String: "A", Valid: true},
		Content:     "Santo\n\nA  D\nE/G#\n   Santo, santo",
	}

	got, err := Render(song, "B")
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	want := "Santo\n\nB  E\nF#/A#\n   Santo, santo"
	if got != want {
		t.Errorf("Render(B) = %q, want %q", got, want)
	}

	if got, _ := Render(song, ""); got != song.Content {
		t.Errorf("expected original content for an empty key, got %q", got)
	}
	if _, err := Render(song, "H"); !errors.Is(err, ErrUnknownKey) {
		t.Errorf("expected ErrUnknownKey, got %v", err)
	}

	song.OriginalKey = sql.NullString{}
	if _, err := Render(song, "B"); !errors.Is(err, ErrNoOriginalKey) {
		t.Errorf("expected ErrNoOriginalKey, got %v", err)
	}
}

func TestSectionsAndChords(t *testing.T) {
	song := db.Song{
		Title:       "Santo",
		OriginalKey: sql.NullString{String: "A", Valid: true},
		Content:     "Santo\n\n[Intro] A  D\n\n[Refrão]\nA        E/G#\n   Santo, santo",
	}

	sections := Sections(song)
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d: %+v", len(sections), sections)
	}
	if sections[0].Kind != cifraclub.SectionIntro || sections[1].Kind != cifraclub.SectionChorus {
		t.Errorf("unexpected section kinds %s, %s", sections[0].Kind, sections[1].Kind)
	}

	chords, err := Chords(song, "")
	if err != nil {
		t.Fatalf("Chords failed: %v", err)
	}
	if strings.Join(chords, " ") != "A D E/G#" {
		t.Errorf("unexpected chords %v", chords)
	}
}
