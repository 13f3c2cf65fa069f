// Package cifras imports chord sheets into the songbook and renders them in
// any key.
package cifras

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/sukalov/cifras/internal/cifras/parsers/cifraclub"
	"github.com/sukalov/cifras/internal/db"
	"github.com/sukalov/cifras/internal/logger"
	"github.com/sukalov/cifras/internal/music"
)

var (
	ErrUnsupportedSource = errors.New("unsupported URL source")
	ErrUnknownKey        = errors.New("unknown key")
	ErrNoOriginalKey     = errors.New("song has no original key")
)

// SongStore is the part of the songbook the service needs
type SongStore interface {
	SaveSong(ctx context.Context, song *db.Song) error
	FindSongByLink(ctx context.Context, link string) (db.Song, error)
}

// PageCache keeps fetched pages around so that a re-import does not hit the site
type PageCache interface {
	GetPage(ctx context.Context, url string) (string, bool, error)
	SetPage(ctx context.Context, url string, page string) error
}

// Service handles chord sheet import for supported sources
type Service struct {
	fetcher cifraclub.PageFetcher
	store   SongStore
	cache   PageCache
}

// NewService creates a new service. A nil cache disables page caching.
func NewService(fetcher cifraclub.PageFetcher, store SongStore, cache PageCache) *Service {
	if fetcher == nil {
		fetcher = cifraclub.NewClient(cifraclub.ClientOptions{})
	}
	return &Service{
		fetcher: fetcher,
		store:   store,
		cache:   cache,
	}
}

// Import returns the stored song for url, fetching and saving it on first use
func (s *Service) Import(ctx context.Context, url string) (*db.Song, error) {
	logger.Debug(fmt.Sprintf("Import called with URL: %s", url))

	if !cifraclub.IsSupportedURL(url) {
		logger.Error(fmt.Sprintf("Unsupported URL source: %s", url))
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedSource, url)
	}
	link := cifraclub.CanonicalURL(url)

	song, err := s.store.FindSongByLink(ctx, link)
	if err == nil {
		logger.Debug(fmt.Sprintf("Import: %s already in songbook as %s", link, song.ID))
		return &song, nil
	}
	if !errors.Is(err, db.ErrSongNotFound) {
		return nil, logger.LogWithErr(fmt.Sprintf("failed to look up %s", link), err)
	}

	page, err := s.page(ctx, link)
	if err != nil {
		return nil, err
	}

	sheet, err := cifraclub.Parse(page, link)
	if err != nil {
		logger.Error(fmt.Sprintf("Import: failed to parse %s\nError: %v", link, err))
		return nil, err
	}

	song = SongFromSheet(link, sheet)
	if err := s.store.SaveSong(ctx, &song); err != nil {
		return nil, logger.LogWithErr(fmt.Sprintf("failed to save %s", link), err)
	}

	logger.Success(fmt.Sprintf("Imported %s\nLink: %s", db.FormatSongName(song), link))
	return &song, nil
}

func (s *Service) page(ctx context.Context, link string) (string, error) {
	if s.cache != nil {
		page, found, err := s.cache.GetPage(ctx, link)
		if err != nil {
			logger.Error(fmt.Sprintf("page cache lookup failed for %s\nError: %v", link, err))
		}
		if found {
			logger.Debug(fmt.Sprintf("Import: page cache hit for %s", link))
			return page, nil
		}
	}

	page, err := s.fetcher.FetchPage(ctx, link)
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if err := s.cache.SetPage(ctx, link, page); err != nil {
			logger.Error(fmt.Sprintf("failed to cache page %s\nError: %v", link, err))
		}
	}
	return page, nil
}

func nullable(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

// SongFromSheet builds a songbook entry. The stored content starts with the
// title line so that transposition leaves it alone.
func SongFromSheet(link string, sheet *cifraclub.ParsedSheet) db.Song {
	title := "Sem título"
	if sheet.Metadata.Title != nil {
		title = *sheet.Metadata.Title
	}

	return db.Song{
		Title:       title,
		Artist:      nullable(sheet.Metadata.PerformerOrVersion),
		Link:        link,
		ArtistPhoto: nullable(sheet.Metadata.ArtistPhotoURL),
		OriginalKey: nullable(sheet.Metadata.OriginalKey),
		Content:     title + "\n\n" + sheet.RawContent,
	}
}

// Render returns the song content in key. An empty key means the original key.
func Render(song db.Song, key string) (string, error) {
	if key == "" {
		return song.Content, nil
	}
	if !music.IsKey(key) {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if !song.OriginalKey.Valid || !music.IsKey(song.OriginalKey.String) {
		return "", ErrNoOriginalKey
	}
	return music.TransposeContent(song.Content, song.OriginalKey.String, key), nil
}

// body drops the title line added by SongFromSheet
func body(content string) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			return strings.Join(lines[i+1:], "\n")
		}
	}
	return ""
}

// Sections splits the stored song into its labeled sections
func Sections(song db.Song) []cifraclub.Section {
	return cifraclub.ParseStructure(body(song.Content)).Sections
}

// Chords lists the chords of the song as played in key
func Chords(song db.Song, key string) ([]string, error) {
	content, err := Render(song, key)
	if err != nil {
		return nil, err
	}
	return music.Chords(content), nil
}
