package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Song struct {
	ID          string
	Title       string
	Artist      sql.NullString
	Link        string
	ArtistPhoto sql.NullString
	OriginalKey sql.NullString
	Content     string
	CreatedAt   time.Time
	Counter     int
}

// Songbook gives access to stored chord sheets
type Songbook struct {
	db *sql.DB
}

func NewSongbook(database *sql.DB) *Songbook {
	return &Songbook{db: database}
}

const songColumns = `id, title, artist, link, artist_photo, original_key, content, created_at, counter`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSong(row rowScanner) (Song, error) {
	var song Song
	var createdAt string
	err := row.Scan(&song.ID, &song.Title, &song.Artist, &song.Link, &song.ArtistPhoto, &song.OriginalKey, &song.Content, &createdAt, &song.Counter)
	if err != nil {
		return Song{}, err
	}
	song.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Song{}, fmt.Errorf("invalid created_at %q: %w", createdAt, err)
	}
	return song, nil
}

// SaveSong inserts a song, assigning an ID and creation time when missing. A
// song with the same link is replaced.
func (s *Songbook) SaveSong(ctx context.Context, song *Song) error {
	if song.ID == "" {
		song.ID = uuid.New().String()
	}
	if song.CreatedAt.IsZero() {
		song.CreatedAt = time.Now().UTC()
	}

	query := `INSERT INTO songbook (` + songColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(link) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			artist_photo = excluded.artist_photo,
			original_key = excluded.original_key,
			content = excluded.content`

	_, err := s.db.ExecContext(ctx, query,
		song.ID,
		song.Title,
		song.Artist,
		song.Link,
		song.ArtistPhoto,
		song.OriginalKey,
		song.Content,
		song.CreatedAt.Format(time.RFC3339),
		song.Counter,
	)
	if err != nil {
		return fmt.Errorf("failed to save song: %w", err)
	}

	// The stored row keeps its original id on conflict
	stored, err := s.FindSongByLink(ctx, song.Link)
	if err != nil {
		return err
	}
	*song = stored
	return nil
}

func (s *Songbook) findOne(ctx context.Context, where string, arg any) (Song, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM songbook WHERE `+where, arg)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Song{}, ErrSongNotFound
	}
	if err != nil {
		return Song{}, fmt.Errorf("failed to query song: %w", err)
	}
	return song, nil
}

func (s *Songbook) FindSongByID(ctx context.Context, id string) (Song, error) {
	return s.findOne(ctx, `id = ?`, id)
}

func (s *Songbook) FindSongByLink(ctx context.Context, link string) (Song, error) {
	return s.findOne(ctx, `link = ?`, link)
}

func (s *Songbook) query(ctx context.Context, query string, args ...any) ([]Song, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	var songs []Song
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning row: %w", err)
		}
		songs = append(songs, song)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during rows iteration: %w", err)
	}
	return songs, nil
}

// ListSongs returns the most opened songs first
func (s *Songbook) ListSongs(ctx context.Context, limit int) ([]Song, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.query(ctx, `SELECT `+songColumns+` FROM songbook ORDER BY counter DESC, title ASC LIMIT ?`, limit)
}

// SearchSongs matches the query against titles and artists
func (s *Songbook) SearchSongs(ctx context.Context, q string) ([]Song, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	return s.query(ctx, `SELECT `+songColumns+` FROM songbook
		WHERE lower(title) LIKE ? OR lower(coalesce(artist, '')) LIKE ?
		ORDER BY title ASC`, pattern, pattern)
}

func (s *Songbook) IncrementSongCounter(ctx context.Context, songID string) error {
	result, err := s.db.ExecContext(ctx, `UPDATE songbook SET counter = counter + 1 WHERE id = ?`, songID)
	if err != nil {
		return fmt.Errorf("failed to increment song counter: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrSongNotFound, songID)
	}

	return nil
}

// FormatSongName renders "Artist - Title", or just the title when the artist
// is unknown.
func FormatSongName(song Song) string {
	var parts []string
	if song.Artist.Valid && song.Artist.String != "" {
		parts = append(parts, song.Artist.String+" - ")
	}
	parts = append(parts, song.Title)

	return strings.TrimSpace(strings.Join(parts, ""))
}
