package common

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sukalov/cifras/internal/bot"
	"github.com/sukalov/cifras/internal/db"
	"github.com/sukalov/cifras/internal/music"
	"github.com/sukalov/cifras/internal/state"
)

const (
	KeyCallback      = "tom"
	OriginalKeyLabel = "original"
)

// SongFinder looks songs up by id
type SongFinder interface {
	FindSongByID(ctx context.Context, id string) (db.Song, error)
}

type CommonHandlers struct {
	sessions *state.StateManager
	songs    SongFinder
}

func GetCommandHandlers(sessions *state.StateManager, songs SongFinder) map[string]bot.HandlerFunc {
	handlers := newCommonHandlers(sessions, songs)
	return map[string]bot.HandlerFunc{
		"sessoes": handlers.sessionsHandler,
	}
}

// GetCallbackHandlers returns common callback handlers
func GetCallbackHandlers() map[string]bot.HandlerFunc {
	return map[string]bot.HandlerFunc{}
}

func newCommonHandlers(sessions *state.StateManager, songs SongFinder) *CommonHandlers {
	return &CommonHandlers{
		sessions: sessions,
		songs:    songs,
	}
}

func (h *CommonHandlers) sessionsHandler(b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message
	sessions := h.sessions.GetAll()

	if len(sessions) == 0 {
		return b.SendMessage(message.Chat.ID, "ninguém está vendo cifras agora")
	}

	var sb strings.Builder
	sb.WriteString("cifras abertas:\n\n")
	for idx, session := range sessions {
		songName := session.SongID
		if song, err := h.songs.FindSongByID(context.Background(), session.SongID); err == nil {
			songName = db.FormatSongName(song)
		}
		key := session.Key
		if key == "" {
			key = OriginalKeyLabel
		}
		fmt.Fprintf(&sb, "%d. @%s\n   cifra: %s\n   tom: %s\n   %s\n\n",
			idx+1,
			session.Username,
			songName,
			key,
			humanize.Time(session.UpdatedAt),
		)
	}

	return b.SendLong(message.Chat.ID, sb.String())
}

// KeyKeyboard builds the key picker. The current key is marked.
func KeyKeyboard(current string) tgbotapi.InlineKeyboardMarkup {
	current = music.NormalizePitchClass(current)

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, key := range music.AvailableKeys {
		label := key
		if key == current {
			label = "• " + key
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, KeyCallback+":"+key))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("tom original", KeyCallback+":"+OriginalKeyLabel),
	))

	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// ParseKeyCallback returns the requested key of a "tom:<KEY>" callback. The
// original key is reported as "".
func ParseKeyCallback(data string) (string, bool) {
	if bot.CallbackKey(data) != KeyCallback {
		return "", false
	}
	key := bot.CallbackPayload(data)
	if key == OriginalKeyLabel {
		return "", true
	}
	if !music.IsKey(key) {
		return "", false
	}
	return music.NormalizePitchClass(key), true
}

// SongHeader renders the HTML header shown above a sheet
func SongHeader(song db.Song, key string) string {
	var sb strings.Builder
	sb.WriteString("<b>" + html.EscapeString(song.Title) + "</b>")
	if song.Artist.Valid && song.Artist.String != "" {
		sb.WriteString("\n" + html.EscapeString(song.Artist.String))
	}

	original := "?"
	if song.OriginalKey.Valid {
		original = song.OriginalKey.String
	}
	switch {
	case key == "" || key == original:
		fmt.Fprintf(&sb, "\ntom: %s", html.EscapeString(original))
	default:
		fmt.Fprintf(&sb, "\ntom: %s (original: %s)", html.EscapeString(key), html.EscapeString(original))
	}
	fmt.Fprintf(&sb, "\n<a href=\"%s\">fonte</a>", html.EscapeString(song.Link))

	return sb.String()
}
