package admin

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sukalov/cifras/internal/bot"
	"github.com/sukalov/cifras/internal/db"
)

const (
	songInfoCallback = "song_info"
	maxResults       = 10
)

// KeyUsage reads per-key open counts of a song
type KeyUsage interface {
	GetKeyUsage(ctx context.Context, songID string) (map[string]int, error)
}

type SearchHandler struct {
	admins   map[string]bool
	songbook *db.Songbook
	usage    KeyUsage

	mu             sync.Mutex
	awaitingSearch map[int64]bool
}

func NewSearchHandler(adminUsernames []string, songbook *db.Songbook, usage KeyUsage) *SearchHandler {
	return &SearchHandler{
		admins:         adminSet(adminUsernames),
		songbook:       songbook,
		usage:          usage,
		awaitingSearch: make(map[int64]bool),
	}
}

func (h *SearchHandler) findSongHandler(b *bot.Bot, update tgbotapi.Update) error {
	if !h.admins[update.Message.From.UserName] {
		return b.SendMessage(update.Message.Chat.ID, "você não é admin")
	}

	h.mu.Lock()
	h.awaitingSearch[update.Message.Chat.ID] = true
	h.mu.Unlock()
	return b.SendMessage(update.Message.Chat.ID, "escreve o nome da música ou do artista")
}

func (h *SearchHandler) messageHandler(b *bot.Bot, update tgbotapi.Update) error {
	if update.Message == nil {
		return nil
	}

	h.mu.Lock()
	awaiting := h.awaitingSearch[update.Message.Chat.ID]
	delete(h.awaitingSearch, update.Message.Chat.ID)
	h.mu.Unlock()

	if !awaiting {
		return b.SendMessage(update.Message.Chat.ID, "não entendi. pra procurar uma cifra, usa /buscar")
	}

	results, err := h.songbook.SearchSongs(context.Background(), update.Message.Text)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		return b.SendMessage(update.Message.Chat.ID, "nada encontrado")
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, song := range results {
		if len(rows) >= maxResults {
			break
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(db.FormatSongName(song), songInfoCallback+":"+song.ID),
		))
	}

	message := "cifras encontradas:"
	if len(results) > maxResults {
		message += fmt.Sprintf("\n(mostrando %d de %d)", maxResults, len(results))
	}

	return b.SendMessageWithButtons(update.Message.Chat.ID, message, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

// FormatKeyUsage lists keys from most to least used
func FormatKeyUsage(usage map[string]int) string {
	keys := make([]string, 0, len(usage))
	for key := range usage {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if usage[keys[i]] != usage[keys[j]] {
			return usage[keys[i]] > usage[keys[j]]
		}
		return keys[i] < keys[j]
	})

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", key, humanize.Comma(int64(usage[key]))))
	}
	return strings.Join(parts, ", ")
}

func (h *SearchHandler) callbackHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.CallbackQuery.Message.Chat.ID
	songID := bot.CallbackPayload(update.CallbackQuery.Data)

	ctx := context.Background()
	song, err := h.songbook.FindSongByID(ctx, songID)
	if err != nil {
		return b.SendMessage(chatID, "cifra não encontrada")
	}

	info := fmt.Sprintf("%s\n%s\naberta %s vezes\nimportada %s\nid: %s",
		db.FormatSongName(song),
		song.Link,
		humanize.Comma(int64(song.Counter)),
		humanize.Time(song.CreatedAt),
		song.ID,
	)
	if h.usage != nil {
		if usage, err := h.usage.GetKeyUsage(ctx, song.ID); err == nil && len(usage) > 0 {
			info += "\ntons: " + FormatKeyUsage(usage)
		}
	}

	return b.SendMessage(chatID, info)
}
