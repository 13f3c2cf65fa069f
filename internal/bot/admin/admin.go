package admin

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sukalov/cifras/internal/bot"
	"github.com/sukalov/cifras/internal/bot/common"
	"github.com/sukalov/cifras/internal/db"
	"github.com/sukalov/cifras/internal/logger"
	"github.com/sukalov/cifras/internal/state"
)

const listLimit = 50

type AdminHandlers struct {
	sessions *state.StateManager
	songbook *db.Songbook
	admins   map[string]bool

	mu              sync.Mutex
	clearInProgress bool
}

func NewAdminHandlers(sessions *state.StateManager, songbook *db.Songbook, adminUsernames []string) *AdminHandlers {
	return &AdminHandlers{
		sessions: sessions,
		songbook: songbook,
		admins:   adminSet(adminUsernames),
	}
}

func adminSet(usernames []string) map[string]bool {
	admins := make(map[string]bool)
	for _, username := range usernames {
		admins[strings.TrimPrefix(username, "@")] = true
	}
	return admins
}

// FormatSongList renders songbook entries with their open counts
func FormatSongList(songs []db.Song) string {
	var sb strings.Builder
	for idx, song := range songs {
		fmt.Fprintf(&sb, "%d. %s (%s, %s)\n",
			idx+1,
			db.FormatSongName(song),
			humanize.Comma(int64(song.Counter)),
			humanize.Time(song.CreatedAt),
		)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (h *AdminHandlers) songsHandler(b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message
	if !h.admins[message.From.UserName] {
		return b.SendMessage(message.Chat.ID, "você não é admin")
	}

	songs, err := h.songbook.ListSongs(context.Background(), listLimit)
	if err != nil {
		return logger.LogWithErr("failed to list songbook", err)
	}
	if len(songs) == 0 {
		return b.SendMessage(message.Chat.ID, "o cifreiro está vazio")
	}

	return b.SendLong(message.Chat.ID, "cifras mais abertas:\n\n"+FormatSongList(songs))
}

func (h *AdminHandlers) clearSessionsHandler(b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message

	if !h.admins[message.From.UserName] {
		return b.SendMessage(message.Chat.ID, "você não é admin")
	}

	h.mu.Lock()
	h.clearInProgress = true
	h.mu.Unlock()

	return b.SendMessageWithButtons(message.Chat.ID,
		fmt.Sprintf("todas as %d sessões serão apagadas! tem certeza?", h.sessions.Count()),
		tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("apagar", "confirm_clear"),
				tgbotapi.NewInlineKeyboardButtonData("cancelar", "abort_clear"),
			),
		),
	)
}

// takeClear reports whether a clear was pending and resets it
func (h *AdminHandlers) takeClear() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	pending := h.clearInProgress
	h.clearInProgress = false
	return pending
}

func (h *AdminHandlers) confirmHandler(b *bot.Bot, update tgbotapi.Update) error {
	if !h.takeClear() {
		return b.SendMessage(update.CallbackQuery.From.ID, "esse botão não funciona mais")
	}
	if err := h.sessions.Clear(context.Background()); err != nil {
		b.SendMessage(update.CallbackQuery.From.ID, "não consegui apagar as sessões")
		return err
	}
	logger.Info(fmt.Sprintf("sessions cleared by @%s", update.CallbackQuery.From.UserName))
	return b.SendMessage(update.CallbackQuery.From.ID, "sessões apagadas")
}

func (h *AdminHandlers) abortHandler(b *bot.Bot, update tgbotapi.Update) error {
	if h.takeClear() {
		return b.SendMessage(update.CallbackQuery.From.ID, "ok, cancelado")
	}
	return b.SendMessage(update.CallbackQuery.From.ID, "esse botão não funciona mais")
}

func SetupHandlers(adminBot *bot.Bot, sessions *state.StateManager, songbook *db.Songbook, usage KeyUsage, adminUsernames []string) {
	handlers := NewAdminHandlers(sessions, songbook, adminUsernames)
	search := NewSearchHandler(adminUsernames, songbook, usage)

	commandHandlers := common.GetCommandHandlers(sessions, songbook)
	commandHandlers["cifras"] = handlers.songsHandler
	commandHandlers["limpar"] = handlers.clearSessionsHandler
	commandHandlers["buscar"] = search.findSongHandler

	callbackHandlers := common.GetCallbackHandlers()
	callbackHandlers["abort_clear"] = handlers.abortHandler
	callbackHandlers["confirm_clear"] = handlers.confirmHandler
	callbackHandlers[songInfoCallback] = search.callbackHandler

	messageHandlers := []bot.HandlerFunc{search.messageHandler}

	go adminBot.Start(commandHandlers, messageHandlers, callbackHandlers)
}
