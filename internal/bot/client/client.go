package client

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sukalov/cifras/internal/bot"
	"github.com/sukalov/cifras/internal/bot/common"
	"github.com/sukalov/cifras/internal/cifras"
	"github.com/sukalov/cifras/internal/cifras/parsers/cifraclub"
	"github.com/sukalov/cifras/internal/db"
	"github.com/sukalov/cifras/internal/logger"
	"github.com/sukalov/cifras/internal/state"
	"github.com/sukalov/cifras/internal/users"
)

var urlRegex = regexp.MustCompile(`https?://[^\s<>"]+`)

// KeyStats counts which keys songs are played in
type KeyStats interface {
	IncrementKeyUsage(ctx context.Context, songID string, key string) error
}

type ClientHandlers struct {
	service  *cifras.Service
	songbook *db.Songbook
	users    *db.Users
	sessions *state.StateManager
	stats    KeyStats
}

func NewClientHandlers(service *cifras.Service, songbook *db.Songbook, usersDB *db.Users, sessions *state.StateManager, stats KeyStats) *ClientHandlers {
	return &ClientHandlers{
		service:  service,
		songbook: songbook,
		users:    usersDB,
		sessions: sessions,
		stats:    stats,
	}
}

// ExtractURL returns the first link in a message
func ExtractURL(text string) string {
	return strings.TrimRight(urlRegex.FindString(text), ".,;!?)")
}

func tgName(from *tgbotapi.User) string {
	if from == nil {
		return ""
	}
	return strings.TrimSpace(fmt.Sprintf("%s %s", from.FirstName, from.LastName))
}

func username(from *tgbotapi.User) string {
	if from == nil {
		return ""
	}
	return from.UserName
}

func (h *ClientHandlers) startHandler(b *bot.Bot, update tgbotapi.Update) error {
	ctx := context.Background()
	message := update.Message

	if _, err := h.users.RegisterUser(ctx, message.Chat.ID, username(message.From), tgName(message.From)); err != nil {
		logger.Error(fmt.Sprintf("error registering user %d: %v", message.Chat.ID, err))
		return b.SendMessage(message.Chat.ID, "aconteceu um erro no cadastro")
	}

	// /start <songID> opens a song from the songbook
	if songID := strings.TrimSpace(message.CommandArguments()); songID != "" {
		song, err := h.songbook.FindSongByID(ctx, songID)
		if errors.Is(err, db.ErrSongNotFound) {
			return b.SendMessage(message.Chat.ID, "não existe cifra com esse id")
		}
		if err != nil {
			return err
		}
		return h.showSong(b, message.Chat.ID, username(message.From), song, "")
	}

	return b.SendMessage(
		message.Chat.ID,
		"oi! manda um link do cifraclub.com.br que eu trago a cifra e troco o tom pra você.\n\n"+
			"/tons - escolher outro tom\n/original - voltar ao tom original\n/acordes - acordes da música\n/secoes - partes da música",
	)
}

func (h *ClientHandlers) linkHandler(b *bot.Bot, update tgbotapi.Update) error {
	message := update.Message
	link := ExtractURL(message.Text)
	if link == "" || !cifraclub.IsSupportedURL(link) {
		return randomMessageHandler(b, update)
	}

	song, err := h.service.Import(context.Background(), link)
	if err != nil {
		switch {
		case errors.Is(err, cifraclub.ErrContentNotFound):
			return b.SendMessage(message.Chat.ID, "não achei cifra nessa página")
		case errors.Is(err, cifraclub.ErrFetchFailed):
			return b.SendMessage(message.Chat.ID, "não consegui abrir essa página, tenta de novo mais tarde")
		default:
			notify(b, message.Chat.ID, "aconteceu um erro ao importar a cifra")
			return err
		}
	}

	return h.showSong(b, message.Chat.ID, username(message.From), *song, "")
}

func (h *ClientHandlers) showSong(b *bot.Bot, chatID int64, user string, song db.Song, key string) error {
	ctx := context.Background()

	content, err := cifras.Render(song, key)
	if errors.Is(err, cifras.ErrNoOriginalKey) {
		notify(b, chatID, "essa cifra não informa o tom original, então não dá pra transpor")
		key = ""
		content = song.Content
	} else if err != nil {
		return err
	}

	session := users.Session{
		ChatID:    chatID,
		Username:  user,
		SongID:    song.ID,
		Key:       key,
		UpdatedAt: time.Now(),
	}
	if err := h.sessions.Set(ctx, session); err != nil {
		logger.Error(fmt.Sprintf("failed to save session for %d: %v", chatID, err))
	}

	if key == "" {
		if err := h.songbook.IncrementSongCounter(ctx, song.ID); err != nil {
			logger.Error(fmt.Sprintf("failed to increment counter of %s: %v", song.ID, err))
		}
		if err := h.users.IncrementSheetsOpened(ctx, chatID); err != nil {
			logger.Error(fmt.Sprintf("failed to update user %d: %v", chatID, err))
		}
	}
	if h.stats != nil {
		statKey := key
		if statKey == "" {
			statKey = common.OriginalKeyLabel
		}
		if err := h.stats.IncrementKeyUsage(ctx, song.ID, statKey); err != nil {
			logger.Error(err.Error())
		}
	}

	current := key
	if current == "" && song.OriginalKey.Valid {
		current = song.OriginalKey.String
	}
	keyboard := common.KeyKeyboard(current)
	return b.SendSheet(chatID, common.SongHeader(song, key), content, &keyboard)
}

type messageSender interface {
	SendMessage(chatID int64, text string) error
}

// notify sends a message the handler does not return on, logging a failed send
func notify(b messageSender, chatID int64, text string) {
	if err := b.SendMessage(chatID, text); err != nil {
		logger.Error(fmt.Sprintf("failed to send message to %d: %v", chatID, err))
	}
}

// currentSong returns the song the chat is looking at
func (h *ClientHandlers) currentSong(b *bot.Bot, chatID int64) (users.Session, db.Song, bool) {
	session, ok := h.sessions.Get(chatID)
	if !ok {
		notify(b, chatID, "primeiro manda um link de cifra")
		return users.Session{}, db.Song{}, false
	}

	song, err := h.songbook.FindSongByID(context.Background(), session.SongID)
	if err != nil {
		logger.Error(fmt.Sprintf("session song %s not found: %v", session.SongID, err))
		notify(b, chatID, "não encontrei mais essa cifra, manda o link de novo")
		return users.Session{}, db.Song{}, false
	}
	return session, song, true
}

func (h *ClientHandlers) keyHandler(b *bot.Bot, update tgbotapi.Update) error {
	query := update.CallbackQuery
	chatID := query.Message.Chat.ID

	key, ok := common.ParseKeyCallback(query.Data)
	if !ok {
		return b.SendMessage(chatID, "tom desconhecido")
	}

	_, song, ok := h.currentSong(b, chatID)
	if !ok {
		return nil
	}
	return h.showSong(b, chatID, username(query.From), song, key)
}

func (h *ClientHandlers) keysHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	session, song, ok := h.currentSong(b, chatID)
	if !ok {
		return nil
	}

	current := session.Key
	if current == "" {
		current = song.OriginalKey.String
	}
	return b.SendMessageWithButtons(chatID, fmt.Sprintf("em qual tom? (%s)", db.FormatSongName(song)), common.KeyKeyboard(current))
}

func (h *ClientHandlers) originalHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	_, song, ok := h.currentSong(b, chatID)
	if !ok {
		return nil
	}
	return h.showSong(b, chatID, username(update.Message.From), song, "")
}

func (h *ClientHandlers) chordsHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	session, song, ok := h.currentSong(b, chatID)
	if !ok {
		return nil
	}

	chords, err := cifras.Chords(song, session.Key)
	if err != nil {
		return err
	}
	if len(chords) == 0 {
		return b.SendMessage(chatID, "não encontrei acordes nessa cifra")
	}
	return b.SendMessage(chatID, fmt.Sprintf("acordes de %s:\n\n%s", db.FormatSongName(song), strings.Join(chords, "  ")))
}

// FormatSections lists section labels with their line counts
func FormatSections(sections []cifraclub.Section) string {
	var sb strings.Builder
	for idx, section := range sections {
		label := section.Label
		if label == "" {
			label = "(sem título)"
		}
		fmt.Fprintf(&sb, "%d. %s - %s, %d linhas\n", idx+1, label, section.Kind, len(section.Lines))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func (h *ClientHandlers) sectionsHandler(b *bot.Bot, update tgbotapi.Update) error {
	chatID := update.Message.Chat.ID
	_, song, ok := h.currentSong(b, chatID)
	if !ok {
		return nil
	}

	sections := cifras.Sections(song)
	if len(sections) == 0 {
		return b.SendMessage(chatID, "essa cifra não tem partes marcadas")
	}
	return b.SendLong(chatID, FormatSections(sections))
}

func randomMessageHandler(b *bot.Bot, update tgbotapi.Update) error {
	return b.SendMessage(
		update.Message.Chat.ID,
		"não entendi...\n\nmanda um link do cifraclub.com.br",
	)
}

func SetupHandlers(clientBot *bot.Bot, handlers *ClientHandlers) {
	messageHandlers := []bot.HandlerFunc{
		func(b *bot.Bot, update tgbotapi.Update) error {
			if update.Message == nil {
				return nil
			}
			return handlers.linkHandler(b, update)
		},
	}

	commandHandlers := common.GetCommandHandlers(handlers.sessions, handlers.songbook)
	commandHandlers["start"] = handlers.startHandler
	commandHandlers["tons"] = handlers.keysHandler
	commandHandlers["original"] = handlers.originalHandler
	commandHandlers["acordes"] = handlers.chordsHandler
	commandHandlers["secoes"] = handlers.sectionsHandler

	callbackHandlers := common.GetCallbackHandlers()
	callbackHandlers[common.KeyCallback] = handlers.keyHandler

	go clientBot.Start(
		commandHandlers,
		messageHandlers,
		callbackHandlers,
	)
}
