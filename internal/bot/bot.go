package bot

import (
	"fmt"
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sukalov/cifras/internal/logger"
)

// MessageLimit is Telegram's maximum message length
const MessageLimit = 4096

// preChunkLimit leaves room for the <pre> tags and escaped entities
const preChunkLimit = 3500

type HandlerFunc func(b *Bot, update tgbotapi.Update) error

// Bot represents a configurable Telegram bot
type Bot struct {
	Client     *tgbotapi.BotAPI
	updateChan tgbotapi.UpdatesChannel
	stopChan   chan struct{}
	name       string
	mu         sync.Mutex
}

// New creates a new bot instance
func New(name, token string) (*Bot, error) {
	botClient, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updateChan := botClient.GetUpdatesChan(updateConfig)

	return &Bot{
		Client:     botClient,
		updateChan: updateChan,
		stopChan:   make(chan struct{}),
		name:       name,
	}, nil
}

// Start begins processing updates with custom handlers. Callback handlers are
// keyed by the part of the callback data before the first ":".
func (b *Bot) Start(
	commandHandlers map[string]HandlerFunc,
	messageHandlers []HandlerFunc,
	callbackHandlers map[string]HandlerFunc,
) {
	logger.Info(fmt.Sprintf("[%s] authorized on account %s", b.name, b.Client.Self.UserName))

	for {
		select {
		case update := <-b.updateChan:
			go b.processUpdate(update, commandHandlers, messageHandlers, callbackHandlers)
		case <-b.stopChan:
			return
		}
	}
}

// CallbackKey returns the routing prefix of callback data
func CallbackKey(data string) string {
	key, _, _ := strings.Cut(data, ":")
	return key
}

// CallbackPayload returns the part of callback data after the first ":"
func CallbackPayload(data string) string {
	_, payload, _ := strings.Cut(data, ":")
	return payload
}

func (b *Bot) processUpdate(
	update tgbotapi.Update,
	commandHandlers map[string]HandlerFunc,
	messageHandlers []HandlerFunc,
	callbackHandlers map[string]HandlerFunc,
) {
	if update.Message != nil && update.Message.IsCommand() {
		if handler, exists := commandHandlers[update.Message.Command()]; exists {
			if err := handler(b, update); err != nil {
				logger.Error(fmt.Sprintf("[%s] command handler error: %v", b.name, err))
			}
			return
		}
	}

	if update.CallbackQuery != nil {
		if handler, exists := callbackHandlers[CallbackKey(update.CallbackQuery.Data)]; exists {
			if err := handler(b, update); err != nil {
				logger.Error(fmt.Sprintf("[%s] callback handler error: %v", b.name, err))
			}
			b.AnswerCallback(update.CallbackQuery.ID, "")
			return
		}
		b.AnswerCallback(update.CallbackQuery.ID, "")
		return
	}

	for _, handler := range messageHandlers {
		if err := handler(b, update); err != nil {
			logger.Error(fmt.Sprintf("[%s] message handler error: %v", b.name, err))
		}
	}
}

// Stop halts the bot
func (b *Bot) Stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopChan <- struct{}{}
	b.Client.StopReceivingUpdates()
}

func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := b.Client.Send(msg)
	return err
}

func (b *Bot) SendMessageWithMarkdown(chatID int64, text string, disableLinks bool) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = "Markdown"
	msg.DisableWebPagePreview = disableLinks
	_, err := b.Client.Send(msg)
	return err
}

func (b *Bot) SendMessageWithButtons(chatID int64, text string, keyboard tgbotapi.InlineKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	_, err := b.Client.Send(msg)
	return err
}

// SendLong sends text split into as many messages as needed
func (b *Bot) SendLong(chatID int64, text string) error {
	for _, part := range SplitMessage(text, MessageLimit) {
		if err := b.SendMessage(chatID, part); err != nil {
			return err
		}
	}
	return nil
}

// SendSheet sends a header followed by the sheet in monospace. The keyboard,
// if any, is attached to the last message.
func (b *Bot) SendSheet(chatID int64, header string, content string, keyboard *tgbotapi.InlineKeyboardMarkup) error {
	parts := SplitMessage(content, preChunkLimit)
	for i, part := range parts {
		text := "<pre>" + html.EscapeString(part) + "</pre>"
		if i == 0 && header != "" {
			text = header + "\n\n" + text
		}

		msg := tgbotapi.NewMessage(chatID, text)
		msg.ParseMode = tgbotapi.ModeHTML
		msg.DisableWebPagePreview = true
		if i == len(parts)-1 && keyboard != nil {
			msg.ReplyMarkup = *keyboard
		}
		if _, err := b.Client.Send(msg); err != nil {
			return err
		}
	}
	return nil
}

// AnswerCallback stops the loading indicator on an inline button
func (b *Bot) AnswerCallback(callbackID string, text string) {
	if _, err := b.Client.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		logger.Debug("failed to answer callback", "bot", b.name, "err", err)
	}
}

// SplitMessage breaks text on line boundaries into parts of at most limit
// runes. Lines longer than limit are cut.
func SplitMessage(text string, limit int) []string {
	if utf8.RuneCountInString(text) <= limit {
		return []string{text}
	}

	var parts []string
	var current strings.Builder
	currentLen := 0

	flush := func() {
		if currentLen > 0 {
			parts = append(parts, current.String())
			current.Reset()
			currentLen = 0
		}
	}

	for _, line := range strings.Split(text, "\n") {
		for utf8.RuneCountInString(line) > limit {
			flush()
			runes := []rune(line)
			parts = append(parts, string(runes[:limit]))
			line = string(runes[limit:])
		}

		lineLen := utf8.RuneCountInString(line)
		if currentLen > 0 && currentLen+1+lineLen > limit {
			flush()
		}
		if currentLen > 0 {
			current.WriteString("\n")
			currentLen++
		}
		current.WriteString(line)
		currentLen += lineLen
	}
	flush()

	return parts
}
