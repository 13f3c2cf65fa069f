// Package logger writes structured logs to stderr and, once a bot client is
// registered with Init, mirrors info-and-above messages to a Telegram channel.
package logger

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sukalov/cifras/internal/utils"
)

var (
	once sync.Once
	base = NewLogger(nil)

	// channelMu guards channelID and botClient, which Init may set while
	// handlers are already logging.
	channelMu sync.RWMutex
	channelID int64
	botClient BotClient
)

// BotClient sends plain text messages to a chat
type BotClient interface {
	SendMessage(chatID int64, text string) error
}

// NewLogger creates a new [log.Logger] with timestamps and caller reporting.
//
// The writer defaults to [os.Stderr]
func NewLogger(w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	return log.NewWithOptions(w, log.Options{ReportTimestamp: true, ReportCaller: true})
}

// Get returns the process-wide logger
func Get() *log.Logger {
	return base
}

// SetOutput replaces the process-wide logger's writer
func SetOutput(w io.Writer) {
	base.SetOutput(w)
}

// SetLevel parses and applies a level name such as "debug" or "warn"
func SetLevel(level string) error {
	l, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	base.SetLevel(l)
	return nil
}

// Init registers the bot client used to mirror logs to LOG_CHANNEL_ID
func Init(client BotClient) error {
	var initErr error
	once.Do(func() {
		env, err := utils.LoadEnv([]string{"LOG_CHANNEL_ID"})
		if err != nil {
			initErr = fmt.Errorf("failed to load LOG_CHANNEL_ID: %w", err)
			return
		}

		id, err := strconv.ParseInt(env["LOG_CHANNEL_ID"], 10, 64)
		if err != nil {
			initErr = fmt.Errorf("failed to parse LOG_CHANNEL_ID: %w", err)
			return
		}

		channelMu.Lock()
		channelID = id
		botClient = client
		channelMu.Unlock()
	})

	return initErr
}

func Info(message string, keyvals ...any) {
	base.Helper()
	base.Info(message, keyvals...)
	sendLog("ℹ️ INFO", message)
}

func Error(message string, keyvals ...any) {
	base.Helper()
	base.Error(message, keyvals...)
	sendLog("❌ ERROR", message)
}

// Debug is never mirrored to the channel
func Debug(message string, keyvals ...any) {
	base.Helper()
	base.Debug(message, keyvals...)
}

func Success(message string, keyvals ...any) {
	base.Helper()
	base.Info(message, append([]any{"status", "ok"}, keyvals...)...)
	sendLog("✅ SUCCESS", message)
}

// ChannelID returns the chat logs are mirrored to, or 0 before Init
func ChannelID() int64 {
	channelMu.RLock()
	defer channelMu.RUnlock()
	return channelID
}

func sendLog(prefix, message string) {
	channelMu.RLock()
	client, chatID := botClient, channelID
	channelMu.RUnlock()

	if client == nil {
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	logMessage := fmt.Sprintf("[%s] %s\n%s", timestamp, prefix, message)

	go func() {
		if err := client.SendMessage(chatID, logMessage); err != nil {
			base.Warn("failed to send log to channel", "err", err)
		}
	}()
}

// LogWithErr logs message at info level when err is nil and at error level
// otherwise, returning err wrapped with message.
func LogWithErr(message string, err error) error {
	base.Helper()
	if err == nil {
		Info(message)
		return nil
	}

	Error(fmt.Sprintf("%s\nError: %v", message, err))
	return fmt.Errorf("%s: %w", message, err)
}
