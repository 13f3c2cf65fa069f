package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

type User struct {
	ChatID       int64
	Username     sql.NullString
	TgName       sql.NullString
	AddedAt      time.Time
	SheetsOpened int
}

// Users records the chats that talk to the bot
type Users struct {
	db *sql.DB
}

func NewUsers(database *sql.DB) *Users {
	return &Users{db: database}
}

// RegisterUser stores a chat the first time it is seen. It reports whether the
// user is new.
func (u *Users) RegisterUser(ctx context.Context, chatID int64, username, tgName string) (bool, error) {
	var exists bool
	err := u.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE chat_id = ?)`, chatID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking user existence: %w", err)
	}
	if exists {
		return false, nil
	}

	_, err = u.db.ExecContext(ctx,
		`INSERT INTO users (chat_id, username, tg_name, added_at, sheets_opened) VALUES (?, ?, ?, ?, 0)`,
		chatID,
		sql.NullString{String: username, Valid: username != ""},
		sql.NullString{String: tgName, Valid: tgName != ""},
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("failed to insert new user: %w", err)
	}
	return true, nil
}

func (u *Users) GetUserByChatID(ctx context.Context, chatID int64) (User, error) {
	var user User
	var addedAt string
	err := u.db.QueryRowContext(ctx,
		`SELECT chat_id, username, tg_name, added_at, sheets_opened FROM users WHERE chat_id = ?`, chatID,
	).Scan(&user.ChatID, &user.Username, &user.TgName, &addedAt, &user.SheetsOpened)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to query user: %w", err)
	}
	user.AddedAt, err = time.Parse(time.RFC3339, addedAt)
	if err != nil {
		return User{}, fmt.Errorf("invalid added_at %q: %w", addedAt, err)
	}
	return user, nil
}

func (u *Users) IncrementSheetsOpened(ctx context.Context, chatID int64) error {
	_, err := u.db.ExecContext(ctx, `UPDATE users SET sheets_opened = sheets_opened + 1 WHERE chat_id = ?`, chatID)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}
