package redis

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redisClient "github.com/go-redis/redis/v8"
	"github.com/sukalov/cifras/internal/users"
)

const (
	sessionsKey    = "sessions"
	pagePrefix     = "page:"
	keyUsageKey    = "key_usage"
	songOpensKey   = "song_opens"
	defaultPageTTL = 24 * time.Hour
)

type DBManager struct {
	client  *redisClient.Client
	pageTTL time.Duration
}

// Options configures the redis connection
type Options struct {
	Addr     string
	Password string
	TLS      bool
	PageTTL  time.Duration
}

func NewDBManager(opts Options) *DBManager {
	redisOpts := &redisClient.Options{
		Addr:     opts.Addr,
		Username: "default",
		Password: opts.Password,
	}
	if opts.TLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return NewFromClient(redisClient.NewClient(redisOpts), opts.PageTTL)
}

// NewFromClient wraps an existing client
func NewFromClient(client *redisClient.Client, pageTTL time.Duration) *DBManager {
	if pageTTL <= 0 {
		pageTTL = defaultPageTTL
	}
	return &DBManager{client: client, pageTTL: pageTTL}
}

func (redis *DBManager) Ping(ctx context.Context) error {
	return redis.client.Ping(ctx).Err()
}

func (redis *DBManager) Close() error {
	return redis.client.Close()
}

func pageKey(url string) string {
	return pagePrefix + url
}

// SetPage caches the raw HTML of a fetched page
func (redis *DBManager) SetPage(ctx context.Context, url string, page string) error {
	if err := redis.client.Set(ctx, pageKey(url), page, redis.pageTTL).Err(); err != nil {
		return fmt.Errorf("failed to cache page %s: %w", url, err)
	}
	return nil
}

// GetPage returns a cached page. A miss is not an error.
func (redis *DBManager) GetPage(ctx context.Context, url string) (string, bool, error) {
	page, err := redis.client.Get(ctx, pageKey(url)).Result()
	if err != nil {
		if errors.Is(err, redisClient.Nil) {
			return "", false, nil
		}
		return "", false, err
	}
	return page, true, nil
}

// SetSessions stores all chat sessions
func (redis *DBManager) SetSessions(ctx context.Context, sessions []users.Session) error {
	sessionsJSON, err := json.Marshal(sessions)
	if err != nil {
		return err
	}
	return redis.client.Set(ctx, sessionsKey, sessionsJSON, 0).Err()
}

// GetSessions retrieves the stored chat sessions
func (redis *DBManager) GetSessions(ctx context.Context) ([]users.Session, error) {
	data, err := redis.client.Get(ctx, sessionsKey).Bytes()
	if err != nil {
		if errors.Is(err, redisClient.Nil) {
			return []users.Session{}, nil
		}
		return nil, err
	}
	var sessions []users.Session
	if err := json.Unmarshal(data, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}
