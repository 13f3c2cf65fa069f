package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sukalov/cifras/internal/bot"
	"github.com/sukalov/cifras/internal/bot/admin"
	"github.com/sukalov/cifras/internal/bot/client"
	"github.com/sukalov/cifras/internal/cifras"
	"github.com/sukalov/cifras/internal/cifras/parsers/cifraclub"
	"github.com/sukalov/cifras/internal/config"
	"github.com/sukalov/cifras/internal/db"
	"github.com/sukalov/cifras/internal/logger"
	"github.com/sukalov/cifras/internal/redis"
	"github.com/sukalov/cifras/internal/state"
	"github.com/sukalov/cifras/internal/users"
	"github.com/sukalov/cifras/internal/utils"
)

// memorySessions keeps sessions in process when redis is not configured
type memorySessions struct {
	sessions []users.Session
}

func (m *memorySessions) GetSessions(ctx context.Context) ([]users.Session, error) {
	return m.sessions, nil
}

func (m *memorySessions) SetSessions(ctx context.Context, sessions []users.Session) error {
	m.sessions = sessions
	return nil
}

func main() {
	configPath := flag.String("config", "config.toml", "Path to configuration file")
	flag.Parse()

	log := logger.Get()

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := logger.SetLevel(cfg.Log.Level); err != nil {
		log.Warn("ignoring log level", "err", err)
	}

	tokens, err := utils.LoadEnv([]string{"BOT_TOKEN"})
	if err != nil {
		log.Fatalf("required env missing: %v", err)
	}

	ctx := context.Background()

	database, err := db.Open(db.Options{
		URL:             utils.Getenv("DATABASE_URL", cfg.Database.URL),
		AuthToken:       utils.Getenv("TURSO_AUTH_TOKEN", ""),
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute,
	})
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	songbook := db.NewSongbook(database)
	usersDB := db.NewUsers(database)

	var sessionStore state.SessionStore = &memorySessions{}
	var pageCache cifras.PageCache
	var keyStats client.KeyStats
	var keyUsage admin.KeyUsage

	if addr := utils.Getenv("REDIS_URL", cfg.Redis.Addr); addr != "" {
		redisDB := redis.NewDBManager(redis.Options{
			Addr:     addr,
			Password: utils.Getenv("REDIS_PASSWORD", ""),
			TLS:      cfg.Redis.TLS,
			PageTTL:  cfg.Redis.PageTTL(),
		})
		defer redisDB.Close()

		if err := redisDB.Ping(ctx); err != nil {
			log.Fatalf("failed to reach redis at %s: %v", addr, err)
		}
		sessionStore, pageCache, keyStats, keyUsage = redisDB, redisDB, redisDB, redisDB
	} else {
		log.Warn("redis is not configured, sessions will not survive a restart")
	}

	sessions := state.NewStateManager(sessionStore)
	if err := sessions.Init(ctx); err != nil {
		log.Fatalf("failed to load sessions: %v", err)
	}

	fetcher := cifraclub.NewClient(cifraclub.ClientOptions{
		Timeout:           cfg.Fetch.Timeout(),
		UserAgent:         cfg.Fetch.UserAgent,
		RequestsPerSecond: cfg.Fetch.RequestsPerSecond,
		Burst:             cfg.Fetch.Burst,
	})
	service := cifras.NewService(fetcher, songbook, pageCache)

	clientBot, err := bot.New("client", tokens["BOT_TOKEN"])
	if err != nil {
		log.Fatalf("failed to start client bot: %v", err)
	}
	// before handlers start so the update loop never logs against a half-set channel
	if err := logger.Init(clientBot); err != nil {
		log.Warn("log channel disabled", "err", err)
	}
	client.SetupHandlers(clientBot, client.NewClientHandlers(service, songbook, usersDB, sessions, keyStats))

	if adminToken := utils.Getenv("ADMIN_BOT_TOKEN", ""); adminToken != "" {
		adminBot, err := bot.New("admin", adminToken)
		if err != nil {
			log.Fatalf("failed to start admin bot: %v", err)
		}

		admins := cfg.Bot.Admins
		if extra := utils.Getenv("ADMINS", ""); extra != "" {
			admins = append(admins, strings.Split(extra, ",")...)
		}
		admin.SetupHandlers(adminBot, sessions, songbook, keyUsage, admins)
		defer adminBot.Stop()
	}

	logger.Info("cifras bot started")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("cifras bot shutting down")
	clientBot.Stop()
}
