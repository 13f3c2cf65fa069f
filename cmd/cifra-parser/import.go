package main

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/remeh/sizedwaitgroup"
	"github.com/sukalov/cifras/internal/cifras"
	"github.com/sukalov/cifras/internal/config"
	"github.com/sukalov/cifras/internal/db"
	"github.com/sukalov/cifras/internal/utils"
	"github.com/urfave/cli/v3"
)

type importResult struct {
	url  string
	song *db.Song
	err  error
}

// Import stores every given URL in the songbook, a few at a time
func (r *Runner) Import(ctx context.Context, cmd *cli.Command) error {
	urls := cmd.Args().Slice()
	if len(urls) == 0 {
		return errors.New("at least one URL is required")
	}

	dbURL := cmd.String("db")
	if dbURL == "" {
		dbURL = r.config.Database.URL
	}

	database, err := db.Open(dbOptions(r.config.Database, dbURL))
	if err != nil {
		return err
	}
	defer database.Close()

	if err := db.Migrate(ctx, database); err != nil {
		return err
	}

	service := cifras.NewService(r.fetcher, db.NewSongbook(database), nil)

	concurrency := cmd.Int("concurrency")
	if concurrency < 1 {
		concurrency = 1
	}

	started := time.Now()
	var mu sync.Mutex
	results := make([]importResult, 0, len(urls))

	wg := sizedwaitgroup.New(concurrency)
	for _, url := range urls {
		wg.Add()
		go func(url string) {
			defer wg.Done()
			song, err := service.Import(ctx, url)

			mu.Lock()
			results = append(results, importResult{url: url, song: song, err: err})
			mu.Unlock()
		}(url)
	}
	wg.Wait()

	var failed int
	var totalBytes uint64
	for _, result := range results {
		if result.err != nil {
			failed++
			r.writePlain("✗ %s: %v\n", result.url, result.err)
			continue
		}
		size := uint64(len(result.song.Content))
		totalBytes += size
		r.writePlain("✓ %s (%s)\n", db.FormatSongName(*result.song), humanize.Bytes(size))
	}

	r.writePlain("\nimported %d of %d sheets, %s of content, started %s\n",
		len(results)-failed, len(results), humanize.Bytes(totalBytes), humanize.Time(started))

	if failed == len(results) {
		return fmt.Errorf("all %d imports failed", failed)
	}
	return nil
}

// dbOptions builds connection options, reading TURSO_AUTH_TOKEN for remote
// databases.
func dbOptions(cfg config.DatabaseConfig, url string) db.Options {
	return db.Options{
		URL:             url,
		AuthToken:       utils.Getenv("TURSO_AUTH_TOKEN", ""),
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute,
	}
}

// Init writes an example config file
func (r *Runner) Init(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := config.CreateConfigFile(path); err != nil {
		return err
	}
	return r.writePlain("config written to %s\n", path)
}

func importCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import chord sheets into the songbook",
		ArgsUsage: "<url>...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "db",
				Usage: "Database path or libsql URL (defaults to database.url from the config)",
			},
			&cli.IntFlag{
				Name:    "concurrency",
				Aliases: []string{"j"},
				Usage:   "Number of pages fetched at once",
				Value:   4,
			},
		},
		Action: r.Import,
	}
}

func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Create an example config.toml",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Init,
	}
}
