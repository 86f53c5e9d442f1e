// newsstand serves the article store of the feed reader over HTTP.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/sethvargo/go-envconfig"
	"go.uber.org/fx"

	"github.com/jdholdren/newsstand/internal/api"
	"github.com/jdholdren/newsstand/internal/logger"
	"github.com/jdholdren/newsstand/internal/migrations"
	"github.com/jdholdren/newsstand/internal/newsstand"
	"github.com/jdholdren/newsstand/internal/sqlite"
)

type config struct {
	Database string `env:"DATABASE, required"`

	Port       int    `env:"PORT, default=4444"`
	CorsOrigin string `env:"CORS_ORIGIN"`

	// Which format to use for logging: either text or json
	LoggerFormat string `env:"LOGGER_FORMAT, default=text"`

	// How long to wait for the database at startup, and to retry busy writes
	RetryTimeout     time.Duration `env:"RETRY_TIMEOUT, default=5s"`
	DefaultLimit     uint64        `env:"DEFAULT_LIMIT, default=1000"`
	ContentCacheSize int           `env:"CONTENT_CACHE_SIZE, default=1024"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Parse the config
	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		log.Fatalf("error parsing config: %s", err)
	}

	slog.SetDefault(logger.New(cfg.LoggerFormat))

	// Connect to the sqlite db
	dbx, err := sqlite.Open(ctx, cfg.Database, cfg.RetryTimeout)
	if err != nil {
		log.Fatalf("error opening database: %s", err)
	}
	defer dbx.Close()

	// Run all migrations, these also install the indexes
	if err := migrations.Run(dbx); err != nil {
		log.Fatalf("error running migrations: %s", err)
	}

	repo := sqlite.New(dbx, sqlite.Config{RetryTimeout: cfg.RetryTimeout})

	// Start the application
	fx.New(
		fx.Supply(
			api.ServerConfig{
				Port:             cfg.Port,
				CorsOrigin:       cfg.CorsOrigin,
				DefaultLimit:     cfg.DefaultLimit,
				ContentCacheSize: cfg.ContentCacheSize,
			},
			fx.Annotate(repo, fx.As(new(newsstand.Repository))),
		),
		api.Module,
		fx.Invoke(func(*api.Server) {}), // Start the server
	).Run()
}
