// Command seed loads the news sources from a YAML file into PostgreSQL and
// optionally runs one feed ingestion pass.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/headlinepulse/internal/adapter/feeds"
	"github.com/pscheid92/headlinepulse/internal/adapter/postgres"
	"github.com/pscheid92/headlinepulse/internal/app"
	"github.com/pscheid92/headlinepulse/internal/platform/config"
	"github.com/pscheid92/headlinepulse/internal/platform/logging"
	"github.com/pscheid92/headlinepulse/internal/sentiment"
	"go-simpler.org/env"
)

type seedConfig struct {
	DatabaseURL    string        `env:"DATABASE_URL,required"`
	SourcesFile    string        `env:"SOURCES_FILE" default:"sources.yaml"`
	LogLevel       string        `env:"LOG_LEVEL" default:"info"`
	LogFormat      string        `env:"LOG_FORMAT" default:"text"`
	FeedTimeout    time.Duration `env:"FEED_TIMEOUT" default:"15s"`
	HeadlineWindow time.Duration `env:"HEADLINE_WINDOW" default:"96h"`
}

func main() {
	ingest := flag.Bool("ingest", false, "fetch all feeds once after seeding sources")
	flag.Parse()

	_ = godotenv.Load()
	var cfg seedConfig
	if err := env.Load(&cfg, nil); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *ingest); err != nil {
		slog.Error("Seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg seedConfig, ingest bool) error {
	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		return err
	}

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		return err
	}

	sourceRepo := postgres.NewSourceRepo(pool)
	for i := range sources {
		if err := sourceRepo.Upsert(ctx, &sources[i]); err != nil {
			return err
		}
		slog.Info("Source saved", "name", sources[i].Name, "source_id", sources[i].ID.String(), "feeds", len(sources[i].FeedURLs))
	}

	if !ingest {
		return nil
	}

	clock := clockwork.NewRealClock()
	headlines := app.NewHeadlineService(postgres.NewHeadlineRepo(pool), nil, sentiment.Default(), clock, cfg.HeadlineWindow)
	fetcher := feeds.NewFetcher(feeds.WithHTTPClient(&http.Client{Timeout: cfg.FeedTimeout}))
	ingestor := app.NewIngestor(sourceRepo, headlines, fetcher, clock, app.DefaultFeedInterval)

	report, err := ingestor.IngestAll(ctx)
	slog.Info("Ingestion finished",
		"fetched", report.Fetched,
		"stored", report.Stored,
		"duplicates", report.Duplicates,
		"skipped", report.Skipped)
	return err
}
