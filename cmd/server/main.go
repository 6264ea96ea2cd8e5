package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sagemakerruntime"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/headlinepulse/internal/adapter/feeds"
	"github.com/pscheid92/headlinepulse/internal/adapter/httpserver"
	"github.com/pscheid92/headlinepulse/internal/adapter/memory"
	"github.com/pscheid92/headlinepulse/internal/adapter/postgres"
	"github.com/pscheid92/headlinepulse/internal/adapter/redis"
	"github.com/pscheid92/headlinepulse/internal/adapter/sagemaker"
	"github.com/pscheid92/headlinepulse/internal/app"
	"github.com/pscheid92/headlinepulse/internal/domain"
	"github.com/pscheid92/headlinepulse/internal/metrics"
	"github.com/pscheid92/headlinepulse/internal/platform/config"
	"github.com/pscheid92/headlinepulse/internal/platform/logging"
	"github.com/pscheid92/headlinepulse/internal/platform/secrets"
	"github.com/pscheid92/headlinepulse/internal/platform/version"
	"github.com/pscheid92/headlinepulse/internal/sentiment"
	goredis "github.com/redis/go-redis/v9"
)

type repositories struct {
	users     domain.UserRepository
	sources   domain.SourceRepository
	headlines domain.HeadlineRepository
	rewrites  domain.RewriteRepository
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupDB(cfg *config.Config) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

// setupStorage returns the repositories for the configured driver, the
// readiness checks they need, and a cleanup func.
func setupStorage(cfg *config.Config) (repositories, []httpserver.HealthCheck, func()) {
	if cfg.StorageDriver == config.StorageDriverMemory {
		slog.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return repositories{
			users:     store.Users(),
			sources:   store.Sources(),
			headlines: store.Headlines(),
			rewrites:  store.Rewrites(),
		}, nil, func() {}
	}

	pool := setupDB(cfg)
	checks := []httpserver.HealthCheck{{
		Name:  "database",
		Check: func(ctx context.Context) error { return postgres.HealthCheck(ctx, pool) },
	}}
	return repositories{
		users:     postgres.NewUserRepo(pool),
		sources:   postgres.NewSourceRepo(pool),
		headlines: postgres.NewHeadlineRepo(pool),
		rewrites:  postgres.NewRewriteRepo(pool),
	}, checks, pool.Close
}

// setupRedis connects the optional recent-headline cache. A nil client
// means headlines are always read from storage.
func setupRedis(ctx context.Context, cfg *config.Config) *goredis.Client {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, headline cache disabled")
		return nil
	}

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

// setupScorer uses the SageMaker model when an endpoint is configured and
// the lexicon otherwise. The model scorer falls back to the lexicon on
// any endpoint failure.
func setupScorer(ctx context.Context, cfg *config.Config, loadAWS awsLoader) domain.SentimentScorer {
	if cfg.SageMakerEndpointName == "" {
		slog.Info("Scoring sentiment with the built-in lexicon")
		return sentiment.Default()
	}

	awsCfg, err := loadAWS()
	if err != nil {
		slog.Error("Failed to load AWS config", "error", err)
		os.Exit(1)
	}

	slog.InfoContext(ctx, "Scoring sentiment with SageMaker endpoint", "endpoint", cfg.SageMakerEndpointName)
	classifier := sagemaker.NewClassifier(sagemakerruntime.NewFromConfig(awsCfg), cfg.SageMakerEndpointName)
	return sentiment.NewModelScorer(classifier, sentiment.Default())
}

func setupIngestor(ctx context.Context, cfg *config.Config, repos repositories, headlines *app.HeadlineService, clock clockwork.Clock, loadAWS awsLoader) *app.Ingestor {
	if !cfg.FeedsEnabled {
		return nil
	}

	sources, err := config.LoadSources(cfg.SourcesFile)
	if err != nil {
		slog.Error("Failed to load sources", "path", cfg.SourcesFile, "error", err)
		os.Exit(1)
	}
	for i := range sources {
		if err := repos.sources.Upsert(ctx, &sources[i]); err != nil {
			slog.Error("Failed to save source", "source", sources[i].Name, "error", err)
			os.Exit(1)
		}
	}

	opts := []feeds.Option{feeds.WithHTTPClient(&http.Client{Timeout: cfg.FeedTimeout})}
	if cfg.FeedArchiveBucket != "" {
		awsCfg, err := loadAWS()
		if err != nil {
			slog.Error("Failed to load AWS config", "error", err)
			os.Exit(1)
		}
		opts = append(opts, feeds.WithArchiver(feeds.NewS3Archiver(s3.NewFromConfig(awsCfg), cfg.FeedArchiveBucket)))
		slog.Info("Archiving raw feeds", "bucket", cfg.FeedArchiveBucket)
	}

	slog.Info("Feed ingestion enabled", "sources", len(sources), "interval", cfg.FeedInterval)
	return app.NewIngestor(repos.sources, headlines, feeds.NewFetcher(opts...), clock, cfg.FeedInterval)
}

func runGracefulShutdown(srv *httpserver.Server, ingestor *app.Ingestor) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		if ingestor != nil {
			ingestor.Stop()
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()
	ctx := context.Background()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	info := version.Get()
	metrics.BuildInfo.WithLabelValues(info.Version, info.Commit, info.BuildTime, info.GoVersion).Set(1)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "version", info.Version, "storage", cfg.StorageDriver)

	repos, healthChecks, closeStorage := setupStorage(cfg)
	defer closeStorage()

	var cache domain.HeadlineCache
	if redisClient := setupRedis(ctx, cfg); redisClient != nil {
		defer func() { _ = redisClient.Close() }()
		cache = redis.NewHeadlineCache(redisClient, redis.DefaultHeadlineCacheTTL)
		healthChecks = append(healthChecks, httpserver.HealthCheck{
			Name:  "redis",
			Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		})
	}

	loadAWS := newAWSLoader(ctx, cfg.AWSRegion)
	scorer := setupScorer(ctx, cfg, loadAWS)

	identity := app.NewIdentityResolver(repos.users, clock)
	serializer := app.NewSerializer(repos.sources, repos.rewrites)
	headlines := app.NewHeadlineService(repos.headlines, cache, scorer, clock, cfg.HeadlineWindow)

	services := httpserver.Services{
		Identity:   identity,
		Limiter:    app.NewRateLimiter(identity, cfg.AnonymousRequestQuota),
		Rewrites:   app.NewRewriteWorkflow(repos.headlines, repos.rewrites, scorer, sentiment.AlwaysSimilar{}, serializer, clock),
		Headlines:  headlines,
		Users:      app.NewUserService(repos.users, secrets.Hasher{}, clock),
		Serializer: serializer,
	}

	ingestor := setupIngestor(ctx, cfg, repos, headlines, clock, loadAWS)
	if ingestor != nil {
		ingestor.Start()
	}

	srv := httpserver.NewServer(cfg, services, healthChecks)
	done := runGracefulShutdown(srv, ingestor)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
