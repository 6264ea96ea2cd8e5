package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/headlinepulse/internal/domain"
	"github.com/pscheid92/headlinepulse/internal/metrics"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultFeedInterval matches how often the outlets refresh their feeds.
	DefaultFeedInterval = 3 * time.Hour
	maxConcurrentFeeds  = 4
	ingestRunTimeout    = 5 * time.Minute
)

// IngestReport summarises one ingestion pass.
type IngestReport struct {
	Fetched    int
	Stored     int
	Duplicates int
	Skipped    int
}

func (r *IngestReport) add(o IngestReport) {
	r.Fetched += o.Fetched
	r.Stored += o.Stored
	r.Duplicates += o.Duplicates
	r.Skipped += o.Skipped
}

// Ingestor pulls headlines from every source's RSS feeds on a schedule.
type Ingestor struct {
	sources   domain.SourceRepository
	headlines *HeadlineService
	fetcher   domain.FeedFetcher
	clock     clockwork.Clock
	interval  time.Duration

	// runCtx bounds scheduled passes; Stop cancels it.
	runCtx    context.Context
	cancelRun context.CancelFunc
	stopCh    chan struct{}
	stopOnce  sync.Once
	wg        sync.WaitGroup
}

func NewIngestor(sources domain.SourceRepository, headlines *HeadlineService, fetcher domain.FeedFetcher, clock clockwork.Clock, interval time.Duration) *Ingestor {
	if interval <= 0 {
		interval = DefaultFeedInterval
	}
	runCtx, cancelRun := context.WithCancel(context.Background())
	return &Ingestor{
		sources:   sources,
		headlines: headlines,
		fetcher:   fetcher,
		clock:     clock,
		interval:  interval,
		runCtx:    runCtx,
		cancelRun: cancelRun,
		stopCh:    make(chan struct{}),
	}
}

// IngestAll ingests every source. A failing source does not stop the others;
// their errors are joined.
func (i *Ingestor) IngestAll(ctx context.Context) (IngestReport, error) {
	start := i.clock.Now()
	defer func() {
		metrics.IngestRunDuration.Observe(i.clock.Since(start).Seconds())
	}()

	sources, err := i.sources.List(ctx)
	if err != nil {
		return IngestReport{}, fmt.Errorf("failed to list sources: %w", err)
	}

	var total IngestReport
	var errs []error
	for _, src := range sources {
		report, err := i.IngestSource(ctx, src)
		total.add(report)
		if err != nil {
			errs = append(errs, err)
		}
	}

	slog.InfoContext(ctx, "Feed ingestion finished",
		"sources", len(sources),
		"fetched", total.Fetched,
		"stored", total.Stored,
		"duplicates", total.Duplicates)
	return total, errors.Join(errs...)
}

// IngestSource fetches all feeds of src concurrently and stores headlines
// whose text is not stored yet.
func (i *Ingestor) IngestSource(ctx context.Context, src domain.Source) (IngestReport, error) {
	batches := make([][]domain.FeedItem, len(src.FeedURLs))
	feedErrs := make([]error, len(src.FeedURLs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFeeds)
	for n, feedURL := range src.FeedURLs {
		g.Go(func() error {
			items, err := i.fetcher.Fetch(gctx, feedURL)
			if err != nil {
				metrics.FeedFetchesTotal.WithLabelValues("error").Inc()
				slog.WarnContext(ctx, "Feed fetch failed", "source", src.Name, "feed_url", feedURL, "error", err)
				feedErrs[n] = fmt.Errorf("feed %s: %w", feedURL, err)
				return nil
			}
			metrics.FeedFetchesTotal.WithLabelValues("success").Inc()
			batches[n] = items
			return nil
		})
	}
	_ = g.Wait()

	var report IngestReport
	seen := make(map[string]struct{})
	for _, items := range batches {
		for _, item := range items {
			report.Fetched++
			if err := i.storeItem(ctx, src, item, seen, &report); err != nil {
				feedErrs = append(feedErrs, err)
			}
		}
	}

	if report.Stored > 0 {
		i.headlines.invalidate(ctx)
	}
	return report, errors.Join(feedErrs...)
}

func (i *Ingestor) storeItem(ctx context.Context, src domain.Source, item domain.FeedItem, seen map[string]struct{}, report *IngestReport) error {
	text := strings.TrimSpace(item.Title)
	if text == "" {
		report.Skipped++
		metrics.FeedItemsTotal.WithLabelValues("skipped").Inc()
		return nil
	}

	if _, dup := seen[text]; dup {
		report.Duplicates++
		metrics.FeedItemsTotal.WithLabelValues("duplicate").Inc()
		return nil
	}
	seen[text] = struct{}{}

	exists, err := i.headlines.headlines.ExistsByText(ctx, text)
	if err != nil {
		metrics.FeedItemsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to check headline %q: %w", text, err)
	}
	if exists {
		report.Duplicates++
		metrics.FeedItemsTotal.WithLabelValues("duplicate").Inc()
		return nil
	}

	date := item.Published
	if date.IsZero() {
		date = i.clock.Now()
	}
	date = date.UTC().Truncate(24 * time.Hour)

	headline := NewHeadline(ctx, i.headlines.scorer, text, date, src.ID, item.Link, i.clock)
	if err := i.headlines.headlines.Create(ctx, headline); err != nil {
		metrics.FeedItemsTotal.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to store headline %q: %w", text, err)
	}

	report.Stored++
	metrics.FeedItemsTotal.WithLabelValues("stored").Inc()
	return nil
}

// Start runs IngestAll every interval until Stop is called.
func (i *Ingestor) Start() {
	ticker := i.clock.NewTicker(i.interval)
	i.wg.Go(func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.Chan():
				i.runScheduled()
			case <-i.stopCh:
				return
			}
		}
	})
	slog.Info("Feed ingestion scheduled", "interval", i.interval.String())
}

func (i *Ingestor) runScheduled() {
	ctx, cancel := context.WithTimeout(i.runCtx, ingestRunTimeout)
	defer cancel()

	if _, err := i.IngestAll(ctx); err != nil {
		slog.Error("Scheduled feed ingestion had errors", "error", err)
	}
}

// Stop stops the schedule, cancels a running pass and waits for it to return.
func (i *Ingestor) Stop() {
	i.stopOnce.Do(func() {
		close(i.stopCh)
		i.cancelRun()
	})
	i.wg.Wait()
}
