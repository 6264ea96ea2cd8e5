// Package feeds fetches and parses the RSS and Atom feeds headlines are
// ingested from.
package feeds

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/pscheid92/headlinepulse/internal/domain"
	"github.com/pscheid92/headlinepulse/internal/platform/retry"
)

const (
	defaultTimeout = 15 * time.Second
	maxFeedBytes   = 5 << 20
	userAgent      = "headlinepulse/1.0 (+rss)"
)

// Archiver stores raw feed documents. Archive failures never fail a fetch.
type Archiver interface {
	Archive(ctx context.Context, feedURL string, body []byte, fetchedAt time.Time) error
}

type Option func(*Fetcher)

func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) { f.client = client }
}

func WithRetryPolicy(p retry.Policy) Option {
	return func(f *Fetcher) { f.policy = p }
}

func WithArchiver(a Archiver) Option {
	return func(f *Fetcher) { f.archiver = a }
}

// Fetcher implements domain.FeedFetcher over HTTP.
type Fetcher struct {
	client   *http.Client
	policy   retry.Policy
	archiver Archiver
}

var _ domain.FeedFetcher = (*Fetcher)(nil)

func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
		policy: retry.Default,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, feedURL string) ([]domain.FeedItem, error) {
	body, err := retry.Do(ctx, f.policy, classify, func(ctx context.Context) ([]byte, error) {
		return f.download(ctx, feedURL)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download feed: %w", err)
	}

	if f.archiver != nil {
		if err := f.archiver.Archive(ctx, feedURL, body, time.Now().UTC()); err != nil {
			slog.WarnContext(ctx, "Failed to archive feed", "feed_url", feedURL, "error", err)
		}
	}

	items, err := Parse(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse feed %s: %w", feedURL, err)
	}
	return items, nil
}

// statusError is a non-2xx response.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d %s", e.code, http.StatusText(e.code))
}

func (f *Fetcher) download(ctx context.Context, feedURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, &retry.PermanentError{Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &statusError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}
	return body, nil
}

// classify retries network errors, 5xx and 408, backs off longer on 429 and
// gives up on everything else.
func classify(err error) retry.Action {
	var perm *retry.PermanentError
	if errors.As(err, &perm) {
		return retry.Stop
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Stop
	}

	var se *statusError
	if !errors.As(err, &se) {
		return retry.Retry
	}
	switch {
	case se.code == http.StatusTooManyRequests:
		return retry.After
	case se.code == http.StatusRequestTimeout || se.code >= 500:
		return retry.Retry
	default:
		return retry.Stop
	}
}

// Parse extracts items from an RSS or Atom document, decoding any declared
// charset. Items keep feed order. An item without a parseable publication or
// update date yields a zero Published time.
func Parse(body []byte) ([]domain.FeedItem, error) {
	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	items := make([]domain.FeedItem, 0, len(feed.Items))
	for _, it := range feed.Items {
		items = append(items, domain.FeedItem{
			Title:     cleanTitle(it.Title),
			Link:      strings.TrimSpace(it.Link),
			Published: published(it),
		})
	}
	return items, nil
}

func published(it *gofeed.Item) time.Time {
	switch {
	case it.PublishedParsed != nil:
		return it.PublishedParsed.UTC()
	case it.UpdatedParsed != nil:
		return it.UpdatedParsed.UTC()
	default:
		return time.Time{}
	}
}

// cleanTitle strips markup some outlets embed in titles and collapses
// whitespace.
func cleanTitle(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	text := raw
	if strings.ContainsAny(raw, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw)); err == nil {
			text = doc.Text()
		}
	}
	return strings.Join(strings.Fields(text), " ")
}
