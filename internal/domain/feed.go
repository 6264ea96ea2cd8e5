package domain

import (
	"context"
	"time"
)

// FeedItem is one entry of a source's RSS feed.
type FeedItem struct {
	Title     string
	Link      string
	Published time.Time
}

type FeedFetcher interface {
	Fetch(ctx context.Context, feedURL string) ([]FeedItem, error)
}
