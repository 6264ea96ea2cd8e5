package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Headline is a published news title. SentimentScore is computed once when
// the headline is built and never changes.
type Headline struct {
	ID             uuid.UUID
	Text           string
	SentimentScore float64
	Date           time.Time
	URL            string
	SourceID       uuid.UUID
	CreatedAt      time.Time
}

type HeadlineRepository interface {
	GetByID(ctx context.Context, headlineID uuid.UUID) (*Headline, error)
	Create(ctx context.Context, headline *Headline) error
	ExistsByText(ctx context.Context, text string) (bool, error)
	// ListIDsSince returns the IDs of headlines dated on or after since.
	ListIDsSince(ctx context.Context, since time.Time) ([]uuid.UUID, error)
}

// HeadlineCache holds the pool of recent headline IDs used for random picks.
type HeadlineCache interface {
	RecentIDs(ctx context.Context, load func(ctx context.Context) ([]uuid.UUID, error)) ([]uuid.UUID, error)
	Invalidate(ctx context.Context) error
}
