package domain

import (
	"context"

	"github.com/google/uuid"
)

// Source is a news outlet. Deleting it deletes its headlines.
type Source struct {
	ID        uuid.UUID
	Name      string
	URL       string
	Alignment string
	FeedURLs  []string
}

type SourceRepository interface {
	GetByID(ctx context.Context, sourceID uuid.UUID) (*Source, error)
	List(ctx context.Context) ([]Source, error)
	// Upsert inserts the source or updates the one with the same name,
	// filling in the stored ID.
	Upsert(ctx context.Context, source *Source) error
}
