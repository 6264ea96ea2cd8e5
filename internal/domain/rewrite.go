package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Rewrite is a user's alternative wording of a headline, annotated at
// creation time. SentimentMatch is SentimentScore minus the headline's score.
type Rewrite struct {
	ID             uuid.UUID
	Text           string
	UserID         uuid.UUID
	HeadlineID     uuid.UUID
	SentimentScore float64
	SentimentMatch float64
	SemanticMatch  float64
	Timestamp      time.Time
}

// RewriteRepository lists rewrites in insertion order.
type RewriteRepository interface {
	GetByID(ctx context.Context, rewriteID uuid.UUID) (*Rewrite, error)
	Create(ctx context.Context, rewrite *Rewrite) error
	Delete(ctx context.Context, rewriteID uuid.UUID) error
	ListByHeadline(ctx context.Context, headlineID uuid.UUID) ([]Rewrite, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]Rewrite, error)
}
