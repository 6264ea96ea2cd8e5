package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/headlinepulse/internal/domain"
)

// DateLayout is the wire format of headline dates.
const DateLayout = "2006-01-02"

type RewriteView struct {
	ID             uuid.UUID `json:"id"`
	Text           string    `json:"text"`
	SentimentScore float64   `json:"sentiment_score"`
	SentimentMatch float64   `json:"sentiment_match"`
	SemanticMatch  float64   `json:"semantic_match"`
	UserID         uuid.UUID `json:"user_id"`
	HeadlineID     uuid.UUID `json:"headline_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// HeadlineView is a serialized headline. Rewrites is nil unless requested,
// and then always present even when empty.
type HeadlineView struct {
	ID             uuid.UUID     `json:"id"`
	Text           string        `json:"text"`
	SentimentScore float64       `json:"sentiment_score"`
	Date           string        `json:"date"`
	SourceID       uuid.UUID     `json:"source_id"`
	Source         string        `json:"source"`
	URL            string        `json:"url"`
	Rewrites       []RewriteView `json:"rewrites,omitzero"`
}

type HeadlineOptions struct {
	WithRewrites bool
	// Viewer restricts nested rewrites to the ones this user owns.
	Viewer *uuid.UUID
}

// Serializer projects entities into response shapes. It never writes.
type Serializer struct {
	sources  domain.SourceRepository
	rewrites domain.RewriteRepository
}

func NewSerializer(sources domain.SourceRepository, rewrites domain.RewriteRepository) *Serializer {
	return &Serializer{sources: sources, rewrites: rewrites}
}

func (s *Serializer) Rewrite(r *domain.Rewrite) RewriteView {
	return RewriteView{
		ID:             r.ID,
		Text:           r.Text,
		SentimentScore: r.SentimentScore,
		SentimentMatch: r.SentimentMatch,
		SemanticMatch:  r.SemanticMatch,
		UserID:         r.UserID,
		HeadlineID:     r.HeadlineID,
		Timestamp:      r.Timestamp,
	}
}

func (s *Serializer) Headline(ctx context.Context, h *domain.Headline, opts HeadlineOptions) (HeadlineView, error) {
	source, err := s.sources.GetByID(ctx, h.SourceID)
	if err != nil {
		return HeadlineView{}, fmt.Errorf("failed to load source %s of headline %s: %w", h.SourceID, h.ID, err)
	}

	view := HeadlineView{
		ID:             h.ID,
		Text:           h.Text,
		SentimentScore: h.SentimentScore,
		Date:           h.Date.Format(DateLayout),
		SourceID:       h.SourceID,
		Source:         source.Name,
		URL:            h.URL,
	}
	if !opts.WithRewrites {
		return view, nil
	}

	rewrites, err := s.rewrites.ListByHeadline(ctx, h.ID)
	if err != nil {
		return HeadlineView{}, fmt.Errorf("failed to load rewrites of headline %s: %w", h.ID, err)
	}

	view.Rewrites = make([]RewriteView, 0, len(rewrites))
	for i := range rewrites {
		if opts.Viewer != nil && rewrites[i].UserID != *opts.Viewer {
			continue
		}
		view.Rewrites = append(view.Rewrites, s.Rewrite(&rewrites[i]))
	}
	return view, nil
}
