package app

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/headlinepulse/internal/domain"
	"github.com/pscheid92/headlinepulse/internal/metrics"
	apperrors "github.com/pscheid92/headlinepulse/internal/platform/errors"
)

const (
	msgMalformedRequest = "Malformed json request."
	msgHeadlineNotFound = "Headline not found."
	msgRewriteNotFound  = "Rewrite not found."
	msgNoAccess         = "You do not have access to this resource."
	msgDeleteFailed     = "Rewrite could not be deleted."
	msgInternal         = "internal server error"
	loggedInUserAlias   = "logged_in_user"
)

// SubmitRewrite is a rewrite submission. UserID is the acting user admitted
// by the RateLimiter.
type SubmitRewrite struct {
	Text       string
	HeadlineID string
	UserID     uuid.UUID
}

// RewriteWorkflow validates, scores and persists rewrites.
type RewriteWorkflow struct {
	headlines  domain.HeadlineRepository
	rewrites   domain.RewriteRepository
	scorer     domain.SentimentScorer
	matcher    domain.SemanticMatcher
	serializer *Serializer
	clock      clockwork.Clock
}

func NewRewriteWorkflow(headlines domain.HeadlineRepository, rewrites domain.RewriteRepository, scorer domain.SentimentScorer, matcher domain.SemanticMatcher, serializer *Serializer, clock clockwork.Clock) *RewriteWorkflow {
	return &RewriteWorkflow{
		headlines:  headlines,
		rewrites:   rewrites,
		scorer:     scorer,
		matcher:    matcher,
		serializer: serializer,
		clock:      clock,
	}
}

// NewRewrite builds an unpersisted rewrite of headline with all derived
// scores filled in.
func NewRewrite(ctx context.Context, scorer domain.SentimentScorer, matcher domain.SemanticMatcher, text string, headline *domain.Headline, userID uuid.UUID, clock clockwork.Clock) *domain.Rewrite {
	score := scorer.Score(ctx, text)
	return &domain.Rewrite{
		ID:             uuid.New(),
		Text:           text,
		UserID:         userID,
		HeadlineID:     headline.ID,
		SentimentScore: score,
		SentimentMatch: score - headline.SentimentScore,
		SemanticMatch:  matcher.Similarity(text, headline.Text),
		Timestamp:      clock.Now().UTC(),
	}
}

// Submit stores a new rewrite. Only the presence of text and headline id is
// checked, so whitespace-only text is accepted. Nothing is written on any
// rejection path.
func (w *RewriteWorkflow) Submit(ctx context.Context, req SubmitRewrite) (*domain.Rewrite, error) {
	if req.Text == "" || req.HeadlineID == "" {
		metrics.RewritesSubmittedTotal.WithLabelValues("malformed").Inc()
		return nil, apperrors.MalformedRequest(msgMalformedRequest)
	}

	headline, err := w.lookupHeadline(ctx, req.HeadlineID)
	if err != nil {
		metrics.RewritesSubmittedTotal.WithLabelValues("not_found").Inc()
		return nil, err
	}

	rewrite := NewRewrite(ctx, w.scorer, w.matcher, req.Text, headline, req.UserID, w.clock)
	if err := w.rewrites.Create(ctx, rewrite); err != nil {
		metrics.RewritesSubmittedTotal.WithLabelValues("storage_error").Inc()
		return nil, apperrors.StorageConflict(msgSaveFailed, err).
			WithField("headline_id", headline.ID.String()).
			WithField("user_id", req.UserID.String())
	}

	metrics.RewritesSubmittedTotal.WithLabelValues("created").Inc()
	slog.InfoContext(ctx, "Rewrite submitted",
		"rewrite_id", rewrite.ID.String(),
		"headline_id", headline.ID.String(),
		"sentiment_match", rewrite.SentimentMatch)
	return rewrite, nil
}

func (w *RewriteWorkflow) lookupHeadline(ctx context.Context, rawID string) (*domain.Headline, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, apperrors.NotFound(msgHeadlineNotFound).WithField("headline_id", rawID)
	}

	headline, err := w.headlines.GetByID(ctx, id)
	if errors.Is(err, domain.ErrHeadlineNotFound) {
		return nil, apperrors.NotFound(msgHeadlineNotFound).WithField("headline_id", rawID)
	}
	if err != nil {
		return nil, apperrors.Internal(msgInternal, err)
	}
	return headline, nil
}

// Delete removes a rewrite owned by viewer. A nil viewer is never the owner.
func (w *RewriteWorkflow) Delete(ctx context.Context, rewriteID string, viewer *domain.User) error {
	id, err := uuid.Parse(rewriteID)
	if err != nil {
		metrics.RewritesDeletedTotal.WithLabelValues("not_found").Inc()
		return apperrors.NotFound(msgRewriteNotFound).WithField("rewrite_id", rewriteID)
	}

	rewrite, err := w.rewrites.GetByID(ctx, id)
	if errors.Is(err, domain.ErrRewriteNotFound) {
		metrics.RewritesDeletedTotal.WithLabelValues("not_found").Inc()
		return apperrors.NotFound(msgRewriteNotFound).WithField("rewrite_id", rewriteID)
	}
	if err != nil {
		return apperrors.Internal(msgInternal, err)
	}

	if viewer == nil || viewer.ID != rewrite.UserID {
		metrics.RewritesDeletedTotal.WithLabelValues("forbidden").Inc()
		return apperrors.Forbidden(msgNoAccess).WithField("rewrite_id", rewriteID)
	}

	if err := w.rewrites.Delete(ctx, id); err != nil {
		metrics.RewritesDeletedTotal.WithLabelValues("storage_error").Inc()
		return apperrors.StorageConflict(msgDeleteFailed, err).WithField("rewrite_id", rewriteID)
	}

	metrics.RewritesDeletedTotal.WithLabelValues("deleted").Inc()
	slog.InfoContext(ctx, "Rewrite deleted", "rewrite_id", rewriteID, "user_id", viewer.ID.String())
	return nil
}

// ListForUser returns every headline the viewer has rewritten, each carrying
// only the viewer's rewrites, ordered by the viewer's first rewrite of it.
// requested must be the viewer's ID or the alias "logged_in_user".
func (w *RewriteWorkflow) ListForUser(ctx context.Context, viewer *domain.User, requested string) ([]HeadlineView, error) {
	if viewer == nil {
		return nil, apperrors.Forbidden(msgNoAccess)
	}
	if requested != loggedInUserAlias {
		id, err := uuid.Parse(requested)
		if err != nil || id != viewer.ID {
			return nil, apperrors.Forbidden(msgNoAccess).WithField("requested_user", requested)
		}
	}

	rewrites, err := w.rewrites.ListByUser(ctx, viewer.ID)
	if err != nil {
		return nil, apperrors.Internal(msgInternal, err)
	}

	views := make([]HeadlineView, 0)
	seen := make(map[uuid.UUID]struct{})
	for _, rw := range rewrites {
		if _, ok := seen[rw.HeadlineID]; ok {
			continue
		}
		seen[rw.HeadlineID] = struct{}{}

		headline, err := w.headlines.GetByID(ctx, rw.HeadlineID)
		if err != nil {
			return nil, apperrors.Internal(msgInternal, err)
		}
		view, err := w.serializer.Headline(ctx, headline, HeadlineOptions{WithRewrites: true, Viewer: &viewer.ID})
		if err != nil {
			return nil, apperrors.Internal(msgInternal, err)
		}
		views = append(views, view)
	}
	return views, nil
}
