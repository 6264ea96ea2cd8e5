package app

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/headlinepulse/internal/domain"
	apperrors "github.com/pscheid92/headlinepulse/internal/platform/errors"
)

// DefaultHeadlineWindow is how far back random headlines are drawn from.
const DefaultHeadlineWindow = 96 * time.Hour

// NewHeadline builds an unpersisted headline and scores its text once.
func NewHeadline(ctx context.Context, scorer domain.SentimentScorer, text string, date time.Time, sourceID uuid.UUID, url string, clock clockwork.Clock) *domain.Headline {
	return &domain.Headline{
		ID:             uuid.New(),
		Text:           text,
		SentimentScore: scorer.Score(ctx, text),
		Date:           date,
		URL:            url,
		SourceID:       sourceID,
		CreatedAt:      clock.Now().UTC(),
	}
}

type HeadlineService struct {
	headlines domain.HeadlineRepository
	cache     domain.HeadlineCache
	scorer    domain.SentimentScorer
	clock     clockwork.Clock
	window    time.Duration
}

// NewHeadlineService creates the headline service. cache may be nil.
func NewHeadlineService(headlines domain.HeadlineRepository, cache domain.HeadlineCache, scorer domain.SentimentScorer, clock clockwork.Clock, window time.Duration) *HeadlineService {
	if window <= 0 {
		window = DefaultHeadlineWindow
	}
	return &HeadlineService{
		headlines: headlines,
		cache:     cache,
		scorer:    scorer,
		clock:     clock,
		window:    window,
	}
}

func (s *HeadlineService) Create(ctx context.Context, text string, date time.Time, sourceID uuid.UUID, url string) (*domain.Headline, error) {
	headline := NewHeadline(ctx, s.scorer, text, date, sourceID, url, s.clock)
	if err := s.headlines.Create(ctx, headline); err != nil {
		return nil, apperrors.StorageConflict(msgSaveFailed, err).WithField("text", text)
	}
	s.invalidate(ctx)
	return headline, nil
}

func (s *HeadlineService) Get(ctx context.Context, headlineID uuid.UUID) (*domain.Headline, error) {
	headline, err := s.headlines.GetByID(ctx, headlineID)
	if errors.Is(err, domain.ErrHeadlineNotFound) {
		return nil, apperrors.NotFound(msgHeadlineNotFound)
	}
	if err != nil {
		return nil, apperrors.Internal(msgInternal, err)
	}
	return headline, nil
}

// Random picks a headline dated within the window, today included.
func (s *HeadlineService) Random(ctx context.Context) (*domain.Headline, error) {
	ids, err := s.recentIDs(ctx)
	if err != nil {
		return nil, apperrors.Internal(msgInternal, err)
	}

	// The pool may be stale, so fall through ids that vanished.
	ids = slices.Clone(ids)
	for len(ids) > 0 {
		i := rand.IntN(len(ids))
		headline, err := s.headlines.GetByID(ctx, ids[i])
		if err == nil {
			return headline, nil
		}
		if !errors.Is(err, domain.ErrHeadlineNotFound) {
			return nil, apperrors.Internal(msgInternal, err)
		}
		ids[i] = ids[len(ids)-1]
		ids = ids[:len(ids)-1]
	}
	return nil, apperrors.NotFound(msgHeadlineNotFound)
}

func (s *HeadlineService) recentIDs(ctx context.Context) ([]uuid.UUID, error) {
	load := func(ctx context.Context) ([]uuid.UUID, error) {
		return s.headlines.ListIDsSince(ctx, s.windowStart())
	}
	if s.cache == nil {
		return load(ctx)
	}

	ids, err := s.cache.RecentIDs(ctx, load)
	if err != nil {
		slog.WarnContext(ctx, "Headline cache unavailable, reading storage", "error", err)
		return load(ctx)
	}
	return ids, nil
}

// windowStart is midnight UTC of the first day inside the window.
func (s *HeadlineService) windowStart() time.Time {
	today := s.clock.Now().UTC().Truncate(24 * time.Hour)
	return today.Add(-s.window)
}

func (s *HeadlineService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		slog.WarnContext(ctx, "Failed to invalidate headline cache", "error", err)
	}
}
