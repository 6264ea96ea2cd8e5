package memory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/headlinepulse/internal/domain"
)

type HeadlineRepo struct {
	s *Store
}

func (r *HeadlineRepo) GetByID(_ context.Context, headlineID uuid.UUID) (*domain.Headline, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.headlineIndex(headlineID)
	if i < 0 {
		return nil, domain.ErrHeadlineNotFound
	}
	h := r.s.headlines[i]
	return &h, nil
}

func (r *HeadlineRepo) Create(_ context.Context, headline *domain.Headline) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if headline.ID == uuid.Nil {
		headline.ID = uuid.New()
	}
	if r.s.headlineIndex(headline.ID) >= 0 || r.s.sourceIndex(headline.SourceID) < 0 {
		return domain.ErrConflict
	}
	r.s.headlines = append(r.s.headlines, *headline)
	return nil
}

func (r *HeadlineRepo) ExistsByText(_ context.Context, text string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, h := range r.s.headlines {
		if h.Text == text {
			return true, nil
		}
	}
	return false, nil
}

func (r *HeadlineRepo) ListIDsSince(_ context.Context, since time.Time) ([]uuid.UUID, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var ids []uuid.UUID
	for _, h := range r.s.headlines {
		if !h.Date.Before(since) {
			ids = append(ids, h.ID)
		}
	}
	return ids, nil
}
