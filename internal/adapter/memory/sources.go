package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/pscheid92/headlinepulse/internal/domain"
)

type SourceRepo struct {
	s *Store
}

func (r *SourceRepo) GetByID(_ context.Context, sourceID uuid.UUID) (*domain.Source, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.sourceIndex(sourceID)
	if i < 0 {
		return nil, domain.ErrSourceNotFound
	}
	src := r.s.sources[i]
	src.FeedURLs = slices.Clone(src.FeedURLs)
	return &src, nil
}

func (r *SourceRepo) List(_ context.Context) ([]domain.Source, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]domain.Source, len(r.s.sources))
	for i, src := range r.s.sources {
		src.FeedURLs = slices.Clone(src.FeedURLs)
		out[i] = src
	}
	return out, nil
}

func (r *SourceRepo) Upsert(_ context.Context, source *domain.Source) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored := *source
	stored.FeedURLs = slices.Clone(source.FeedURLs)
	for i := range r.s.sources {
		if r.s.sources[i].Name == source.Name {
			stored.ID = r.s.sources[i].ID
			r.s.sources[i] = stored
			source.ID = stored.ID
			return nil
		}
	}

	if stored.ID == uuid.Nil {
		stored.ID = uuid.New()
	}
	r.s.sources = append(r.s.sources, stored)
	source.ID = stored.ID
	return nil
}
