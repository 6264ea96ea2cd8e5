package memory

import (
	"context"
	"slices"

	"github.com/google/uuid"
	"github.com/pscheid92/headlinepulse/internal/domain"
)

type RewriteRepo struct {
	s *Store
}

func (r *RewriteRepo) GetByID(_ context.Context, rewriteID uuid.UUID) (*domain.Rewrite, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, rw := range r.s.rewrites {
		if rw.ID == rewriteID {
			return &rw, nil
		}
	}
	return nil, domain.ErrRewriteNotFound
}

func (r *RewriteRepo) Create(_ context.Context, rewrite *domain.Rewrite) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if rewrite.ID == uuid.Nil {
		rewrite.ID = uuid.New()
	}
	if r.s.userIndex(rewrite.UserID) < 0 || r.s.headlineIndex(rewrite.HeadlineID) < 0 {
		return domain.ErrConflict
	}
	for _, rw := range r.s.rewrites {
		if rw.ID == rewrite.ID {
			return domain.ErrConflict
		}
	}
	r.s.rewrites = append(r.s.rewrites, *rewrite)
	return nil
}

func (r *RewriteRepo) Delete(_ context.Context, rewriteID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := slices.IndexFunc(r.s.rewrites, func(rw domain.Rewrite) bool { return rw.ID == rewriteID })
	if i < 0 {
		return domain.ErrRewriteNotFound
	}
	r.s.rewrites = slices.Delete(r.s.rewrites, i, i+1)
	return nil
}

func (r *RewriteRepo) ListByHeadline(_ context.Context, headlineID uuid.UUID) ([]domain.Rewrite, error) {
	return r.filter(func(rw domain.Rewrite) bool { return rw.HeadlineID == headlineID }), nil
}

func (r *RewriteRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]domain.Rewrite, error) {
	return r.filter(func(rw domain.Rewrite) bool { return rw.UserID == userID }), nil
}

func (r *RewriteRepo) filter(keep func(domain.Rewrite) bool) []domain.Rewrite {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	var out []domain.Rewrite
	for _, rw := range r.s.rewrites {
		if keep(rw) {
			out = append(out, rw)
		}
	}
	return out
}
