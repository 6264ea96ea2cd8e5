package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/pscheid92/headlinepulse/internal/domain"
)

type UserRepo struct {
	s *Store
}

func (r *UserRepo) GetByID(_ context.Context, userID uuid.UUID) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.userIndex(userID)
	if i < 0 {
		return nil, domain.ErrUserNotFound
	}
	u := r.s.users[i]
	return &u, nil
}

func (r *UserRepo) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == login || u.Email == login {
			return &u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *UserRepo) Create(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if r.s.userIndex(user.ID) >= 0 || r.taken(user.ID, user.Username, user.Email) {
		return domain.ErrConflict
	}
	r.s.users = append(r.s.users, *user)
	return nil
}

func (r *UserRepo) Update(_ context.Context, user *domain.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.userIndex(user.ID)
	if i < 0 {
		return domain.ErrUserNotFound
	}
	if r.taken(user.ID, user.Username, user.Email) {
		return domain.ErrConflict
	}
	r.s.users[i] = *user
	return nil
}

// taken reports whether another user already holds username or email.
// Caller must hold the lock.
func (r *UserRepo) taken(self uuid.UUID, username, email string) bool {
	for _, u := range r.s.users {
		if u.ID == self {
			continue
		}
		if u.Username == username || u.Email == email {
			return true
		}
	}
	return false
}
