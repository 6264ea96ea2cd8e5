package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/headlinepulse/internal/domain"
	"github.com/pscheid92/headlinepulse/internal/metrics"
)

const anonymousEmailDomain = "anonymous.invalid"

// IdentityResolver turns session state into a user.
type IdentityResolver struct {
	users domain.UserRepository
	clock clockwork.Clock
}

func NewIdentityResolver(users domain.UserRepository, clock clockwork.Clock) *IdentityResolver {
	return &IdentityResolver{users: users, clock: clock}
}

// GetUser returns the session's user, or nil when the session has no user,
// the user no longer exists, or the lookup fails.
func (r *IdentityResolver) GetUser(ctx context.Context, sess Session) *domain.User {
	if sess.UserID == uuid.Nil {
		return nil
	}

	user, err := r.users.GetByID(ctx, sess.UserID)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			slog.ErrorContext(ctx, "Failed to resolve session user", "user_id", sess.UserID.String(), "error", err)
		}
		return nil
	}
	return user
}

// Establish returns the session's user or creates and persists an anonymous
// one, storing its ID in sess. created reports whether a user was minted.
// The only error is a failed insert of the anonymous user.
func (r *IdentityResolver) Establish(ctx context.Context, sess *Session) (user *domain.User, created bool, err error) {
	if user := r.GetUser(ctx, *sess); user != nil {
		return user, false, nil
	}

	anon := NewAnonymousUser(r.clock)
	if err := r.users.Create(ctx, anon); err != nil {
		return nil, false, err
	}
	metrics.AnonymousUsersCreatedTotal.Inc()
	slog.InfoContext(ctx, "Anonymous user created", "user_id", anon.ID.String())

	sess.UserID = anon.ID
	return anon, true, nil
}

// NewAnonymousUser builds a placeholder user whose username and email are
// opaque unique tokens. It carries no password.
func NewAnonymousUser(clock clockwork.Clock) *domain.User {
	id := uuid.New()
	token := uuid.NewString()
	return &domain.User{
		ID:        id,
		Username:  "anon-" + token,
		Email:     token + "@" + anonymousEmailDomain,
		Active:    true,
		Anonymous: true,
		CreatedAt: clock.Now(),
	}
}
