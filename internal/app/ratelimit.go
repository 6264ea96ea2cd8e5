package app

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pscheid92/headlinepulse/internal/metrics"
	apperrors "github.com/pscheid92/headlinepulse/internal/platform/errors"
)

// DefaultAnonymousQuota is the number of writes an anonymous session may make.
const DefaultAnonymousQuota = 9

const (
	msgLoginRequired = "Please login before making additional requests."
	msgSaveFailed    = "Error saving to database."
)

// RateLimiter bounds write actions of anonymous sessions. Registered users
// are never limited.
//
// The quota lives in the session, not on the anonymous user, so a fresh
// session starts with a fresh quota. Admit does a plain read-modify-write of
// Session.RequestsRemaining: two concurrent requests sharing one session
// cookie can both spend the same unit. Callers get at most one in-flight
// write per browser in practice and no lock is taken.
type RateLimiter struct {
	identity *IdentityResolver
	quota    int
}

func NewRateLimiter(identity *IdentityResolver, quota int) *RateLimiter {
	return &RateLimiter{identity: identity, quota: quota}
}

// Quota returns the configured number of anonymous writes per session.
func (l *RateLimiter) Quota() int {
	return l.quota
}

// Admit resolves the acting user for a write and charges the anonymous quota.
// A session without a user gets a new anonymous user with a full quota and
// its first write is free, so a session makes up to quota+1 anonymous
// writes. An anonymous session with nothing left is rejected with a
// rate-limited error and is not charged.
func (l *RateLimiter) Admit(ctx context.Context, sess *Session) (uuid.UUID, error) {
	user, created, err := l.identity.Establish(ctx, sess)
	if err != nil {
		return uuid.Nil, apperrors.StorageConflict(msgSaveFailed, err)
	}

	if created {
		sess.RequestsRemaining = l.quota
		metrics.RateLimitDecisionsTotal.WithLabelValues("new_anonymous").Inc()
		return user.ID, nil
	}

	if !user.Anonymous {
		metrics.RateLimitDecisionsTotal.WithLabelValues("identified").Inc()
		return user.ID, nil
	}

	if sess.RequestsRemaining <= 0 {
		metrics.RateLimitDecisionsTotal.WithLabelValues("anonymous_rejected").Inc()
		slog.InfoContext(ctx, "Anonymous quota exhausted", "user_id", user.ID.String())
		return uuid.Nil, apperrors.RateLimited(msgLoginRequired).WithField("user_id", user.ID.String())
	}

	sess.RequestsRemaining--
	metrics.RateLimitDecisionsTotal.WithLabelValues("anonymous_allowed").Inc()
	return user.ID, nil
}
