package app

import (
	"context"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/pscheid92/headlinepulse/internal/domain"
	apperrors "github.com/pscheid92/headlinepulse/internal/platform/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdmit_NewSessionCreatesAnonymousUser(t *testing.T) {
	f := newFixture(t)
	limiter := NewRateLimiter(f.identity, DefaultAnonymousQuota)
	sess := &Session{}

	userID, err := limiter.Admit(context.Background(), sess)

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, userID)
	assert.Equal(t, userID, sess.UserID)
	assert.Equal(t, DefaultAnonymousQuota, sess.RequestsRemaining)

	user, err := f.store.Users().GetByID(context.Background(), userID)
	require.NoError(t, err)
	assert.True(t, user.Anonymous)
}

func TestAdmit_QuotaExhaustion(t *testing.T) {
	for _, quota := range []int{0, 1, 2, DefaultAnonymousQuota} {
		f := newFixture(t)
		limiter := NewRateLimiter(f.identity, quota)
		sess := &Session{}

		// The write that creates the anonymous user is not charged.
		var first uuid.UUID
		for n := range quota + 1 {
			userID, err := limiter.Admit(context.Background(), sess)
			require.NoError(t, err, "request %d with quota %d", n+1, quota)
			if n == 0 {
				first = userID
			}
			assert.Equal(t, first, userID)
		}
		assert.Equal(t, 0, sess.RequestsRemaining)

		_, err := limiter.Admit(context.Background(), sess)
		requireAppError(t, err, apperrors.TypeRateLimited, http.StatusUnauthorized, msgLoginRequired)
		assert.Equal(t, 0, sess.RequestsRemaining)
		assert.Equal(t, first, sess.UserID)
	}
}

func TestAdmit_ZeroQuotaAllowsOnlyFirstRequest(t *testing.T) {
	f := newFixture(t)
	limiter := NewRateLimiter(f.identity, 0)
	sess := &Session{}

	userID, err := limiter.Admit(context.Background(), sess)
	require.NoError(t, err)
	assert.Equal(t, userID, sess.UserID)
	assert.Equal(t, 0, sess.RequestsRemaining)

	_, err = limiter.Admit(context.Background(), sess)
	requireAppError(t, err, apperrors.TypeRateLimited, http.StatusUnauthorized, msgLoginRequired)
}

func TestAdmit_RegisteredUserIsNeverLimited(t *testing.T) {
	f := newFixture(t)
	limiter := NewRateLimiter(f.identity, 2)
	user := f.user(t, "test_user", false)
	sess := &Session{UserID: user.ID}

	for range 20 {
		userID, err := limiter.Admit(context.Background(), sess)
		require.NoError(t, err)
		assert.Equal(t, user.ID, userID)
	}
	assert.Equal(t, 0, sess.RequestsRemaining)
}

func TestAdmit_FreshSessionGetsFreshQuota(t *testing.T) {
	f := newFixture(t)
	limiter := NewRateLimiter(f.identity, 1)

	exhausted := &Session{}
	for range 2 {
		_, err := limiter.Admit(context.Background(), exhausted)
		require.NoError(t, err)
	}
	_, err := limiter.Admit(context.Background(), exhausted)
	require.Error(t, err)

	fresh := &Session{}
	userID, err := limiter.Admit(context.Background(), fresh)
	require.NoError(t, err)
	assert.NotEqual(t, exhausted.UserID, userID)
}

func TestAdmit_StaleSessionUserIsReplaced(t *testing.T) {
	f := newFixture(t)
	limiter := NewRateLimiter(f.identity, 3)
	stale := uuid.New()
	sess := &Session{UserID: stale, RequestsRemaining: 0}

	userID, err := limiter.Admit(context.Background(), sess)

	require.NoError(t, err)
	assert.NotEqual(t, stale, userID)
	assert.Equal(t, 3, sess.RequestsRemaining)
}

func TestAdmit_AnonymousInsertFailure(t *testing.T) {
	f := newFixture(t)
	repo := &mockUserRepo{
		UserRepository: f.store.Users(),
		createFn:       func(context.Context, *domain.User) error { return errStorage },
	}
	limiter := NewRateLimiter(NewIdentityResolver(repo, f.clock), DefaultAnonymousQuota)
	sess := &Session{}

	_, err := limiter.Admit(context.Background(), sess)

	requireAppError(t, err, apperrors.TypeStorageConflict, http.StatusInternalServerError, msgSaveFailed)
	assert.ErrorIs(t, err, errStorage)
	assert.Equal(t, uuid.Nil, sess.UserID)
}

func TestRateLimiter_Quota(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, 4, NewRateLimiter(f.identity, 4).Quota())
}
