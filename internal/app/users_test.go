package app

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/pscheid92/headlinepulse/internal/domain"
	apperrors "github.com/pscheid92/headlinepulse/internal/platform/errors"
	"github.com/pscheid92/headlinepulse/internal/platform/secrets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "correct horse battery"

func newUserService(f *fixture) *UserService {
	return NewUserService(f.store.Users(), secrets.Hasher{Cost: bcrypt.MinCost}, f.clock)
}

func signup(t *testing.T, svc *UserService, username string) *domain.User {
	t.Helper()
	user, err := svc.Signup(context.Background(), nil, username, username+"@example.com", testPassword)
	require.NoError(t, err)
	return user
}

func TestSignup(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)

	user, err := svc.Signup(context.Background(), nil, " test_user ", "test@example.com", testPassword)

	require.NoError(t, err)
	assert.Equal(t, "test_user", user.Username)
	assert.False(t, user.Anonymous)
	assert.True(t, user.Active)
	assert.NotEqual(t, testPassword, user.PasswordHash)
	assert.NoError(t, secrets.Hasher{}.Verify(testPassword, user.PasswordHash))
}

func TestSignup_AnonymousSessionMaySignUp(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	anon := f.user(t, "anon-1", true)

	_, err := svc.Signup(context.Background(), anon, "test_user", "test@example.com", testPassword)

	assert.NoError(t, err)
}

func TestSignup_Validation(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	signup(t, svc, "taken")

	tests := []struct {
		name       string
		current    *domain.User
		username   string
		email      string
		password   string
		wantType   apperrors.ErrorType
		wantStatus int
		wantMsg    string
	}{
		{"short username", nil, "ab", "a@example.com", testPassword, apperrors.TypeMalformedRequest, http.StatusBadRequest, msgUsernameLength},
		{"long username", nil, strings.Repeat("x", 51), "a@example.com", testPassword, apperrors.TypeMalformedRequest, http.StatusBadRequest, msgUsernameLength},
		{"bad email", nil, "newbie", "not-an-email", testPassword, apperrors.TypeMalformedRequest, http.StatusBadRequest, msgEmailInvalid},
		{"short password", nil, "newbie", "a@example.com", "short", apperrors.TypeMalformedRequest, http.StatusBadRequest, msgPasswordLength},
		{"taken username", nil, "taken", "fresh@example.com", testPassword, apperrors.TypeConflict, http.StatusConflict, msgCredentialsTaken},
		{"taken email", nil, "fresh", "taken@example.com", testPassword, apperrors.TypeConflict, http.StatusConflict, msgCredentialsTaken},
		{"already logged in", &domain.User{Username: "someone"}, "newbie", "a@example.com", testPassword, apperrors.TypeMalformedRequest, http.StatusBadRequest, msgAlreadyLoggedIn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Signup(context.Background(), tt.current, tt.username, tt.email, tt.password)
			requireAppError(t, err, tt.wantType, tt.wantStatus, tt.wantMsg)
		})
	}
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	user := signup(t, svc, "test_user")
	f.user(t, "anon-1", true)

	for _, login := range []string{"test_user", "test_user@example.com"} {
		got, err := svc.Authenticate(context.Background(), nil, login, testPassword)
		require.NoError(t, err, login)
		assert.Equal(t, user.ID, got.ID)
	}

	tests := []struct {
		name     string
		login    string
		password string
	}{
		{"wrong password", "test_user", "wrong password!"},
		{"unknown user", "nobody", testPassword},
		{"anonymous user", "anon-1", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Authenticate(context.Background(), nil, tt.login, tt.password+"x")
			requireAppError(t, err, apperrors.TypeUnauthorized, http.StatusUnauthorized, msgInvalidLogin)
		})
	}

	_, err := svc.Authenticate(context.Background(), nil, "", testPassword)
	requireAppError(t, err, apperrors.TypeMalformedRequest, http.StatusBadRequest, msgFieldsRequired)

	_, err = svc.Authenticate(context.Background(), user, "test_user", testPassword)
	requireAppError(t, err, apperrors.TypeMalformedRequest, http.StatusBadRequest, msgAlreadyLoggedIn)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	user := signup(t, svc, "test_user")
	signup(t, svc, "other_user")

	updated, err := svc.UpdateProfile(context.Background(), user, "renamed", "renamed@example.com", testPassword)
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)

	stored, err := f.store.Users().GetByID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed@example.com", stored.Email)

	_, err = svc.UpdateProfile(context.Background(), updated, "renamed", "renamed@example.com", "wrong password")
	requireAppError(t, err, apperrors.TypeUnauthorized, http.StatusUnauthorized, msgInvalidPassword)

	_, err = svc.UpdateProfile(context.Background(), updated, "other_user", "renamed@example.com", testPassword)
	requireAppError(t, err, apperrors.TypeConflict, http.StatusConflict, msgCredentialsTaken)

	_, err = svc.UpdateProfile(context.Background(), nil, "renamed", "renamed@example.com", testPassword)
	requireAppError(t, err, apperrors.TypeUnauthorized, http.StatusUnauthorized, msgLoginToContinue)
}

func TestChangePassword(t *testing.T) {
	f := newFixture(t)
	svc := newUserService(f)
	user := signup(t, svc, "test_user")
	const newPassword = "an even better secret"

	err := svc.ChangePassword(context.Background(), user, testPassword, newPassword, "different secret!")
	requireAppError(t, err, apperrors.TypeMalformedRequest, http.StatusBadRequest, msgPasswordsMismatch)

	err = svc.ChangePassword(context.Background(), user, "wrong password", newPassword, newPassword)
	requireAppError(t, err, apperrors.TypeUnauthorized, http.StatusUnauthorized, msgInvalidPassword)

	err = svc.ChangePassword(context.Background(), f.user(t, "anon-1", true), "", newPassword, newPassword)
	requireAppError(t, err, apperrors.TypeUnauthorized, http.StatusUnauthorized, msgLoginToContinue)

	require.NoError(t, svc.ChangePassword(context.Background(), user, testPassword, newPassword, newPassword))

	_, err = svc.Authenticate(context.Background(), nil, "test_user", testPassword)
	requireAppError(t, err, apperrors.TypeUnauthorized, http.StatusUnauthorized, msgInvalidLogin)
	_, err = svc.Authenticate(context.Background(), nil, "test_user", newPassword)
	assert.NoError(t, err)
}
