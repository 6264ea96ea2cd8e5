package app

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/headlinepulse/internal/domain"
	"github.com/pscheid92/headlinepulse/internal/metrics"
	apperrors "github.com/pscheid92/headlinepulse/internal/platform/errors"
	"github.com/pscheid92/headlinepulse/internal/platform/secrets"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 50
	minPasswordLength = 10
)

const (
	msgAlreadyLoggedIn   = "You are already logged in."
	msgCredentialsTaken  = "That username or email is already in use."
	msgInvalidLogin      = "Invalid username or password."
	msgInvalidPassword   = "Invalid password."
	msgLoginToContinue   = "You do not have access to this page."
	msgUsernameLength    = "Username must be between 3 and 50 characters."
	msgEmailInvalid      = "Please enter a valid email address."
	msgPasswordLength    = "Password must be at least 10 characters."
	msgPasswordsMismatch = "Passwords must match"
	msgFieldsRequired    = "All fields are required."
)

// PasswordHasher hashes and verifies user passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) error
}

// UserService manages registered accounts.
type UserService struct {
	users  domain.UserRepository
	hasher PasswordHasher
	clock  clockwork.Clock
}

func NewUserService(users domain.UserRepository, hasher PasswordHasher, clock clockwork.Clock) *UserService {
	return &UserService{users: users, hasher: hasher, clock: clock}
}

// Signup registers a new user. current is the session's user, if any; a
// registered current user may not sign up again.
func (s *UserService) Signup(ctx context.Context, current *domain.User, username, email, password string) (*domain.User, error) {
	if isRegistered(current) {
		return nil, apperrors.MalformedRequest(msgAlreadyLoggedIn)
	}

	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if err := validateProfile(username, email); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(password) < minPasswordLength {
		return nil, apperrors.MalformedRequest(msgPasswordLength)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		if errors.Is(err, secrets.ErrPasswordTooLong) {
			return nil, apperrors.MalformedRequest("Password is too long.")
		}
		return nil, apperrors.Internal(msgInternal, err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Active:       true,
		CreatedAt:    s.clock.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			metrics.AuthAttemptsTotal.WithLabelValues("signup", "conflict").Inc()
			return nil, apperrors.Conflict(msgCredentialsTaken)
		}
		metrics.AuthAttemptsTotal.WithLabelValues("signup", "error").Inc()
		return nil, apperrors.StorageConflict(msgSaveFailed, err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("signup", "success").Inc()
	slog.InfoContext(ctx, "User signed up", "user_id", user.ID.String())
	return user, nil
}

// Authenticate checks a username-or-email and password pair.
func (s *UserService) Authenticate(ctx context.Context, current *domain.User, login, password string) (*domain.User, error) {
	if isRegistered(current) {
		return nil, apperrors.MalformedRequest(msgAlreadyLoggedIn)
	}
	if strings.TrimSpace(login) == "" || password == "" {
		return nil, apperrors.MalformedRequest(msgFieldsRequired)
	}

	user, err := s.users.GetByLogin(ctx, strings.TrimSpace(login))
	if errors.Is(err, domain.ErrUserNotFound) {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		return nil, apperrors.Unauthorized(msgInvalidLogin)
	}
	if err != nil {
		return nil, apperrors.Internal(msgInternal, err)
	}

	if err := s.verify(password, user); err != nil {
		metrics.AuthAttemptsTotal.WithLabelValues("login", "failure").Inc()
		if errors.Is(err, secrets.ErrPasswordMismatch) {
			return nil, apperrors.Unauthorized(msgInvalidLogin)
		}
		return nil, apperrors.Internal(msgInternal, err)
	}

	metrics.AuthAttemptsTotal.WithLabelValues("login", "success").Inc()
	return user, nil
}

// UpdateProfile changes username and email after confirming the password.
func (s *UserService) UpdateProfile(ctx context.Context, current *domain.User, username, email, confirmPassword string) (*domain.User, error) {
	if !isRegistered(current) {
		return nil, apperrors.Unauthorized(msgLoginToContinue)
	}

	username, email = strings.TrimSpace(username), strings.TrimSpace(email)
	if err := validateProfile(username, email); err != nil {
		return nil, err
	}
	if err := s.confirm(confirmPassword, current); err != nil {
		return nil, err
	}

	updated := *current
	updated.Username = username
	updated.Email = email
	if err := s.users.Update(ctx, &updated); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, apperrors.Conflict(msgCredentialsTaken)
		}
		return nil, apperrors.StorageConflict(msgSaveFailed, err)
	}
	return &updated, nil
}

// ChangePassword replaces the password after confirming the current one.
func (s *UserService) ChangePassword(ctx context.Context, current *domain.User, currentPassword, newPassword, confirmPassword string) error {
	if !isRegistered(current) {
		return apperrors.Unauthorized(msgLoginToContinue)
	}
	if utf8.RuneCountInString(newPassword) < minPasswordLength {
		return apperrors.MalformedRequest(msgPasswordLength)
	}
	if newPassword != confirmPassword {
		return apperrors.MalformedRequest(msgPasswordsMismatch)
	}
	if err := s.confirm(currentPassword, current); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		if errors.Is(err, secrets.ErrPasswordTooLong) {
			return apperrors.MalformedRequest("Password is too long.")
		}
		return apperrors.Internal(msgInternal, err)
	}

	updated := *current
	updated.PasswordHash = hash
	if err := s.users.Update(ctx, &updated); err != nil {
		return apperrors.StorageConflict("Password could not be changed", err)
	}
	slog.InfoContext(ctx, "Password changed", "user_id", current.ID.String())
	return nil
}

func (s *UserService) verify(password string, user *domain.User) error {
	if user.Anonymous || !user.Active {
		return secrets.ErrPasswordMismatch
	}
	return s.hasher.Verify(password, user.PasswordHash)
}

func (s *UserService) confirm(password string, user *domain.User) error {
	if err := s.verify(password, user); err != nil {
		if errors.Is(err, secrets.ErrPasswordMismatch) {
			return apperrors.Unauthorized(msgInvalidPassword)
		}
		return apperrors.Internal(msgInternal, err)
	}
	return nil
}

func isRegistered(user *domain.User) bool {
	return user != nil && !user.Anonymous
}

func validateProfile(username, email string) error {
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return apperrors.MalformedRequest(msgUsernameLength)
	}
	if email == "" {
		return apperrors.MalformedRequest(msgEmailInvalid)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return apperrors.MalformedRequest(msgEmailInvalid)
	}
	return nil
}
