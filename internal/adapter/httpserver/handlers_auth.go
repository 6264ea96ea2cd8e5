package httpserver

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/headlinepulse/internal/domain"
	apperrors "github.com/pscheid92/headlinepulse/internal/platform/errors"
)

const msgNotLoggedIn = "You are not logged in."

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Admin     bool      `json:"admin"`
	Anonymous bool      `json:"anonymous"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Admin:     u.Admin,
		Anonymous: u.Anonymous,
		CreatedAt: u.CreatedAt,
	}
}

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (s *Server) registerAuthRoutes(api *echo.Group, rateLimiter echo.MiddlewareFunc) {
	api.POST("/signup", s.handleSignup, rateLimiter)
	api.POST("/login", s.handleLogin, rateLimiter)
	api.POST("/logout", s.handleLogout)
	api.GET("/me", s.handleMe)
	api.PUT("/profile", s.handleUpdateProfile)
	api.PUT("/password", s.handleChangePassword, rateLimiter)
}

func (s *Server) handleSignup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.MalformedRequest(msgMalformedJSON)
	}

	ctx := c.Request().Context()
	sess := sessionFrom(c)
	user, err := s.svc.Users.Signup(ctx, s.svc.Identity.GetUser(ctx, *sess), req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	// Rewrites made while anonymous stay with the anonymous user.
	sess.UserID = user.ID
	sess.RequestsRemaining = 0

	if err := c.JSON(http.StatusCreated, map[string]userResponse{"user": newUserResponse(user)}); err != nil {
		return fmt.Errorf("failed to write signup response: %w", err)
	}
	return nil
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.MalformedRequest(msgMalformedJSON)
	}

	ctx := c.Request().Context()
	sess := sessionFrom(c)
	user, err := s.svc.Users.Authenticate(ctx, s.svc.Identity.GetUser(ctx, *sess), req.Username, req.Password)
	if err != nil {
		return err
	}

	sess.UserID = user.ID
	sess.RequestsRemaining = 0
	slog.InfoContext(ctx, "User logged in", "user_id", user.ID.String())

	if err := c.JSON(http.StatusOK, map[string]userResponse{"user": newUserResponse(user)}); err != nil {
		return fmt.Errorf("failed to write login response: %w", err)
	}
	return nil
}

func (s *Server) handleLogout(c echo.Context) error {
	sess := sessionFrom(c)
	userID := sess.UserID
	sess.Clear()

	if userID != uuid.Nil {
		slog.InfoContext(c.Request().Context(), "User logged out", "user_id", userID.String())
	}

	if err := c.JSON(http.StatusOK, map[string]string{"success": "Logged out successfully"}); err != nil {
		return fmt.Errorf("failed to write logout response: %w", err)
	}
	return nil
}

// currentRegisteredUser returns the session user or an unauthorized error
// when there is none or it is anonymous.
func (s *Server) currentRegisteredUser(c echo.Context) (*domain.User, error) {
	user := s.svc.Identity.GetUser(c.Request().Context(), *sessionFrom(c))
	if user == nil || user.Anonymous {
		return nil, apperrors.Unauthorized(msgNotLoggedIn)
	}
	return user, nil
}

func (s *Server) handleMe(c echo.Context) error {
	user, err := s.currentRegisteredUser(c)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, map[string]userResponse{"user": newUserResponse(user)}); err != nil {
		return fmt.Errorf("failed to write user response: %w", err)
	}
	return nil
}

func (s *Server) handleUpdateProfile(c echo.Context) error {
	var req profileRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.MalformedRequest(msgMalformedJSON)
	}

	ctx := c.Request().Context()
	current := s.svc.Identity.GetUser(ctx, *sessionFrom(c))
	user, err := s.svc.Users.UpdateProfile(ctx, current, req.Username, req.Email, req.Password)
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, map[string]userResponse{"user": newUserResponse(user)}); err != nil {
		return fmt.Errorf("failed to write profile response: %w", err)
	}
	return nil
}

func (s *Server) handleChangePassword(c echo.Context) error {
	var req passwordRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.MalformedRequest(msgMalformedJSON)
	}

	ctx := c.Request().Context()
	current := s.svc.Identity.GetUser(ctx, *sessionFrom(c))
	if err := s.svc.Users.ChangePassword(ctx, current, req.CurrentPassword, req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, map[string]string{"success": "Password changed."}); err != nil {
		return fmt.Errorf("failed to write password response: %w", err)
	}
	return nil
}
