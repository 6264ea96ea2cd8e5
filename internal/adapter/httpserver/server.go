package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/headlinepulse/internal/app"
	"github.com/pscheid92/headlinepulse/internal/domain"
	"github.com/pscheid92/headlinepulse/internal/platform/config"
)

type identityResolver interface {
	GetUser(ctx context.Context, sess app.Session) *domain.User
}

type rateLimiter interface {
	Admit(ctx context.Context, sess *app.Session) (uuid.UUID, error)
}

type rewriteWorkflow interface {
	Submit(ctx context.Context, req app.SubmitRewrite) (*domain.Rewrite, error)
	Delete(ctx context.Context, rewriteID string, viewer *domain.User) error
	ListForUser(ctx context.Context, viewer *domain.User, requested string) ([]app.HeadlineView, error)
}

type headlineService interface {
	Random(ctx context.Context) (*domain.Headline, error)
}

type userService interface {
	Signup(ctx context.Context, current *domain.User, username, email, password string) (*domain.User, error)
	Authenticate(ctx context.Context, current *domain.User, login, password string) (*domain.User, error)
	UpdateProfile(ctx context.Context, current *domain.User, username, email, confirmPassword string) (*domain.User, error)
	ChangePassword(ctx context.Context, current *domain.User, currentPassword, newPassword, confirmPassword string) error
}

type serializer interface {
	Rewrite(r *domain.Rewrite) app.RewriteView
	Headline(ctx context.Context, h *domain.Headline, opts app.HeadlineOptions) (app.HeadlineView, error)
}

// Services bundles the application collaborators the handlers call.
type Services struct {
	Identity   identityResolver
	Limiter    rateLimiter
	Rewrites   rewriteWorkflow
	Headlines  headlineService
	Users      userService
	Serializer serializer
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	svc          Services
	sessionStore sessions.Store
	healthChecks []HealthCheck
	startTime    time.Time
}

func NewServer(cfg *config.Config, svc Services, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		svc:          svc,
		sessionStore: newSessionStore(cfg),
		healthChecks: healthChecks,
		startTime:    time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// ServeHTTP exposes the router, mainly for tests.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}
