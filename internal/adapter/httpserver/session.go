package httpserver

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/headlinepulse/internal/app"
	"github.com/pscheid92/headlinepulse/internal/platform/config"
)

// Session keys
const (
	sessionName                 = "headlinepulse-session"
	sessionKeyUserID            = "user_id"
	sessionKeyRequestsRemaining = "requests_remaining"

	contextKeySession = "session"
	contextKeyUserID  = "userID"
)

func newSessionStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// sessionMiddleware decodes the cookie into an app.Session for the handler
// chain and writes it back just before the response header goes out, so
// state changed by a failing request (a freshly minted anonymous user) is
// kept as well.
func (s *Server) sessionMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw, err := s.sessionStore.Get(c.Request(), sessionName)
		if err != nil {
			// Undecodable cookie: start over with the fresh session Get returned.
			slog.WarnContext(c.Request().Context(), "Discarding invalid session cookie", "error", err)
		}

		sess := decodeSession(raw)
		before := *sess
		c.Set(contextKeySession, sess)

		c.Response().Before(func() {
			if *sess == before {
				return
			}
			encodeSession(raw, *sess)
			if err := raw.Save(c.Request(), c.Response().Writer); err != nil {
				slog.ErrorContext(c.Request().Context(), "Failed to save session", "error", err)
			}
		})

		return next(c)
	}
}

func decodeSession(raw *sessions.Session) *app.Session {
	sess := &app.Session{}
	if id, ok := raw.Values[sessionKeyUserID].(string); ok {
		if parsed, err := uuid.Parse(id); err == nil {
			sess.UserID = parsed
		}
	}
	if remaining, ok := raw.Values[sessionKeyRequestsRemaining].(int); ok {
		sess.RequestsRemaining = remaining
	}
	return sess
}

func encodeSession(raw *sessions.Session, sess app.Session) {
	if sess.UserID == uuid.Nil {
		delete(raw.Values, sessionKeyUserID)
		delete(raw.Values, sessionKeyRequestsRemaining)
		raw.Options.MaxAge = -1
		return
	}
	raw.Values[sessionKeyUserID] = sess.UserID.String()
	raw.Values[sessionKeyRequestsRemaining] = sess.RequestsRemaining
}

// sessionFrom returns the request's session. Routes outside the session
// middleware get an empty, throwaway one.
func sessionFrom(c echo.Context) *app.Session {
	if sess, ok := c.Get(contextKeySession).(*app.Session); ok {
		return sess
	}
	return &app.Session{}
}
