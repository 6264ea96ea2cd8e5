package httpserver

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/headlinepulse/internal/app"
	apperrors "github.com/pscheid92/headlinepulse/internal/platform/errors"
)

const msgMalformedJSON = "Malformed json request."

type submitRewriteRequest struct {
	Text       string `json:"text"`
	HeadlineID string `json:"headline_id"`
}

func (s *Server) registerRewriteRoutes(api *echo.Group) {
	api.POST("/rewrites", s.handleSubmitRewrite, s.admitWrite)
	api.DELETE("/rewrites/:id", s.handleDeleteRewrite)
	api.GET("/users/:id/rewrites", s.handleUserRewrites)
}

// admitWrite resolves the acting user, minting an anonymous one for a new
// session, and charges the anonymous write quota.
func (s *Server) admitWrite(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, err := s.svc.Limiter.Admit(c.Request().Context(), sessionFrom(c))
		if err != nil {
			return err
		}
		c.Set(contextKeyUserID, userID)
		return next(c)
	}
}

func (s *Server) handleSubmitRewrite(c echo.Context) error {
	var req submitRewriteRequest
	if err := c.Bind(&req); err != nil {
		return apperrors.MalformedRequest(msgMalformedJSON)
	}

	userID, _ := c.Get(contextKeyUserID).(uuid.UUID)
	rewrite, err := s.svc.Rewrites.Submit(c.Request().Context(), app.SubmitRewrite{
		Text:       req.Text,
		HeadlineID: req.HeadlineID,
		UserID:     userID,
	})
	if err != nil {
		return err
	}

	response := map[string]app.RewriteView{"rewrite": s.svc.Serializer.Rewrite(rewrite)}
	if err := c.JSON(http.StatusCreated, response); err != nil {
		return fmt.Errorf("failed to write rewrite response: %w", err)
	}
	return nil
}

func (s *Server) handleDeleteRewrite(c echo.Context) error {
	ctx := c.Request().Context()
	viewer := s.svc.Identity.GetUser(ctx, *sessionFrom(c))

	if err := s.svc.Rewrites.Delete(ctx, c.Param("id"), viewer); err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, map[string]string{"success": "Rewrite deleted."}); err != nil {
		return fmt.Errorf("failed to write delete response: %w", err)
	}
	return nil
}

func (s *Server) handleUserRewrites(c echo.Context) error {
	ctx := c.Request().Context()
	viewer := s.svc.Identity.GetUser(ctx, *sessionFrom(c))

	views, err := s.svc.Rewrites.ListForUser(ctx, viewer, c.Param("id"))
	if err != nil {
		return err
	}

	if err := c.JSON(http.StatusOK, views); err != nil {
		return fmt.Errorf("failed to write user rewrites response: %w", err)
	}
	return nil
}
