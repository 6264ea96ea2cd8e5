package httpserver

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/headlinepulse/internal/app"
	apperrors "github.com/pscheid92/headlinepulse/internal/platform/errors"
)

func (s *Server) registerHeadlineRoutes(api *echo.Group) {
	api.GET("/headlines/random", s.handleRandomHeadline)
}

func (s *Server) handleRandomHeadline(c echo.Context) error {
	ctx := c.Request().Context()

	headline, err := s.svc.Headlines.Random(ctx)
	if err != nil {
		return err
	}

	view, err := s.svc.Serializer.Headline(ctx, headline, app.HeadlineOptions{})
	if err != nil {
		return apperrors.Internal("internal server error", err).WithField("headline_id", headline.ID.String())
	}

	if err := c.JSON(http.StatusOK, map[string]app.HeadlineView{"headline": view}); err != nil {
		return fmt.Errorf("failed to write headline response: %w", err)
	}
	return nil
}
