package httpserver

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pscheid92/headlinepulse/internal/metrics"
	apperrors "github.com/pscheid92/headlinepulse/internal/platform/errors"
	"golang.org/x/time/rate"
)

const authLimiterExpiry = 5 * time.Minute

// newRateLimiter throttles credential endpoints per client IP. It is
// unrelated to the anonymous write quota, which lives in the session.
func newRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: authLimiterExpiry,
		},
	)
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, _ string, _ error) error {
			metrics.HTTPErrorsTotal.WithLabelValues("too_many_requests").Inc()
			return c.JSON(http.StatusTooManyRequests, apperrors.ErrorResponse{Error: "Too many attempts, try again later."})
		},
	})
}
