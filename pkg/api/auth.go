package api

import (
	"crypto/subtle"
	"net/http"
	"os"
	"strings"

	echo "github.com/labstack/echo/v5"
)

// requireAdmin guards every /api/v1 route with a bearer-token check
// against the value of the environment variable named by
// APIConfig.AuthTokenEnv. An operator who leaves AuthTokenEnv unset, or
// whose environment doesn't define it, is running with auth disabled —
// a deliberate choice for local development, never silently assumed in
// a deployed configuration.
func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		if s.cfg.API == nil || s.cfg.API.AuthTokenEnv == "" {
			return next(c)
		}

		want := os.Getenv(s.cfg.API.AuthTokenEnv)
		if want == "" {
			return next(c)
		}

		got := strings.TrimPrefix(c.Request().Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(got), []byte(want)) != 1 {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing or invalid admin credential")
		}
		return next(c)
	}
}

// extractReviewer identifies the human behind a review action, for the
// reviewed_by/edited_by columns an admin token alone doesn't carry.
// Priority: X-Reviewer header > X-Forwarded-User (oauth2-proxy-style) >
// a generic fallback.
func extractReviewer(c *echo.Context) string {
	if reviewer := c.Request().Header.Get("X-Reviewer"); reviewer != "" {
		return reviewer
	}
	if user := c.Request().Header.Get("X-Forwarded-User"); user != "" {
		return user
	}
	return "api-client"
}
