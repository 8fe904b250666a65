package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lionscraft/docpythia/pkg/config"
)

func TestRequireAdmin_PassesThroughWhenUnconfigured(t *testing.T) {
	s := &Server{cfg: &config.Config{}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := s.requireAdmin(func(c *echo.Context) error {
		called = true
		return nil
	})

	require.NoError(t, handler(c))
	assert.True(t, called)
}

func TestRequireAdmin_RejectsMissingToken(t *testing.T) {
	t.Setenv("DOCPYTHIA_TEST_ADMIN_TOKEN", "secret")
	s := &Server{cfg: &config.Config{API: &config.APIConfig{AuthTokenEnv: "DOCPYTHIA_TEST_ADMIN_TOKEN"}}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := s.requireAdmin(func(c *echo.Context) error { return nil })
	err := handler(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRequireAdmin_AcceptsMatchingToken(t *testing.T) {
	t.Setenv("DOCPYTHIA_TEST_ADMIN_TOKEN", "secret")
	s := &Server{cfg: &config.Config{API: &config.APIConfig{AuthTokenEnv: "DOCPYTHIA_TEST_ADMIN_TOKEN"}}}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	handler := s.requireAdmin(func(c *echo.Context) error {
		called = true
		return nil
	})

	require.NoError(t, handler(c))
	assert.True(t, called)
}
