package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lionscraft/docpythia/ent"
)

func TestListConversationsHandler_RequiresTenantID(t *testing.T) {
	s := &Server{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.listConversationsHandler(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestListConversationsHandler_RejectsNegativeLimit(t *testing.T) {
	s := &Server{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/conversations?tenant_id=acme&limit=-1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := s.listConversationsHandler(c)
	require.Error(t, err)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestConversationStatus(t *testing.T) {
	batchID := "batch-1"

	t.Run("changeset once any proposal is batched", func(t *testing.T) {
		proposals := []*ent.DocProposal{
			{Status: "pending"},
			{Status: "approved", BatchID: &batchID},
		}
		assert.Equal(t, conversationStatusChangeset, conversationStatus(proposals))
	})

	t.Run("discarded when every proposal was ignored", func(t *testing.T) {
		proposals := []*ent.DocProposal{
			{Status: "ignored"},
			{Status: "ignored"},
		}
		assert.Equal(t, conversationStatusDiscarded, conversationStatus(proposals))
	})

	t.Run("pending otherwise", func(t *testing.T) {
		proposals := []*ent.DocProposal{
			{Status: "pending"},
			{Status: "ignored"},
		}
		assert.Equal(t, conversationStatusPending, conversationStatus(proposals))
	})
}
