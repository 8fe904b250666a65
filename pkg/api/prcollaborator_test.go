package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookPRCollaborator_SubmitChangeset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var submission ChangesetSubmission
		require.NoError(t, json.NewDecoder(r.Body).Decode(&submission))
		assert.Equal(t, "batch-1", submission.BatchID)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"pr_url": "https://example.com/pr/1"})
	}))
	defer srv.Close()

	collab := NewWebhookPRCollaborator(nil, srv.URL, srv.Client())
	prURL, err := collab.SubmitChangeset(context.Background(), ChangesetSubmission{BatchID: "batch-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/pr/1", prURL)
}

func TestWebhookPRCollaborator_UnconfiguredReturnsError(t *testing.T) {
	collab := NewWebhookPRCollaborator(nil, "", nil)
	_, err := collab.SubmitChangeset(context.Background(), ChangesetSubmission{})
	require.ErrorIs(t, err, ErrPRCollaboratorUnavailable)
}

func TestWebhookPRCollaborator_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	collab := NewWebhookPRCollaborator(nil, srv.URL, srv.Client())
	_, err := collab.SubmitChangeset(context.Background(), ChangesetSubmission{})
	require.Error(t, err)
}
