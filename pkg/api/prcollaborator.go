package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/lionscraft/docpythia/pkg/config"
)

// ChangesetSubmission is everything the external PR collaborator needs
// to turn a submitted ChangesetBatch into a pull request: this repo's
// responsibility ends at handing this off and recording the result.
type ChangesetSubmission struct {
	TenantID      string           `json:"tenant_id"`
	BatchID       string           `json:"batch_id"`
	GitURL        string           `json:"git_url"`
	BaseBranch    string           `json:"base_branch"`
	ForkURL       string           `json:"fork_url,omitempty"`
	Title         string           `json:"pr_title"`
	Body          string           `json:"pr_body"`
	AffectedFiles []string         `json:"affected_files"`
	Proposals     []ProposalChange `json:"proposals"`
}

// ProposalChange is one proposal's contribution to a changeset, in the
// shape a PR-building service needs to apply it to a working tree.
type ProposalChange struct {
	ProposalID    int                    `json:"proposal_id"`
	Page          string                 `json:"page"`
	UpdateType    string                 `json:"update_type"`
	Section       string                 `json:"section,omitempty"`
	Location      map[string]interface{} `json:"location,omitempty"`
	SuggestedText string                 `json:"text"`
}

// PRCollaborator hands a submitted changeset batch off to the external
// service responsible for opening the actual pull request. It is
// explicitly out of process — no git plumbing or forge SDK lives in
// this repo; see DESIGN.md for why a generic HTTP handoff was chosen
// over a forge-specific client library.
type PRCollaborator interface {
	SubmitChangeset(ctx context.Context, submission ChangesetSubmission) (prURL string, err error)
}

// ErrPRCollaboratorUnavailable is returned when a webhook-backed
// collaborator isn't configured for a tenant.
var ErrPRCollaboratorUnavailable = fmt.Errorf("pr collaborator: no webhook configured for tenant")

// WebhookPRCollaborator posts a ChangesetSubmission as JSON to a
// generic webhook URL and expects a JSON body of the form
// {"pr_url": "..."} in return. This is the minimal shape every forge
// automation tool (a GitHub Action, a GitLab pipeline trigger, an
// internal bot) can sit behind, without docpythia depending on any one
// forge's API surface.
type WebhookPRCollaborator struct {
	WebhookURL string
	TokenEnv   string
	HTTPClient *http.Client
}

// NewWebhookPRCollaborator builds a collaborator from the doc repo
// config's token, reusing the credential the Doc-Index Generator (C4)
// already authenticates to the documentation repo with.
func NewWebhookPRCollaborator(docRepo *config.DocRepoConfig, webhookURL string, httpClient *http.Client) *WebhookPRCollaborator {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	tokenEnv := ""
	if docRepo != nil {
		tokenEnv = docRepo.TokenEnv
	}
	return &WebhookPRCollaborator{WebhookURL: webhookURL, TokenEnv: tokenEnv, HTTPClient: httpClient}
}

func (w *WebhookPRCollaborator) SubmitChangeset(ctx context.Context, submission ChangesetSubmission) (string, error) {
	if w.WebhookURL == "" {
		return "", ErrPRCollaboratorUnavailable
	}

	body, err := json.Marshal(submission)
	if err != nil {
		return "", fmt.Errorf("pr collaborator: failed to encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("pr collaborator: failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if w.TokenEnv != "" {
		if token := os.Getenv(w.TokenEnv); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := w.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("pr collaborator: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("pr collaborator: webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	var decoded struct {
		PRURL string `json:"pr_url"`
	}
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return "", fmt.Errorf("pr collaborator: malformed webhook response: %w", err)
	}
	if decoded.PRURL == "" {
		return "", fmt.Errorf("pr collaborator: webhook response missing pr_url")
	}
	return decoded.PRURL, nil
}
