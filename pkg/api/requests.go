package api

// patchProposalRequest is the body of PATCH /proposals/:id.
type patchProposalRequest struct {
	SuggestedText string `json:"suggested_text"`
	EditedBy      string `json:"edited_by"`
}

// setProposalStatusRequest is the body of POST /proposals/:id/status.
type setProposalStatusRequest struct {
	Status     string `json:"status"` // approved | ignored | pending
	ReviewedBy string `json:"reviewed_by"`
	Reason     string `json:"reason,omitempty"` // discard reason, only meaningful for status=ignored
}

// createBatchRequest is the body of POST /batches.
type createBatchRequest struct {
	ProposalIDs []int `json:"proposal_ids"`
}

// generatePRRequest is the body of POST /batches/:id/generate-pr.
type generatePRRequest struct {
	PRTitle     string `json:"pr_title"`
	PRBody      string `json:"pr_body"`
	ProposalIDs []int  `json:"proposal_ids"`
}

// putRulesetRequest is the body of PUT /rulesets/:tenant_id.
type putRulesetRequest struct {
	Document string `json:"document"`
}
