package api

// envelope wraps every list response in a "data" key alongside optional
// pagination metadata, the convention the teacher's handlers use for
// every list endpoint.
type envelope struct {
	Data       interface{} `json:"data"`
	Pagination *pagination `json:"pagination,omitempty"`
}

type pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status      string `json:"status"`
	SeedStreams int    `json:"seed_streams"`
	LLMTiers    int    `json:"llm_tiers"`
	Database    string `json:"database"`
}

// conversationView is one entry of GET /conversations's "data" array.
type conversationView struct {
	ConversationID string          `json:"conversation_id"`
	TenantID       string          `json:"tenant_id"`
	Status         string          `json:"status"`
	Proposals      []proposalView  `json:"proposals"`
}

// proposalView is a DocProposal shaped for the Review API's JSON
// surface: message_ids_json/location_json/enrichment_json/quality_flags_json
// are re-keyed without the "_json" storage suffix, since that suffix
// only exists to satisfy the column-naming convention of §3.
type proposalView struct {
	ID                  int                    `json:"id"`
	TenantID            string                 `json:"tenant_id"`
	ConversationID      string                 `json:"conversation_id"`
	MessageIDs          []int                  `json:"message_ids"`
	Page                string                 `json:"page"`
	UpdateType          string                 `json:"update_type"`
	Section             string                 `json:"section,omitempty"`
	Location            map[string]interface{} `json:"location,omitempty"`
	SuggestedText       string                 `json:"suggested_text"`
	EditedText          string                 `json:"edited_text,omitempty"`
	Reasoning           string                 `json:"reasoning"`
	Confidence          float64                `json:"confidence"`
	Status              string                 `json:"status"`
	DiscardReason       string                 `json:"discard_reason,omitempty"`
	Enrichment          map[string]interface{} `json:"enrichment,omitempty"`
	QualityFlags        []string               `json:"quality_flags,omitempty"`
	BatchID             string                 `json:"batch_id,omitempty"`
	PRApplicationStatus string                 `json:"pr_application_status,omitempty"`
	CreatedAt           string                 `json:"created_at"`
	ReviewedAt          string                 `json:"reviewed_at,omitempty"`
	ReviewedBy          string                 `json:"reviewed_by,omitempty"`
}

// batchView is a ChangesetBatch shaped for the Review API's JSON surface.
type batchView struct {
	ID              string   `json:"id"`
	TenantID        string   `json:"tenant_id"`
	Status          string   `json:"status"`
	AffectedFiles   []string `json:"affected_files"`
	PRURL           string   `json:"pr_url,omitempty"`
	SubmissionError string   `json:"submission_error,omitempty"`
	CreatedAt       string   `json:"created_at"`
	SubmittedAt     string   `json:"submitted_at,omitempty"`
}

// rulesetResponse is returned by GET /rulesets/:tenant_id.
type rulesetResponse struct {
	TenantID string `json:"tenant_id"`
	Document string `json:"document"`
}

// cacheEntryView is one row of a GET /llm-cache match group.
type cacheEntryView struct {
	PromptHash       string `json:"prompt_hash"`
	ModelTier        string `json:"model_tier"`
	Prompt           string `json:"prompt"`
	Response         string `json:"response"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	CreatedAt        string `json:"created_at"`
	LastHitAt        string `json:"last_hit_at"`
}
