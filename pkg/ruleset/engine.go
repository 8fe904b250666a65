package ruleset

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lionscraft/docpythia/pkg/config"
	"github.com/lionscraft/docpythia/pkg/llmgateway"
)

// Proposal is the in-flight draft the ruleset phases read and rewrite,
// mirroring services.NewProposal's shape before it is ever written to
// DocProposal — the engine operates purely on values the Pipeline
// Orchestrator (C8) hands it and returns, never touching the database
// itself.
type Proposal struct {
	Page          string                 `json:"page"`
	UpdateType    string                 `json:"update_type"`
	Section       string                 `json:"section"`
	Location      map[string]interface{} `json:"location,omitempty"`
	SuggestedText string                 `json:"suggested_text"`
	Reasoning     string                 `json:"reasoning"`
	Confidence    float64                `json:"confidence"`
}

// Gateway is the subset of the LLM Gateway (C2) the engine depends on.
type Gateway interface {
	Call(ctx context.Context, req llmgateway.CallRequest) (*llmgateway.CallResult, error)
}

// Engine applies a tenant's parsed Ruleset to one proposal at a time.
// It never calls the LLM Gateway when a phase's section is blank — an
// empty ruleset costs nothing beyond the Parse call.
type Engine struct {
	gateway Gateway
}

// New builds an Engine over the LLM Gateway.
func New(gateway Gateway) *Engine {
	return &Engine{gateway: gateway}
}

const modificationsSchema = `{
  "type": "object",
  "properties": {
    "page": {"type": "string"},
    "update_type": {"type": "string", "enum": ["INSERT", "UPDATE", "DELETE", "NONE"]},
    "section": {"type": "string"},
    "suggested_text": {"type": "string"},
    "reasoning": {"type": "string"},
    "confidence": {"type": "number"}
  },
  "required": ["page", "update_type", "suggested_text", "reasoning", "confidence"]
}`

const rejectionSchema = `{
  "type": "object",
  "properties": {
    "reject": {"type": "boolean"},
    "reason": {"type": "string"}
  },
  "required": ["reject"]
}`

const qualityGatesSchema = `{
  "type": "object",
  "properties": {
    "flags": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["flags"]
}`

// ReviewModifications applies the REVIEW_MODIFICATIONS section, if any,
// as a STRONG-tier call that rewrites the proposal's suggested text,
// section, or update type subject to the tenant's free-form rules. It
// must echo back every field it doesn't intend to change; location is not
// in the response schema and is kept from the input when the response
// omits it. Parse guarantees a blank
// section here is a no-op, so callers can invoke this unconditionally.
func (e *Engine) ReviewModifications(ctx context.Context, rs Ruleset, p Proposal) (Proposal, error) {
	if rs.ReviewModifications == "" {
		return p, nil
	}

	draft, err := json.Marshal(p)
	if err != nil {
		return p, fmt.Errorf("ruleset: failed to marshal proposal draft: %w", err)
	}

	result, err := e.gateway.Call(ctx, llmgateway.CallRequest{
		Purpose:        llmgateway.PurposeReview,
		Tier:           config.ModelTierStrong,
		SystemPrompt:   "You apply a documentation team's review rules to a proposed change. Rewrite the proposal's suggested_text, section, or update_type only as the rules require; echo every other field unchanged. Respond with the full modified proposal record.",
		UserPrompt:     fmt.Sprintf("Rules:\n%s\n\nProposal:\n%s", rs.ReviewModifications, draft),
		ResponseSchema: json.RawMessage(modificationsSchema),
	})
	if err != nil {
		return p, fmt.Errorf("ruleset: review_modifications call failed: %w", err)
	}

	var modified Proposal
	if err := json.Unmarshal(result.ParsedJSON, &modified); err != nil {
		return p, fmt.Errorf("ruleset: failed to parse review_modifications response: %w", err)
	}
	if modified.Location == nil {
		modified.Location = p.Location
	}
	return modified, nil
}

// rejectionResult is the rejection phase's wire shape.
type rejectionResult struct {
	Reject bool   `json:"reject"`
	Reason string `json:"reason"`
}

// CheckRejection applies the REJECTION_RULES section, if any, returning
// whether the proposal should be discarded before ever reaching a
// reviewer. A blank section never rejects.
func (e *Engine) CheckRejection(ctx context.Context, rs Ruleset, p Proposal) (bool, string, error) {
	if rs.RejectionRules == "" {
		return false, "", nil
	}

	draft, err := json.Marshal(p)
	if err != nil {
		return false, "", fmt.Errorf("ruleset: failed to marshal proposal draft: %w", err)
	}

	result, err := e.gateway.Call(ctx, llmgateway.CallRequest{
		Purpose:        llmgateway.PurposeReview,
		Tier:           config.ModelTierStrong,
		SystemPrompt:   "You evaluate a proposed documentation change against a documentation team's rejection rules. Respond with whether the proposal should be rejected and, if so, why.",
		UserPrompt:     fmt.Sprintf("Rules:\n%s\n\nProposal:\n%s", rs.RejectionRules, draft),
		ResponseSchema: json.RawMessage(rejectionSchema),
	})
	if err != nil {
		return false, "", fmt.Errorf("ruleset: rejection_rules call failed: %w", err)
	}

	var out rejectionResult
	if err := json.Unmarshal(result.ParsedJSON, &out); err != nil {
		return false, "", fmt.Errorf("ruleset: failed to parse rejection_rules response: %w", err)
	}
	return out.Reject, out.Reason, nil
}

// qualityGatesResult is the quality-gates phase's wire shape.
type qualityGatesResult struct {
	Flags []string `json:"flags"`
}

// QualityFlags applies the QUALITY_GATES section, if any, returning
// purely advisory flags appended to the proposal's quality_flags_json.
// A blank section produces no flags.
func (e *Engine) QualityFlags(ctx context.Context, rs Ruleset, p Proposal) ([]string, error) {
	if rs.QualityGates == "" {
		return nil, nil
	}

	draft, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("ruleset: failed to marshal proposal draft: %w", err)
	}

	result, err := e.gateway.Call(ctx, llmgateway.CallRequest{
		Purpose:        llmgateway.PurposeReview,
		Tier:           config.ModelTierFast,
		SystemPrompt:   "You check a proposed documentation change against a documentation team's quality gates. Respond with the list of flags that apply; an empty list means none do. These flags are advisory and never block review.",
		UserPrompt:     fmt.Sprintf("Gates:\n%s\n\nProposal:\n%s", rs.QualityGates, draft),
		ResponseSchema: json.RawMessage(qualityGatesSchema),
	})
	if err != nil {
		return nil, fmt.Errorf("ruleset: quality_gates call failed: %w", err)
	}

	var out qualityGatesResult
	if err := json.Unmarshal(result.ParsedJSON, &out); err != nil {
		return nil, fmt.Errorf("ruleset: failed to parse quality_gates response: %w", err)
	}
	return out.Flags, nil
}
