package pipeline

import "github.com/lionscraft/docpythia/ent/docproposal"

// classifySchema wraps the classify step's array output in a named
// object key, required because the LLM Gateway always requests a JSON
// *object* response whenever a schema is supplied.
const classifySchema = `{
  "type": "object",
  "properties": {
    "classifications": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "message_id": {"type": "integer"},
          "category": {"type": "string", "enum": ["information", "troubleshooting", "update", "announcement", "tutorial", "question_with_answer"]},
          "doc_value_reason": {"type": "string"},
          "suggested_doc_page": {"type": "string"},
          "rag_search_criteria": {"type": "array", "items": {"type": "string"}}
        },
        "required": ["message_id", "category", "doc_value_reason", "rag_search_criteria"]
      }
    }
  },
  "required": ["classifications"]
}`

type classifyResponse struct {
	Classifications []classifyItem `json:"classifications"`
}

type classifyItem struct {
	MessageID         int      `json:"message_id"`
	Category          string   `json:"category"`
	DocValueReason    string   `json:"doc_value_reason"`
	SuggestedDocPage  string   `json:"suggested_doc_page"`
	RAGSearchCriteria []string `json:"rag_search_criteria"`
}

// generateSchema wraps the generate step's array output the same way.
const generateSchema = `{
  "type": "object",
  "properties": {
    "proposals": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "page": {"type": "string"},
          "update_type": {"type": "string", "enum": ["INSERT", "UPDATE", "DELETE", "NONE"]},
          "section": {"type": "string"},
          "location": {"type": "object"},
          "suggested_text": {"type": "string"},
          "confidence": {"type": "number"},
          "reasoning": {"type": "string"}
        },
        "required": ["page", "update_type", "suggested_text", "confidence", "reasoning"]
      }
    }
  },
  "required": ["proposals"]
}`

type generateResponse struct {
	Proposals []generateItem `json:"proposals"`
}

type generateItem struct {
	Page          string                 `json:"page"`
	UpdateType    string                 `json:"update_type"`
	Section       string                 `json:"section"`
	Location      map[string]interface{} `json:"location"`
	SuggestedText string                 `json:"suggested_text"`
	Confidence    float64                `json:"confidence"`
	Reasoning     string                 `json:"reasoning"`
}

// summarySchema wraps the context-enrich step's short conversation
// summary call.
const summarySchema = `{
  "type": "object",
  "properties": {
    "summary": {"type": "string"}
  },
  "required": ["summary"]
}`

type summaryResponse struct {
	Summary string `json:"summary"`
}

// docProposalUpdateType maps the generate step's free-text update_type
// onto the ent enum, defaulting to NONE for anything the model produced
// outside the schema's enum constraint.
func docProposalUpdateType(s string) docproposal.UpdateType {
	switch docproposal.UpdateType(s) {
	case docproposal.UpdateTypeINSERT, docproposal.UpdateTypeUPDATE, docproposal.UpdateTypeDELETE, docproposal.UpdateTypeNONE:
		return docproposal.UpdateType(s)
	default:
		return docproposal.UpdateTypeNONE
	}
}
