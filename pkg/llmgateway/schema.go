package llmgateway

import (
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// validateSchema checks a parsed JSON response against a JSON schema. A
// schema mismatch here is always permanent: the provider returned
// well-formed JSON, it just doesn't satisfy the shape the caller asked for.
func validateSchema(schema, document json.RawMessage) error {
	var s jsonschema.Schema
	if err := json.Unmarshal(schema, &s); err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	resolved, err := s.Resolve(nil)
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	var instance any
	if err := json.Unmarshal(document, &instance); err != nil {
		return fmt.Errorf("invalid response json: %w", err)
	}

	return resolved.Validate(instance)
}
