package llmgateway

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3"
)

// classify determines whether a provider-call error should be retried.
// Transient: timeouts, 5xx, 429, empty body, malformed JSON. Permanent:
// everything else, including auth failures and schema mismatches (the
// latter is classified by the caller after a successful parse, not here).
func classify(err error) errClass {
	if err == nil {
		return classPermanent
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return classTransient
	}
	if errors.Is(err, ErrSchemaMismatch) {
		return classPermanent
	}

	var syntaxErr *json.SyntaxError
	var unmarshalErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &unmarshalErr) {
		return classTransient
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return classTransient
	}

	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusTooManyRequests:
			return classTransient
		case apiErr.StatusCode >= 500:
			return classTransient
		case apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden:
			return classPermanent
		default:
			return classPermanent
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "empty response"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "eof"):
		return classTransient
	}

	return classPermanent
}
