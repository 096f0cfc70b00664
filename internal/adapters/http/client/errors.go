package client

import (
	"encoding/json"
	"errors"
)

// UnknownErrorMessage is reported when a failed response carries neither an
// "error" nor a "detail" message.
const UnknownErrorMessage = "unknown error"

// APIError is returned for every non-2xx response. Error() yields the
// server-supplied message verbatim.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string { return e.Message }

// StatusCode extracts the HTTP status from an *APIError anywhere in err's chain.
func StatusCode(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}

// fallbackErrorBody stands in for error bodies that are not a JSON object.
func fallbackErrorBody() map[string]any {
	return map[string]any{"error": UnknownErrorMessage}
}

func newAPIError(status int, body []byte) *APIError {
	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		parsed = fallbackErrorBody()
	}
	return &APIError{
		StatusCode: status,
		Message:    firstMessage(parsed["error"], parsed["detail"]),
	}
}

// firstMessage returns the first non-empty string candidate.
func firstMessage(candidates ...any) string {
	for _, c := range candidates {
		if s, ok := c.(string); ok && s != "" {
			return s
		}
	}
	return UnknownErrorMessage
}
