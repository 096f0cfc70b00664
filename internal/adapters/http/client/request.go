package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Request describes one dispatch. The zero value is a body-less GET.
type Request struct {
	// Method defaults to GET.
	Method string

	// Header entries override the defaults; Authorization is replaced
	// whenever a bearer token is available.
	Header map[string]string

	// Body is sent as-is when it is a string, []byte, json.RawMessage or
	// io.Reader. Any other non-nil value is JSON-encoded.
	Body any
}

func (r Request) method() string {
	if r.Method == "" {
		return http.MethodGet
	}
	return r.Method
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return b, nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// buildHeaders layers defaults, caller overrides and the bearer token.
func buildHeaders(overrides map[string]string, token string) http.Header {
	h := make(http.Header, len(overrides)+2)
	h.Set("Content-Type", "application/json")
	for k, v := range overrides {
		h.Set(k, v)
	}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
