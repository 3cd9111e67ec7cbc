package service

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bridgeport/bridgeport-go/internal/domain/model"
)

// TranslateRequest converts an inbound HTTP request into the canonical
// RequestEvent sent to the peer. The body is read fully and coerced to a
// string (absent bodies become ""). Header names are lower-cased and
// multi-valued headers collapse to their first value; subsequent values are
// discarded. The path carries the raw query string verbatim.
func TranslateRequest(id uint64, r *http.Request) (*model.RequestEvent, error) {
	body := ""
	if r.Body != nil {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		body = string(data)
	}

	headers := make(map[string]string, len(r.Header))
	for name, values := range r.Header {
		if len(values) == 0 {
			continue
		}
		key := strings.ToLower(name)
		if _, exists := headers[key]; !exists {
			headers[key] = values[0]
		}
	}

	path := r.URL.Path
	if r.URL.RawQuery != "" {
		path += "?" + r.URL.RawQuery
	}

	return &model.RequestEvent{
		Method:    r.Method,
		Path:      path,
		Headers:   headers,
		Body:      body,
		RequestID: id,
	}, nil
}
