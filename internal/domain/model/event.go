package model

// RequestEvent represents an HTTP request serialized for the peer process.
// Headers are lower-cased and single-valued: for a multi-valued header only
// the first value is kept. This is a documented limitation of the bridge,
// not a transport-correct header model.
type RequestEvent struct {
	// Method is the HTTP method token (GET, POST, etc.)
	Method string `json:"method"`
	// Path is the request path with the query string included verbatim
	Path string `json:"path"`
	// Headers maps lower-cased header names to their first value
	Headers map[string]string `json:"headers"`
	// Body is the request payload as a string (empty when absent)
	Body string `json:"body"`
	// RequestID is the bridge-assigned correlation identifier
	RequestID uint64 `json:"request_id"`
}

// ResponseEvent represents the peer's reply to a previously sent RequestEvent.
type ResponseEvent struct {
	// RequestID must match a RequestEvent sent earlier
	RequestID uint64 `json:"request_id"`
	// Status is the HTTP status code to return to the caller
	Status int `json:"status"`
	// Body is returned to the caller verbatim
	Body string `json:"body"`
}
