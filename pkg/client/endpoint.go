package client

import (
	"fmt"
	"net/url"
	"strings"
)

// Endpoint describes one Sunlight API.
type Endpoint struct {
	// Name labels logs and metrics (e.g. "congress").
	Name string

	// BaseURL is the API root without a trailing slash.
	BaseURL string

	// Suffix is appended to the last path segment (".json" for Capitol Words).
	Suffix string

	// Messages maps HTTP status codes to user facing error messages.
	Messages map[int]string
}

// Message returns the error message for an HTTP status code.
func (e Endpoint) Message(status int) string {
	if msg, ok := e.Messages[status]; ok {
		return msg
	}
	return fmt.Sprintf("unknown error code: received %d from the server", status)
}

// WithBaseURL returns a copy of e pointing at base.
func (e Endpoint) WithBaseURL(base string) Endpoint {
	e.BaseURL = strings.TrimRight(base, "/")
	return e
}

// buildURL joins base, path and query: base/p1/p2{suffix}?apikey=K&k=v.
// Parameters are sorted by key.
func buildURL(ep Endpoint, apiKey string, path []string, params url.Values) string {
	var b strings.Builder
	b.WriteString(strings.TrimRight(ep.BaseURL, "/"))

	for _, segment := range path {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(segment))
	}
	b.WriteString(ep.Suffix)

	b.WriteString("?apikey=")
	b.WriteString(url.QueryEscape(apiKey))
	if len(params) > 0 {
		b.WriteByte('&')
		b.WriteString(params.Encode())
	}

	return b.String()
}
