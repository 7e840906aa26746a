// Package testutil provides a mock Sunlight upstream for tests.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync"
	"time"
)

// MockResponse defines a canned response for one path.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSunlight is a configurable mock of the Sunlight APIs. Collections
// registered with SetCollection answer page/per_page queries the way the
// Congress API does, wrapping records in a results envelope.
type MockSunlight struct {
	server      *httptest.Server
	mu          sync.RWMutex
	handlers    map[string]http.HandlerFunc
	collections map[string]int

	requestCount int
	queries      []url.Values
}

// NewMockSunlight starts a mock server.
func NewMockSunlight() *MockSunlight {
	mock := &MockSunlight{
		handlers:    make(map[string]http.HandlerFunc),
		collections: make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requestCount++
		mock.queries = append(mock.queries, r.URL.Query())
		handler, hasHandler := mock.handlers[r.URL.Path]
		total, hasCollection := mock.collections[r.URL.Path]
		mock.mu.Unlock()

		w.Header().Set("X-RateLimit-Limit", "1000")
		w.Header().Set("X-RateLimit-Remaining", "999")

		switch {
		case hasHandler:
			handler(w, r)
		case hasCollection:
			servePage(w, r, total)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		}
	}))

	return mock
}

// URL returns the mock server URL.
func (m *MockSunlight) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockSunlight) Close() {
	m.server.Close()
}

// Reset clears the request log.
func (m *MockSunlight) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.queries = nil
}

// SetHandler sets a custom handler for a path.
func (m *MockSunlight) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a canned response for a path.
func (m *MockSunlight) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	})
}

// SetCollection serves total generated records at path, paged by page and per_page.
func (m *MockSunlight) SetCollection(path string, total int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collections[path] = total
}

// RequestCount returns the number of requests served.
func (m *MockSunlight) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// Queries returns the query parameters of every request in order.
func (m *MockSunlight) Queries() []url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]url.Values(nil), m.queries...)
}

// LastQuery returns the query parameters of the most recent request.
func (m *MockSunlight) LastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.queries) == 0 {
		return nil
	}
	return m.queries[len(m.queries)-1]
}

// servePage writes one page of a generated collection. Records are numbered
// from 1 and carry their position in the "n" field.
func servePage(w http.ResponseWriter, r *http.Request, total int) {
	page := atoi(r.URL.Query().Get("page"), 1)
	perPage := atoi(r.URL.Query().Get("per_page"), 20)

	start := (page - 1) * perPage
	end := min(start+perPage, total)

	results := []map[string]any{}
	for i := start; i < end && i >= 0; i++ {
		results = append(results, map[string]any{
			"id": fmt.Sprintf("rec-%d", i+1),
			"n":  i + 1,
		})
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	json.NewEncoder(w).Encode(map[string]any{
		"results": results,
		"count":   total,
		"page": map[string]any{
			"count":    len(results),
			"per_page": perPage,
			"page":     page,
		},
	})
}

func atoi(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}

// NewOKResponse creates a 200 JSON response.
func NewOKResponse(body string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewQuotaExhaustedResponse creates a 429 with an exhausted quota.
func NewQuotaExhaustedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"error":"API rate limit exceeded"}`,
		Headers: map[string]string{
			"X-RateLimit-Limit":     "1000",
			"X-RateLimit-Remaining": "0",
		},
	}
}

// NewServerErrorResponse creates a 500 response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"error":"Internal server error"}`,
	}
}
