package client

import (
	"errors"
	"io"
	"testing"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		expected ErrorClass
	}{
		{name: "bad request", status: 400, expected: ErrorClassClient},
		{name: "not found", status: 404, expected: ErrorClassClient},
		{name: "too many requests", status: 429, expected: ErrorClassRateLimit},
		{name: "server error", status: 500, expected: ErrorClassServer},
		{name: "unavailable", status: 503, expected: ErrorClassServer},
		{name: "success", status: 200, expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyStatus(tt.status); got != tt.expected {
				t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.expected)
			}
		})
	}
}

func TestAPIError_Error(t *testing.T) {
	tests := []struct {
		name     string
		apiError *APIError
		expected string
	}{
		{
			name: "error with wrapped error",
			apiError: &APIError{
				Service:    "congress",
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        io.EOF,
			},
			expected: "congress network error (status 0): request failed: EOF",
		},
		{
			name: "error without wrapped error",
			apiError: &APIError{
				Service:    "openstates",
				StatusCode: 404,
				ErrorClass: ErrorClassClient,
				Message:    "Object doesn't exist.",
			},
			expected: "openstates client error (status 404): Object doesn't exist.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.apiError.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestAPIError_Is(t *testing.T) {
	httpErr := &APIError{Service: "congress", StatusCode: 400, ErrorClass: ErrorClassClient}
	if !errors.Is(httpErr, ErrBadRequest) {
		t.Error("HTTP status error should match ErrBadRequest")
	}

	netErr := &APIError{Service: "congress", ErrorClass: ErrorClassNetwork, Err: io.ErrUnexpectedEOF}
	if errors.Is(netErr, ErrBadRequest) {
		t.Error("network error should not match ErrBadRequest")
	}
	if !errors.Is(netErr, io.ErrUnexpectedEOF) {
		t.Error("network error should unwrap to its cause")
	}

	var target *APIError
	if !errors.As(error(httpErr), &target) || target.StatusCode != 400 {
		t.Error("errors.As should find the APIError")
	}
}

func TestEndpoint_Message(t *testing.T) {
	ep := Endpoint{
		Name:     "openstates",
		Messages: map[int]string{404: "Object doesn't exist."},
	}

	if got := ep.Message(404); got != "Object doesn't exist." {
		t.Errorf("Message(404) = %q", got)
	}
	if got, want := ep.Message(418), "unknown error code: received 418 from the server"; got != want {
		t.Errorf("Message(418) = %q, want %q", got, want)
	}
}
