package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrBadRequest matches every APIError carrying a non-2xx HTTP status.
	ErrBadRequest = errors.New("bad request")

	// ErrQuotaExhausted is returned when the API key quota is spent.
	ErrQuotaExhausted = errors.New("api key quota exhausted")

	// ErrDecode is returned when a response body is not valid JSON.
	ErrDecode = errors.New("decode response")
)

// ErrorClass represents a classification of request failures.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"
)

// APIError is a failed request against one of the Sunlight services.
type APIError struct {
	Service    string
	StatusCode int
	ErrorClass ErrorClass
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s %s error (status %d): %s: %v",
			e.Service, e.ErrorClass, e.StatusCode, e.Message, e.Err)
	}
	return fmt.Sprintf("%s %s error (status %d): %s",
		e.Service, e.ErrorClass, e.StatusCode, e.Message)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is reports ErrBadRequest for any error carrying an HTTP status.
func (e *APIError) Is(target error) bool {
	return target == ErrBadRequest && e.StatusCode >= 400
}

// classifyStatus maps an HTTP status to its ErrorClass.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == 429:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}
