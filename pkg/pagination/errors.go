package pagination

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPageable is returned when wrapping a service that does not declare paging support.
	ErrNotPageable = errors.New("service must be a pageable service")

	// ErrUnknownOperation is returned for operation names the wrapped service does not expose.
	ErrUnknownOperation = errors.New("unknown operation")

	// ErrInvalidParam is returned when page, per_page or limit cannot be used.
	ErrInvalidParam = errors.New("invalid paging parameter")
)

// ConfigError reports a Paginator that could not be constructed.
type ConfigError struct {
	Service string
	Err     error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("pagination config (%s): %v", e.Service, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *ConfigError) Unwrap() error {
	return e.Err
}
