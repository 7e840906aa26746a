package pagination

import (
	"context"
	"net/url"
)

// Call performs a single request against a service and returns the records of one page.
type Call[T any] func(ctx context.Context, params url.Values) ([]T, error)

// Operation is a named call on a service.
type Operation[T any] struct {
	// Name identifies the operation within its service (e.g. "bills").
	Name string

	// Call performs the request.
	Call Call[T]

	// Pageable reports whether Call accepts page and per_page parameters.
	Pageable bool
}

// Pageable marks a call as supporting server-side pagination.
// The call itself is not altered.
func Pageable[T any](name string, call Call[T]) Operation[T] {
	return Operation[T]{Name: name, Call: call, Pageable: true}
}

// Direct declares a call that is always invoked as-is.
func Direct[T any](name string, call Call[T]) Operation[T] {
	return Operation[T]{Name: name, Call: call}
}

// Service is implemented by API bindings that expose pageable operations.
type Service[T any] interface {
	// Pageable reports whether the service supports paging at all.
	Pageable() bool

	// Operations lists every named operation of the service.
	Operations() []Operation[T]
}

// Named is implemented by services that report a name for logs and errors.
// Services without it are identified by their type.
type Named interface {
	Name() string
}
