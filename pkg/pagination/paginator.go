package pagination

import (
	"context"
	"fmt"
	"iter"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sunlightlabs/sunlight-go/pkg/logging"
)

// Parameter names understood by the Paginator.
const (
	ParamPage    = "page"
	ParamPerPage = "per_page"
	ParamLimit   = "limit"
)

const (
	// DefaultPerPage is the page size requested when the caller does not set per_page.
	DefaultPerPage = 50

	// DefaultDelay is the pause between two page requests.
	DefaultDelay = 100 * time.Millisecond
)

// handler produces the record sequence for one invocation of an operation.
type handler[T any] func(ctx context.Context, params url.Values) iter.Seq2[T, error]

type options struct {
	delay  time.Duration
	logger zerolog.Logger
}

// Option configures a Paginator.
type Option func(*options)

// WithDelay sets the pause between page requests. Zero disables the pause.
func WithDelay(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.delay = d
		}
	}
}

// WithLogger sets the logger used for page level debug output.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Paginator wraps a pageable Service. Pageable operations become lazy record
// sequences spanning every page; all other operations are passed through.
type Paginator[T any] struct {
	service  Service[T]
	delay    time.Duration
	logger   zerolog.Logger
	ops      map[string]Operation[T]
	handlers map[string]handler[T]
}

// New wraps service. It fails with ErrNotPageable when the service does not
// declare paging support.
func New[T any](service Service[T], opts ...Option) (*Paginator[T], error) {
	if service == nil {
		return nil, &ConfigError{Service: "<nil>", Err: ErrNotPageable}
	}

	name := serviceName(service)
	if !service.Pageable() {
		return nil, &ConfigError{Service: name, Err: ErrNotPageable}
	}

	o := options{
		delay:  DefaultDelay,
		logger: logging.NewLogger(logging.ComponentPaginator),
	}
	for _, opt := range opts {
		opt(&o)
	}

	p := &Paginator[T]{
		service:  service,
		delay:    o.delay,
		logger:   logging.ForService(o.logger, name),
		ops:      make(map[string]Operation[T]),
		handlers: make(map[string]handler[T]),
	}

	for _, op := range service.Operations() {
		p.ops[op.Name] = op
		if op.Pageable {
			p.handlers[op.Name] = p.paged(op)
		} else {
			p.handlers[op.Name] = passThrough(op)
		}
	}

	return p, nil
}

// serviceName returns the name a Named service reports, or its type.
func serviceName(service any) string {
	if n, ok := service.(Named); ok {
		if name := n.Name(); name != "" {
			return name
		}
	}
	return fmt.Sprintf("%T", service)
}

// Service returns the wrapped service.
func (p *Paginator[T]) Service() Service[T] {
	return p.service
}

// Delay returns the pause between page requests.
func (p *Paginator[T]) Delay() time.Duration {
	return p.delay
}

// IsPageable reports whether the named operation is paged by Records.
func (p *Paginator[T]) IsPageable(name string) bool {
	op, ok := p.ops[name]
	return ok && op.Pageable
}

// Records returns the records of the named operation as a lazy sequence.
// Pageable operations are requested page by page as the consumer advances;
// other operations are invoked once and their records yielded unchanged.
func (p *Paginator[T]) Records(ctx context.Context, name string, params url.Values) iter.Seq2[T, error] {
	h, ok := p.handlers[name]
	if !ok {
		return failed[T](fmt.Errorf("%w: %s", ErrUnknownOperation, name))
	}
	return h(ctx, params)
}

// Call invokes the named operation once on the wrapped service, without paging.
func (p *Paginator[T]) Call(ctx context.Context, name string, params url.Values) ([]T, error) {
	op, ok := p.ops[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownOperation, name)
	}
	return op.Call(ctx, params)
}

// cursor is the per-invocation paging state.
type cursor struct {
	page    int
	perPage int
	limit   int
	count   int
}

// newCursor reads page, per_page and limit from params and returns the
// parameters to forward downstream (limit removed).
func newCursor(params url.Values) (cursor, url.Values, error) {
	page, err := intParam(params, ParamPage, 1)
	if err != nil {
		return cursor{}, nil, err
	}
	perPage, err := intParam(params, ParamPerPage, DefaultPerPage)
	if err != nil {
		return cursor{}, nil, err
	}
	limit, err := intParam(params, ParamLimit, perPage)
	if err != nil {
		return cursor{}, nil, err
	}

	forward := cloneValues(params)
	forward.Del(ParamLimit)

	return cursor{
		page:    page,
		perPage: min(limit, perPage),
		limit:   limit,
	}, forward, nil
}

// request returns the parameters for the current page.
func (c *cursor) request(base url.Values) url.Values {
	params := cloneValues(base)
	params.Set(ParamPage, strconv.Itoa(c.page))
	params.Set(ParamPerPage, strconv.Itoa(c.perPage))
	return params
}

// paged returns the handler walking op page by page.
func (p *Paginator[T]) paged(op Operation[T]) handler[T] {
	return func(ctx context.Context, params url.Values) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			var zero T

			cur, forward, err := newCursor(params)
			if err != nil {
				yield(zero, err)
				return
			}

			logger := logging.ForCall(p.logger, op.Name, uuid.NewString())

			if cur.limit <= 0 {
				logger.Debug().Int("limit", cur.limit).Msg("Non-positive limit, nothing to fetch")
				return
			}
			if cur.perPage <= 0 {
				yield(zero, fmt.Errorf("%w: per_page must be positive (got %d)", ErrInvalidParam, cur.perPage))
				return
			}

			// Paging always starts at the first page.
			if cur.page != 1 {
				logger.Debug().Int("requested_page", cur.page).Msg("Ignoring requested page, starting from page 1")
			}
			cur.page = 1

			for {
				logger.Debug().
					Int("page", cur.page).
					Int("per_page", cur.perPage).
					Msg("Loading page")

				records, err := op.Call(ctx, cur.request(forward))
				PagesFetched.WithLabelValues(op.Name).Inc()
				if err != nil {
					PagingStops.WithLabelValues(op.Name, StopError).Inc()
					yield(zero, err)
					return
				}

				if len(records) == 0 {
					logger.Debug().Int("page", cur.page).Msg("Empty page, stopping")
					PagingStops.WithLabelValues(op.Name, StopEmptyPage).Inc()
					return
				}

				for _, rec := range records {
					if !yield(rec, nil) {
						logger.Debug().Int("count", cur.count).Msg("Consumer stopped, abandoning")
						PagingStops.WithLabelValues(op.Name, StopAbandoned).Inc()
						return
					}
					cur.count++
					RecordsYielded.WithLabelValues(op.Name).Inc()

					if cur.count >= cur.limit {
						logger.Debug().Int("count", cur.count).Msg("Limit reached, stopping")
						PagingStops.WithLabelValues(op.Name, StopLimit).Inc()
						return
					}
				}

				if cur.count%cur.perPage != 0 {
					logger.Debug().
						Int("count", cur.count).
						Msg("Fewer results than requested, stopping")
					PagingStops.WithLabelValues(op.Name, StopShortPage).Inc()
					return
				}

				cur.page++
				if err := p.pause(ctx); err != nil {
					PagingStops.WithLabelValues(op.Name, StopError).Inc()
					yield(zero, err)
					return
				}
			}
		}
	}
}

// pause waits for the configured delay or until ctx is done.
func (p *Paginator[T]) pause(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(p.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// passThrough returns a handler invoking op once with params untouched.
func passThrough[T any](op Operation[T]) handler[T] {
	return func(ctx context.Context, params url.Values) iter.Seq2[T, error] {
		return func(yield func(T, error) bool) {
			records, err := op.Call(ctx, params)
			if err != nil {
				var zero T
				yield(zero, err)
				return
			}
			for _, rec := range records {
				if !yield(rec, nil) {
					return
				}
			}
		}
	}
}

// failed returns a sequence yielding only err.
func failed[T any](err error) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		yield(zero, err)
	}
}

// Collect drains seq into a slice, stopping at the first error.
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var out []T
	for rec, err := range seq {
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func intParam(params url.Values, key string, def int) (int, error) {
	raw := strings.TrimSpace(params.Get(key))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", ErrInvalidParam, key, raw)
	}
	return n, nil
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for key, vals := range v {
		out[key] = append([]string(nil), vals...)
	}
	return out
}
