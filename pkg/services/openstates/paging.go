package openstates

import (
	"context"
	"iter"
	"net/url"

	"github.com/sunlightlabs/sunlight-go/pkg/client"
	"github.com/sunlightlabs/sunlight-go/pkg/pagination"
)

// Paging exposes the Open States API with Bills, Legislators, Committees
// and Events walking every page. Other calls are inherited from Service.
type Paging struct {
	*Service
	pager *pagination.Paginator[client.Entity]
}

// NewPaging wraps s.
func NewPaging(s *Service, opts ...pagination.Option) (*Paging, error) {
	pager, err := pagination.New[client.Entity](s, opts...)
	if err != nil {
		return nil, err
	}
	return &Paging{Service: s, pager: pager}, nil
}

// Paginator returns the underlying paginator.
func (p *Paging) Paginator() *pagination.Paginator[client.Entity] {
	return p.pager
}

// Bills iterates bills across pages.
func (p *Paging) Bills(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "bills", params)
}

// Legislators iterates legislators across pages.
func (p *Paging) Legislators(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "legislators", params)
}

// Committees iterates committees across pages.
func (p *Paging) Committees(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "committees", params)
}

// Events iterates events across pages.
func (p *Paging) Events(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "events", params)
}
