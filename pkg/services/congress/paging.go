package congress

import (
	"context"
	"iter"
	"net/url"

	"github.com/sunlightlabs/sunlight-go/pkg/client"
	"github.com/sunlightlabs/sunlight-go/pkg/pagination"
)

// Paging exposes the Congress API with every pageable operation returning
// a lazy sequence across all pages. Lookups and locate calls are inherited
// from Service unchanged.
//
// Paged calls accept page, per_page and limit in params.
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

// Legislators iterates legislators across pages.
func (p *Paging) Legislators(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "legislators", params)
}

// SearchBills iterates full text bill search results across pages.
func (p *Paging) SearchBills(ctx context.Context, query string, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "search_bills", client.With(params, "query", query))
}

// Bills iterates bills across pages.
func (p *Paging) Bills(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "bills", params)
}

// UpcomingBills iterates bills scheduled for floor consideration.
func (p *Paging) UpcomingBills(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "upcoming_bills", params)
}

// Committees iterates committees and subcommittees across pages.
func (p *Paging) Committees(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "committees", params)
}

// Amendments iterates amendments across pages.
func (p *Paging) Amendments(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "amendments", params)
}

// Votes iterates roll call votes across pages.
func (p *Paging) Votes(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "votes", params)
}

// FloorUpdates iterates floor updates across pages.
func (p *Paging) FloorUpdates(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "floor_updates", params)
}

// Hearings iterates committee hearings across pages.
func (p *Paging) Hearings(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "hearings", params)
}

// Nominations iterates presidential nominations across pages.
func (p *Paging) Nominations(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "nominations", params)
}

// Documents iterates oversight document search results across pages.
func (p *Paging) Documents(ctx context.Context, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "documents", params)
}
