package capitolwords

import (
	"context"
	"iter"
	"net/url"

	"github.com/sunlightlabs/sunlight-go/pkg/client"
	"github.com/sunlightlabs/sunlight-go/pkg/pagination"
)

// Paging exposes the Capitol Words API with Text and Phrases walking every page.
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

// Text iterates Congressional Record text matches across pages.
func (p *Paging) Text(ctx context.Context, phrase string, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "text", client.With(params, "phrase", phrase))
}

// Phrases iterates the most frequent phrases for an entity across pages.
func (p *Paging) Phrases(ctx context.Context, entityType, entityValue string, params url.Values) iter.Seq2[client.Entity, error] {
	return p.pager.Records(ctx, "phrases", client.With(params, "entity_type", entityType, "entity_value", entityValue))
}

// LegislatorPhrases iterates the most frequent phrases of a legislator across pages.
func (p *Paging) LegislatorPhrases(ctx context.Context, bioguideID string, params url.Values) iter.Seq2[client.Entity, error] {
	return p.Phrases(ctx, EntityLegislator, bioguideID, params)
}
