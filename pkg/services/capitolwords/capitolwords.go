// Package capitolwords binds the Capitol Words API, which reports word and
// phrase usage in the Congressional Record.
package capitolwords

import (
	"context"
	"net/url"

	"github.com/sunlightlabs/sunlight-go/pkg/client"
	"github.com/sunlightlabs/sunlight-go/pkg/pagination"
)

// BaseURL is the production root of the Capitol Words API.
const BaseURL = "http://capitolwords.org/api/1"

// Endpoint describes the Capitol Words API. Every path ends in ".json".
var Endpoint = client.Endpoint{
	Name:    "capitolwords",
	BaseURL: BaseURL,
	Suffix:  ".json",
	Messages: map[int]string{
		400: "Error with your request. Perhaps too many results?",
		404: "Object doesn't exist.",
	},
}

// Entity types accepted by Phrases and PhrasesByEntity.
const (
	EntityLegislator = "legislator"
	EntityState      = "state"
	EntityParty      = "party"
	EntityDate       = "date"
	EntityMonth      = "month"
)

// Service performs single requests against the Capitol Words API.
type Service struct {
	client   *client.Client
	endpoint client.Endpoint
}

// New creates a Capitol Words service. An empty baseURL selects BaseURL.
func New(c *client.Client, baseURL string) *Service {
	ep := Endpoint
	if baseURL != "" {
		ep = ep.WithBaseURL(baseURL)
	}
	return &Service{client: c, endpoint: ep}
}

// Pageable reports that Text and Phrases accept page and per_page.
func (s *Service) Pageable() bool { return true }

// Name returns the API name used in logs.
func (s *Service) Name() string { return s.endpoint.Name }

// Operations lists the Capitol Words operations by name.
func (s *Service) Operations() []pagination.Operation[client.Entity] {
	return []pagination.Operation[client.Entity]{
		pagination.Pageable("text", s.list("text")),
		pagination.Pageable("phrases", s.list("phrases")),
		pagination.Direct("dates", s.list("dates")),
	}
}

// URL returns the request URL for path with params.
func (s *Service) URL(path []string, params url.Values) string {
	return s.client.URL(s.endpoint, path, params)
}

// Get performs a raw request against path.
func (s *Service) Get(ctx context.Context, path []string, params url.Values) (*client.Response, error) {
	return s.client.Get(ctx, s.endpoint, path, params)
}

// Dates returns the usage of phrase over time.
func (s *Service) Dates(ctx context.Context, phrase string, params url.Values) ([]client.Entity, error) {
	return s.list("dates")(ctx, client.With(params, "phrase", phrase))
}

// PhrasesByEntity ranks the entities of entityType (e.g. legislators) by
// their use of the phrase given in params.
func (s *Service) PhrasesByEntity(ctx context.Context, entityType string, params url.Values) ([]client.Entity, error) {
	return s.list("phrases", entityType)(ctx, params)
}

// Phrases returns the phrases most used by one entity.
func (s *Service) Phrases(ctx context.Context, entityType, entityValue string, params url.Values) ([]client.Entity, error) {
	return s.list("phrases")(ctx, client.With(params, "entity_type", entityType, "entity_value", entityValue))
}

// LegislatorPhrases returns the phrases most used by a legislator.
func (s *Service) LegislatorPhrases(ctx context.Context, bioguideID string, params url.Values) ([]client.Entity, error) {
	return s.Phrases(ctx, EntityLegislator, bioguideID, params)
}

// Text returns Congressional Record excerpts containing phrase.
func (s *Service) Text(ctx context.Context, phrase string, params url.Values) ([]client.Entity, error) {
	return s.list("text")(ctx, client.With(params, "phrase", phrase))
}

func (s *Service) list(path ...string) pagination.Call[client.Entity] {
	return func(ctx context.Context, params url.Values) ([]client.Entity, error) {
		resp, err := s.client.Get(ctx, s.endpoint, path, params)
		if err != nil {
			return nil, err
		}
		return resp.Records(), nil
	}
}
