// Package openstates binds the Open States API for state legislatures.
package openstates

import (
	"context"
	"net/url"
	"strconv"

	"github.com/sunlightlabs/sunlight-go/pkg/client"
	"github.com/sunlightlabs/sunlight-go/pkg/pagination"
)

// BaseURL is the production root of the Open States API.
const BaseURL = "https://openstates.org/api/v1"

// Endpoint describes the Open States API.
var Endpoint = client.Endpoint{
	Name:    "openstates",
	BaseURL: BaseURL,
	Messages: map[int]string{
		400: "Error with your request. Perhaps too many results?",
		404: "Object doesn't exist.",
	},
}

// Service performs single requests against the Open States API.
type Service struct {
	client   *client.Client
	endpoint client.Endpoint
}

// New creates an Open States service. An empty baseURL selects BaseURL.
func New(c *client.Client, baseURL string) *Service {
	ep := Endpoint
	if baseURL != "" {
		ep = ep.WithBaseURL(baseURL)
	}
	return &Service{client: c, endpoint: ep}
}

// Pageable reports that the Open States search endpoints accept page and per_page.
func (s *Service) Pageable() bool { return true }

// Name returns the API name used in logs.
func (s *Service) Name() string { return s.endpoint.Name }

// Operations lists the Open States operations by name.
func (s *Service) Operations() []pagination.Operation[client.Entity] {
	return []pagination.Operation[client.Entity]{
		pagination.Pageable("bills", s.Bills),
		pagination.Pageable("legislators", s.Legislators),
		pagination.Pageable("committees", s.Committees),
		pagination.Pageable("events", s.Events),
		pagination.Direct("metadata", s.AllMetadata),
		pagination.Direct("legislator_geo", s.list("legislators", "geo")),
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

// Metadata returns the metadata of one state.
func (s *Service) Metadata(ctx context.Context, state string, params url.Values) (client.Entity, error) {
	return s.one(ctx, []string{"metadata", state}, params)
}

// AllMetadata returns the overview of every available state.
func (s *Service) AllMetadata(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list("metadata")(ctx, params)
}

// Bills searches bills.
func (s *Service) Bills(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list("bills")(ctx, params)
}

// Bill returns the detail of one bill in a legislative session.
func (s *Service) Bill(ctx context.Context, state, session, billID string, params url.Values) (client.Entity, error) {
	return s.one(ctx, []string{"bills", state, session, billID}, params)
}

// BillByID returns the detail of one bill by its Open States id.
func (s *Service) BillByID(ctx context.Context, id string, params url.Values) (client.Entity, error) {
	return s.one(ctx, []string{"bills", id}, params)
}

// Legislators searches legislators.
func (s *Service) Legislators(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list("legislators")(ctx, params)
}

// Legislator returns one legislator by leg_id.
func (s *Service) Legislator(ctx context.Context, id string, params url.Values) (client.Entity, error) {
	return s.one(ctx, []string{"legislators", id}, params)
}

// LegislatorGeo returns the legislators whose districts contain a point.
func (s *Service) LegislatorGeo(ctx context.Context, lat, long float64, params url.Values) ([]client.Entity, error) {
	return s.list("legislators", "geo")(ctx, client.With(params,
		"lat", strconv.FormatFloat(lat, 'f', -1, 64),
		"long", strconv.FormatFloat(long, 'f', -1, 64)))
}

// Committees searches committees.
func (s *Service) Committees(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list("committees")(ctx, params)
}

// Committee returns one committee by committee id.
func (s *Service) Committee(ctx context.Context, id string, params url.Values) (client.Entity, error) {
	return s.one(ctx, []string{"committees", id}, params)
}

// Events searches legislative events.
func (s *Service) Events(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list("events")(ctx, params)
}

// Event returns one event by id.
func (s *Service) Event(ctx context.Context, id string, params url.Values) (client.Entity, error) {
	return s.one(ctx, []string{"events", id}, params)
}

// Districts lists the districts of a state, optionally restricted to one chamber.
func (s *Service) Districts(ctx context.Context, state, chamber string, params url.Values) ([]client.Entity, error) {
	path := []string{"districts", state}
	if chamber != "" {
		path = append(path, chamber)
	}
	return s.list(path...)(ctx, params)
}

// DistrictBoundary returns the geographic boundary of a district.
func (s *Service) DistrictBoundary(ctx context.Context, boundaryID string, params url.Values) (client.Entity, error) {
	return s.one(ctx, []string{"districts", "boundary", boundaryID}, params)
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

// one returns the object at path, or nil for an empty body.
func (s *Service) one(ctx context.Context, path []string, params url.Values) (client.Entity, error) {
	resp, err := s.client.Get(ctx, s.endpoint, path, params)
	if err != nil {
		return nil, err
	}
	if records := resp.Records(); len(records) > 0 {
		return records[0], nil
	}
	return nil, nil
}
