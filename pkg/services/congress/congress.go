// Package congress binds the Sunlight Congress API: legislators, districts,
// bills, amendments, votes, floor updates, hearings, nominations and documents.
package congress

import (
	"context"
	"net/url"
	"strconv"

	"github.com/sunlightlabs/sunlight-go/pkg/client"
	"github.com/sunlightlabs/sunlight-go/pkg/pagination"
)

// BaseURL is the production root of the Congress API.
const BaseURL = "https://congress.api.sunlightfoundation.com"

// Endpoint describes the Congress API.
var Endpoint = client.Endpoint{
	Name:    "congress",
	BaseURL: BaseURL,
	Messages: map[int]string{
		400: "Error with your request. Perhaps too many results?",
		404: "Object doesn't exist.",
		429: "Too many requests. Please slow down.",
	},
}

// IDType selects the identifier scheme of a legislator lookup.
type IDType string

const (
	IDBioguide IDType = "bioguide"
	IDThomas   IDType = "thomas"
	IDOCD      IDType = "ocd"
	IDGovtrack IDType = "govtrack"
)

// Service performs single requests against the Congress API.
type Service struct {
	client   *client.Client
	endpoint client.Endpoint
}

// New creates a Congress service. An empty baseURL selects BaseURL.
func New(c *client.Client, baseURL string) *Service {
	ep := Endpoint
	if baseURL != "" {
		ep = ep.WithBaseURL(baseURL)
	}
	return &Service{client: c, endpoint: ep}
}

// Pageable reports that Congress list endpoints accept page and per_page.
func (s *Service) Pageable() bool { return true }

// Name returns the API name used in logs.
func (s *Service) Name() string { return s.endpoint.Name }

// Operations lists the Congress operations by name.
func (s *Service) Operations() []pagination.Operation[client.Entity] {
	return []pagination.Operation[client.Entity]{
		pagination.Pageable("legislators", s.Legislators),
		pagination.Pageable("search_bills", s.listAt("bills", "search")),
		pagination.Pageable("bills", s.Bills),
		pagination.Pageable("upcoming_bills", s.UpcomingBills),
		pagination.Pageable("committees", s.Committees),
		pagination.Pageable("amendments", s.Amendments),
		pagination.Pageable("votes", s.Votes),
		pagination.Pageable("floor_updates", s.FloorUpdates),
		pagination.Pageable("hearings", s.Hearings),
		pagination.Pageable("nominations", s.Nominations),
		pagination.Pageable("documents", s.Documents),
		pagination.Direct("all_legislators_in_office", s.AllLegislatorsInOffice),
		pagination.Direct("locate_legislators", s.listAt("legislators", "locate")),
		pagination.Direct("locate_districts", s.listAt("districts", "locate")),
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

// Legislator looks up one legislator, in or out of office. Returns nil when none matches.
func (s *Service) Legislator(ctx context.Context, id string, idType IDType, params url.Values) (client.Entity, error) {
	if idType == "" {
		idType = IDBioguide
	}
	return s.first(ctx, []string{"legislators"}, client.With(params, string(idType)+"_id", id, "all_legislators", "true"))
}

// Legislators lists legislators.
func (s *Service) Legislators(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"legislators"}, params)
}

// AllLegislatorsInOffice returns every sitting legislator in one response.
func (s *Service) AllLegislatorsInOffice(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"legislators"}, client.With(params, "per_page", "all", "in_office", "true"))
}

// LocateLegislatorsByLatLon finds the legislators representing a point.
func (s *Service) LocateLegislatorsByLatLon(ctx context.Context, lat, lon float64, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"legislators", "locate"}, client.With(params, "latitude", formatFloat(lat), "longitude", formatFloat(lon)))
}

// LocateLegislatorsByZip finds the legislators representing a zip code.
func (s *Service) LocateLegislatorsByZip(ctx context.Context, zip string, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"legislators", "locate"}, client.With(params, "zip", zip))
}

// LocateDistrictsByLatLon finds the congressional district containing a point.
func (s *Service) LocateDistrictsByLatLon(ctx context.Context, lat, lon float64, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"districts", "locate"}, client.With(params, "latitude", formatFloat(lat), "longitude", formatFloat(lon)))
}

// LocateDistrictsByZip finds the congressional districts overlapping a zip code.
func (s *Service) LocateDistrictsByZip(ctx context.Context, zip string, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"districts", "locate"}, client.With(params, "zip", zip))
}

// SearchBills runs a full text search over bills.
func (s *Service) SearchBills(ctx context.Context, query string, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"bills", "search"}, client.With(params, "query", query))
}

// Bills lists bills.
func (s *Service) Bills(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"bills"}, params)
}

// Bill looks up one bill by bill_id (e.g. "hr3590-111"). Returns nil when none matches.
func (s *Service) Bill(ctx context.Context, billID string, params url.Values) (client.Entity, error) {
	return s.first(ctx, []string{"bills"}, client.With(params, "bill_id", billID))
}

// UpcomingBills lists bills scheduled for floor consideration.
func (s *Service) UpcomingBills(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"upcoming_bills"}, params)
}

// Committees lists committees and subcommittees.
func (s *Service) Committees(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"committees"}, params)
}

// Amendments lists amendments.
func (s *Service) Amendments(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"amendments"}, params)
}

// Votes lists roll call votes.
func (s *Service) Votes(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"votes"}, params)
}

// FloorUpdates lists floor updates.
func (s *Service) FloorUpdates(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"floor_updates"}, params)
}

// Hearings lists committee hearings.
func (s *Service) Hearings(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"hearings"}, params)
}

// Nominations lists presidential nominations.
func (s *Service) Nominations(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"nominations"}, params)
}

// Documents searches oversight documents.
func (s *Service) Documents(ctx context.Context, params url.Values) ([]client.Entity, error) {
	return s.list(ctx, []string{"documents", "search"}, params)
}

func (s *Service) list(ctx context.Context, path []string, params url.Values) ([]client.Entity, error) {
	resp, err := s.client.Get(ctx, s.endpoint, path, params)
	if err != nil {
		return nil, err
	}
	return resp.Records(), nil
}

func (s *Service) first(ctx context.Context, path []string, params url.Values) (client.Entity, error) {
	records, err := s.list(ctx, path, params)
	if err != nil || len(records) == 0 {
		return nil, err
	}
	return records[0], nil
}

func (s *Service) listAt(path ...string) pagination.Call[client.Entity] {
	return func(ctx context.Context, params url.Values) ([]client.Entity, error) {
		return s.list(ctx, path, params)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
