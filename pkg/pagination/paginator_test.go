package pagination

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"iter"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errUpstream = errors.New("upstream unavailable")

// fakeService serves numbered records. With sizes set, page n returns
// sizes[n-1] records (0 past the end); otherwise total records are split
// into pages of the requested size.
type fakeService struct {
	pageable bool
	total    int
	sizes    []int
	failPage int
	requests []url.Values
}

func (s *fakeService) Pageable() bool {
	return s.pageable
}

func (s *fakeService) Operations() []Operation[int] {
	return []Operation[int]{
		Pageable("items", s.items),
		Direct("summary", s.summary),
	}
}

func (s *fakeService) items(_ context.Context, params url.Values) ([]int, error) {
	s.requests = append(s.requests, params)

	page, _ := strconv.Atoi(params.Get(ParamPage))
	perPage, _ := strconv.Atoi(params.Get(ParamPerPage))
	if page == s.failPage {
		return nil, errUpstream
	}

	start := (page - 1) * perPage
	n := 0
	if s.sizes != nil {
		if page-1 < len(s.sizes) {
			n = s.sizes[page-1]
		}
	} else {
		n = max(0, min(perPage, s.total-start))
	}

	records := make([]int, n)
	for i := range records {
		records[i] = start + i + 1
	}
	return records, nil
}

func (s *fakeService) summary(_ context.Context, params url.Values) ([]int, error) {
	s.requests = append(s.requests, params)
	return []int{7, 8, 9}, nil
}

func newTestPaginator(t *testing.T, svc *fakeService) *Paginator[int] {
	t.Helper()
	svc.pageable = true
	p, err := New[int](svc, WithDelay(0))
	require.NoError(t, err)
	return p
}

func values(pairs ...string) url.Values {
	v := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Set(pairs[i], pairs[i+1])
	}
	return v
}

func TestNew_NotPageable(t *testing.T) {
	svc := &fakeService{pageable: false}

	p, err := New[int](svc)
	require.Error(t, err)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, ErrNotPageable)

	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Service, "fakeService")
	assert.Empty(t, svc.requests, "construction must not issue requests")
}

func TestNew_NilService(t *testing.T) {
	_, err := New[int](nil)
	assert.ErrorIs(t, err, ErrNotPageable)
}

func TestNew_Defaults(t *testing.T) {
	svc := &fakeService{pageable: true}
	p, err := New[int](svc)
	require.NoError(t, err)

	assert.Equal(t, DefaultDelay, p.Delay())
	assert.Same(t, svc, p.Service())
	assert.True(t, p.IsPageable("items"))
	assert.False(t, p.IsPageable("summary"))
	assert.False(t, p.IsPageable("missing"))
}

func TestRecords_Counts(t *testing.T) {
	tests := []struct {
		name         string
		total        int
		params       url.Values
		wantRecords  int
		wantRequests int
	}{
		{
			name:         "fewer records than limit",
			total:        120,
			params:       values("limit", "200"),
			wantRecords:  120,
			wantRequests: 3,
		},
		{
			name:         "limit on page boundary",
			total:        120,
			params:       values("limit", "100"),
			wantRecords:  100,
			wantRequests: 2,
		},
		{
			name:         "limit mid page",
			total:        120,
			params:       values("limit", "70"),
			wantRecords:  70,
			wantRequests: 2,
		},
		{
			name:         "exact multiple ends on empty page",
			total:        100,
			params:       values("limit", "200"),
			wantRecords:  100,
			wantRequests: 3,
		},
		{
			name:         "defaults yield one page",
			total:        1000,
			params:       nil,
			wantRecords:  50,
			wantRequests: 1,
		},
		{
			name:         "short first page",
			total:        30,
			params:       nil,
			wantRecords:  30,
			wantRequests: 1,
		},
		{
			name:         "small pages",
			total:        100,
			params:       values("per_page", "3", "limit", "7"),
			wantRecords:  7,
			wantRequests: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{total: tt.total}
			p := newTestPaginator(t, svc)

			got, err := Collect(p.Records(context.Background(), "items", tt.params))
			require.NoError(t, err)
			assert.Len(t, got, tt.wantRecords)
			assert.Len(t, svc.requests, tt.wantRequests)

			for i, rec := range got {
				require.Equal(t, i+1, rec, "records must keep server order")
			}
		})
	}
}

func TestRecords_LimitAcrossTwoPages(t *testing.T) {
	svc := &fakeService{sizes: []int{50, 30}}
	p := newTestPaginator(t, svc)

	got, err := Collect(p.Records(context.Background(), "items", values("limit", "70")))
	require.NoError(t, err)

	assert.Len(t, got, 70)
	require.Len(t, svc.requests, 2)
	assert.Equal(t, "1", svc.requests[0].Get(ParamPage))
	assert.Equal(t, "2", svc.requests[1].Get(ParamPage))
	assert.Equal(t, "50", svc.requests[1].Get(ParamPerPage))
}

func TestRecords_LimitCapsPerPage(t *testing.T) {
	svc := &fakeService{total: 500}
	p := newTestPaginator(t, svc)

	got, err := Collect(p.Records(context.Background(), "items", values("limit", "10", "per_page", "50")))
	require.NoError(t, err)

	assert.Len(t, got, 10)
	require.Len(t, svc.requests, 1)
	assert.Equal(t, "10", svc.requests[0].Get(ParamPerPage))
}

func TestRecords_EmptyFirstPage(t *testing.T) {
	svc := &fakeService{total: 0}
	p := newTestPaginator(t, svc)

	got, err := Collect(p.Records(context.Background(), "items", nil))
	require.NoError(t, err)

	assert.Empty(t, got)
	assert.Len(t, svc.requests, 1)
}

func TestRecords_ShortPageStopsBeforeLimit(t *testing.T) {
	svc := &fakeService{sizes: []int{50, 20, 50}}
	p := newTestPaginator(t, svc)

	got, err := Collect(p.Records(context.Background(), "items", values("limit", "500")))
	require.NoError(t, err)

	assert.Len(t, got, 70)
	assert.Len(t, svc.requests, 2)
}

func TestRecords_ForwardedParams(t *testing.T) {
	svc := &fakeService{total: 500}
	p := newTestPaginator(t, svc)

	params := values("state", "ca", "page", "5", "limit", "60")
	_, err := Collect(p.Records(context.Background(), "items", params))
	require.NoError(t, err)

	require.Len(t, svc.requests, 2)
	first := svc.requests[0]
	assert.Equal(t, "1", first.Get(ParamPage), "paging restarts at page 1")
	assert.Equal(t, "ca", first.Get("state"))
	assert.False(t, first.Has(ParamLimit), "limit is not forwarded")
	assert.Equal(t, "2", svc.requests[1].Get(ParamPage))

	// The caller's values are left alone.
	assert.Equal(t, "5", params.Get(ParamPage))
	assert.Equal(t, "60", params.Get(ParamLimit))
}

func TestRecords_NonPositiveLimit(t *testing.T) {
	for _, limit := range []string{"0", "-3"} {
		t.Run("limit="+limit, func(t *testing.T) {
			svc := &fakeService{total: 500}
			p := newTestPaginator(t, svc)

			got, err := Collect(p.Records(context.Background(), "items", values("limit", limit)))
			require.NoError(t, err)
			assert.Empty(t, got)
			assert.Empty(t, svc.requests)
		})
	}
}

func TestRecords_InvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params url.Values
	}{
		{name: "non numeric page", params: values("page", "abc")},
		{name: "non numeric per_page", params: values("per_page", "ten")},
		{name: "non numeric limit", params: values("limit", "1.5")},
		{name: "zero per_page", params: values("per_page", "0", "limit", "10")},
		{name: "negative per_page", params: values("per_page", "-5", "limit", "10")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{total: 500}
			p := newTestPaginator(t, svc)

			_, err := Collect(p.Records(context.Background(), "items", tt.params))
			assert.ErrorIs(t, err, ErrInvalidParam)
			assert.Empty(t, svc.requests)
		})
	}
}

func TestRecords_ErrorPropagates(t *testing.T) {
	svc := &fakeService{total: 500, failPage: 2}
	p := newTestPaginator(t, svc)

	got, err := Collect(p.Records(context.Background(), "items", values("limit", "200")))
	assert.ErrorIs(t, err, errUpstream)
	assert.Len(t, got, 50, "records before the failing page are delivered")
	assert.Len(t, svc.requests, 2)
}

func TestRecords_Lazy(t *testing.T) {
	svc := &fakeService{total: 500}
	p := newTestPaginator(t, svc)

	seq := p.Records(context.Background(), "items", values("limit", "200"))
	assert.Empty(t, svc.requests, "no request before iteration")

	next, stop := iter.Pull2(seq)
	defer stop()

	for i := 0; i < 50; i++ {
		rec, err, ok := next()
		require.True(t, ok)
		require.NoError(t, err)
		require.Equal(t, i+1, rec)
	}
	assert.Len(t, svc.requests, 1, "first page buffered")

	rec, err, ok := next()
	require.True(t, ok)
	require.NoError(t, err)
	assert.Equal(t, 51, rec)
	assert.Len(t, svc.requests, 2)
}

func TestRecords_Abandoned(t *testing.T) {
	svc := &fakeService{total: 500}
	p := newTestPaginator(t, svc)
	abandoned := testutil.ToFloat64(PagingStops.WithLabelValues("items", StopAbandoned))
	limited := testutil.ToFloat64(PagingStops.WithLabelValues("items", StopLimit))

	n := 0
	for _, err := range p.Records(context.Background(), "items", values("limit", "200")) {
		require.NoError(t, err)
		n++
		if n == 60 {
			break
		}
	}

	assert.Equal(t, 60, n)
	assert.Len(t, svc.requests, 2)
	assert.Equal(t, abandoned+1, testutil.ToFloat64(PagingStops.WithLabelValues("items", StopAbandoned)))
	assert.Equal(t, limited, testutil.ToFloat64(PagingStops.WithLabelValues("items", StopLimit)))
}

func TestRecords_FreshStatePerCall(t *testing.T) {
	svc := &fakeService{total: 500}
	p := newTestPaginator(t, svc)

	seq := p.Records(context.Background(), "items", values("limit", "60"))
	first, err := Collect(seq)
	require.NoError(t, err)
	second, err := Collect(seq)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, svc.requests, 4)
	assert.Equal(t, "1", svc.requests[2].Get(ParamPage))
}

func TestRecords_Delay(t *testing.T) {
	svc := &fakeService{total: 120, pageable: true}
	p, err := New[int](svc, WithDelay(20*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	got, err := Collect(p.Records(context.Background(), "items", values("limit", "200")))
	require.NoError(t, err)

	assert.Len(t, got, 120)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestRecords_CancelDuringPause(t *testing.T) {
	svc := &fakeService{total: 500, pageable: true}
	p, err := New[int](svc, WithDelay(time.Hour))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	n := 0
	var gotErr error
	for _, err := range p.Records(ctx, "items", values("limit", "200")) {
		if err != nil {
			gotErr = err
			break
		}
		n++
		if n == 50 {
			cancel()
		}
	}

	assert.Equal(t, 50, n)
	assert.ErrorIs(t, gotErr, context.Canceled)
	assert.Len(t, svc.requests, 1)
}

func TestRecords_PassThrough(t *testing.T) {
	svc := &fakeService{}
	p := newTestPaginator(t, svc)

	params := values("limit", "1", "page", "3")
	got, err := Collect(p.Records(context.Background(), "summary", params))
	require.NoError(t, err)
	assert.Equal(t, []int{7, 8, 9}, got)

	require.Len(t, svc.requests, 1)
	assert.Equal(t, params, svc.requests[0], "pass-through forwards params unchanged")
}

func TestCall_Direct(t *testing.T) {
	svc := &fakeService{total: 500}
	p := newTestPaginator(t, svc)

	got, err := p.Call(context.Background(), "items", values("page", "3", "per_page", "10"))
	require.NoError(t, err)
	assert.Len(t, got, 10)
	assert.Equal(t, 21, got[0])
	assert.Len(t, svc.requests, 1)

	_, err = p.Call(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestRecords_UnknownOperation(t *testing.T) {
	p := newTestPaginator(t, &fakeService{})

	_, err := Collect(p.Records(context.Background(), "nope", nil))
	assert.ErrorIs(t, err, ErrUnknownOperation)
}

func TestRecords_Metrics(t *testing.T) {
	svc := &fakeService{sizes: []int{50, 30}}
	p := newTestPaginator(t, svc)

	pages := testutil.ToFloat64(PagesFetched.WithLabelValues("items"))
	records := testutil.ToFloat64(RecordsYielded.WithLabelValues("items"))
	stops := testutil.ToFloat64(PagingStops.WithLabelValues("items", StopLimit))

	_, err := Collect(p.Records(context.Background(), "items", values("limit", "70")))
	require.NoError(t, err)

	assert.Equal(t, pages+2, testutil.ToFloat64(PagesFetched.WithLabelValues("items")))
	assert.Equal(t, records+70, testutil.ToFloat64(RecordsYielded.WithLabelValues("items")))
	assert.Equal(t, stops+1, testutil.ToFloat64(PagingStops.WithLabelValues("items", StopLimit)))
}

type namedService struct {
	fakeService
	name string
}

func (s *namedService) Name() string {
	return s.name
}

func TestNew_ServiceName(t *testing.T) {
	named := &namedService{name: "congress"}

	_, err := New[int](named)
	var cfgErr *ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "congress", cfgErr.Service)

	unnamed := &namedService{}
	_, err = New[int](unnamed)
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Service, "namedService")
}

func TestRecords_LogFields(t *testing.T) {
	prev := zerolog.GlobalLevel()
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(prev) })

	svc := &namedService{fakeService: fakeService{total: 30}, name: "openstates"}
	svc.pageable = true

	var buf bytes.Buffer
	p, err := New[int](svc, WithDelay(0), WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	require.NoError(t, err)

	_, err = Collect(p.Records(context.Background(), "items", values("per_page", "20", "limit", "100")))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)

	callIDs := map[string]bool{}
	for _, line := range lines {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry), line)
		assert.Equal(t, "openstates", entry["service"], line)
		assert.Equal(t, "items", entry["operation"], line)
		callIDs[entry["call_id"].(string)] = true
	}
	assert.Len(t, callIDs, 1, "one call_id per Records call")
}
