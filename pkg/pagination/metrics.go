package pagination

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stop reasons recorded in PagingStops.
const (
	StopLimit     = "limit"
	StopShortPage = "short_page"
	StopEmptyPage = "empty_page"
	StopError     = "error"
	StopAbandoned = "abandoned"
)

var (
	// PagesFetched counts page requests issued by paginated operations.
	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunlight_pages_fetched_total",
			Help: "Total number of pages requested by paginated operations",
		},
		[]string{"operation"},
	)

	// RecordsYielded counts records handed to consumers.
	RecordsYielded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunlight_records_yielded_total",
			Help: "Total number of records yielded by paginated operations",
		},
		[]string{"operation"},
	)

	// PagingStops counts finished paging runs by reason.
	PagingStops = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sunlight_paging_stops_total",
			Help: "Total number of paging runs stopped by reason",
		},
		[]string{"operation", "reason"}, // "limit", "short_page", "empty_page", "error", "abandoned"
	)
)
