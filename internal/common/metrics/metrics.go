// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PostingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradeboard_postings_created_total",
			Help: "Total number of job postings created",
		},
	)

	SearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeboard_searches_total",
			Help: "Total number of search requests by outcome",
		},
		[]string{"outcome"},
	)

	PagesFetched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tradeboard_pages_fetched_total",
			Help: "Total number of native store pages fetched",
		},
		[]string{"backend"},
	)

	ResidualFilteredRows = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "tradeboard_residual_filtered_rows_total",
			Help: "Rows removed from fetched pages by residual predicates",
		},
	)

	PageFetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "tradeboard_page_fetch_duration_seconds",
			Help: "Duration of native store page fetches in seconds",
		},
		[]string{"backend"},
	)
)
