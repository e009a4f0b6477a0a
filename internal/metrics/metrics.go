package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Lookaside cache
	Lookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_catalog_lookups_total",
		Help: "Total number of catalog lookups by outcome.",
	}, []string{"operation", "result"}) // result: hit, miss, empty, error

	GamesUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "game_catalog_games_upserted_total",
		Help: "Total number of provider records written back to the store.",
	})

	// Provider
	ProviderRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "game_catalog_provider_request_duration_seconds",
		Help:    "Duration of catalog provider requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "status"})

	TokenRefreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_catalog_token_refreshes_total",
		Help: "Total number of access token grants by result.",
	}, []string{"result"})

	// Inbound HTTP
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "game_catalog_http_requests_total",
		Help: "Total number of HTTP requests by route and status code.",
	}, []string{"route", "code"})
)

// RecordProviderRequest observes the time taken by a provider call.
func RecordProviderRequest(operation, status string, start time.Time) {
	ProviderRequestDuration.WithLabelValues(operation, status).Observe(time.Since(start).Seconds())
}
