package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits tracks cache hits by partition
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_hits_total",
			Help: "Total number of storefront cache hits",
		},
		[]string{"partition"},
	)

	// CacheMisses tracks cache misses by partition
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_misses_total",
			Help: "Total number of storefront cache misses",
		},
		[]string{"partition"},
	)

	// SharedLoads tracks loads that joined a fetch already in flight
	SharedLoads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_shared_loads_total",
			Help: "Total number of loads served by an in-flight fetch for the same key",
		},
		[]string{"partition"},
	)

	// Invalidations tracks partition invalidations
	Invalidations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_invalidations_total",
			Help: "Total number of cache partition invalidations",
		},
		[]string{"partition"},
	)

	// DecodeFailures tracks bodies rejected because they did not decode
	DecodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_decode_failures_total",
			Help: "Total number of fetched or stored bodies that failed to decode",
		},
		[]string{"partition"},
	)

	// CacheErrors tracks cache operation errors
	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_errors_total",
			Help: "Total number of cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "delete", "invalidate"
	)
)
