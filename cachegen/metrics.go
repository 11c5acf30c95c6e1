package cachegen

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts read-through lookups served from the cache.
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_hits_total",
			Help: "Total number of site cache hits",
		},
	)

	// CacheMisses counts read-through lookups that ran their builder.
	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_cache_misses_total",
			Help: "Total number of site cache misses",
		},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_errors_total",
			Help: "Total number of site cache operation errors",
		},
		[]string{"operation"}, // "get", "set", "decode", "encode", "version"
	)

	// Bumps counts generation bumps by the path that served them.
	Bumps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_bumps_total",
			Help: "Total number of site cache generation bumps",
		},
		[]string{"path"}, // "incr", "reset"
	)

	// Version exposes the last generation this process observed.
	Version = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_cache_version",
			Help: "Last site cache generation observed by this process",
		},
	)
)
