package main

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/azstreams/dcrbuilder/sharecache"
)

// metrics carries its own registry so multiple servers (tests, mainly) never
// fight over collector registration.
type metrics struct {
	registry *prometheus.Registry

	sharesStored prometheus.Counter
	shareHits    prometheus.Counter
	shareMisses  prometheus.Counter
	inferRuns    prometheus.Counter
	generateRuns prometheus.Counter
}

func newMetrics(cache *sharecache.Cache) *metrics {
	sharesStored := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dcr_share_stored_total",
		Help: "Entries written to the share cache.",
	})
	shareHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dcr_share_hits_total",
		Help: "Share cache lookups that returned an entry.",
	})
	shareMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dcr_share_misses_total",
		Help: "Share cache lookups that missed or hit an expired entry.",
	})
	inferRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dcr_infer_runs_total",
		Help: "Column inference requests served.",
	})
	generateRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "dcr_generate_runs_total",
		Help: "Generation requests served.",
	})
	cacheEntries := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "dcr_share_cache_entries",
		Help: "Current number of live share cache entries.",
	}, func() float64 {
		return float64(cache.Stats().Size)
	})
	cacheBytes := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "dcr_share_cache_bytes",
		Help: "Total uncompressed bytes held by live share cache entries.",
	}, func() float64 {
		var total int
		for _, e := range cache.Stats().Entries {
			total += e.JSONSize
		}
		return float64(total)
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(sharesStored, shareHits, shareMisses, inferRuns, generateRuns, cacheEntries, cacheBytes)

	return &metrics{
		registry:     registry,
		sharesStored: sharesStored,
		shareHits:    shareHits,
		shareMisses:  shareMisses,
		inferRuns:    inferRuns,
		generateRuns: generateRuns,
	}
}
