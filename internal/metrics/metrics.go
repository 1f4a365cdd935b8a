// Package metrics bundles the Prometheus collectors for the scraping run
// on a dedicated registry, optionally exposed over an embedded listener.
package metrics

import (
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the run's collectors.
type Metrics struct {
	Registry          *prometheus.Registry
	FetchesTotal      *prometheus.CounterVec
	FetchDuration     prometheus.Histogram
	RetriesTotal      prometheus.Counter
	CouponsTotal      prometheus.Counter
	CategoriesScraped prometheus.Counter
	CategoriesSkipped prometheus.Counter
}

// New constructs and registers all metrics on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		Registry: registry,
		FetchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "scraper_fetches_total",
			Help: "Page fetches by outcome (success, blocked, transient, fatal).",
		}, []string{"outcome"}),
		FetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "scraper_fetch_duration_seconds",
			Help:    "Duration of successful page fetches.",
			Buckets: prometheus.DefBuckets,
		}),
		RetriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scraper_retries_total",
			Help: "Retry attempts issued by the retry controller.",
		}),
		CouponsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scraper_coupons_total",
			Help: "Coupon records extracted.",
		}),
		CategoriesScraped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scraper_categories_scraped_total",
			Help: "Categories scraped successfully.",
		}),
		CategoriesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "scraper_categories_skipped_total",
			Help: "Categories skipped after exhausting the retry budget.",
		}),
	}

	registry.MustRegister(
		m.FetchesTotal,
		m.FetchDuration,
		m.RetriesTotal,
		m.CouponsTotal,
		m.CategoriesScraped,
		m.CategoriesSkipped,
	)
	return m
}

// IncFetch counts one fetch with the given outcome label.
func (m *Metrics) IncFetch(outcome string) {
	m.FetchesTotal.WithLabelValues(outcome).Inc()
}

// ObserveFetchDuration records a successful fetch duration.
func (m *Metrics) ObserveFetchDuration(d time.Duration) {
	m.FetchDuration.Observe(d.Seconds())
}

// Serve exposes /metrics on addr in the background. An empty addr disables
// the listener.
func (m *Metrics) Serve(addr string) {
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{}))
	go func() {
		log.Printf("Metrics listening on %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("Metrics listener stopped: %v", err)
		}
	}()
}
