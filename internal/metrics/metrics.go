// Package metrics exposes katamari's trim instrumentation as Prometheus
// gauges.
package metrics

import (
	"math"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds the trim gauges backed by a dedicated Prometheus
// registry, so the ops endpoint exports exactly katamari's metrics.
type Registry struct {
	registry          *prometheus.Registry
	compressRatio     prometheus.Gauge
	semanticRetention prometheus.Gauge
	trimsTotal        prometheus.Counter

	mu            sync.Mutex
	lastRatio     float64
	lastRetention *float64
}

func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		compressRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "katamari_compress_ratio",
			Help: "Ratio of tokens kept after context trimming.",
		}),
		semanticRetention: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "katamari_semantic_retention",
			Help: "Semantic retention score for trimmed context (NaN when scoring is disabled).",
		}),
		trimsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "katamari_trims_total",
			Help: "Number of trim operations performed.",
		}),
	}
	r.registry.MustRegister(r.compressRatio, r.semanticRetention, r.trimsTotal)
	r.semanticRetention.Set(math.NaN())
	return r
}

// ObserveTrim records the latest trim outcome. A nil retention is exported
// as NaN so dashboards can tell "scoring disabled" from a real zero.
func (r *Registry) ObserveTrim(compressRatio float64, retention *float64) {
	r.compressRatio.Set(compressRatio)
	if retention != nil {
		r.semanticRetention.Set(*retention)
	} else {
		r.semanticRetention.Set(math.NaN())
	}
	r.trimsTotal.Inc()

	r.mu.Lock()
	r.lastRatio = compressRatio
	r.lastRetention = retention
	r.mu.Unlock()
}

// Snapshot returns the most recently observed values, for log reports.
func (r *Registry) Snapshot() (compressRatio float64, retention *float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastRatio, r.lastRetention
}

// Handler serves the registry in Prometheus text exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
