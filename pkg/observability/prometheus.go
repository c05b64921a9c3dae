package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface by recording Prometheus metrics.
type Prometheus struct {
	computations     *prometheus.CounterVec
	computeLatency   prometheus.Histogram
	datasetElements  prometheus.Histogram
	componentSolves  *prometheus.CounterVec
	componentLatency *prometheus.HistogramVec
	componentSize    *prometheus.HistogramVec
	fallbacks        *prometheus.CounterVec
	cacheOps         *prometheus.CounterVec
	cacheBytes       *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpLatency      *prometheus.HistogramVec
	httpInFlight     prometheus.Gauge
}

// NewPrometheus registers the corank metrics with reg and returns hooks
// that update them. A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	sizeBuckets := prometheus.ExponentialBuckets(1, 2, 12)
	return &Prometheus{
		computations: f.NewCounterVec(prometheus.CounterOpts{
			Name: "corank_computations_total",
			Help: "Consensus computations by outcome.",
		}, []string{"status", "optimal"}),
		computeLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "corank_compute_duration_seconds",
			Help:    "Wall time of consensus computations.",
			Buckets: prometheus.DefBuckets,
		}),
		datasetElements: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "corank_dataset_elements",
			Help:    "Number of distinct elements per computed dataset.",
			Buckets: sizeBuckets,
		}),
		componentSolves: f.NewCounterVec(prometheus.CounterOpts{
			Name: "corank_component_solves_total",
			Help: "Sub-problem solves by route, method and outcome.",
		}, []string{"route", "method", "status"}),
		componentLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "corank_component_duration_seconds",
			Help:    "Wall time of sub-problem solves.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		componentSize: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "corank_component_size",
			Help:    "Elements per solved sub-problem.",
			Buckets: sizeBuckets,
		}, []string{"route"}),
		fallbacks: f.NewCounterVec(prometheus.CounterOpts{
			Name: "corank_exact_fallbacks_total",
			Help: "Times the fallback exact solver replaced the primary one.",
		}, []string{"from", "to"}),
		cacheOps: f.NewCounterVec(prometheus.CounterOpts{
			Name: "corank_cache_operations_total",
			Help: "Cache lookups and writes by key type.",
		}, []string{"key_type", "op"}),
		cacheBytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "corank_cache_written_bytes_total",
			Help: "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		httpRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "corank_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"method", "route", "code"}),
		httpLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "corank_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		httpInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "corank_http_requests_in_flight",
			Help: "HTTP requests currently being served.",
		}),
	}
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (p *Prometheus) OnComputeStart(_ context.Context, elements, _ int) {
	p.datasetElements.Observe(float64(elements))
}

func (p *Prometheus) OnComputeComplete(_ context.Context, optimal bool, _ int, d time.Duration, err error) {
	p.computations.WithLabelValues(status(err), strconv.FormatBool(optimal)).Inc()
	p.computeLatency.Observe(d.Seconds())
}

func (p *Prometheus) OnComponentSolved(_ context.Context, route, method string, size int, d time.Duration, err error) {
	p.componentSolves.WithLabelValues(route, method, status(err)).Inc()
	p.componentLatency.WithLabelValues(route).Observe(d.Seconds())
	p.componentSize.WithLabelValues(route).Observe(float64(size))
}

func (p *Prometheus) OnFallback(_ context.Context, from, to string, _ error) {
	p.fallbacks.WithLabelValues(from, to).Inc()
}

func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.cacheOps.WithLabelValues(keyType, "set").Inc()
	p.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (p *Prometheus) OnRequest(context.Context, string, string) {
	p.httpInFlight.Inc()
}

func (p *Prometheus) OnResponse(_ context.Context, method, route string, code int, d time.Duration) {
	p.httpInFlight.Dec()
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	p.httpLatency.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ ConsensusHooks = (*Prometheus)(nil)
	_ CacheHooks     = (*Prometheus)(nil)
	_ HTTPHooks      = (*Prometheus)(nil)
)
