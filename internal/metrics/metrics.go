package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	backtestsTotal   *prometheus.CounterVec
	backtestDuration *prometheus.HistogramVec
	backtestPoints   prometheus.Histogram
	priceFetches     *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.backtestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantlab_backtests_total",
			Help: "Total number of backtests",
		},
		[]string{"strategy", "status"},
	)
	r.backtestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quantlab_backtest_duration_seconds",
			Help:    "Backtest computation duration in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"strategy"},
	)
	r.backtestPoints = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quantlab_backtest_points",
			Help:    "Number of price points per backtest",
			Buckets: prometheus.ExponentialBuckets(16, 2, 10),
		},
	)
	r.priceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantlab_price_fetches_total",
			Help: "Total number of price history fetches",
		},
		[]string{"source", "status"},
	)
	r.cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quantlab_price_cache_lookups_total",
			Help: "Price cache lookups by result",
		},
		[]string{"result"},
	)

	reg.MustRegister(r.backtestsTotal)
	reg.MustRegister(r.backtestDuration)
	reg.MustRegister(r.backtestPoints)
	reg.MustRegister(r.priceFetches)
	reg.MustRegister(r.cacheLookups)

	return r
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	r.httpRequestsInFlight.Dec()
}

// RecordBacktest records a backtest completion.
func (r *Registry) RecordBacktest(strategy, status string, points int, duration float64) {
	r.backtestsTotal.WithLabelValues(strategy, status).Inc()
	r.backtestDuration.WithLabelValues(strategy).Observe(duration)
	if points > 0 {
		r.backtestPoints.Observe(float64(points))
	}
}

// RecordPriceFetch records a price history fetch against a source.
func (r *Registry) RecordPriceFetch(source string, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.priceFetches.WithLabelValues(source, status).Inc()
}

// RecordCacheLookup records a price cache hit or miss.
func (r *Registry) RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
