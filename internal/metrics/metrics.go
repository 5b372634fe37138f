package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Counter: lookups answered from the dialogue cache.
	CacheHitsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dialogue_cache_hits_total",
			Help: "Total number of dialogue cache hits.",
		},
	)

	// Counter: synchronous substitution outcomes (cached, pending, fallback, passthrough).
	SubstitutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_substitutions_total",
			Help: "Dialogue substitution requests by synchronous outcome.",
		},
		[]string{"outcome"},
	)

	// Counter: background generations by result (ok or error kind, prefixed late_ past the wait budget).
	GenerationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_generations_total",
			Help: "Background dialogue generations by result.",
		},
		[]string{"result"},
	)

	GenerationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dialogue_generation_seconds",
			Help:    "Wall time of background dialogue generations in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 6, 8, 12, 20},
		},
	)

	InFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dialogue_inflight",
			Help: "Fingerprints currently being generated.",
		},
	)

	// Histogram: bridge HTTP latency in seconds.
	GatewayLatencySeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gateway_latency_seconds",
			Help:    "HTTP request latency for the dialogue bridge in seconds.",
			Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.5},
		},
		[]string{"path", "method", "status_code"},
	)
)

// Register is called once in main() to register metrics.
func Register() {
	prometheus.MustRegister(
		CacheHitsTotal,
		SubstitutionsTotal,
		GenerationsTotal,
		GenerationSeconds,
		InFlight,
		GatewayLatencySeconds,
	)
}

// Handler exposes the /metrics endpoint for Prometheus to scrape.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware measures bridge latency for each HTTP request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rec := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(rec, r)

		GatewayLatencySeconds.
			WithLabelValues(r.URL.Path, r.Method, strconv.Itoa(rec.statusCode)).
			Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}
