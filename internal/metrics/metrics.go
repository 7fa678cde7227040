package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes map interaction and HTTP metrics for Prometheus. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	registry            *prometheus.Registry
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	clicks              *prometheus.CounterVec
	viewChanges         *prometheus.CounterVec
	layerFeatures       *prometheus.GaugeVec
}

// New creates a fresh registry with every metric registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parcelmap",
		Name:      "http_requests_total",
		Help:      "Count of HTTP requests served",
	}, []string{"method", "path", "status"})

	httpRequestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "parcelmap",
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests served",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	clicks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parcelmap",
		Name:      "map_clicks_total",
		Help:      "Map clicks by hit-test result",
	}, []string{"result"})

	viewChanges := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "parcelmap",
		Name:      "view_changes_total",
		Help:      "View changes by operation",
	}, []string{"op"})

	layerFeatures := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "parcelmap",
		Name:      "layer_features",
		Help:      "Features loaded per vector layer",
	}, []string{"layer"})

	registry.MustRegister(
		httpRequests,
		httpRequestDuration,
		clicks,
		viewChanges,
		layerFeatures,
	)

	return &Metrics{
		registry:            registry,
		httpRequests:        httpRequests,
		httpRequestDuration: httpRequestDuration,
		clicks:              clicks,
		viewChanges:         viewChanges,
		layerFeatures:       layerFeatures,
	}
}

// ObserveHTTPRequest records a single HTTP request/response cycle.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labels := prometheus.Labels{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(status),
	}
	m.httpRequests.With(labels).Inc()
	m.httpRequestDuration.With(labels).Observe(duration.Seconds())
}

// ObserveClick counts a map click as a hit or a miss.
func (m *Metrics) ObserveClick(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.clicks.WithLabelValues(result).Inc()
}

// ObserveViewChange counts a view change such as home or zoom-in.
func (m *Metrics) ObserveViewChange(op string) {
	if m == nil {
		return
	}
	m.viewChanges.WithLabelValues(op).Inc()
}

// SetLayerFeatures records how many features a layer holds.
func (m *Metrics) SetLayerFeatures(layer string, n int) {
	if m == nil {
		return
	}
	m.layerFeatures.WithLabelValues(layer).Set(float64(n))
}

// Handler exposes the Prometheus registry over HTTP.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("metrics unavailable"))
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
