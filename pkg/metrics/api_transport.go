package metrics

import (
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics counts and times requests sent to the ENS API
type APIMetrics struct {
	RequestsTotal          *prometheus.CounterVec   // labels: method, route, code
	RequestDurationSeconds *prometheus.HistogramVec // labels: method, route
}

// NewAPIMetrics creates API request metrics and registers them with reg
func NewAPIMetrics(reg prometheus.Registerer) (*APIMetrics, error) {
	am := &APIMetrics{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ens_api_requests_total",
				Help: "Total number of requests sent to the ENS API",
			},
			[]string{"method", "route", "code"},
		),
		RequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ens_api_request_duration_seconds",
				Help:    "Duration of ENS API requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}

	if err := reg.Register(am.RequestsTotal); err != nil {
		return nil, err
	}
	if err := reg.Register(am.RequestDurationSeconds); err != nil {
		return nil, err
	}
	return am, nil
}

// instrumentedTransport wraps an http.RoundTripper to collect metrics on ENS API calls
type instrumentedTransport struct {
	base    http.RoundTripper
	metrics *APIMetrics
}

// NewInstrumentedTransport creates a transport recording every request in m.
// It should be installed on the HTTP client handed to the ENS client.
func NewInstrumentedTransport(base http.RoundTripper, m *APIMetrics) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &instrumentedTransport{base: base, metrics: m}
}

// RoundTrip implements http.RoundTripper
func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	duration := time.Since(start)

	route := normalizeRoute(req.URL.Path)

	// 0 marks requests that never got a response
	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}

	t.metrics.RequestsTotal.WithLabelValues(req.Method, route, strconv.Itoa(statusCode)).Inc()
	t.metrics.RequestDurationSeconds.WithLabelValues(req.Method, route).Observe(duration.Seconds())

	return resp, err
}

var idSegment = regexp.MustCompile(`/\d+(/|$)`)

// normalizeRoute replaces numeric path segments with :id to keep label
// cardinality bounded
func normalizeRoute(path string) string {
	// Applied twice because adjacent ids share the separating slash
	normalized := idSegment.ReplaceAllString(path, "/:id$1")
	return idSegment.ReplaceAllString(normalized, "/:id$1")
}
