package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ExporterMetrics holds Prometheus metrics for exporter internal monitoring
type ExporterMetrics struct {
	// Scrape duration histogram (in seconds)
	ScrapeDurationSeconds prometheus.Histogram

	// Scrape error counter
	ScrapeErrorsTotal prometheus.Counter

	// Build info gauge
	BuildInfo *prometheus.GaugeVec

	// Authentication status gauge (1 = valid, 0 = invalid)
	AuthenticationValid prometheus.Gauge

	// Authentication error counter
	AuthenticationErrorsTotal prometheus.Counter

	// Last successful authentication timestamp (unix seconds)
	LastAuthenticationSuccessUnix prometheus.Gauge

	now func() time.Time
}

// NewExporterMetricsWith creates exporter health metrics and registers them with reg
func NewExporterMetricsWith(reg prometheus.Registerer, version string) (*ExporterMetrics, error) {
	em := &ExporterMetrics{
		ScrapeDurationSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ens_exporter_scrape_duration_seconds",
			Help:    "Time taken to collect metrics from the ENS API in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 6), // 0.1, 0.2, 0.4, 0.8, 1.6, 3.2
		}),

		ScrapeErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ens_exporter_scrape_errors_total",
			Help: "Total number of errors while collecting metrics from the ENS API",
		}),

		BuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "ens_exporter_build_info",
			Help: "Build information for the exporter (value is always 1)",
		}, []string{"version"}),

		AuthenticationValid: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ens_exporter_authentication_valid",
			Help: "Set to 1 if the last ENS session token exchange succeeded, 0 otherwise",
		}),

		AuthenticationErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ens_exporter_authentication_errors_total",
			Help: "Total number of failed ENS session token exchanges",
		}),

		LastAuthenticationSuccessUnix: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ens_exporter_last_authentication_success_unix",
			Help: "Unix timestamp of the last scrape that held a valid session token",
		}),

		now: time.Now,
	}

	if err := em.RegisterWith(reg); err != nil {
		return nil, err
	}

	em.BuildInfo.WithLabelValues(version).Set(1)

	// 0 until the first scrape authenticates
	em.AuthenticationValid.Set(0)

	return em, nil
}

// RegisterWith registers exporter metrics with reg
func (em *ExporterMetrics) RegisterWith(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		em.ScrapeDurationSeconds,
		em.ScrapeErrorsTotal,
		em.BuildInfo,
		em.AuthenticationValid,
		em.AuthenticationErrorsTotal,
		em.LastAuthenticationSuccessUnix,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// RecordScrapeDuration records the duration of a metrics collection attempt
func (em *ExporterMetrics) RecordScrapeDuration(duration float64) {
	em.ScrapeDurationSeconds.Observe(duration)
}

// IncrementScrapeErrors increments the error counter
func (em *ExporterMetrics) IncrementScrapeErrors() {
	em.ScrapeErrorsTotal.Inc()
}

// SetAuthenticationValid sets the authentication status gauge
func (em *ExporterMetrics) SetAuthenticationValid(valid bool) {
	if valid {
		em.AuthenticationValid.Set(1)
	} else {
		em.AuthenticationValid.Set(0)
	}
}

// IncrementAuthenticationErrors increments the authentication error counter
func (em *ExporterMetrics) IncrementAuthenticationErrors() {
	em.AuthenticationErrorsTotal.Inc()
}

// RecordAuthenticationSuccess records a successful authentication by setting the timestamp
func (em *ExporterMetrics) RecordAuthenticationSuccess() {
	em.LastAuthenticationSuccessUnix.Set(float64(em.now().Unix()))
}
