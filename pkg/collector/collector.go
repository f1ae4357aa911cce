// Package collector implements the Prometheus collector for ENS metrics.
//
// It provides:
//   - Prometheus collector interface implementation
//   - ENS page and supporter schema metrics fetching
//   - Graceful error handling with partial metric collection
//   - Exporter health metrics reporting
//
// The collector fetches metrics on-demand when Prometheus scrapes the /metrics
// endpoint. It continues collecting metrics even if some API calls fail, ensuring
// partial metrics are always available for monitoring and alerting.
//
// The ENS client is not safe for concurrent use, so scrapes are serialized.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/andreweacott/ens-prometheus-exporter/pkg/auth"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/ens"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/logger"
	"github.com/andreweacott/ens-prometheus-exporter/pkg/metrics"
)

// ENSCollector implements the prometheus.Collector interface
// It fetches ENS metrics on-demand when Prometheus scrapes the /metrics endpoint
type ENSCollector struct {
	api               ENSAPI
	metricDescriptors *metrics.MetricDescriptors
	scrapeTimeout     time.Duration
	pageTypes         []ens.PageType
	log               *logger.Logger
	exporterMetrics   *metrics.ExporterMetrics // Optional: for internal health monitoring

	mu sync.Mutex
}

// NewENSCollector creates a new ENS metrics collector. The metric descriptors
// must not be registered elsewhere; the collector reports them itself.
func NewENSCollector(
	api ENSAPI,
	metricDescriptors *metrics.MetricDescriptors,
	scrapeTimeout time.Duration,
	pageTypes []ens.PageType,
	log *logger.Logger,
) *ENSCollector {
	// Use noop logger if none provided
	if log == nil {
		log = logger.Discard()
	}

	return &ENSCollector{
		api:               api,
		metricDescriptors: metricDescriptors,
		scrapeTimeout:     scrapeTimeout,
		pageTypes:         pageTypes,
		log:               log,
	}
}

// WithExporterMetrics adds exporter health metrics to the collector.
// They are registered on their own and only updated here.
func (ec *ENSCollector) WithExporterMetrics(em *metrics.ExporterMetrics) *ENSCollector {
	ec.exporterMetrics = em
	return ec
}

// Describe sends the super-set of all possible descriptors of metrics collected by this collector
func (ec *ENSCollector) Describe(ch chan<- *prometheus.Desc) {
	ec.metricDescriptors.Describe(ch)
}

// Collect is called by the Prometheus client when scraping /metrics
// It fetches current metrics from the ENS API and sends them to the channel
func (ec *ENSCollector) Collect(ch chan<- prometheus.Metric) {
	ec.mu.Lock()
	defer ec.mu.Unlock()

	// Create context with timeout to prevent hanging requests
	ctx, cancel := context.WithTimeout(context.Background(), ec.scrapeTimeout)
	defer cancel()

	startTime := time.Now()

	if err := ec.fetchAndCollectMetrics(ctx); err != nil {
		ec.log.WithError(err).Warn("Failed to collect ENS metrics")
		if ec.exporterMetrics != nil {
			ec.exporterMetrics.IncrementScrapeErrors()
		}
		// Don't return - partial metrics are still reported
	}

	if ec.exporterMetrics != nil {
		ec.exporterMetrics.RecordScrapeDuration(time.Since(startTime).Seconds())
	}

	ec.metricDescriptors.Collect(ch)
}

// fetchAndCollectMetrics fetches metrics from the ENS API and updates metric values.
// It keeps going when single calls fail and returns their errors joined.
// An authentication failure stops the scrape, since every later call would fail too.
func (ec *ENSCollector) fetchAndCollectMetrics(ctx context.Context) error {
	ec.metricDescriptors.Reset()

	var collectionErrors []error
	authenticated := false

	for _, pageType := range ec.pageTypes {
		pages, err := ec.api.GetPages(ctx, pageType, nil)
		if err != nil {
			if ec.isAuthenticationError(err) {
				return fmt.Errorf("unable to authenticate with ENS: %w", err)
			}
			ec.log.WithPageType(string(pageType)).WithField(logger.FieldError, err.Error()).Warn("Failed to collect page metrics")
			collectionErrors = append(collectionErrors, err)
			continue
		}
		authenticated = ec.markAuthenticated(authenticated)
		ec.recordPages(pages)
	}

	if err := ec.collectSupporterFieldMetrics(ctx); err != nil {
		if ec.isAuthenticationError(err) {
			return fmt.Errorf("unable to authenticate with ENS: %w", err)
		}
		ec.log.WithError(err).Warn("Failed to collect supporter field metrics")
		collectionErrors = append(collectionErrors, err)
	} else {
		authenticated = ec.markAuthenticated(authenticated)
	}

	if err := ec.collectSupporterQuestionMetrics(ctx); err != nil {
		if ec.isAuthenticationError(err) {
			return fmt.Errorf("unable to authenticate with ENS: %w", err)
		}
		ec.log.WithError(err).Warn("Failed to collect supporter question metrics")
		collectionErrors = append(collectionErrors, err)
	} else {
		ec.markAuthenticated(authenticated)
	}

	if len(collectionErrors) > 0 {
		ec.log.Warn("Scrape completed with errors",
			"page_types", ec.pageTypeLabels(),
			"error_count", len(collectionErrors))
	}

	return errors.Join(collectionErrors...)
}

// isAuthenticationError reports an authentication failure and updates the
// authentication health metrics
func (ec *ENSCollector) isAuthenticationError(err error) bool {
	var authErr *auth.AuthenticationError
	if !errors.As(err, &authErr) {
		return false
	}
	if ec.exporterMetrics != nil {
		ec.exporterMetrics.IncrementAuthenticationErrors()
		ec.exporterMetrics.SetAuthenticationValid(false)
	}
	return true
}

// markAuthenticated records a successful authenticated call once per scrape
func (ec *ENSCollector) markAuthenticated(already bool) bool {
	if !already && ec.exporterMetrics != nil {
		ec.exporterMetrics.SetAuthenticationValid(true)
		ec.exporterMetrics.RecordAuthenticationSuccess()
	}
	return true
}

// recordPages records page counts and live page modification times
func (ec *ENSCollector) recordPages(pages []ens.Page) {
	summary, validationErrors := SummarizePages(pages)
	for _, err := range validationErrors {
		ec.log.WithError(err).Warn("Page validation failed, skipping timestamp")
	}

	for key, count := range summary.Counts {
		ec.metricDescriptors.PagesTotal.WithLabelValues(string(key.Type), string(key.Status)).Set(float64(count))
	}
	for _, page := range summary.Modified {
		ec.metricDescriptors.PageModifiedTimestamp.
			WithLabelValues(page.ID, string(page.Type), page.Name).
			Set(page.ModifiedAt)
	}
}

// collectSupporterFieldMetrics counts tagged and untagged supporter fields
func (ec *ENSCollector) collectSupporterFieldMetrics(ctx context.Context) error {
	fields, err := ec.api.GetSupporterFields(ctx)
	if err != nil {
		return err
	}

	tagged, untagged := SummarizeSupporterFields(fields)
	ec.metricDescriptors.SupporterFields.WithLabelValues(metrics.BoolLabel(true)).Set(float64(tagged))
	ec.metricDescriptors.SupporterFields.WithLabelValues(metrics.BoolLabel(false)).Set(float64(untagged))
	return nil
}

// collectSupporterQuestionMetrics counts supporter questions per type
func (ec *ENSCollector) collectSupporterQuestionMetrics(ctx context.Context) error {
	questions, err := ec.api.GetSupporterQuestions(ctx)
	if err != nil {
		return err
	}

	for questionType, count := range SummarizeSupporterQuestions(questions) {
		ec.metricDescriptors.SupporterQuestions.WithLabelValues(string(questionType)).Set(float64(count))
	}
	return nil
}

// pageTypeLabels returns the configured page types as strings, for logging
func (ec *ENSCollector) pageTypeLabels() []string {
	labels := make([]string, len(ec.pageTypes))
	for i, t := range ec.pageTypes {
		labels[i] = string(t)
	}
	return labels
}
