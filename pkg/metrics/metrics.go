package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricDescriptors holds all Prometheus metric descriptors for ENS
type MetricDescriptors struct {
	// Page metrics
	PagesTotal            *prometheus.GaugeVec // labels: type, status
	PageModifiedTimestamp *prometheus.GaugeVec // labels: page_id, type, name

	// Supporter schema metrics
	SupporterFields    *prometheus.GaugeVec // labels: tagged
	SupporterQuestions *prometheus.GaugeVec // labels: type
}

// NewMetricDescriptorsUnregistered creates all ENS metrics without registering them
func NewMetricDescriptorsUnregistered() *MetricDescriptors {
	return &MetricDescriptors{
		PagesTotal: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ens_pages",
				Help: "Number of ENS pages by type and campaign status",
			},
			[]string{"type", "status"},
		),

		PageModifiedTimestamp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ens_page_modified_timestamp_seconds",
				Help: "Unix timestamp of the last modification of a live page",
			},
			[]string{"page_id", "type", "name"},
		),

		SupporterFields: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ens_supporter_fields",
				Help: "Number of supporter fields, split by whether they are tagged",
			},
			[]string{"tagged"},
		),

		SupporterQuestions: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ens_supporter_questions",
				Help: "Number of supporter questions by question type",
			},
			[]string{"type"},
		),
	}
}

// RegisterWith registers all metrics with reg
func (md *MetricDescriptors) RegisterWith(reg prometheus.Registerer) error {
	for _, c := range md.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Reset clears all metric values. The collector calls it before each scrape
// so pages that disappeared stop being reported.
func (md *MetricDescriptors) Reset() {
	md.PagesTotal.Reset()
	md.PageModifiedTimestamp.Reset()
	md.SupporterFields.Reset()
	md.SupporterQuestions.Reset()
}

// Describe sends the descriptors of all metrics
func (md *MetricDescriptors) Describe(ch chan<- *prometheus.Desc) {
	for _, c := range md.collectors() {
		c.Describe(ch)
	}
}

// Collect sends the current value of all metrics
func (md *MetricDescriptors) Collect(ch chan<- prometheus.Metric) {
	for _, c := range md.collectors() {
		c.Collect(ch)
	}
}

func (md *MetricDescriptors) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		md.PagesTotal,
		md.PageModifiedTimestamp,
		md.SupporterFields,
		md.SupporterQuestions,
	}
}

// BoolLabel renders a boolean as a label value
func BoolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
