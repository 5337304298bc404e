package importer

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Import sources and outcomes used as metric labels.
const (
	SourceTranscript = "transcript"
	SourceOCR        = "ocr"

	outcomeOK    = "ok"
	outcomeEmpty = "empty"
	outcomeError = "error"
)

// Metrics counts imports by source and outcome.
type Metrics struct {
	imports  *prometheus.CounterVec
	messages *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics builds the importer collectors and registers them with reg when
// reg is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		imports: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "parrot",
				Name:      "imports_total",
				Help:      "Number of import requests by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		messages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "parrot",
				Name:      "messages_imported_total",
				Help:      "Number of messages merged into contacts",
			},
			[]string{"source"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "parrot",
				Name:      "import_duration_seconds",
				Help:      "Time spent parsing, merging and persisting an import",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"source"},
		),
	}
	if reg != nil {
		reg.MustRegister(m.imports, m.messages, m.duration)
	}
	return m
}

func (m *Metrics) observe(source, outcome string, imported int, seconds float64) {
	if m == nil {
		return
	}
	m.imports.WithLabelValues(source, outcome).Inc()
	if imported > 0 {
		m.messages.WithLabelValues(source).Add(float64(imported))
	}
	m.duration.WithLabelValues(source).Observe(seconds)
}
