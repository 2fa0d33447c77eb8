package operations

import (
	"github.com/prometheus/client_golang/prometheus"

	"tidycli/internal/dataprocessing"
)

const metricsNamespace = "tidycsv"

// Metrics holds the counters of a batch run. Each Runner owns a private
// registry so runs in the same process never share state.
type Metrics struct {
	registry *prometheus.Registry

	runs          *prometheus.CounterVec
	rowsWritten   prometheus.Counter
	blankSkipped  prometheus.Counter
	parseErrors   *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	lastSuccess   prometheus.Gauge
}

// NewMetrics creates and registers the run metrics
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "runs_total",
			Help:      "Reshape runs by outcome.",
		}, []string{"status"}),
		rowsWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "rows_written_total",
			Help:      "Tidy rows written to the output table.",
		}),
		blankSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "blank_cells_skipped_total",
			Help:      "Blank wide cells that produced no output row.",
		}),
		parseErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "parse_errors_total",
			Help:      "Cells dropped with a parse error, by reason.",
		}, []string{"reason"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each run stage.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"stage"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful run.",
		}),
	}

	m.registry.MustRegister(
		m.runs,
		m.rowsWritten,
		m.blankSkipped,
		m.parseErrors,
		m.stageDuration,
		m.lastSuccess,
	)
	return m
}

// ObserveStage records how long a stage took
func (m *Metrics) ObserveStage(step *StepState) {
	m.stageDuration.WithLabelValues(step.ID).Observe(step.Duration().Seconds())
}

// ObserveResult records the counts of a finished reshape
func (m *Metrics) ObserveResult(result *dataprocessing.ReshapeResult) {
	if result == nil {
		return
	}
	m.rowsWritten.Add(float64(len(result.Rows)))
	m.blankSkipped.Add(float64(result.SkippedBlank))
	for _, d := range result.Diagnostics {
		m.parseErrors.WithLabelValues(string(d.Reason)).Inc()
	}
}

// ObserveRun records the outcome of a run. finishedAt is Unix seconds.
func (m *Metrics) ObserveRun(err error, finishedAt float64) {
	if err != nil {
		m.runs.WithLabelValues("failed").Inc()
		return
	}
	m.runs.WithLabelValues("succeeded").Inc()
	m.lastSuccess.Set(finishedAt)
}

// WriteTextfile writes the registry in the Prometheus text format for the
// node exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
