package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PipelineMetrics records analysis pipeline telemetry. It satisfies the
// pipeline observer contract of the analysis orchestrator.
type PipelineMetrics struct {
	service string

	stageDuration    *prometheus.HistogramVec
	degradedTotal    *prometheus.CounterVec
	analysisTotal    *prometheus.CounterVec
	analysisDuration *prometheus.HistogramVec
}

func NewPipelineMetrics(service string, registry *prometheus.Registry) *PipelineMetrics {
	stageDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docinsight",
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Analysis pipeline stage duration in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
		},
		[]string{"service", "stage"},
	)
	degradedTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docinsight",
			Subsystem: "pipeline",
			Name:      "degraded_summaries_total",
			Help:      "Total analyses completed with the fallback summary.",
		},
		[]string{"service"},
	)
	analysisTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docinsight",
			Subsystem: "pipeline",
			Name:      "analyses_total",
			Help:      "Total analysis runs by outcome.",
		},
		[]string{"service", "outcome"},
	)
	analysisDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docinsight",
			Subsystem: "pipeline",
			Name:      "analysis_duration_seconds",
			Help:      "End-to-end analysis duration in seconds.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
		},
		[]string{"service"},
	)

	registry.MustRegister(stageDuration, degradedTotal, analysisTotal, analysisDuration)

	return &PipelineMetrics{
		service:          service,
		stageDuration:    stageDuration,
		degradedTotal:    degradedTotal,
		analysisTotal:    analysisTotal,
		analysisDuration: analysisDuration,
	}
}

func (m *PipelineMetrics) ObserveStage(stage string, duration time.Duration) {
	m.stageDuration.WithLabelValues(m.service, stage).Observe(duration.Seconds())
}

func (m *PipelineMetrics) ObserveDegradedSummary() {
	m.degradedTotal.WithLabelValues(m.service).Inc()
}

func (m *PipelineMetrics) FinishAnalysis(duration time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.analysisTotal.WithLabelValues(m.service, outcome).Inc()
	m.analysisDuration.WithLabelValues(m.service).Observe(duration.Seconds())
}
