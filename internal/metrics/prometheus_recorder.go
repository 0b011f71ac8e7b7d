package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	registry        *prom.Registry
	stageDuration   *prom.HistogramVec
	buildDuration   prom.Histogram
	stageResults    *prom.CounterVec
	buildOutcome    *prom.CounterVec
	documentResults *prom.CounterVec
	corpusSize      prom.Gauge
	renderWorkers   prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics on the
// given registry, creating a fresh one when nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{registry: reg}
	pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
		Namespace: "pagepress",
		Name:      "stage_duration_seconds",
		Help:      "Duration of individual build stages",
		Buckets:   prom.DefBuckets,
	}, []string{"stage"})
	pr.buildDuration = prom.NewHistogram(prom.HistogramOpts{
		Namespace: "pagepress",
		Name:      "build_duration_seconds",
		Help:      "Total build duration",
		Buckets:   prom.DefBuckets,
	})
	pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "pagepress",
		Name:      "stage_results_total",
		Help:      "Stage result counts by outcome",
	}, []string{"stage", "result"})
	pr.buildOutcome = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "pagepress",
		Name:      "build_outcomes_total",
		Help:      "Build outcomes by final status",
	}, []string{"outcome"})
	pr.documentResults = prom.NewCounterVec(prom.CounterOpts{
		Namespace: "pagepress",
		Name:      "document_results_total",
		Help:      "Per-document processing outcomes",
	}, []string{"result"})
	pr.corpusSize = prom.NewGauge(prom.GaugeOpts{
		Namespace: "pagepress",
		Name:      "corpus_documents",
		Help:      "Documents in the corpus after filtering, for the last build",
	})
	pr.renderWorkers = prom.NewGauge(prom.GaugeOpts{
		Namespace: "pagepress",
		Name:      "render_workers",
		Help:      "Worker count used by the last document processing stage",
	})
	reg.MustRegister(pr.stageDuration, pr.buildDuration, pr.stageResults, pr.buildOutcome, pr.documentResults, pr.corpusSize, pr.renderWorkers)
	return pr
}

// Registry exposes the backing registry for export.
func (p *PrometheusRecorder) Registry() *prom.Registry {
	if p == nil {
		return nil
	}
	return p.registry
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) ObserveBuildDuration(d time.Duration) {
	if p == nil || p.buildDuration == nil {
		return
	}
	p.buildDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) IncBuildOutcome(outcome string) {
	if p == nil || p.buildOutcome == nil {
		return
	}
	p.buildOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncDocumentResult(result DocumentResultLabel) {
	if p == nil || p.documentResults == nil {
		return
	}
	p.documentResults.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) SetCorpusSize(n int) {
	if p == nil || p.corpusSize == nil {
		return
	}
	p.corpusSize.Set(float64(n))
}

func (p *PrometheusRecorder) SetRenderWorkers(n int) {
	if p == nil || p.renderWorkers == nil {
		return
	}
	p.renderWorkers.Set(float64(n))
}
