package metrics

import "time"

// ResultLabel enumerates stage result categories for counters.
type ResultLabel string

const (
	ResultSuccess  ResultLabel = "success"
	ResultWarning  ResultLabel = "warning"
	ResultFatal    ResultLabel = "fatal"
	ResultCanceled ResultLabel = "canceled"
)

// DocumentResultLabel enumerates per-document processing outcomes.
type DocumentResultLabel string

const (
	DocumentRendered DocumentResultLabel = "rendered"
	DocumentExcluded DocumentResultLabel = "excluded" // parse, schema, or render failure in degraded mode
	DocumentFiltered DocumentResultLabel = "filtered" // draft dropped by policy
)

// Recorder defines observability hooks for build, stage and document metrics.
// Implementations may forward to Prometheus, OpenTelemetry, etc. All methods
// must be safe on the NoopRecorder so injection stays optional.
type Recorder interface {
	ObserveStageDuration(stage string, d time.Duration)
	ObserveBuildDuration(d time.Duration)
	IncStageResult(stage string, result ResultLabel)
	IncBuildOutcome(outcome string) // outcome: success|warning|failed|canceled
	IncDocumentResult(result DocumentResultLabel)
	SetCorpusSize(n int)
	SetRenderWorkers(n int)
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveStageDuration(string, time.Duration) {}
func (NoopRecorder) ObserveBuildDuration(time.Duration)         {}
func (NoopRecorder) IncStageResult(string, ResultLabel)         {}
func (NoopRecorder) IncBuildOutcome(string)                     {}
func (NoopRecorder) IncDocumentResult(DocumentResultLabel)      {}
func (NoopRecorder) SetCorpusSize(int)                          {}
func (NoopRecorder) SetRenderWorkers(int)                       {}
