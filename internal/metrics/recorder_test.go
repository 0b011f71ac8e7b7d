package metrics

import (
	"testing"
	"time"
)

type testRecorder struct {
	stageDurations  map[string]int
	stageResults    map[string]map[ResultLabel]int
	buildDurations  int
	buildOutcomes   map[string]int
	documentResults map[DocumentResultLabel]int
	corpusSize      int
	renderWorkers   int
}

func newTestRecorder() *testRecorder {
	return &testRecorder{
		stageDurations:  map[string]int{},
		stageResults:    map[string]map[ResultLabel]int{},
		buildOutcomes:   map[string]int{},
		documentResults: map[DocumentResultLabel]int{},
	}
}

func (t *testRecorder) ObserveStageDuration(stage string, _ time.Duration) {
	t.stageDurations[stage]++
}
func (t *testRecorder) ObserveBuildDuration(_ time.Duration) { t.buildDurations++ }
func (t *testRecorder) IncStageResult(stage string, result ResultLabel) {
	m, ok := t.stageResults[stage]
	if !ok {
		m = map[ResultLabel]int{}
		t.stageResults[stage] = m
	}
	m[result]++
}
func (t *testRecorder) IncBuildOutcome(outcome string)               { t.buildOutcomes[outcome]++ }
func (t *testRecorder) IncDocumentResult(result DocumentResultLabel) { t.documentResults[result]++ }
func (t *testRecorder) SetCorpusSize(n int)                          { t.corpusSize = n }
func (t *testRecorder) SetRenderWorkers(n int)                       { t.renderWorkers = n }

func TestRecorderInterfaceCompliance(t *testing.T) {
	var _ Recorder = NoopRecorder{}
	var _ Recorder = newTestRecorder()
	var _ Recorder = (*PrometheusRecorder)(nil)
}

func TestNoopRecorder_SafeToCall(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("parse", time.Second)
	r.ObserveBuildDuration(time.Second)
	r.IncStageResult("parse", ResultSuccess)
	r.IncBuildOutcome("success")
	r.IncDocumentResult(DocumentRendered)
	r.SetCorpusSize(3)
	r.SetRenderWorkers(2)
}

func TestTestRecorder_CountsCalls(t *testing.T) {
	r := newTestRecorder()
	r.IncStageResult("parse", ResultSuccess)
	r.IncStageResult("parse", ResultSuccess)
	r.IncStageResult("parse", ResultWarning)
	r.IncDocumentResult(DocumentExcluded)
	r.SetCorpusSize(7)

	if r.stageResults["parse"][ResultSuccess] != 2 {
		t.Errorf("expected 2 successes, got %d", r.stageResults["parse"][ResultSuccess])
	}
	if r.stageResults["parse"][ResultWarning] != 1 {
		t.Errorf("expected 1 warning, got %d", r.stageResults["parse"][ResultWarning])
	}
	if r.documentResults[DocumentExcluded] != 1 {
		t.Errorf("expected 1 excluded, got %d", r.documentResults[DocumentExcluded])
	}
	if r.corpusSize != 7 {
		t.Errorf("expected corpus size 7, got %d", r.corpusSize)
	}
}
