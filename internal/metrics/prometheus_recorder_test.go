package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("parse_documents", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("parse_documents", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.IncDocumentResult(DocumentRendered)
	pr.SetCorpusSize(12)
	pr.SetRenderWorkers(4)

	// Basic scrape to ensure metrics encode without panic
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestPrometheusRecorder_NilReceiverSafe(t *testing.T) {
	var pr *PrometheusRecorder
	pr.ObserveStageDuration("parse_documents", time.Second)
	pr.IncBuildOutcome("success")
	pr.SetCorpusSize(1)
	if pr.Registry() != nil {
		t.Error("expected nil registry from nil recorder")
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncBuildOutcome("success")
	pr.SetCorpusSize(3)

	path := filepath.Join(t.TempDir(), "metrics", "pagepress.prom")
	if err := WriteTextfile(reg, path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "pagepress_build_outcomes_total") {
		t.Errorf("expected build outcome metric in output, got:\n%s", content)
	}
	if !strings.Contains(content, "pagepress_corpus_documents 3") {
		t.Errorf("expected corpus gauge in output, got:\n%s", content)
	}
}

func TestWriteTextfile_NilRegistry(t *testing.T) {
	if err := WriteTextfile(nil, filepath.Join(t.TempDir(), "m.prom")); err == nil {
		t.Fatal("expected error for nil registry")
	}
}
