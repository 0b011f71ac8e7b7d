// Package pipeline orchestrates the site build: a fixed sequence of stages
// sharing one BuildState, with per-stage timing, error classification, and a
// persisted report.
package pipeline

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"git.home.luguber.info/inful/pagepress/internal/config"
	"git.home.luguber.info/inful/pagepress/internal/document"
	"git.home.luguber.info/inful/pagepress/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepress/internal/frontmatter"
	"git.home.luguber.info/inful/pagepress/internal/history"
	"git.home.luguber.info/inful/pagepress/internal/logfields"
	"git.home.luguber.info/inful/pagepress/internal/markdown"
	"git.home.luguber.info/inful/pagepress/internal/metrics"
)

// Builder runs complete site builds for one configuration.
type Builder struct {
	cfg      *config.Config
	recorder metrics.Recorder
	store    history.Store
	renderer markdown.Renderer
	force    bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(b *Builder) { b.recorder = r }
}

// WithHistory sets the build history store. Without one, every build runs
// unconditionally and leaves no run records.
func WithHistory(s history.Store) Option {
	return func(b *Builder) { b.store = s }
}

// WithRenderer replaces the default markdown renderer.
func WithRenderer(r markdown.Renderer) Option {
	return func(b *Builder) { b.renderer = r }
}

// WithForce disables the unchanged-content early exit.
func WithForce(force bool) Option {
	return func(b *Builder) { b.force = force }
}

// New creates a Builder.
func New(cfg *config.Config, opts ...Option) *Builder {
	b := &Builder{cfg: cfg}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Run executes one build. The returned report is always non-nil and has been
// persisted to the output directory; the error is non-nil only for fatal or
// canceled builds. Degraded builds (excluded documents) return a nil error
// with outcome "warning".
func (b *Builder) Run(ctx context.Context) (*BuildReport, error) {
	report := NewBuildReport(uuid.NewString())

	renderer := b.renderer
	if renderer == nil {
		renderer = markdown.NewGoldmarkRenderer(markdown.GoldmarkOptions{})
	}
	bs := NewBuildState(b.cfg, report, renderer, b.recorder, b.store)
	bs.Force = b.force

	slog.Info("Build started", logfields.BuildID(report.BuildID))

	stages := NewStages().
		AddIf(b.cfg.Content.Git != nil, StageFetchContent, stageFetchContent).
		Add(StageDiscoverSources, stageDiscoverSources).
		Add(StageParseDocuments, stageParseDocuments).
		Add(StageComputeKey, stageComputeKey).
		Add(StageBuildCorpus, stageBuildCorpus).
		Add(StageRenderDocuments, stageRenderDocuments).
		Add(StageAssemblePages, stageAssemblePages).
		Add(StageWriteSite, stageWriteSite).
		Build()

	runErr := RunStages(ctx, bs, stages)

	if report.End.IsZero() {
		report.DeriveOutcome()
		report.Finish()
	}

	duration := report.End.Sub(report.Start)
	bs.Recorder.ObserveBuildDuration(duration)
	bs.Recorder.IncBuildOutcome(string(report.Outcome))

	if err := report.Persist(b.cfg.Output.Dir); err != nil {
		slog.Warn("Failed to persist build report", logfields.Error(err))
	}
	b.recordRun(ctx, report)
	b.exportMetrics(bs)

	slog.Info("Build finished",
		logfields.BuildID(report.BuildID),
		logfields.Outcome(string(report.Outcome)),
		logfields.DurationMS(float64(duration.Milliseconds())),
		slog.String("summary", report.Summary()))

	if runErr != nil {
		return report, terminalError(runErr)
	}
	return report, nil
}

// recordRun writes the run record best-effort. The record survives build
// cancellation, hence the detached context.
func (b *Builder) recordRun(ctx context.Context, report *BuildReport) {
	if b.store == nil {
		return
	}
	run := history.Run{
		ID:                report.BuildID,
		StartedAt:         report.Start,
		FinishedAt:        report.End,
		Outcome:           string(report.Outcome),
		BuildKey:          report.BuildKey,
		DocumentsTotal:    report.SourceFiles,
		DocumentsRendered: report.DocumentsIndexed + report.DocumentsStandalone,
		DocumentsExcluded: report.DocumentsExcluded,
		DocumentsFiltered: report.DocumentsFiltered,
		IssueCount:        len(report.Issues),
	}
	if err := b.store.RecordRun(context.WithoutCancel(ctx), run); err != nil {
		report.AddIssue(IssueHistoryFailure, "", SeverityWarning, "",
			"record build run: "+err.Error(), nil)
		slog.Warn("Failed to record build run", logfields.Error(err))
	}
}

// exportMetrics writes the node_exporter textfile next to the site output
// when a Prometheus recorder is attached.
func (b *Builder) exportMetrics(bs *BuildState) {
	prom, ok := bs.Recorder.(*metrics.PrometheusRecorder)
	if !ok {
		return
	}
	path := filepath.Join(b.cfg.Output.Dir, "pagepress-metrics.prom")
	if err := metrics.WriteTextfile(prom.Registry(), path); err != nil {
		slog.Warn("Failed to write metrics textfile", logfields.Path(path), logfields.Error(err))
	}
}

// terminalError wraps the aborting stage error in a classified error so the
// CLI can derive a meaningful exit code from its category.
func terminalError(err error) error {
	var se *StageError
	if !stdErrors.As(err, &se) {
		return errors.WrapError(err, errors.CategoryInternal, "build failed").Build()
	}
	if se.Kind == StageErrorCanceled {
		return err
	}

	switch se.Stage {
	case StageFetchContent:
		return errors.WrapError(se, errors.CategoryGit, "content fetch failed").Build()
	case StageDiscoverSources:
		return errors.WrapError(se, errors.CategoryFileSystem, "source discovery failed").Build()
	case StageParseDocuments:
		var fieldErr *document.FieldError
		if stdErrors.As(se.Err, &fieldErr) {
			return errors.WrapError(se, errors.CategorySchema, "document validation failed").Build()
		}
		if stdErrors.Is(se.Err, frontmatter.ErrMalformedDocument) {
			return errors.WrapError(se, errors.CategoryParse, "document parsing failed").Build()
		}
		return errors.WrapError(se, errors.CategoryParse, "document processing failed").Build()
	case StageBuildCorpus:
		return errors.WrapError(se, errors.CategoryCorpus, "corpus construction failed").Build()
	case StageRenderDocuments:
		return errors.WrapError(se, errors.CategoryRender, "document rendering failed").Build()
	case StageWriteSite:
		return errors.WrapError(se, errors.CategoryFileSystem, "site output failed").Build()
	default:
		return errors.WrapError(se, errors.CategoryInternal, "build failed").Build()
	}
}
