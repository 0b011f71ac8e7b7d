package pipeline

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"git.home.luguber.info/inful/pagepress/internal/metrics"
	"git.home.luguber.info/inful/pagepress/internal/version"
)

// NewBuildReport constructs a new BuildReport.
func NewBuildReport(buildID string) *BuildReport {
	return &BuildReport{
		SchemaVersion:    1,
		BuildID:          buildID,
		Start:            time.Now(),
		StageDurations:   make(map[string]time.Duration),
		StageErrorKinds:  make(map[StageName]StageErrorKind),
		StageCounts:      make(map[StageName]StageCount),
		PagepressVersion: version.Version,
	}
}

// BuildOutcome is the typed enumeration of final build result states.
type BuildOutcome string

const (
	OutcomeSuccess  BuildOutcome = "success"
	OutcomeWarning  BuildOutcome = "warning"
	OutcomeFailed   BuildOutcome = "failed"
	OutcomeCanceled BuildOutcome = "canceled"
)

// BuildReport captures metrics and issues for a single site build run.
type BuildReport struct {
	SchemaVersion   int
	BuildID         string
	Start           time.Time
	End             time.Time
	Errors          []error // fatal errors causing build abortion (at most one today)
	Warnings        []error // non-fatal issues (excluded documents, history store problems)
	StageDurations  map[string]time.Duration
	StageErrorKinds map[StageName]StageErrorKind
	StageCounts     map[StageName]StageCount

	SourceFiles         int // markdown files discovered
	DocumentsIndexed    int // documents in the ordered corpus
	DocumentsStandalone int // valid documents rendered outside the corpus (undated)
	DocumentsExcluded   int // documents dropped for parse or schema errors
	DocumentsFiltered   int // drafts and other policy-filtered documents
	PagesWritten        int
	SearchEntries       int

	Outcome BuildOutcome
	Issues  []ReportIssue
	// SkipReason indicates why the pipeline was short-circuited (e.g. "no_changes"). Empty if full pipeline ran.
	SkipReason string
	// BuildKey is the content+config fingerprint used for skip decisions.
	BuildKey         string
	PagepressVersion string
}

// ReportIssueCode enumerates machine-parseable issue identifiers.
// These codes are stable contract and should only be appended (no reuse on removal).
type ReportIssueCode string

const (
	IssueFetchFailure      ReportIssueCode = "FETCH_FAILURE"
	IssueDiscoveryFailure  ReportIssueCode = "DISCOVERY_FAILURE"
	IssueReadFailure       ReportIssueCode = "SOURCE_READ_FAILURE"
	IssueMalformedDocument ReportIssueCode = "MALFORMED_DOCUMENT"
	IssueSchemaViolation   ReportIssueCode = "SCHEMA_VIOLATION"
	IssueRenderFailure     ReportIssueCode = "RENDER_FAILURE"
	IssueDuplicateIdentity ReportIssueCode = "DUPLICATE_IDENTITY"
	IssueWriteFailure      ReportIssueCode = "WRITE_FAILURE"
	IssueHistoryFailure    ReportIssueCode = "HISTORY_FAILURE"
	IssueCanceled          ReportIssueCode = "BUILD_CANCELED"
	IssueGenericStageError ReportIssueCode = "GENERIC_STAGE_ERROR"
)

// IssueSeverity represents normalized severity levels.
type IssueSeverity string

const (
	SeverityError   IssueSeverity = "error"
	SeverityWarning IssueSeverity = "warning"
)

// ReportIssue is a structured taxonomy entry describing a discrete problem encountered.
type ReportIssue struct {
	Code     ReportIssueCode `json:"code"`
	Stage    StageName       `json:"stage"`
	Severity IssueSeverity   `json:"severity"`
	Source   string          `json:"source,omitempty"` // document path when the issue is document-scoped
	Message  string          `json:"message"`
}

// StageCount aggregates counts of outcomes for a stage.
type StageCount struct {
	Success  int
	Warning  int
	Fatal    int
	Canceled int
}

// AddIssue appends a structured issue and mirrors severity into Errors/Warnings slices.
func (r *BuildReport) AddIssue(code ReportIssueCode, stage StageName, severity IssueSeverity, source, msg string, err error) {
	issue := ReportIssue{Code: code, Stage: stage, Severity: severity, Source: source, Message: msg}
	r.Issues = append(r.Issues, issue)
	if err != nil {
		switch severity {
		case SeverityError:
			r.Errors = append(r.Errors, err)
		case SeverityWarning:
			r.Warnings = append(r.Warnings, err)
		}
	}
}

// Finish sets the end time of the report.
func (r *BuildReport) Finish() { r.End = time.Now() }

// RecordStageResult updates counters and emits metrics (if recorder non-nil).
func (r *BuildReport) RecordStageResult(stage StageName, res StageResult, recorder metrics.Recorder) {
	if r.StageCounts == nil {
		r.StageCounts = make(map[StageName]StageCount)
	}
	sc := r.StageCounts[stage]
	switch res {
	case StageResultSuccess:
		sc.Success++
		if recorder != nil {
			recorder.IncStageResult(string(stage), metrics.ResultSuccess)
		}
	case StageResultWarning:
		sc.Warning++
		if recorder != nil {
			recorder.IncStageResult(string(stage), metrics.ResultWarning)
		}
	case StageResultFatal:
		sc.Fatal++
		if recorder != nil {
			recorder.IncStageResult(string(stage), metrics.ResultFatal)
		}
	case StageResultCanceled:
		sc.Canceled++
		if recorder != nil {
			recorder.IncStageResult(string(stage), metrics.ResultCanceled)
		}
	case StageResultSkipped:
		// No counters for skipped yet
	}
	r.StageCounts[stage] = sc
}

// Summary returns a human-readable single-line summary.
func (r *BuildReport) Summary() string {
	dur := r.End.Sub(r.Start)
	return fmt.Sprintf("sources=%d indexed=%d standalone=%d excluded=%d filtered=%d pages=%d duration=%s errors=%d warnings=%d outcome=%s",
		r.SourceFiles, r.DocumentsIndexed, r.DocumentsStandalone, r.DocumentsExcluded, r.DocumentsFiltered,
		r.PagesWritten, dur.Truncate(time.Millisecond), len(r.Errors), len(r.Warnings), string(r.Outcome))
}

// DeriveOutcome sets the Outcome field based on recorded errors/warnings.
func (r *BuildReport) DeriveOutcome() {
	if len(r.Errors) > 0 {
		for _, e := range r.Errors {
			var se *StageError
			if errors.As(e, &se) && se.Kind == StageErrorCanceled {
				r.Outcome = OutcomeCanceled
				return
			}
		}
		r.Outcome = OutcomeFailed
		return
	}
	if len(r.Warnings) > 0 {
		r.Outcome = OutcomeWarning
		return
	}
	r.Outcome = OutcomeSuccess
}

// Persist writes the report atomically into the provided root directory.
func (r *BuildReport) Persist(root string) error {
	if r.End.IsZero() {
		r.Finish()
		r.DeriveOutcome()
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return fmt.Errorf("ensure root for report: %w", err)
	}
	// JSON
	jb, err := json.MarshalIndent(r.SanitizedCopy(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report json: %w", err)
	}
	jsonPath := filepath.Join(root, "build-report.json")
	tmpJSON := jsonPath + ".tmp"
	if err := os.WriteFile(tmpJSON, jb, 0o600); err != nil {
		return fmt.Errorf("write temp report json: %w", err)
	}
	if err := os.Rename(tmpJSON, jsonPath); err != nil {
		return fmt.Errorf("atomic rename json: %w", err)
	}
	// Text summary
	summaryPath := filepath.Join(root, "build-report.txt")
	tmpTxt := summaryPath + ".tmp"
	if err := os.WriteFile(tmpTxt, []byte(r.Summary()+"\n"), 0o600); err != nil {
		return fmt.Errorf("write temp report summary: %w", err)
	}
	if err := os.Rename(tmpTxt, summaryPath); err != nil {
		return fmt.Errorf("atomic rename summary: %w", err)
	}
	return nil
}

// SanitizedCopy returns a copy with error fields converted to strings for JSON friendliness.
func (r *BuildReport) SanitizedCopy() *BuildReportSerializable {
	stageCounts := make(map[string]StageCount, len(r.StageCounts))
	for k, v := range r.StageCounts {
		stageCounts[string(k)] = v
	}
	sek := make(map[string]string, len(r.StageErrorKinds))
	for k, v := range r.StageErrorKinds {
		sek[string(k)] = string(v)
	}

	if r.StageDurations == nil {
		r.StageDurations = map[string]time.Duration{}
	}
	if r.Issues == nil {
		r.Issues = []ReportIssue{}
	}

	s := &BuildReportSerializable{
		SchemaVersion:       r.SchemaVersion,
		BuildID:             r.BuildID,
		Start:               r.Start,
		End:                 r.End,
		Errors:              make([]string, len(r.Errors)),
		Warnings:            make([]string, len(r.Warnings)),
		StageDurations:      r.StageDurations,
		StageErrorKinds:     sek,
		StageCounts:         stageCounts,
		SourceFiles:         r.SourceFiles,
		DocumentsIndexed:    r.DocumentsIndexed,
		DocumentsStandalone: r.DocumentsStandalone,
		DocumentsExcluded:   r.DocumentsExcluded,
		DocumentsFiltered:   r.DocumentsFiltered,
		PagesWritten:        r.PagesWritten,
		SearchEntries:       r.SearchEntries,
		Outcome:             string(r.Outcome),
		Issues:              r.Issues,
		SkipReason:          r.SkipReason,
		BuildKey:            r.BuildKey,
		PagepressVersion:    r.PagepressVersion,
	}
	for i, e := range r.Errors {
		s.Errors[i] = e.Error()
	}
	for i, w := range r.Warnings {
		s.Warnings[i] = w.Error()
	}
	return s
}

// BuildReportSerializable mirrors BuildReport but with string errors for JSON output.
type BuildReportSerializable struct {
	SchemaVersion       int                      `json:"schema_version"`
	BuildID             string                   `json:"build_id"`
	Start               time.Time                `json:"start"`
	End                 time.Time                `json:"end"`
	Errors              []string                 `json:"errors"`
	Warnings            []string                 `json:"warnings"`
	StageDurations      map[string]time.Duration `json:"stage_durations"`
	StageErrorKinds     map[string]string        `json:"stage_error_kinds"`
	StageCounts         map[string]StageCount    `json:"stage_counts"`
	SourceFiles         int                      `json:"source_files"`
	DocumentsIndexed    int                      `json:"documents_indexed"`
	DocumentsStandalone int                      `json:"documents_standalone"`
	DocumentsExcluded   int                      `json:"documents_excluded"`
	DocumentsFiltered   int                      `json:"documents_filtered"`
	PagesWritten        int                      `json:"pages_written"`
	SearchEntries       int                      `json:"search_entries"`
	Outcome             string                   `json:"outcome"`
	Issues              []ReportIssue            `json:"issues"`
	SkipReason          string                   `json:"skip_reason,omitempty"`
	BuildKey            string                   `json:"build_key,omitempty"`
	PagepressVersion    string                   `json:"pagepress_version,omitempty"`
}
