package errors

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// Process exit codes, grouped by who must act. Scripts branch on these, so
// the values are part of the CLI contract.
const (
	ExitGeneral  = 1  // unclassified failure
	ExitContent  = 2  // a document was rejected (parse or schema)
	ExitConfig   = 7  // configuration must be fixed
	ExitGit      = 8  // the remote content repository failed
	ExitInternal = 10 // invariant violation inside pagepress
	ExitBuild    = 11 // corpus, render, or filesystem failure
	ExitHistory  = 12 // the run history store failed
)

// CLIErrorAdapter turns build errors into user-facing messages and process
// exit codes at the top of main.
type CLIErrorAdapter struct {
	verbose bool
	logger  *slog.Logger
}

// NewCLIErrorAdapter creates an adapter. A nil logger falls back to
// slog.Default.
func NewCLIErrorAdapter(verbose bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, logger: logger}
}

// HandleError reports err and exits with its mapped code. A nil err is a
// no-op, so main can call this unconditionally.
func (a *CLIErrorAdapter) HandleError(err error) {
	if err == nil {
		return
	}

	if a.shouldLog(err) {
		a.logError(err)
	}
	fmt.Fprintln(os.Stderr, a.FormatError(err))
	os.Exit(a.ExitCodeFor(err))
}

// ExitCodeFor maps an error onto the exit code scheme.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	classified, ok := AsClassified(err)
	if !ok {
		return ExitGeneral
	}

	switch classified.Category() {
	case CategoryConfig:
		return ExitConfig
	case CategoryParse, CategorySchema:
		return ExitContent
	case CategoryCorpus, CategoryRender, CategoryFileSystem:
		return ExitBuild
	case CategoryGit:
		return ExitGit
	case CategoryHistory:
		return ExitHistory
	case CategoryInternal:
		return ExitInternal
	default:
		return ExitGeneral
	}
}

// FormatError renders the user-facing message. Config and content errors
// carry messages written for end users and pass through; everything else is
// summarized unless verbose mode asks for the full chain.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}

	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}
	if a.verbose {
		return classified.Error()
	}

	switch classified.Category() {
	case CategoryConfig, CategoryParse, CategorySchema, CategoryCorpus:
		if cause := classified.Cause(); cause != nil {
			return fmt.Sprintf("%s: %v", classified.Message(), cause)
		}
		return classified.Message()
	}
	return "Internal error occurred (use -v for details)"
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	if classified, ok := AsClassified(err); ok {
		return classified.IsFatal()
	}
	return true
}

func (a *CLIErrorAdapter) logError(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}

	attrs := []slog.Attr{slog.String("category", string(classified.Category()))}
	if source, ok := classified.Context().GetString("source"); ok {
		attrs = append(attrs, slog.String("source", source))
	}
	a.logger.LogAttrs(context.Background(), severityLevel(classified.Severity()), classified.Message(), attrs...)
}

func severityLevel(severity ErrorSeverity) slog.Level {
	switch severity {
	case SeverityInfo:
		return slog.LevelInfo
	case SeverityWarning:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}
