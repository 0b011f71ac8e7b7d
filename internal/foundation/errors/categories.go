package errors

// ErrorCategory names the failure class of a build error. Categories answer
// "who must act": config points at the operator, parse and schema at the
// content author, the rest at the environment or at pagepress itself.
type ErrorCategory string

const (
	// CategoryConfig covers configuration the operator must fix before any
	// build can run.
	CategoryConfig ErrorCategory = "config"

	// CategoryParse covers documents that cannot be split or decoded;
	// CategorySchema covers documents whose metadata violates the schema.
	CategoryParse  ErrorCategory = "parse"
	CategorySchema ErrorCategory = "schema"

	// CategoryCorpus covers cross-document indexing failures, CategoryRender
	// per-document body rendering failures.
	CategoryCorpus ErrorCategory = "corpus"
	CategoryRender ErrorCategory = "render"

	// CategoryFileSystem, CategoryGit and CategoryHistory cover the build's
	// environment: local disk, the remote content repository, and the run
	// history store.
	CategoryFileSystem ErrorCategory = "filesystem"
	CategoryGit        ErrorCategory = "git"
	CategoryHistory    ErrorCategory = "history"

	// CategoryInternal marks invariant violations inside pagepress itself.
	CategoryInternal ErrorCategory = "internal"
)

// ErrorSeverity ranks how much of the build an error takes down.
type ErrorSeverity string

const (
	SeverityFatal   ErrorSeverity = "fatal"   // the whole build stops
	SeverityError   ErrorSeverity = "error"   // the current document or operation fails
	SeverityWarning ErrorSeverity = "warning" // the build continues degraded
	SeverityInfo    ErrorSeverity = "info"    // advisory only
)
