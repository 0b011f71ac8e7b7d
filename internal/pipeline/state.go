package pipeline

import (
	"time"

	"git.home.luguber.info/inful/pagepress/internal/config"
	"git.home.luguber.info/inful/pagepress/internal/corpus"
	"git.home.luguber.info/inful/pagepress/internal/document"
	"git.home.luguber.info/inful/pagepress/internal/history"
	"git.home.luguber.info/inful/pagepress/internal/markdown"
	"git.home.luguber.info/inful/pagepress/internal/metrics"
	"git.home.luguber.info/inful/pagepress/internal/page"
	"git.home.luguber.info/inful/pagepress/internal/source"
)

// ExclusionCategory names the processing phase that rejected a document.
type ExclusionCategory string

const (
	ExclusionParse  ExclusionCategory = "parse"
	ExclusionSchema ExclusionCategory = "schema"
	ExclusionRender ExclusionCategory = "render"
	ExclusionRead   ExclusionCategory = "read"
)

// ExcludedDocument records a source file that could not become a page.
// Salvageable exclusions carry enough metadata to emit a standalone error
// page in degraded mode; parse and read failures never do.
type ExcludedDocument struct {
	Source      string
	Identity    string // best-effort; empty when not derivable
	Title       string // best-effort
	Category    ExclusionCategory
	Err         error
	Body        string // document body when the split succeeded
	Salvageable bool
}

// BuildState carries mutable state across stages.
type BuildState struct {
	Config   *config.Config
	Recorder metrics.Recorder
	Renderer markdown.Renderer
	History  history.Store // nil when the store is disabled
	Report   *BuildReport

	// Force disables the unchanged-content early exit.
	Force bool

	// ContentDir is the directory discovery walks: the git cache when a
	// remote content repository is configured, the local content dir
	// otherwise.
	ContentDir string

	Sources []source.File

	// Populated by parse_documents.
	Docs         []*document.Document
	Excluded     []ExcludedDocument
	Fingerprints map[string]string // source path -> fingerprint, covers every source file

	// Populated by compute_key.
	ContentHash string
	BuildKey    string
	SkipBuild   bool

	// Populated by build_corpus.
	Corpus     *corpus.Corpus
	Standalone []*document.Document // valid undated documents, rendered without navigation
	Filtered   int                  // drafts dropped by policy

	// Populated by render_documents. Keyed by source path.
	RenderedBodies map[string][]byte

	// Populated by assemble_pages.
	Pages         []page.Context
	ExcludedPages []page.ExcludedContext
	SearchEntries []corpus.SearchEntry

	start time.Time
}

// NewBuildState constructs a BuildState with required collaborators.
func NewBuildState(cfg *config.Config, report *BuildReport, renderer markdown.Renderer, recorder metrics.Recorder, store history.Store) *BuildState {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	contentDir := cfg.Content.Dir
	if cfg.Content.Git != nil {
		contentDir = cfg.Content.CacheDir
	}
	return &BuildState{
		Config:         cfg,
		Recorder:       recorder,
		Renderer:       renderer,
		History:        store,
		Report:         report,
		ContentDir:     contentDir,
		Fingerprints:   make(map[string]string),
		RenderedBodies: make(map[string][]byte),
		start:          time.Now(),
	}
}

// Elapsed returns time since the state was created.
func (bs *BuildState) Elapsed() time.Duration { return time.Since(bs.start) }
