// Package page assembles immutable render contexts: the merged view of
// validated metadata, derived metrics, navigation, and rendered body that the
// external templating layer consumes.
package page

import (
	"time"

	"git.home.luguber.info/inful/pagepress/internal/corpus"
	"git.home.luguber.info/inful/pagepress/internal/document"
)

// Context is the render context for one page. Fields gated by a feature flag
// are omitted entirely when the flag is off: a page with readingTime disabled
// carries no readingTime key at all, so templates cannot accidentally show
// suppressed data. The computed/displayed boundary lives here, not in the
// metrics themselves.
type Context struct {
	Identity    string `json:"identity"`
	Title       string `json:"title"`
	Source      string `json:"source"`
	Fingerprint string `json:"fingerprint,omitempty"`

	// Gated by the meta flag.
	PublishedAt string   `json:"publishedAt,omitempty"`
	Tags        []string `json:"tags,omitempty"`

	Draft bool `json:"draft,omitempty"`

	// Gated by the summary flag.
	Summary string `json:"summary,omitempty"`

	// Gated by their namesake flags. Pointers distinguish "zero" from
	// "omitted": an empty body with the flag on still reports wordCount 0.
	WordCount   *int `json:"wordCount,omitempty"`
	ReadingTime *int `json:"readingTime,omitempty"`

	// Gated by the postNavLinks flag; absent for standalone pages.
	Navigation *corpus.Navigation `json:"navigation,omitempty"`

	Features Features `json:"features"`

	Body string `json:"body"`
}

// Features carries the display-only toggles through to the templating layer.
// These gate template sections rather than computed data, so they are always
// present as booleans.
type Features struct {
	Comments      bool `json:"comments"`
	CodeHighlight bool `json:"codeHighlight"`
	ShareButtons  bool `json:"shareButtons"`
	Breadcrumbs   bool `json:"breadcrumbs"`
	RSSButton     bool `json:"rssButton"`
}

// Assembly is the input to BuildContext.
type Assembly struct {
	Doc          *document.Document
	RenderedBody []byte
	// Nav is nil for standalone pages (documents outside the corpus).
	Nav *corpus.Navigation
}

// BuildContext merges one document's data into its render context. The result
// shares no mutable state with the inputs.
func BuildContext(in Assembly) Context {
	doc := in.Doc
	flags := doc.Meta.Flags

	ctx := Context{
		Identity:    doc.Identity(),
		Title:       doc.Meta.Title,
		Source:      doc.Source,
		Fingerprint: doc.Fingerprint,
		Draft:       doc.Meta.Draft,
		Features: Features{
			Comments:      flags.Comments,
			CodeHighlight: flags.CodeHighlight,
			ShareButtons:  flags.ShareButtons,
			Breadcrumbs:   flags.Breadcrumbs,
			RSSButton:     flags.RSSButton,
		},
		Body: string(in.RenderedBody),
	}

	if flags.Meta {
		if doc.Meta.HasPublishedAt() {
			ctx.PublishedAt = doc.Meta.PublishedAt.UTC().Format(time.RFC3339)
		}
		if len(doc.Meta.Tags) > 0 {
			ctx.Tags = make([]string, len(doc.Meta.Tags))
			copy(ctx.Tags, doc.Meta.Tags)
		}
	}

	if flags.Summary {
		ctx.Summary = doc.Meta.Description
	}

	if flags.WordCount {
		wc := doc.WordCount
		ctx.WordCount = &wc
	}
	if flags.ReadingTime {
		rt := doc.ReadingTime
		ctx.ReadingTime = &rt
	}

	if flags.PostNavLinks && in.Nav != nil && (in.Nav.Previous != nil || in.Nav.Next != nil) {
		nav := corpus.Navigation{}
		if in.Nav.Previous != nil {
			prev := *in.Nav.Previous
			nav.Previous = &prev
		}
		if in.Nav.Next != nil {
			next := *in.Nav.Next
			nav.Next = &next
		}
		ctx.Navigation = &nav
	}

	return ctx
}

// ExcludedContext is the reduced context emitted for a document that was
// excluded from the build in degraded mode. It carries whatever survived
// processing plus the exclusion cause; never navigation or search visibility.
type ExcludedContext struct {
	Identity string       `json:"identity,omitempty"`
	Source   string       `json:"source"`
	Title    string       `json:"title,omitempty"`
	Error    ContextError `json:"error"`
	Body     string       `json:"body,omitempty"`
}

// ContextError describes why a document was excluded.
type ContextError struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}
