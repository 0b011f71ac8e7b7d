package pipeline

import (
	"context"
	"fmt"

	"git.home.luguber.info/inful/pagepress/internal/document"
	"git.home.luguber.info/inful/pagepress/internal/markdown"
	"git.home.luguber.info/inful/pagepress/internal/page"
)

// stageAssemblePages merges documents, rendered bodies, and navigation into
// the final page contexts, and derives the search index. Everything here is
// a pure recombination of earlier stage outputs.
func stageAssemblePages(_ context.Context, bs *BuildState) error {
	summarize := func(doc *document.Document) string {
		return markdown.Excerpt(bs.RenderedBodies[doc.Source], bs.Config.Build.ExcerptWords)
	}
	bs.SearchEntries = bs.Corpus.SearchIndex(summarize)
	bs.Report.SearchEntries = len(bs.SearchEntries)

	bs.Pages = make([]page.Context, 0, bs.Corpus.Len()+len(bs.Standalone))
	taken := make(map[string]string, bs.Corpus.Len()+len(bs.Standalone))
	for _, doc := range bs.Corpus.Documents() {
		nav := bs.Corpus.NavigationFor(doc.Identity())
		bs.Pages = append(bs.Pages, page.BuildContext(page.Assembly{
			Doc:          doc,
			RenderedBody: bs.RenderedBodies[doc.Source],
			Nav:          &nav,
		}))
		taken[doc.Identity()] = doc.Source
	}
	for _, doc := range bs.Standalone {
		bs.Pages = append(bs.Pages, page.BuildContext(page.Assembly{
			Doc:          doc,
			RenderedBody: bs.RenderedBodies[doc.Source],
		}))
		taken[doc.Identity()] = doc.Source
	}

	// Excluded error pages come last and never shadow a real page. Between
	// two excluded documents claiming the same identity, the first in source
	// order wins.
	for i := range bs.Excluded {
		ex := &bs.Excluded[i]
		if !ex.Salvageable {
			continue
		}
		if prevSource, ok := taken[ex.Identity]; ok {
			err := fmt.Errorf("excluded page identity %q already used by %s", ex.Identity, prevSource)
			bs.Report.AddIssue(IssueDuplicateIdentity, StageAssemblePages, SeverityWarning,
				ex.Source, err.Error(), err)
			continue
		}
		taken[ex.Identity] = ex.Source
		bs.ExcludedPages = append(bs.ExcludedPages, page.ExcludedContext{
			Identity: ex.Identity,
			Source:   ex.Source,
			Title:    ex.Title,
			Error: page.ContextError{
				Category: string(ex.Category),
				Message:  ex.Err.Error(),
			},
			Body: ex.Body,
		})
	}

	return nil
}
