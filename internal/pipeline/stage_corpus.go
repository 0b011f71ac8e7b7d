package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"git.home.luguber.info/inful/pagepress/internal/corpus"
	"git.home.luguber.info/inful/pagepress/internal/document"
	"git.home.luguber.info/inful/pagepress/internal/logfields"
	"git.home.luguber.info/inful/pagepress/internal/metrics"
)

// stageBuildCorpus partitions the validated documents and builds the ordered
// corpus. Drafts are filtered by policy before anything else; valid documents
// without a publication date become standalone pages outside the corpus.
// Identity collisions anywhere in the page set are fatal.
func stageBuildCorpus(_ context.Context, bs *BuildState) error {
	indexable := make([]*document.Document, 0, len(bs.Docs))
	for _, doc := range bs.Docs {
		if doc.Meta.Draft && !bs.Config.Build.IncludeDrafts {
			bs.Filtered++
			bs.Recorder.IncDocumentResult(metrics.DocumentFiltered)
			slog.Debug("Draft filtered", logfields.Source(doc.Source), logfields.Slug(doc.Identity()))
			continue
		}
		if !doc.Meta.HasPublishedAt() {
			bs.Standalone = append(bs.Standalone, doc)
			continue
		}
		indexable = append(indexable, doc)
	}

	built, err := corpus.Build(indexable, corpus.BuildOptions{IncludeDrafts: bs.Config.Build.IncludeDrafts})
	if err != nil {
		return NewFatalStageError(StageBuildCorpus, err)
	}
	bs.Corpus = built

	// The corpus checks its own members; standalone pages share the same
	// identity namespace and must not shadow them either.
	seen := make(map[string]string, built.Len()+len(bs.Standalone))
	for _, doc := range built.Documents() {
		seen[doc.Identity()] = doc.Source
	}
	for _, doc := range bs.Standalone {
		id := doc.Identity()
		if prevSource, ok := seen[id]; ok {
			return NewFatalStageError(StageBuildCorpus,
				fmt.Errorf("%w %q: %s and %s", corpus.ErrDuplicateIdentity, id, prevSource, doc.Source))
		}
		seen[id] = doc.Source
	}

	bs.Report.DocumentsIndexed = built.Len()
	bs.Report.DocumentsStandalone = len(bs.Standalone)
	bs.Report.DocumentsFiltered = bs.Filtered
	bs.Recorder.SetCorpusSize(built.Len())

	slog.Info("Corpus built",
		slog.Int("indexed", built.Len()),
		slog.Int("standalone", len(bs.Standalone)),
		slog.Int("filtered", bs.Filtered))
	return nil
}
