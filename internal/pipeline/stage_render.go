package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"git.home.luguber.info/inful/pagepress/internal/corpus"
	"git.home.luguber.info/inful/pagepress/internal/document"
	"git.home.luguber.info/inful/pagepress/internal/logfields"
	"git.home.luguber.info/inful/pagepress/internal/metrics"
)

// renderItem is one unit of render work. doc is nil for salvage renders of
// excluded documents, where exIdx points into bs.Excluded instead.
type renderItem struct {
	source string
	body   []byte
	doc    *document.Document
	exIdx  int
}

type renderOutcome struct {
	html []byte
	err  error
}

// stageRenderDocuments renders markdown bodies to HTML concurrently. Running
// after corpus construction means filtered drafts never reach the renderer.
// Salvageable excluded documents are rendered too so their error pages can
// carry the body; a failure there just leaves the error page bodyless.
//
// A render failure on a real page is fatal in strict mode. In degraded mode
// the document moves to the excluded set and the corpus is rebuilt from the
// survivors, so navigation and search never reference an unrenderable page.
func stageRenderDocuments(ctx context.Context, bs *BuildState) error {
	items := make([]renderItem, 0, bs.Corpus.Len()+len(bs.Standalone)+len(bs.Excluded))
	for _, doc := range bs.Corpus.Documents() {
		items = append(items, renderItem{source: doc.Source, body: []byte(doc.Body), doc: doc, exIdx: -1})
	}
	for _, doc := range bs.Standalone {
		items = append(items, renderItem{source: doc.Source, body: []byte(doc.Body), doc: doc, exIdx: -1})
	}
	for i := range bs.Excluded {
		if bs.Excluded[i].Salvageable && bs.Excluded[i].Body != "" {
			items = append(items, renderItem{source: bs.Excluded[i].Source, body: []byte(bs.Excluded[i].Body), exIdx: i})
		}
	}
	if len(items) == 0 {
		return nil
	}

	concurrency := bs.Config.Build.EffectiveWorkers()
	if concurrency > len(items) {
		concurrency = len(items)
	}
	if concurrency < 1 {
		concurrency = 1
	}
	bs.Recorder.SetRenderWorkers(concurrency)

	results := make([]renderOutcome, len(items))
	tasks := make(chan int)
	var wg sync.WaitGroup
	worker := func() {
		defer wg.Done()
		for i := range tasks {
			select {
			case <-ctx.Done():
				return
			default:
			}
			html, err := bs.Renderer.Render(ctx, items[i].body)
			results[i] = renderOutcome{html: html, err: err}
		}
	}
	wg.Add(concurrency)
	for range concurrency {
		go worker()
	}
	for i := range items {
		select {
		case <-ctx.Done():
			close(tasks)
			wg.Wait()
			return NewCanceledStageError(StageRenderDocuments, ctx.Err())
		default:
		}
		tasks <- i
	}
	close(tasks)
	wg.Wait()
	select {
	case <-ctx.Done():
		return NewCanceledStageError(StageRenderDocuments, ctx.Err())
	default:
	}

	var failed []int
	for i := range items {
		item := &items[i]
		res := &results[i]

		if item.exIdx >= 0 {
			// The excluded page body is the rendered HTML from here on;
			// when even salvage rendering fails the page goes out bodyless.
			if res.err != nil {
				slog.Debug("Salvage render failed", logfields.Source(item.source), logfields.Error(res.err))
				bs.Excluded[item.exIdx].Body = ""
			} else {
				bs.Excluded[item.exIdx].Body = string(res.html)
			}
			continue
		}

		if res.err != nil {
			failed = append(failed, i)
			continue
		}
		bs.RenderedBodies[item.source] = res.html
		bs.Recorder.IncDocumentResult(metrics.DocumentRendered)
	}

	if len(failed) == 0 {
		return nil
	}

	sort.Slice(failed, func(a, b int) bool {
		return items[failed[a]].source < items[failed[b]].source
	})

	if bs.Config.Build.Strict {
		first := failed[0]
		return NewFatalStageError(StageRenderDocuments,
			fmt.Errorf("%s: %w", items[first].source, results[first].err))
	}

	failedSources := make(map[string]bool, len(failed))
	for _, i := range failed {
		item := &items[i]
		doc := item.doc
		failedSources[item.source] = true
		bs.Excluded = append(bs.Excluded, ExcludedDocument{
			Source:      item.source,
			Identity:    doc.Identity(),
			Title:       doc.Meta.Title,
			Category:    ExclusionRender,
			Err:         results[i].err,
			Salvageable: true,
		})
		bs.Report.AddIssue(IssueRenderFailure, StageRenderDocuments, SeverityWarning,
			item.source, results[i].err.Error(), results[i].err)
		bs.Recorder.IncDocumentResult(metrics.DocumentExcluded)
		slog.Warn("Document excluded: render failed",
			logfields.Source(item.source), logfields.Error(results[i].err))
	}

	return rebuildWithoutFailed(bs, failedSources)
}

// rebuildWithoutFailed recomputes the corpus and standalone set after render
// failures. Recomputing from the surviving documents keeps ordering and
// navigation consistent instead of patching links out of an existing graph.
func rebuildWithoutFailed(bs *BuildState, failedSources map[string]bool) error {
	surviving := make([]*document.Document, 0, bs.Corpus.Len())
	for _, doc := range bs.Corpus.Documents() {
		if !failedSources[doc.Source] {
			surviving = append(surviving, doc)
		}
	}
	standalone := make([]*document.Document, 0, len(bs.Standalone))
	for _, doc := range bs.Standalone {
		if !failedSources[doc.Source] {
			standalone = append(standalone, doc)
		}
	}

	rebuilt, err := corpus.Build(surviving, corpus.BuildOptions{IncludeDrafts: bs.Config.Build.IncludeDrafts})
	if err != nil {
		return NewFatalStageError(StageRenderDocuments, err)
	}
	bs.Corpus = rebuilt
	bs.Standalone = standalone

	bs.Report.DocumentsIndexed = rebuilt.Len()
	bs.Report.DocumentsStandalone = len(standalone)
	bs.Report.DocumentsExcluded = len(bs.Excluded)
	bs.Recorder.SetCorpusSize(rebuilt.Len())
	return nil
}
