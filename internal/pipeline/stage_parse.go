package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/pagepress/internal/config"
	"git.home.luguber.info/inful/pagepress/internal/document"
	"git.home.luguber.info/inful/pagepress/internal/frontmatter"
	"git.home.luguber.info/inful/pagepress/internal/logfields"
	"git.home.luguber.info/inful/pagepress/internal/metrics"
	"git.home.luguber.info/inful/pagepress/internal/source"
	"git.home.luguber.info/inful/pagepress/internal/textstats"
)

// parseResult is the outcome for one source file. Exactly one of doc and
// excluded is set; fingerprint is set whenever the file could be read.
type parseResult struct {
	source      string
	fingerprint string
	doc         *document.Document
	excluded    *ExcludedDocument
}

// stageParseDocuments loads, splits, and validates every discovered source
// concurrently. In strict mode the first failing source (in discovery order)
// aborts the build; otherwise failures become exclusions and the build
// degrades.
func stageParseDocuments(ctx context.Context, bs *BuildState) error {
	if len(bs.Sources) == 0 {
		return nil
	}

	concurrency := bs.Config.Build.EffectiveWorkers()
	if concurrency > len(bs.Sources) {
		concurrency = len(bs.Sources)
	}
	if concurrency < 1 {
		concurrency = 1
	}

	// Workers write disjoint indices, so aggregation needs no lock and the
	// result order matches discovery order regardless of scheduling.
	results := make([]parseResult, len(bs.Sources))
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
			results[i] = parseSource(&bs.Sources[i], &bs.Config.Build)
		}
	}
	wg.Add(concurrency)
	for range concurrency {
		go worker()
	}
	for i := range bs.Sources {
		select {
		case <-ctx.Done():
			close(tasks)
			wg.Wait()
			return NewCanceledStageError(StageParseDocuments, ctx.Err())
		default:
		}
		tasks <- i
	}
	close(tasks)
	wg.Wait()
	select {
	case <-ctx.Done():
		return NewCanceledStageError(StageParseDocuments, ctx.Err())
	default:
	}

	for i := range results {
		res := &results[i]
		if res.fingerprint != "" {
			bs.Fingerprints[res.source] = res.fingerprint
		}
		if res.doc != nil {
			bs.Docs = append(bs.Docs, res.doc)
		}
		if res.excluded != nil {
			bs.Excluded = append(bs.Excluded, *res.excluded)
		}
	}

	if len(bs.Excluded) == 0 {
		slog.Debug("All sources parsed", logfields.Count(len(bs.Docs)))
		return nil
	}

	if bs.Config.Build.Strict {
		first := bs.Excluded[0]
		return NewFatalStageError(StageParseDocuments,
			fmt.Errorf("%s: %w", first.Source, first.Err))
	}

	for i := range bs.Excluded {
		ex := &bs.Excluded[i]
		bs.Report.AddIssue(issueCodeForExclusion(ex.Category), StageParseDocuments,
			SeverityWarning, ex.Source, ex.Err.Error(), ex.Err)
		bs.Recorder.IncDocumentResult(metrics.DocumentExcluded)
		slog.Warn("Document excluded",
			logfields.Source(ex.Source),
			logfields.Reason(string(ex.Category)),
			logfields.Error(ex.Err))
	}
	bs.Report.DocumentsExcluded = len(bs.Excluded)
	return nil
}

func parseSource(file *source.File, buildCfg *config.BuildConfig) parseResult {
	rel := file.RelativePath

	if err := file.LoadContent(); err != nil {
		return parseResult{source: rel, excluded: &ExcludedDocument{
			Source:   rel,
			Category: ExclusionRead,
			Err:      err,
		}}
	}

	fields, body, _, err := frontmatter.Parse(file.Content)
	if err != nil {
		// A malformed document still contributes to change detection:
		// fixing it must register as a content change.
		return parseResult{
			source:      rel,
			fingerprint: mdfp.CalculateFingerprintFromParts("", string(file.Content)),
			excluded: &ExcludedDocument{
				Source:   rel,
				Category: ExclusionParse,
				Err:      err,
			},
		}
	}

	fingerprint, err := document.ComputeFingerprint(fields, body)
	if err != nil {
		return parseResult{source: rel, excluded: &ExcludedDocument{
			Source:   rel,
			Category: ExclusionParse,
			Err:      fmt.Errorf("fingerprint: %w", err),
		}}
	}

	meta, err := document.FromFields(fields, document.DeriveSlug(file.Name))
	if err != nil {
		ex := &ExcludedDocument{
			Source:   rel,
			Category: ExclusionSchema,
			Err:      err,
			Body:     string(body),
		}
		// Salvage whatever identity and title survived validation so the
		// exclusion can still surface as a standalone error page.
		ex.Identity = salvageIdentity(fields, file.Name)
		if title, ok := fields["title"].(string); ok {
			ex.Title = title
		}
		ex.Salvageable = ex.Identity != ""
		return parseResult{source: rel, fingerprint: fingerprint, excluded: ex}
	}

	stats := textstats.Analyze(string(body), textstats.Options{
		WordsPerMinute: buildCfg.ReadingSpeed,
		CountCodeWords: buildCfg.CountCodeWords,
	})

	return parseResult{
		source:      rel,
		fingerprint: fingerprint,
		doc: &document.Document{
			Source:      rel,
			Meta:        meta,
			Body:        string(body),
			Fingerprint: fingerprint,
			WordCount:   stats.WordCount,
			ReadingTime: stats.ReadingTime,
		},
	}
}

// salvageIdentity picks the best identity available for a schema-rejected
// document: an explicit valid slug wins, then the filename derivation.
func salvageIdentity(fields map[string]any, fileName string) string {
	if s, ok := fields["slug"].(string); ok && document.ValidSlug(s) {
		return s
	}
	return document.DeriveSlug(fileName)
}

func issueCodeForExclusion(cat ExclusionCategory) ReportIssueCode {
	switch cat {
	case ExclusionParse:
		return IssueMalformedDocument
	case ExclusionSchema:
		return IssueSchemaViolation
	case ExclusionRead:
		return IssueReadFailure
	case ExclusionRender:
		return IssueRenderFailure
	default:
		return IssueGenericStageError
	}
}
