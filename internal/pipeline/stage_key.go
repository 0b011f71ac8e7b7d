package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/inful/mdfp"

	"git.home.luguber.info/inful/pagepress/internal/config"
	"git.home.luguber.info/inful/pagepress/internal/corpus"
	"git.home.luguber.info/inful/pagepress/internal/logfields"
	"git.home.luguber.info/inful/pagepress/internal/site"
	"git.home.luguber.info/inful/pagepress/internal/version"
)

// stageComputeKey reduces the per-file fingerprints and the output-affecting
// configuration to a single build key, then decides whether this build can be
// skipped: same key as the last completed run plus a valid output directory
// means nothing downstream would change.
func stageComputeKey(ctx context.Context, bs *BuildState) error {
	bs.ContentHash = corpus.ContentHash(bs.Fingerprints)
	bs.BuildKey = computeBuildKey(bs.ContentHash, bs.Config)
	bs.Report.BuildKey = bs.BuildKey

	if bs.Force || bs.History == nil {
		return nil
	}

	lastKey, err := bs.History.LatestCompletedKey(ctx)
	if err != nil {
		// Losing the skip optimization is not worth failing the build.
		bs.Report.AddIssue(IssueHistoryFailure, StageComputeKey, SeverityWarning, "",
			"query last completed build: "+err.Error(), err)
		slog.Warn("History lookup failed, building unconditionally", logfields.Error(err))
		return nil
	}

	if lastKey != "" && lastKey == bs.BuildKey && site.OutputValid(bs.Config.Output.Dir) {
		bs.SkipBuild = true
	}
	return nil
}

// computeBuildKey fingerprints everything that determines the output: the
// content hash, the configuration knobs that shape pages, and the program
// version. Bumping the version forces a rebuild after upgrades even when the
// content is unchanged.
func computeBuildKey(contentHash string, cfg *config.Config) string {
	parts := []string{
		"content=" + contentHash,
		"reading_speed=" + strconv.Itoa(cfg.Build.ReadingSpeed),
		"include_drafts=" + strconv.FormatBool(cfg.Build.IncludeDrafts),
		"strict=" + strconv.FormatBool(cfg.Build.Strict),
		"count_code_words=" + strconv.FormatBool(cfg.Build.CountCodeWords),
		"excerpt_words=" + strconv.Itoa(cfg.Build.ExcerptWords),
		"site_title=" + cfg.Site.Title,
		"base_url=" + cfg.Site.BaseURL,
		"version=" + version.Version,
	}
	return mdfp.CalculateFingerprintFromParts("", strings.Join(parts, "\n"))
}
