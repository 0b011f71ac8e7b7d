package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"git.home.luguber.info/inful/pagepress/internal/config"
	"git.home.luguber.info/inful/pagepress/internal/corpus"
	founderrors "git.home.luguber.info/inful/pagepress/internal/foundation/errors"
	"git.home.luguber.info/inful/pagepress/internal/history"
	"git.home.luguber.info/inful/pagepress/internal/markdown"
	"git.home.luguber.info/inful/pagepress/internal/page"
)

const firstPost = `---
title: First Post
date: 2026-01-10
---

Hello world, this is the very first post with a handful of words in it.
`

const secondPost = `---
title: Second Post
date: 2026-02-20
description: All about the second post
---

The second post arrived later and therefore sorts first.
`

const aboutPage = `---
title: About
---

A timeless page without a publication date.
`

const draftPost = `---
title: Work in Progress
date: 2026-03-01
draft: true
---

Not ready yet.
`

const brokenPost = `---
date: 2026-01-15
---

Body of a post missing its title.
`

const mangledPost = "---\ntitle: Mangled\n\nNo closing delimiter here.\n"

func testBuildConfig(t *testing.T) *config.Config {
	t.Helper()
	base := t.TempDir()
	cfg := config.Default()
	cfg.Site.Title = "Test Site"
	cfg.Site.BaseURL = "https://test.example"
	cfg.Content.Dir = filepath.Join(base, "content")
	cfg.Output.Dir = filepath.Join(base, "public")
	if err := os.MkdirAll(cfg.Content.Dir, 0o750); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func writeSources(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
}

func openMemoryStore(t *testing.T) history.Store {
	t.Helper()
	store, err := history.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func readPageContext(t *testing.T, outDir, identity string) page.Context {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(outDir, "pages", identity, "context.json"))
	if err != nil {
		t.Fatalf("read context for %s: %v", identity, err)
	}
	var ctx page.Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		t.Fatalf("unmarshal context for %s: %v", identity, err)
	}
	return ctx
}

func TestBuilder_FullDegradedBuild(t *testing.T) {
	cfg := testBuildConfig(t)
	writeSources(t, cfg.Content.Dir, map[string]string{
		"first-post.md":  firstPost,
		"second-post.md": secondPost,
		"about.md":       aboutPage,
		"draft.md":       draftPost,
		"broken.md":      brokenPost,
		"mangled.md":     mangledPost,
	})

	report, err := New(cfg, WithHistory(openMemoryStore(t))).Run(t.Context())
	if err != nil {
		t.Fatalf("degraded build should not return an error: %v", err)
	}
	if report.Outcome != OutcomeWarning {
		t.Errorf("expected warning outcome, got %s", report.Outcome)
	}

	if report.SourceFiles != 6 {
		t.Errorf("expected 6 sources, got %d", report.SourceFiles)
	}
	if report.DocumentsIndexed != 2 {
		t.Errorf("expected 2 indexed documents, got %d", report.DocumentsIndexed)
	}
	if report.DocumentsStandalone != 1 {
		t.Errorf("expected 1 standalone document, got %d", report.DocumentsStandalone)
	}
	if report.DocumentsExcluded != 2 {
		t.Errorf("expected 2 excluded documents, got %d", report.DocumentsExcluded)
	}
	if report.DocumentsFiltered != 1 {
		t.Errorf("expected 1 filtered draft, got %d", report.DocumentsFiltered)
	}
	if report.PagesWritten != 4 {
		t.Errorf("expected 4 pages written (2 indexed + 1 standalone + 1 error page), got %d", report.PagesWritten)
	}
	if report.SearchEntries != 2 {
		t.Errorf("expected 2 search entries, got %d", report.SearchEntries)
	}

	out := cfg.Output.Dir
	for _, rel := range []string{
		"pages/first-post/index.html",
		"pages/second-post/index.html",
		"pages/about/index.html",
		"pages/broken/index.html",
		"search.json",
		"site.json",
		"build-report.json",
	} {
		if _, err := os.Stat(filepath.Join(out, rel)); err != nil {
			t.Errorf("expected %s in output: %v", rel, err)
		}
	}
	// The malformed document is not salvageable; the filtered draft must not
	// leak either.
	for _, identity := range []string{"mangled", "work-in-progress", "draft"} {
		if _, err := os.Stat(filepath.Join(out, "pages", identity)); !os.IsNotExist(err) {
			t.Errorf("unexpected page directory for %s", identity)
		}
	}

	// Navigation: newest first, prev points at older content.
	second := readPageContext(t, out, "second-post")
	if second.Navigation == nil || second.Navigation.Previous == nil {
		t.Fatalf("second-post should link to older post, got %+v", second.Navigation)
	}
	if second.Navigation.Previous.Identity != "first-post" {
		t.Errorf("expected prev=first-post, got %s", second.Navigation.Previous.Identity)
	}
	if second.Navigation.Next != nil {
		t.Errorf("newest post should have no next link")
	}
	first := readPageContext(t, out, "first-post")
	if first.Navigation == nil || first.Navigation.Next == nil || first.Navigation.Next.Identity != "second-post" {
		t.Errorf("expected next=second-post, got %+v", first.Navigation)
	}
	about := readPageContext(t, out, "about")
	if about.Navigation != nil {
		t.Errorf("standalone page should carry no navigation, got %+v", about.Navigation)
	}

	// Search index: corpus order, explicit description wins, excerpt fallback.
	var entries []corpus.SearchEntry
	data, err := os.ReadFile(filepath.Join(out, "search.json"))
	if err != nil {
		t.Fatalf("read search index: %v", err)
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatalf("unmarshal search index: %v", err)
	}
	if len(entries) != 2 || entries[0].Identity != "second-post" || entries[1].Identity != "first-post" {
		t.Fatalf("unexpected search order: %+v", entries)
	}
	if entries[0].Summary != "All about the second post" {
		t.Errorf("explicit description should win, got %q", entries[0].Summary)
	}
	if entries[1].Summary == "" {
		t.Errorf("expected excerpt fallback for first-post")
	}

	// The error page carries the exclusion cause.
	var excluded page.ExcludedContext
	data, err = os.ReadFile(filepath.Join(out, "pages", "broken", "context.json"))
	if err != nil {
		t.Fatalf("read excluded context: %v", err)
	}
	if err := json.Unmarshal(data, &excluded); err != nil {
		t.Fatalf("unmarshal excluded context: %v", err)
	}
	if excluded.Error.Category != "schema" {
		t.Errorf("expected schema exclusion, got %+v", excluded.Error)
	}
	if excluded.Body == "" {
		t.Errorf("salvageable exclusion should carry a rendered body")
	}
}

func TestBuilder_SkipsUnchangedContent(t *testing.T) {
	cfg := testBuildConfig(t)
	writeSources(t, cfg.Content.Dir, map[string]string{"first-post.md": firstPost})

	store := openMemoryStore(t)
	builder := New(cfg, WithHistory(store))

	report1, err := builder.Run(t.Context())
	if err != nil {
		t.Fatalf("first build: %v", err)
	}
	if report1.Outcome != OutcomeSuccess || report1.SkipReason != "" {
		t.Fatalf("first build should be a full success, got %+v", report1)
	}
	if report1.PagesWritten != 1 {
		t.Errorf("expected 1 page written, got %d", report1.PagesWritten)
	}

	report2, err := builder.Run(t.Context())
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if report2.SkipReason != "no_changes" {
		t.Errorf("unchanged content should skip, got %q", report2.SkipReason)
	}
	if report2.PagesWritten != 0 {
		t.Errorf("skipped build should write nothing, got %d", report2.PagesWritten)
	}
	if report2.BuildKey != report1.BuildKey {
		t.Errorf("build key should be stable across identical runs")
	}

	// Content edits invalidate the key.
	writeSources(t, cfg.Content.Dir, map[string]string{"first-post.md": firstPost + "\nAn extra paragraph.\n"})
	report3, err := builder.Run(t.Context())
	if err != nil {
		t.Fatalf("third build: %v", err)
	}
	if report3.SkipReason != "" {
		t.Errorf("edited content must rebuild, got skip %q", report3.SkipReason)
	}
	if report3.BuildKey == report1.BuildKey {
		t.Errorf("content edit should change the build key")
	}

	// force overrides the skip even with an unchanged key.
	forced, err := New(cfg, WithHistory(store), WithForce(true)).Run(t.Context())
	if err != nil {
		t.Fatalf("forced build: %v", err)
	}
	if forced.SkipReason != "" || forced.PagesWritten != 1 {
		t.Errorf("forced build should run fully, got %+v", forced)
	}
}

func TestBuilder_ConfigChangeInvalidatesKey(t *testing.T) {
	cfg := testBuildConfig(t)
	writeSources(t, cfg.Content.Dir, map[string]string{"first-post.md": firstPost})

	store := openMemoryStore(t)
	if _, err := New(cfg, WithHistory(store)).Run(t.Context()); err != nil {
		t.Fatalf("first build: %v", err)
	}

	cfg.Build.ReadingSpeed = 120
	report, err := New(cfg, WithHistory(store)).Run(t.Context())
	if err != nil {
		t.Fatalf("second build: %v", err)
	}
	if report.SkipReason != "" {
		t.Errorf("output-affecting config change must rebuild, got skip %q", report.SkipReason)
	}
}

func TestBuilder_StrictModeFailsFast(t *testing.T) {
	cfg := testBuildConfig(t)
	cfg.Build.Strict = true
	writeSources(t, cfg.Content.Dir, map[string]string{
		"first-post.md": firstPost,
		"broken.md":     brokenPost,
	})

	report, err := New(cfg).Run(t.Context())
	if err == nil {
		t.Fatal("strict build with invalid document must fail")
	}
	if !founderrors.HasCategory(err, founderrors.CategorySchema) {
		t.Errorf("expected schema category, got %v", err)
	}
	if report.Outcome != OutcomeFailed {
		t.Errorf("expected failed outcome, got %s", report.Outcome)
	}

	// The report is persisted even for failed builds, but no site is.
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "build-report.json")); err != nil {
		t.Errorf("expected persisted report: %v", err)
	}
	if _, err := os.Stat(filepath.Join(cfg.Output.Dir, "site.json")); !os.IsNotExist(err) {
		t.Errorf("failed build must not produce site output")
	}
}

func TestBuilder_DuplicateIdentityIsFatal(t *testing.T) {
	cfg := testBuildConfig(t)
	writeSources(t, cfg.Content.Dir, map[string]string{
		"a.md": "---\ntitle: A\nslug: post\ndate: 2026-01-01\n---\n\nBody A.\n",
		"b.md": "---\ntitle: B\nslug: post\ndate: 2026-02-01\n---\n\nBody B.\n",
	})

	report, err := New(cfg).Run(t.Context())
	if err == nil {
		t.Fatal("duplicate identity must fail the build")
	}
	if !errors.Is(err, corpus.ErrDuplicateIdentity) {
		t.Errorf("expected duplicate identity cause, got %v", err)
	}
	if !founderrors.HasCategory(err, founderrors.CategoryCorpus) {
		t.Errorf("expected corpus category, got %v", err)
	}
	if report.Outcome != OutcomeFailed {
		t.Errorf("expected failed outcome, got %s", report.Outcome)
	}
}

type failingRenderer struct {
	inner markdown.Renderer
}

func (r *failingRenderer) Render(ctx context.Context, body []byte) ([]byte, error) {
	if bytes.Contains(body, []byte("BOOM")) {
		return nil, errors.New("renderer exploded")
	}
	return r.inner.Render(ctx, body)
}

func TestBuilder_RenderFailureDegrades(t *testing.T) {
	cfg := testBuildConfig(t)
	writeSources(t, cfg.Content.Dir, map[string]string{
		"good.md": "---\ntitle: Good\ndate: 2026-01-01\n---\n\nFine content.\n",
		"bad.md":  "---\ntitle: Bad\ndate: 2026-02-01\n---\n\nBOOM\n",
	})

	renderer := &failingRenderer{inner: markdown.NewGoldmarkRenderer(markdown.GoldmarkOptions{})}
	report, err := New(cfg, WithRenderer(renderer)).Run(t.Context())
	if err != nil {
		t.Fatalf("degraded render should not fail the build: %v", err)
	}
	if report.Outcome != OutcomeWarning {
		t.Errorf("expected warning outcome, got %s", report.Outcome)
	}
	if report.DocumentsIndexed != 1 || report.DocumentsExcluded != 1 {
		t.Errorf("expected 1 indexed + 1 excluded, got indexed=%d excluded=%d",
			report.DocumentsIndexed, report.DocumentsExcluded)
	}

	// The surviving page must not link to the unrenderable one.
	good := readPageContext(t, cfg.Output.Dir, "good")
	if good.Navigation != nil {
		t.Errorf("navigation should be rebuilt without the failed page, got %+v", good.Navigation)
	}

	var excluded page.ExcludedContext
	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "pages", "bad", "context.json"))
	if err != nil {
		t.Fatalf("read excluded context: %v", err)
	}
	if err := json.Unmarshal(data, &excluded); err != nil {
		t.Fatal(err)
	}
	if excluded.Error.Category != "render" {
		t.Errorf("expected render exclusion, got %+v", excluded.Error)
	}
}

func TestBuilder_StrictRenderFailureIsFatal(t *testing.T) {
	cfg := testBuildConfig(t)
	cfg.Build.Strict = true
	writeSources(t, cfg.Content.Dir, map[string]string{
		"bad.md": "---\ntitle: Bad\ndate: 2026-02-01\n---\n\nBOOM\n",
	})

	renderer := &failingRenderer{inner: markdown.NewGoldmarkRenderer(markdown.GoldmarkOptions{})}
	_, err := New(cfg, WithRenderer(renderer)).Run(t.Context())
	if err == nil {
		t.Fatal("strict render failure must fail the build")
	}
	if !founderrors.HasCategory(err, founderrors.CategoryRender) {
		t.Errorf("expected render category, got %v", err)
	}
}

func TestBuilder_EmptyContentProducesEmptySite(t *testing.T) {
	cfg := testBuildConfig(t)

	report, err := New(cfg).Run(t.Context())
	if err != nil {
		t.Fatalf("empty content dir should build: %v", err)
	}
	if report.Outcome != OutcomeSuccess {
		t.Errorf("expected success, got %s", report.Outcome)
	}
	if report.SourceFiles != 0 || report.PagesWritten != 0 {
		t.Errorf("expected empty build, got %+v", report)
	}

	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "search.json"))
	if err != nil {
		t.Fatalf("empty site should still have a search index: %v", err)
	}
	var entries []corpus.SearchEntry
	if err := json.Unmarshal(data, &entries); err != nil || len(entries) != 0 {
		t.Errorf("expected empty search index, got %s", data)
	}
}

func TestBuilder_IncludeDraftsAdmitsDrafts(t *testing.T) {
	cfg := testBuildConfig(t)
	cfg.Build.IncludeDrafts = true
	writeSources(t, cfg.Content.Dir, map[string]string{
		"draft.md": draftPost,
		"post.md":  firstPost,
	})

	report, err := New(cfg).Run(t.Context())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if report.DocumentsIndexed != 2 || report.DocumentsFiltered != 0 {
		t.Errorf("drafts should be admitted, got indexed=%d filtered=%d",
			report.DocumentsIndexed, report.DocumentsFiltered)
	}

	// Drafts render but never surface in search.
	var entries []corpus.SearchEntry
	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, "search.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Identity != "first-post" {
		t.Errorf("draft must stay out of search, got %+v", entries)
	}
}

func TestBuilder_CanceledContext(t *testing.T) {
	cfg := testBuildConfig(t)
	writeSources(t, cfg.Content.Dir, map[string]string{"first-post.md": firstPost})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	report, err := New(cfg).Run(ctx)
	if err == nil {
		t.Fatal("canceled build must return an error")
	}
	var se *StageError
	if !errors.As(err, &se) || se.Kind != StageErrorCanceled {
		t.Errorf("expected canceled stage error, got %v", err)
	}
	if report.Outcome != OutcomeCanceled {
		t.Errorf("expected canceled outcome, got %s", report.Outcome)
	}
}
