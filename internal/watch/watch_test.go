package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/pagepress/internal/config"
	"git.home.luguber.info/inful/pagepress/internal/pipeline"
)

type countingBuilder struct {
	runs atomic.Int32
}

func (c *countingBuilder) Run(ctx context.Context) (*pipeline.BuildReport, error) {
	c.runs.Add(1)
	report := pipeline.NewBuildReport("watch-test")
	report.DeriveOutcome()
	report.Finish()
	return report, nil
}

func watchTestConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Content.Dir = t.TempDir()
	cfg.Output.Dir = t.TempDir()
	cfg.Watch.Debounce = "25ms"
	cfg.Watch.Interval = "0s"
	return cfg
}

func TestDebouncerCoalescesBurst(t *testing.T) {
	req, trigger := newDebouncer(25 * time.Millisecond)

	for range 5 {
		trigger()
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-req:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for debounced request")
	}

	select {
	case <-req:
		t.Fatal("expected a burst to coalesce into one request")
	case <-time.After(75 * time.Millisecond):
	}
}

func TestDebouncerSeparateBurstsEachFire(t *testing.T) {
	req, trigger := newDebouncer(10 * time.Millisecond)

	trigger()
	select {
	case <-req:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("first request never arrived")
	}

	trigger()
	select {
	case <-req:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("second request never arrived")
	}
}

func TestShouldIgnore(t *testing.T) {
	cases := []struct {
		path   string
		ignore bool
	}{
		{"content/post.md", false},
		{"content/nested/deep.markdown", false},
		{"content/.hidden.md", true},
		{"content/.#post.md", true},
		{"content/post.md~", true},
		{"content/.post.md.swp", true},
		{"content/#post.md#", true},
		{"content/Thumbs.db", true},
	}
	for _, tc := range cases {
		require.Equal(t, tc.ignore, shouldIgnore(tc.path), "path %s", tc.path)
	}
}

func TestWatcherRebuildsOnFileChange(t *testing.T) {
	cfg := watchTestConfig(t)
	builder := &countingBuilder{}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- New(cfg, builder).Run(ctx) }()

	require.Eventually(t, func() bool { return builder.runs.Load() >= 1 },
		2*time.Second, 10*time.Millisecond, "initial build never ran")

	path := filepath.Join(cfg.Content.Dir, "post.md")
	require.NoError(t, os.WriteFile(path, []byte("---\ntitle: T\n---\nbody\n"), 0o600))

	require.Eventually(t, func() bool { return builder.runs.Load() >= 2 },
		2*time.Second, 10*time.Millisecond, "change never triggered a rebuild")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherScheduledRebuilds(t *testing.T) {
	cfg := watchTestConfig(t)
	cfg.Watch.Interval = "50ms"
	builder := &countingBuilder{}

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- New(cfg, builder).Run(ctx) }()

	// Startup build plus at least one interval-triggered rebuild.
	require.Eventually(t, func() bool { return builder.runs.Load() >= 2 },
		3*time.Second, 20*time.Millisecond, "interval never triggered a rebuild")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop on cancel")
	}
}

func TestWatcherGitContentRequiresInterval(t *testing.T) {
	cfg := watchTestConfig(t)
	cfg.Content.Git = &config.GitConfig{URL: "https://example.com/content.git"}
	cfg.Watch.Interval = "0s"

	err := New(cfg, &countingBuilder{}).Run(t.Context())
	require.ErrorContains(t, err, "watch.interval")
}
