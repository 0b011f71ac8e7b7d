package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"git.home.luguber.info/inful/pagepress/internal/foundation/errors"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "pagepress.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, "site:\n  title: Test Site\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Site.Title != "Test Site" {
		t.Errorf("expected title to survive, got %q", cfg.Site.Title)
	}
	if cfg.Content.Dir != "./content" {
		t.Errorf("expected default content dir, got %q", cfg.Content.Dir)
	}
	if cfg.Output.Dir != "./public" {
		t.Errorf("expected default output dir, got %q", cfg.Output.Dir)
	}
	if !cfg.Output.Clean {
		t.Error("expected clean default true when output omitted")
	}
	if cfg.Build.ReadingSpeed != 200 {
		t.Errorf("expected reading speed 200, got %d", cfg.Build.ReadingSpeed)
	}
	if cfg.Build.IncludeDrafts {
		t.Error("expected include_drafts default false")
	}
	if cfg.Build.ExcerptWords != 40 {
		t.Errorf("expected excerpt words 40, got %d", cfg.Build.ExcerptWords)
	}
	if cfg.Watch.DebounceDuration() != 300*time.Millisecond {
		t.Errorf("expected debounce 300ms, got %s", cfg.Watch.DebounceDuration())
	}
	if cfg.Watch.IntervalDuration() != 0 {
		t.Errorf("expected interval disabled, got %s", cfg.Watch.IntervalDuration())
	}
	if cfg.Logging.Level != LogLevelInfo {
		t.Errorf("expected info level, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != LogFormatText {
		t.Errorf("expected text format, got %q", cfg.Logging.Format)
	}
}

func TestLoad_ExplicitValues(t *testing.T) {
	path := writeConfigFile(t, `
site:
  title: Docs
  base_url: https://docs.example.com
content:
  dir: ./posts
output:
  dir: ./dist
  clean: false
build:
  reading_speed: 180
  include_drafts: true
  strict: true
  count_code_words: true
  excerpt_words: 25
  workers: 4
watch:
  debounce: 500ms
  interval: 10m
history:
  path: /var/lib/pagepress/history.db
logging:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Content.Dir != "./posts" {
		t.Errorf("content dir: got %q", cfg.Content.Dir)
	}
	if cfg.Output.Clean {
		t.Error("expected clean false when set explicitly")
	}
	if cfg.Build.ReadingSpeed != 180 {
		t.Errorf("reading speed: got %d", cfg.Build.ReadingSpeed)
	}
	if !cfg.Build.IncludeDrafts || !cfg.Build.Strict || !cfg.Build.CountCodeWords {
		t.Error("expected build booleans true")
	}
	if cfg.Build.Workers != 4 {
		t.Errorf("workers: got %d", cfg.Build.Workers)
	}
	if cfg.Watch.DebounceDuration() != 500*time.Millisecond {
		t.Errorf("debounce: got %s", cfg.Watch.DebounceDuration())
	}
	if cfg.Watch.IntervalDuration() != 10*time.Minute {
		t.Errorf("interval: got %s", cfg.Watch.IntervalDuration())
	}
	if cfg.History.Path != "/var/lib/pagepress/history.db" {
		t.Errorf("history path: got %q", cfg.History.Path)
	}
	if cfg.Logging.Level != LogLevelDebug {
		t.Errorf("level: got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != LogFormatJSON {
		t.Errorf("format: got %q", cfg.Logging.Format)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !errors.HasCategory(err, errors.CategoryConfig) {
		t.Errorf("expected config category, got %v", err)
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("expected not-found message, got %q", err.Error())
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "content:\n  dir: [unclosed\n")

	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for invalid yaml")
	}
	if !errors.HasCategory(err, errors.CategoryConfig) {
		t.Errorf("expected config category, got %v", err)
	}
}

func TestLoad_ExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("PAGEPRESS_TEST_TOKEN", "secret-token")

	path := writeConfigFile(t, `
content:
  dir: ./content
  git:
    url: https://example.com/content.git
    auth:
      token: ${PAGEPRESS_TEST_TOKEN}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Content.Git == nil || cfg.Content.Git.Auth == nil {
		t.Fatal("expected git auth to be populated")
	}
	if cfg.Content.Git.Auth.Token != "secret-token" {
		t.Errorf("expected env expansion, got %q", cfg.Content.Git.Auth.Token)
	}
}

func TestLoad_GitDefaults(t *testing.T) {
	path := writeConfigFile(t, `
content:
  git:
    url: https://example.com/content.git
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Content.Git.Branch != "main" {
		t.Errorf("expected default branch main, got %q", cfg.Content.Git.Branch)
	}
	if cfg.Content.Git.Depth != 1 {
		t.Errorf("expected default depth 1, got %d", cfg.Content.Git.Depth)
	}
	if cfg.Content.CacheDir != ".pagepress/content" {
		t.Errorf("expected default cache dir, got %q", cfg.Content.CacheDir)
	}
}

func TestValidate_RejectsBadValues(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "zero reading speed",
			mutate:  func(c *Config) { c.Build.ReadingSpeed = -1 },
			wantMsg: "reading_speed",
		},
		{
			name:    "negative workers",
			mutate:  func(c *Config) { c.Build.Workers = -2 },
			wantMsg: "workers",
		},
		{
			name:    "zero excerpt words",
			mutate:  func(c *Config) { c.Build.ExcerptWords = -5 },
			wantMsg: "excerpt_words",
		},
		{
			name:    "empty output dir",
			mutate:  func(c *Config) { c.Output.Dir = "" },
			wantMsg: "output.dir",
		},
		{
			name:    "bad debounce",
			mutate:  func(c *Config) { c.Watch.Debounce = "soon" },
			wantMsg: "watch.debounce",
		},
		{
			name:    "interval below debounce",
			mutate: func(c *Config) {
				c.Watch.Debounce = "1s"
				c.Watch.Interval = "500ms"
			},
			wantMsg: "watch.interval",
		},
		{
			name:    "git without url",
			mutate:  func(c *Config) { c.Content.Git = &GitConfig{} },
			wantMsg: "content.git.url",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !errors.HasCategory(err, errors.CategoryConfig) {
				t.Errorf("expected config category, got %v", err)
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("expected message mentioning %q, got %q", tc.wantMsg, err.Error())
			}
		})
	}
}

func TestDefault_IsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
}

func TestEffectiveWorkers(t *testing.T) {
	b := BuildConfig{Workers: 3}
	if got := b.EffectiveWorkers(); got != 3 {
		t.Errorf("explicit workers: got %d", got)
	}
	b.Workers = 0
	if got := b.EffectiveWorkers(); got < 1 {
		t.Errorf("expected at least one worker, got %d", got)
	}
}

func TestInit_WritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagepress.yaml")

	if err := Init(path, false); err != nil {
		t.Fatalf("Init: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load of generated config: %v", err)
	}
	if cfg.Build.ReadingSpeed != 200 {
		t.Errorf("expected example reading speed 200, got %d", cfg.Build.ReadingSpeed)
	}
	if cfg.History.Path == "" {
		t.Error("expected example history path")
	}
}

func TestInit_RefusesOverwriteWithoutForce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pagepress.yaml")
	if err := os.WriteFile(path, []byte("site: {}\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	err := Init(path, false)
	if err == nil {
		t.Fatal("expected error without --force")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Errorf("unexpected message: %q", err.Error())
	}

	if err := Init(path, true); err != nil {
		t.Fatalf("Init with force: %v", err)
	}
}
