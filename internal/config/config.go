package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/pagepress/internal/foundation/errors"
)

// Config represents the application configuration.
type Config struct {
	Site    SiteConfig    `yaml:"site"`
	Content ContentConfig `yaml:"content"`
	Output  OutputConfig  `yaml:"output"`
	Build   BuildConfig   `yaml:"build"`
	Watch   WatchConfig   `yaml:"watch"`
	History HistoryConfig `yaml:"history"`
	Logging LoggingConfig `yaml:"logging"`
}

// SiteConfig carries presentation metadata passed through to page contexts.
type SiteConfig struct {
	Title   string `yaml:"title,omitempty"`
	BaseURL string `yaml:"base_url,omitempty"`
}

// ContentConfig locates the document sources.
type ContentConfig struct {
	Dir      string     `yaml:"dir"`
	Git      *GitConfig `yaml:"git,omitempty"`
	CacheDir string     `yaml:"cache_dir,omitempty"`
}

// GitConfig describes an optional remote content repository. When set,
// the build fetches it into CacheDir before discovery.
type GitConfig struct {
	URL    string      `yaml:"url"`
	Branch string      `yaml:"branch,omitempty"`
	Depth  int         `yaml:"depth,omitempty"`
	Auth   *AuthConfig `yaml:"auth,omitempty"`
}

// AuthConfig represents git authentication credentials.
type AuthConfig struct {
	Token    string `yaml:"token,omitempty"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

// OutputConfig controls where rendered pages land.
type OutputConfig struct {
	Dir   string `yaml:"dir"`
	Clean bool   `yaml:"clean"`
}

// BuildConfig tunes the rendering pipeline.
type BuildConfig struct {
	ReadingSpeed   int  `yaml:"reading_speed"`    // words per minute
	IncludeDrafts  bool `yaml:"include_drafts"`   // render drafts too
	Strict         bool `yaml:"strict"`           // first document error fails the run
	CountCodeWords bool `yaml:"count_code_words"` // fenced code counts toward word totals
	ExcerptWords   int  `yaml:"excerpt_words"`    // search excerpt length when description absent
	Workers        int  `yaml:"workers"`          // 0 = GOMAXPROCS
}

// WatchConfig tunes the file-watch rebuild loop. Durations are strings in
// Go duration syntax ("300ms", "5m") and validated at load time.
type WatchConfig struct {
	Debounce string `yaml:"debounce,omitempty"`
	Interval string `yaml:"interval,omitempty"` // "0s" disables scheduled rebuilds
}

// DebounceDuration returns the parsed debounce window. Validate guarantees
// the field parses, so errors fall back to the default.
func (w WatchConfig) DebounceDuration() time.Duration {
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return 300 * time.Millisecond
	}
	return d
}

// IntervalDuration returns the parsed rebuild interval, zero when disabled.
func (w WatchConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(w.Interval)
	if err != nil || d < 0 {
		return 0
	}
	return d
}

// HistoryConfig locates the build-run store.
type HistoryConfig struct {
	Path string `yaml:"path"` // empty disables the store
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// EffectiveWorkers resolves the worker count: explicit positive values win,
// otherwise GOMAXPROCS.
func (b BuildConfig) EffectiveWorkers() int {
	if b.Workers > 0 {
		return b.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Default returns a configuration with all defaults applied, matching what
// Load produces for an empty file.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load loads configuration from the specified file.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, errors.ConfigError(fmt.Sprintf("configuration file not found: %s", configPath)).
			WithContext("path", configPath).
			Build()
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to read config file").
			WithContext("path", configPath).
			Build()
	}

	// Expand environment variables in the YAML content before parsing,
	// so values like ${GIT_TOKEN} resolve from the process environment.
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, errors.WrapError(err, errors.CategoryConfig, "failed to parse config file").
			WithContext("path", configPath).
			Build()
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// loadEnvFiles loads the first of .env/.env.local into the process
// environment. Existing variables are never overwritten, and a missing file
// is not an error. Runs before logging is configured, so notes go to stderr.
func loadEnvFiles() {
	for _, envPath := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envPath); err == nil {
			fmt.Fprintf(os.Stderr, "Loaded environment variables from %s\n", envPath)
			return
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Content.Dir == "" {
		c.Content.Dir = "./content"
	}
	if c.Content.CacheDir == "" {
		c.Content.CacheDir = ".pagepress/content"
	}
	if c.Content.Git != nil {
		if c.Content.Git.Branch == "" {
			c.Content.Git.Branch = "main"
		}
		if c.Content.Git.Depth == 0 {
			c.Content.Git.Depth = 1
		}
	}
	if c.Output.Dir == "" {
		c.Output.Dir = "./public"
		c.Output.Clean = true
	}
	if c.Build.ReadingSpeed == 0 {
		c.Build.ReadingSpeed = 200
	}
	if c.Build.ExcerptWords == 0 {
		c.Build.ExcerptWords = 40
	}
	if c.Watch.Debounce == "" {
		c.Watch.Debounce = "300ms"
	}
	if c.Watch.Interval == "" {
		c.Watch.Interval = "0s"
	}
	c.Logging.Level = NormalizeLogLevel(string(c.Logging.Level))
	c.Logging.Format = NormalizeLogFormat(string(c.Logging.Format))
}

// Init creates a new configuration file with example content.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return errors.ConfigError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).
			WithContext("path", configPath).
			Build()
	}

	exampleConfig := Config{
		Site: SiteConfig{
			Title:   "My Site",
			BaseURL: "https://example.com",
		},
		Content: ContentConfig{
			Dir: "./content",
		},
		Output: OutputConfig{
			Dir:   "./public",
			Clean: true,
		},
		Build: BuildConfig{
			ReadingSpeed: 200,
			ExcerptWords: 40,
		},
		Watch: WatchConfig{
			Debounce: "300ms",
		},
		History: HistoryConfig{
			Path: ".pagepress/history.db",
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "failed to marshal config").Build()
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return errors.WrapError(err, errors.CategoryFileSystem, "failed to write config file").
			WithContext("path", configPath).
			Build()
	}

	return nil
}
