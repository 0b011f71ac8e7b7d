package config

import (
	"fmt"
	"time"

	"git.home.luguber.info/inful/pagepress/internal/foundation/errors"
)

// Validate checks the configuration for values the pipeline cannot work
// with. It assumes defaults have already been applied.
func (c *Config) Validate() error {
	validator := newConfigurationValidator(c)
	if err := validator.validate(); err != nil {
		return errors.WrapError(err, errors.CategoryConfig, "invalid configuration").Build()
	}
	return nil
}

// configurationValidator coordinates validation across all configuration domains.
type configurationValidator struct {
	config *Config
}

func newConfigurationValidator(config *Config) *configurationValidator {
	return &configurationValidator{config: config}
}

func (cv *configurationValidator) validate() error {
	if err := cv.validateContent(); err != nil {
		return err
	}
	if err := cv.validateOutput(); err != nil {
		return err
	}
	if err := cv.validateBuild(); err != nil {
		return err
	}
	if err := cv.validateWatch(); err != nil {
		return err
	}
	return nil
}

// validateContent validates the content source configuration.
func (cv *configurationValidator) validateContent() error {
	content := cv.config.Content
	if content.Dir == "" && content.Git == nil {
		return fmt.Errorf("either content.dir or content.git must be configured")
	}
	if content.Git != nil {
		if content.Git.URL == "" {
			return fmt.Errorf("content.git.url cannot be empty")
		}
		if content.Git.Depth < 0 {
			return fmt.Errorf("content.git.depth cannot be negative: %d", content.Git.Depth)
		}
		if content.CacheDir == "" {
			return fmt.Errorf("content.cache_dir is required when content.git is set")
		}
	}
	return nil
}

// validateOutput validates the output destination.
func (cv *configurationValidator) validateOutput() error {
	if cv.config.Output.Dir == "" {
		return fmt.Errorf("output.dir cannot be empty")
	}
	return nil
}

// validateBuild validates pipeline tuning knobs.
func (cv *configurationValidator) validateBuild() error {
	build := cv.config.Build
	if build.ReadingSpeed <= 0 {
		return fmt.Errorf("build.reading_speed must be positive: %d", build.ReadingSpeed)
	}
	if build.ExcerptWords <= 0 {
		return fmt.Errorf("build.excerpt_words must be positive: %d", build.ExcerptWords)
	}
	if build.Workers < 0 {
		return fmt.Errorf("build.workers cannot be negative: %d", build.Workers)
	}
	return nil
}

// validateWatch validates watch-mode duration strings and their relationship.
func (cv *configurationValidator) validateWatch() error {
	watch := cv.config.Watch

	debounce, err := time.ParseDuration(watch.Debounce)
	if err != nil {
		return fmt.Errorf("invalid watch.debounce: %s: %w", watch.Debounce, err)
	}
	if debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive: %s", watch.Debounce)
	}

	interval, err := time.ParseDuration(watch.Interval)
	if err != nil {
		return fmt.Errorf("invalid watch.interval: %s: %w", watch.Interval, err)
	}
	if interval < 0 {
		return fmt.Errorf("watch.interval cannot be negative: %s", watch.Interval)
	}
	if interval > 0 && interval < debounce {
		return fmt.Errorf("watch.interval (%s) must be >= watch.debounce (%s)", watch.Interval, watch.Debounce)
	}

	return nil
}
