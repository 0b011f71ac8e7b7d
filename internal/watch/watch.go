// Package watch reruns the build pipeline when content changes on disk, with
// an optional fixed-interval rebuild for content that arrives out of band.
package watch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/pagepress/internal/config"
	"git.home.luguber.info/inful/pagepress/internal/logfields"
	"git.home.luguber.info/inful/pagepress/internal/pipeline"
)

// Rebuilder runs one complete build. pipeline.Builder satisfies it.
type Rebuilder interface {
	Run(ctx context.Context) (*pipeline.BuildReport, error)
}

// Watcher owns the watch loop: an initial build, then debounced rebuilds on
// filesystem events and optional scheduled rebuilds. Rebuild failures are
// logged and the loop keeps running; unchanged content short-circuits inside
// the pipeline itself.
type Watcher struct {
	cfg      *config.Config
	builder  Rebuilder
	debounce time.Duration
	interval time.Duration
}

// New creates a Watcher using the debounce window and rebuild interval from
// the watch section of the configuration.
func New(cfg *config.Config, builder Rebuilder) *Watcher {
	return &Watcher{
		cfg:      cfg,
		builder:  builder,
		debounce: cfg.Watch.DebounceDuration(),
		interval: cfg.Watch.IntervalDuration(),
	}
}

// Run blocks until ctx is canceled. Local content is watched recursively;
// git-backed content has no local tree worth watching, so it requires a
// rebuild interval instead.
func (w *Watcher) Run(ctx context.Context) error {
	if w.cfg.Content.Git != nil && w.interval <= 0 {
		return fmt.Errorf("watching git content requires watch.interval > 0")
	}

	w.rebuild(ctx, "startup")

	var watcher *fsnotify.Watcher
	if w.cfg.Content.Git == nil {
		fw, err := newFileWatcher(w.cfg.Content.Dir)
		if err != nil {
			return err
		}
		watcher = fw
		defer func() { _ = watcher.Close() }()
	}

	rebuildReq, trigger := newDebouncer(w.debounce)
	go w.rebuildWorker(ctx, rebuildReq)

	if w.interval > 0 {
		scheduler, err := startScheduler(w.interval, trigger)
		if err != nil {
			return err
		}
		defer func() { _ = scheduler.Shutdown() }()
	}

	slog.Info("Watching for changes",
		logfields.Path(w.cfg.Content.Dir),
		slog.String("debounce", w.debounce.String()),
		slog.String("interval", w.interval.String()))
	return w.loop(ctx, watcher, trigger)
}

// newFileWatcher creates an fsnotify watcher covering dir and every
// subdirectory under it.
func newFileWatcher(dir string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("fsnotify: %w", err)
	}
	if err := addDirsRecursive(watcher, dir); err != nil {
		_ = watcher.Close()
		return nil, err
	}
	return watcher, nil
}

// startScheduler registers a periodic trigger with gocron and starts it.
func startScheduler(interval time.Duration, trigger func()) (gocron.Scheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(trigger),
		gocron.WithName("interval-rebuild"),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("schedule interval rebuild: %w", err)
	}
	scheduler.Start()
	return scheduler, nil
}

// newDebouncer returns a capacity-one request channel and a trigger that
// arms (or re-arms) a timer for the quiet window. The non-blocking send plus
// the single-slot buffer coalesce any burst into at most one queued rebuild.
func newDebouncer(window time.Duration) (chan struct{}, func()) {
	var mu sync.Mutex
	var timer *time.Timer
	req := make(chan struct{}, 1)

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(window, func() {
			select {
			case req <- struct{}{}:
			default:
			}
		})
	}
	return req, trigger
}

// rebuildWorker serializes rebuilds. A trigger landing mid-build parks in the
// channel buffer and runs once the current build finishes.
func (w *Watcher) rebuildWorker(ctx context.Context, rebuildReq <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-rebuildReq:
			if !ok {
				return
			}
			w.rebuild(ctx, "change")
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context, reason string) {
	report, err := w.builder.Run(ctx)
	if err != nil {
		slog.Error("Rebuild failed", logfields.Reason(reason), logfields.Error(err))
		return
	}
	slog.Info("Rebuild finished",
		logfields.Reason(reason),
		logfields.Outcome(string(report.Outcome)),
		slog.String("summary", report.Summary()))
}

// loop dispatches filesystem events until ctx is canceled. With a nil watcher
// (git content) only the scheduler drives rebuilds.
func (w *Watcher) loop(ctx context.Context, watcher *fsnotify.Watcher, trigger func()) error {
	if watcher == nil {
		<-ctx.Done()
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			handleEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("Watcher error", logfields.Error(err))
		}
	}
}

// handleEvent filters noise, tracks newly created directories, and fires the
// debounced trigger. Whether the change actually affects the site is decided
// by the build key, not here.
func handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	if shouldIgnore(ev.Name) {
		return
	}
	if ev.Op&fsnotify.Create == fsnotify.Create {
		if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
			_ = addDirsRecursive(watcher, ev.Name)
		}
	}
	slog.Debug("File change detected", logfields.Path(ev.Name), slog.String("op", ev.Op.String()))
	trigger()
}

func addDirsRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if err := watcher.Add(path); err != nil {
				slog.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// shouldIgnore reports whether a path is editor or OS noise that must not
// trigger rebuilds.
func shouldIgnore(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}
	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, ".#") ||
		(strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#")) {
		return true
	}
	return base == "Thumbs.db"
}
