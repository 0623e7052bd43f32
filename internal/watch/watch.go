// Package watch rebuilds the site when templates, content or configuration change.
package watch

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-co-op/gocron/v2"

	"git.home.luguber.info/inful/pagebuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/pagebuilder/internal/logfields"
)

// DefaultDebounce is the quiet period after the last event before a rebuild starts.
const DefaultDebounce = 300 * time.Millisecond

// RebuildFunc performs one full rebuild.
type RebuildFunc func(ctx context.Context) error

// Watcher triggers rebuilds on filesystem changes.
type Watcher struct {
	Debounce time.Duration
	// Interval additionally schedules a full rebuild on a fixed period; 0 disables it.
	Interval time.Duration
	Logger   *slog.Logger

	// files watched through their parent directory; events for siblings are dropped
	files map[string]struct{}
	// directories added recursively
	trees []string
}

// New creates a Watcher with default settings.
func New(logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{Debounce: DefaultDebounce, Logger: logger}
}

// Run watches paths until ctx is canceled, calling rebuild after each burst of
// changes. Directories are watched recursively; regular files are watched
// individually. Rebuilds never overlap; changes arriving during a rebuild
// schedule exactly one more.
func (w *Watcher) Run(ctx context.Context, paths []string, rebuild RebuildFunc) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.RuntimeError("create file watcher").WithCause(err).Build()
	}
	defer func() {
		_ = watcher.Close()
	}()

	if err := w.addPaths(watcher, paths); err != nil {
		return err
	}

	rebuildReq, trigger, stop := w.debouncer()
	defer stop()
	done := w.startRebuildWorker(ctx, rebuildReq, rebuild)

	if w.Interval > 0 {
		sched, err := w.schedulePeriodicRebuild(trigger)
		if err != nil {
			stop()
			return err
		}
		defer func() {
			_ = sched.Shutdown()
		}()
	}

	w.Logger.Info("Watching for changes", slog.Any("paths", paths))
	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("Stopping watcher")
			stop()
			<-done
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(watcher, ev, trigger)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("Watcher error", logfields.Error(err))
		}
	}
}

func (w *Watcher) addPaths(watcher *fsnotify.Watcher, paths []string) error {
	w.files = make(map[string]struct{})
	w.trees = nil
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.FileSystemError("resolve watch path").WithCause(err).WithContext("path", p).Build()
		}
		fi, err := os.Stat(abs)
		if err != nil {
			return errors.FileSystemError("watch path not found").WithCause(err).WithContext("path", p).Build()
		}
		if fi.IsDir() {
			w.trees = append(w.trees, abs)
			addDirsRecursive(w.Logger, watcher, abs)
			continue
		}
		w.files[abs] = struct{}{}
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return errors.FileSystemError("watch file").WithCause(err).WithContext("path", p).Build()
		}
	}
	return nil
}

// relevant reports whether an event on path belongs to a watched file or tree.
func (w *Watcher) relevant(path string) bool {
	if _, ok := w.files[path]; ok {
		return true
	}
	for _, root := range w.trees {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) handleEvent(watcher *fsnotify.Watcher, ev fsnotify.Event, trigger func()) {
	path, err := filepath.Abs(ev.Name)
	if err != nil || ShouldIgnore(path) || !w.relevant(path) {
		return
	}
	if ev.Has(fsnotify.Create) {
		if fi, err := os.Stat(path); err == nil && fi.IsDir() {
			addDirsRecursive(w.Logger, watcher, path)
		}
	}
	w.Logger.Debug("File change detected", logfields.Path(path), slog.String("op", ev.Op.String()))
	trigger()
}

// debouncer returns the rebuild request channel, a trigger that (re)arms the
// debounce timer and a stop function disarming it.
func (w *Watcher) debouncer() (chan struct{}, func(), func()) {
	var mu sync.Mutex
	var timer *time.Timer
	stopped := false
	rebuildReq := make(chan struct{}, 1)

	delay := w.Debounce
	if delay <= 0 {
		delay = DefaultDebounce
	}

	trigger := func() {
		mu.Lock()
		defer mu.Unlock()
		if stopped {
			return
		}
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			select {
			case rebuildReq <- struct{}{}:
			default:
			}
		})
	}
	stop := func() {
		mu.Lock()
		defer mu.Unlock()
		stopped = true
		if timer != nil {
			timer.Stop()
		}
	}
	return rebuildReq, trigger, stop
}

// startRebuildWorker runs rebuilds one at a time. The returned channel closes
// when the worker exits.
func (w *Watcher) startRebuildWorker(ctx context.Context, rebuildReq chan struct{}, rebuild RebuildFunc) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-ctx.Done():
				return
			case <-rebuildReq:
				w.processRebuild(ctx, rebuild)
			}
		}
	}()
	return done
}

// schedulePeriodicRebuild starts a gocron job feeding the debouncer every Interval.
func (w *Watcher) schedulePeriodicRebuild(trigger func()) (gocron.Scheduler, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.RuntimeError("create rebuild scheduler").WithCause(err).Build()
	}
	_, err = s.NewJob(
		gocron.DurationJob(w.Interval),
		gocron.NewTask(func() {
			w.Logger.Debug("Scheduled rebuild", slog.Duration("interval", w.Interval))
			trigger()
		}),
		gocron.WithName("periodic-rebuild"),
	)
	if err != nil {
		_ = s.Shutdown()
		return nil, errors.ValidationError("invalid rebuild interval").
			WithCause(err).
			WithContext("interval", w.Interval.String()).
			Build()
	}
	s.Start()
	return s, nil
}

func (w *Watcher) processRebuild(ctx context.Context, rebuild RebuildFunc) {
	w.Logger.Info("Change detected; rebuilding site")
	start := time.Now()
	if err := rebuild(ctx); err != nil {
		w.Logger.Warn("Rebuild failed", logfields.Error(err))
		return
	}
	w.Logger.Info("Rebuild finished", logfields.DurationMS(float64(time.Since(start).Milliseconds())))
}

func addDirsRecursive(logger *slog.Logger, w *fsnotify.Watcher, root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if err := w.Add(path); err != nil {
				logger.Warn("Watch add failed", logfields.Path(path), logfields.Error(err))
			}
		}
		return nil
	})
}

// ShouldIgnore returns true for paths that should not trigger rebuilds:
// hidden files, editor swap and backup files, and OS metadata files.
func ShouldIgnore(path string) bool {
	base := filepath.Base(path)

	if strings.HasPrefix(base, ".") {
		return true
	}

	if strings.HasSuffix(base, "~") ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasPrefix(base, "#") && strings.HasSuffix(base, "#") {
		return true
	}

	return base == "Thumbs.db"
}
