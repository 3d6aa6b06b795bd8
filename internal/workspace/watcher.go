package workspace

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/crxproject/internal/logging"
	"github.com/fyrsmithlabs/crxproject/internal/project"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// EventKind describes what happened to a project.
type EventKind int

const (
	// Appeared means a direct subdirectory of the root became a project.
	Appeared EventKind = iota

	// Vanished means a project below the root stopped being one.
	Vanished
)

// String implements fmt.Stringer.
func (k EventKind) String() string {
	switch k {
	case Appeared:
		return "appeared"
	case Vanished:
		return "vanished"
	default:
		return fmt.Sprintf("EventKind(%d)", int(k))
	}
}

// Event reports a change in the set of projects under a watched root.
type Event struct {
	Kind EventKind `json:"kind"`
	Path string    `json:"path"`
}

// DefaultDebounce is the quiet period used when none is configured.
const DefaultDebounce = 100 * time.Millisecond

// Watcher watches the direct subdirectories of a root on the operating
// system filesystem and reports projects appearing and vanishing.
type Watcher struct {
	root     string
	debounce time.Duration
	logger   *logging.Logger

	watcher *fsnotify.Watcher
	events  chan Event
	stop    chan struct{}
	done    chan struct{}

	startOnce sync.Once
	stopOnce  sync.Once
	running   bool

	// known holds the project state of each subdirectory; only touched by
	// the processing goroutine after Start.
	known map[string]bool
}

// NewWatcher creates a Watcher for root. Call Start to begin watching and
// Close to release resources.
func NewWatcher(root string, debounce time.Duration, logger *logging.Logger) (*Watcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", abs, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("watch root %s is not a directory", abs)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	return &Watcher{
		root:     abs,
		debounce: debounce,
		logger:   logger.Named("watcher"),
		watcher:  fw,
		events:   make(chan Event, 16),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
		known:    make(map[string]bool),
	}, nil
}

// Root returns the watched directory.
func (w *Watcher) Root() string {
	return w.root
}

// Events returns the channel events are delivered on. It is closed once
// the watcher has stopped.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start records the current projects and begins watching in a background
// goroutine. Projects present at Start are not reported.
func (w *Watcher) Start(ctx context.Context) error {
	var err error
	started := false
	w.startOnce.Do(func() {
		if err = w.watcher.Add(w.root); err != nil {
			err = fmt.Errorf("watching %s: %w", w.root, err)
			return
		}

		entries, readErr := os.ReadDir(w.root)
		if readErr != nil {
			err = fmt.Errorf("listing %s: %w", w.root, readErr)
			return
		}
		for _, e := range entries {
			if !e.IsDir() {
				continue
			}
			sub := filepath.Join(w.root, e.Name())
			w.addSubdir(ctx, sub)
			w.known[sub] = isProjectDir(sub)
		}

		started = true
		w.running = true
		go w.processEvents(ctx)
	})
	if err != nil {
		return err
	}
	if !started {
		return errors.New("watcher already started or closed")
	}
	return nil
}

// Close stops the watcher and waits for its goroutine to exit.
func (w *Watcher) Close() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.stop)
		err = w.watcher.Close()

		// Prevents a later Start and orders w.running.
		w.startOnce.Do(func() {})
		if w.running {
			<-w.done
		} else {
			close(w.events)
		}
	})
	return err
}

func (w *Watcher) addSubdir(ctx context.Context, dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logger.Debug(ctx, "cannot watch subdirectory", zap.String("path", dir), zap.Error(err))
	}
}

// processEvents collects touched subdirectories and re-evaluates them once
// no filesystem event has arrived for the debounce period.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.done)
	defer close(w.events)

	pending := make(map[string]struct{})
	var timer <-chan time.Time

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if dir := w.subdirFor(ctx, ev); dir != "" {
				pending[dir] = struct{}{}
				timer = time.After(w.debounce)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "filesystem watch error", zap.Error(err))
		case <-timer:
			timer = nil
			if !w.flush(ctx, pending) {
				return
			}
			pending = make(map[string]struct{})
		}
	}
}

// subdirFor maps a filesystem event to the direct subdirectory of the root
// it concerns, or "" when it concerns none.
func (w *Watcher) subdirFor(ctx context.Context, ev fsnotify.Event) string {
	parent := filepath.Dir(ev.Name)

	if parent == w.root {
		if ev.Has(fsnotify.Create) {
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				w.addSubdir(ctx, ev.Name)
				return ev.Name
			}
			return ""
		}
		if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
			if _, tracked := w.known[ev.Name]; tracked {
				return ev.Name
			}
		}
		return ""
	}

	if filepath.Dir(parent) == w.root && filepath.Base(ev.Name) == project.Marker {
		return parent
	}
	return ""
}

// flush emits events for every pending subdirectory whose project state
// changed. It returns false when the watcher stopped while sending.
func (w *Watcher) flush(ctx context.Context, pending map[string]struct{}) bool {
	dirs := make([]string, 0, len(pending))
	for dir := range pending {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		now := isProjectDir(dir)
		was := w.known[dir]
		if _, err := os.Stat(dir); err != nil {
			delete(w.known, dir)
		} else {
			w.known[dir] = now
		}
		if now == was {
			continue
		}

		ev := Event{Kind: Vanished, Path: dir}
		if now {
			ev.Kind = Appeared
		}
		w.logger.Debug(ctx, "project change detected",
			zap.String("kind", ev.Kind.String()),
			zap.String("path", ev.Path),
		)

		select {
		case w.events <- ev:
		case <-w.stop:
			return false
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func isProjectDir(dir string) bool {
	info, err := os.Stat(filepath.Join(dir, project.Marker))
	return err == nil && !info.IsDir()
}
