package watcher

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/fsnotify/fsnotify"
)

// LogPattern matches Poker Now table exports.
const LogPattern = "poker_now_log_*.csv"

const (
	defaultSettle = 500 * time.Millisecond
	defaultRescan = 5 * time.Second
)

// DirWatcher reports Poker Now logs in a directory that were created or grew.
// Bursts of writes to one file are coalesced into a single callback once the
// file has been quiet for the settle delay.
type DirWatcher struct {
	Dir string

	pattern string
	settle  time.Duration
	rescan  time.Duration
	clock   quartz.Clock
	watcher *fsnotify.Watcher
	done    chan struct{}

	mu        sync.Mutex
	delivered map[string]fileState
	pending   map[string]*quartz.Timer
	stopOnce  sync.Once
	stopped   bool

	onChange func(path string)
	onError  func(err error)
}

type fileState struct {
	size int64
	mod  time.Time
}

func (s fileState) same(o fileState) bool {
	return s.size == o.size && s.mod.Equal(o.mod)
}

type Config struct {
	Pattern  string        // default LogPattern
	Settle   time.Duration // default 500ms
	Rescan   time.Duration // default 5s; negative disables the periodic rescan
	Clock    quartz.Clock
	OnChange func(path string)
	OnError  func(err error)
}

func New(dir string, cfg Config) (*DirWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}
	dw := &DirWatcher{
		Dir:       filepath.Clean(dir),
		pattern:   cfg.Pattern,
		settle:    cfg.Settle,
		rescan:    cfg.Rescan,
		clock:     cfg.Clock,
		watcher:   w,
		done:      make(chan struct{}),
		delivered: make(map[string]fileState),
		pending:   make(map[string]*quartz.Timer),
		onChange:  cfg.OnChange,
		onError:   cfg.OnError,
	}
	if dw.pattern == "" {
		dw.pattern = LogPattern
	}
	if dw.settle <= 0 {
		dw.settle = defaultSettle
	}
	if dw.rescan == 0 {
		dw.rescan = defaultRescan
	}
	if dw.clock == nil {
		dw.clock = quartz.NewReal()
	}
	return dw, nil
}

// Start records the files already present as seen and begins watching.
// Only later changes are reported.
func (dw *DirWatcher) Start() error {
	slog.Info("watcher starting", "dir", dw.Dir, "pattern", dw.pattern)
	if err := dw.watcher.Add(dw.Dir); err != nil {
		return fmt.Errorf("watch directory %s: %w", dw.Dir, err)
	}
	dw.mu.Lock()
	for _, p := range dw.matches() {
		if st, err := stat(p); err == nil {
			dw.delivered[p] = st
		}
	}
	dw.mu.Unlock()

	go dw.watchLoop()
	return nil
}

func (dw *DirWatcher) Stop() {
	dw.stopOnce.Do(func() {
		slog.Info("watcher stopped", "dir", dw.Dir)
		dw.mu.Lock()
		dw.stopped = true
		for p, t := range dw.pending {
			t.Stop()
			delete(dw.pending, p)
		}
		dw.mu.Unlock()
		close(dw.done)
		_ = dw.watcher.Close()
	})
}

func (dw *DirWatcher) watchLoop() {
	var tick <-chan time.Time
	if dw.rescan > 0 {
		ticker := dw.clock.NewTicker(dw.rescan, "watcher", "rescan")
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-dw.done:
			return
		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
				continue
			}
			if dw.Matches(event.Name) {
				dw.schedule(filepath.Clean(event.Name))
			}
		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			dw.reportError(err)
		case <-tick:
			// fsnotify misses events on some network filesystems.
			for _, p := range dw.Scan() {
				dw.schedule(p)
			}
		}
	}
}

// Matches reports whether path names a watched log in the watched directory.
func (dw *DirWatcher) Matches(path string) bool {
	if filepath.Dir(filepath.Clean(path)) != dw.Dir {
		return false
	}
	ok, err := filepath.Match(dw.pattern, filepath.Base(path))
	return err == nil && ok
}

// Scan returns the watched files whose size or modification time differ from
// what was last reported, sorted by path.
func (dw *DirWatcher) Scan() []string {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	var out []string
	for _, p := range dw.matches() {
		st, err := stat(p)
		if err != nil {
			continue
		}
		if prev, ok := dw.delivered[p]; !ok || !prev.same(st) {
			out = append(out, p)
		}
	}
	return out
}

func (dw *DirWatcher) schedule(path string) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if dw.stopped {
		return
	}
	if t, ok := dw.pending[path]; ok {
		t.Reset(dw.settle, "watcher", "settle")
		return
	}
	dw.pending[path] = dw.clock.AfterFunc(dw.settle, func() { dw.fire(path) }, "watcher", "settle")
}

func (dw *DirWatcher) fire(path string) {
	dw.mu.Lock()
	delete(dw.pending, path)
	if dw.stopped {
		dw.mu.Unlock()
		return
	}
	st, err := stat(path)
	if err != nil {
		dw.mu.Unlock()
		dw.reportError(fmt.Errorf("stat %s: %w", path, err))
		return
	}
	if prev, ok := dw.delivered[path]; ok && prev.same(st) {
		dw.mu.Unlock()
		return
	}
	dw.delivered[path] = st
	dw.mu.Unlock()

	slog.Debug("log changed", "path", path, "size", st.size)
	if dw.onChange != nil {
		dw.onChange(path)
	}
}

func (dw *DirWatcher) reportError(err error) {
	if dw.onError != nil {
		dw.onError(err)
		return
	}
	slog.Warn("watcher error", "dir", dw.Dir, "error", err)
}

func (dw *DirWatcher) matches() []string {
	found, err := filepath.Glob(filepath.Join(dw.Dir, dw.pattern))
	if err != nil {
		return nil
	}
	sort.Strings(found)
	return found
}

// FindLogs lists the Poker Now logs in dir sorted by name.
func FindLogs(dir string) ([]string, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("input directory: %w", err)
	}
	found, err := filepath.Glob(filepath.Join(dir, LogPattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(found)
	return found, nil
}

func stat(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, err
	}
	return fileState{size: info.Size(), mod: info.ModTime()}, nil
}
