package store

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/litescript/ls-release-tui/internal/log"
)

// DefaultDebounce collapses bursts of writes into one notification.
const DefaultDebounce = 150 * time.Millisecond

// Watcher reports changes to snapshot files made by other processes,
// such as the CLI writing while the TUI is open.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	match    func(name string) bool
	onChange func()
	done     chan struct{}
	once     sync.Once
}

// WatchPath returns the directory to watch and a filter for s,
// or ok=false when s has nothing on disk to watch.
func WatchPath(s Store) (dir string, match func(string) bool, ok bool) {
	switch st := s.(type) {
	case *FileStore:
		return st.Dir(), IsSnapshotFile, true
	case *SQLiteStore:
		base := filepath.Base(st.Path())
		return filepath.Dir(st.Path()), func(name string) bool {
			return strings.HasPrefix(filepath.Base(name), base)
		}, true
	default:
		return "", nil, false
	}
}

// IsSnapshotFile reports whether name is a FileStore snapshot, as opposed
// to the lock file or an in-flight temp file.
func IsSnapshotFile(name string) bool {
	base := filepath.Base(name)
	return filepath.Ext(base) == ".json" && !strings.HasPrefix(base, ".")
}

// NewWatcher watches dir and calls onChange, debounced, whenever a file
// accepted by match is written or replaced. onChange runs on its own goroutine.
func NewWatcher(dir string, match func(string) bool, onChange func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	if match == nil {
		match = func(string) bool { return true }
	}

	w := &Watcher{
		watcher:  fsw,
		debounce: DefaultDebounce,
		match:    match,
		onChange: onChange,
		done:     make(chan struct{}),
	}

	go w.run()

	return w, nil
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// Renames land as Create on the target name
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 && w.match(event.Name) {
				log.Debug(log.CatWatcher, "snapshot changed", "file", event.Name, "op", event.Op.String())
				w.scheduleRefresh()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.ErrorErr(log.CatWatcher, "watch error", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) scheduleRefresh() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.debounce, func() {
		if w.onChange != nil {
			w.onChange()
		}
	})
}

// Stop closes the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.done)
		w.watcher.Close()

		w.mu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.mu.Unlock()
	})
}
