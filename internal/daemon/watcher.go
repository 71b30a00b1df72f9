package daemon

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// InputWatcher watches the desired-state input file and nudges the
// coordinator when it changes, so edits take effect without waiting for a
// hardware event.
type InputWatcher struct {
	watcher  *fsnotify.Watcher
	filePath string
	notify   func()
	logger   *slog.Logger
	done     chan struct{}
	mu       sync.Mutex
	running  bool
}

// NewInputWatcher creates a watcher for the given input file. notify is
// invoked on every write to the file.
func NewInputWatcher(filePath string, notify func(), logger *slog.Logger) (*InputWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &InputWatcher{
		watcher:  watcher,
		filePath: filePath,
		notify:   notify,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start begins watching the input file for changes.
func (w *InputWatcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	// Watch the containing directory; editors replace files rather than
	// writing them in place.
	if err := w.watcher.Add(filepath.Dir(w.filePath)); err != nil {
		return err
	}

	go w.watch()
	return nil
}

func (w *InputWatcher) watch() {
	filename := filepath.Base(w.filePath)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.logger.Debug("input file changed", "file", w.filePath)
				w.notify()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("input watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// Stop stops the watcher.
func (w *InputWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}
	w.running = false
	close(w.done)
	return w.watcher.Close()
}
