// Package watch monitors documentation files and re-runs classification when
// they change, emitting one update per settled file write.
package watch

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/capdesc/go-capdesc/internal/captypes"
	"github.com/capdesc/go-capdesc/internal/classifier"
)

// Update is one reclassification triggered by a documentation change.
type Update struct {
	Command   string
	Path      string
	Result    captypes.ClassificationResult
	Timestamp time.Time
}

// Watcher monitors documentation files and directories.
type Watcher struct {
	fsWatcher  *fsnotify.Watcher
	classifier *classifier.Classifier
	paths      []string
	settle     time.Duration

	// pending tracks files whose last write has not yet settled
	pending   map[string]time.Time
	pendingMu sync.Mutex

	updates chan Update
	errors  chan error

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher over the given documentation paths. A path may be a
// single file or a directory; directories are watched non-recursively.
// Updates are emitted after a file has been quiet for the settle duration.
func New(c *classifier.Classifier, paths []string, settle time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if settle <= 0 {
		settle = time.Second
	}

	return &Watcher{
		fsWatcher:  fsWatcher,
		classifier: c,
		paths:      paths,
		settle:     settle,
		pending:    make(map[string]time.Time),
		updates:    make(chan Update, 64),
		errors:     make(chan error, 8),
		done:       make(chan struct{}),
	}, nil
}

// Updates returns the channel of reclassification updates.
func (w *Watcher) Updates() <-chan Update {
	return w.updates
}

// Errors returns the channel of watch errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start begins watching all configured paths.
func (w *Watcher) Start() error {
	for _, path := range w.paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if err := w.fsWatcher.Add(absPath); err != nil {
				return err
			}
		} else {
			// fsnotify tracks renames better at the directory level
			if err := w.fsWatcher.Add(filepath.Dir(absPath)); err != nil {
				return err
			}
		}
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.settleLoop()
	return nil
}

// Stop shuts down the watcher and closes the update channel.
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()
	close(w.updates)
	close(w.errors)
	return w.fsWatcher.Close()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			info, err := os.Stat(event.Name)
			if err != nil || info.IsDir() {
				continue
			}

			w.pendingMu.Lock()
			w.pending[event.Name] = time.Now()
			w.pendingMu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
			}
		}
	}
}

func (w *Watcher) settleLoop() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case now := <-ticker.C:
			w.flushSettled(now)
		}
	}
}

// flushSettled reclassifies every pending file that has been quiet long
// enough.
func (w *Watcher) flushSettled(now time.Time) {
	w.pendingMu.Lock()
	var settled []string
	for path, last := range w.pending {
		if now.Sub(last) >= w.settle {
			settled = append(settled, path)
			delete(w.pending, path)
		}
	}
	w.pendingMu.Unlock()

	for _, path := range settled {
		data, err := os.ReadFile(path)
		if err != nil {
			select {
			case w.errors <- err:
			default:
			}
			continue
		}

		command := CommandFromPath(path)
		update := Update{
			Command:   command,
			Path:      path,
			Result:    w.classifier.Classify(command, string(data)),
			Timestamp: now,
		}
		select {
		case w.updates <- update:
		case <-w.done:
			return
		}
	}
}

// CommandFromPath derives the command name from a documentation file name.
// Man-page section suffixes and common text extensions are stripped, so
// "rm.1", "rm.1.gz", "rm.txt", and "rm.md" all map to "rm".
func CommandFromPath(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, ".gz")
	ext := filepath.Ext(name)
	switch {
	case ext == ".txt" || ext == ".md" || ext == ".man":
		name = strings.TrimSuffix(name, ext)
	case len(ext) == 2 && ext[1] >= '1' && ext[1] <= '9':
		name = strings.TrimSuffix(name, ext)
	}
	return name
}
