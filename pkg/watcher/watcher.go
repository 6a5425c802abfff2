// Package watcher reloads a mind-map source file when it changes on disk.
package watcher

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// DefaultDebounce is the quiet period used when none is given.
const DefaultDebounce = 200 * time.Millisecond

// Watcher calls a function after the watched file settles following a
// change. The parent directory is watched rather than the file, so editors
// that save by renaming a temporary file over the original keep working.
type Watcher struct {
	path     string
	onChange func(path string)
	debounce *Debouncer
	fsw      *fsnotify.Watcher
}

// New watches path. onChange runs on a timer goroutine; it must be safe to
// call concurrently with the rest of the program.
func New(path string, debounce time.Duration, onChange func(path string)) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "resolving %s", path)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "creating file watcher")
	}
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		fsw.Close()
		return nil, errors.Wrapf(err, "watching %s", filepath.Dir(abs))
	}
	return &Watcher{
		path:     abs,
		onChange: onChange,
		debounce: NewDebouncer(debounce),
		fsw:      fsw,
	}, nil
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string {
	return w.path
}

// Run delivers change notifications until ctx is cancelled. It closes the
// underlying watcher on return.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	defer w.debounce.Cancel()

	logger := log.WithField("path", w.path)
	logger.Info("watching mind-map source")

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			logger.WithField("op", ev.Op.String()).Debug("source changed")
			w.debounce.Trigger(func() { w.onChange(w.path) })

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.WithError(err).Warn("file watcher error")
		}
	}
}
