// Package watcher reports changes to the input directories, batched after a quiet period.
package watcher

import (
	"context"
	"errors"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/spigell/profilematch/internal/logger"
)

const defaultDebounce = 2 * time.Second

// Operation is the kind of change seen on a file.
type Operation string

const (
	Created  Operation = "created"
	Modified Operation = "modified"
	Removed  Operation = "removed"
)

type Event struct {
	Path      string
	Operation Operation
}

// Watcher wraps fsnotify and only reports files accepted by the filter.
type Watcher struct {
	fs       *fsnotify.Watcher
	filter   func(path string) bool
	debounce time.Duration
	logger   *zap.Logger
}

// New creates a watcher. A nil filter accepts every file.
func New(filter func(path string) bool, debounce time.Duration, log *zap.Logger) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if filter == nil {
		filter = func(string) bool { return true }
	}
	if debounce <= 0 {
		debounce = defaultDebounce
	}
	return &Watcher{fs: fs, filter: filter, debounce: debounce, logger: logger.WithFields(log)}, nil
}

// Watch starts monitoring dirs. Changes are delivered as one batch once no new change arrived
// for the debounce period. The channel is closed when ctx is done or the watcher is closed.
func (w *Watcher) Watch(ctx context.Context, dirs ...string) (<-chan []Event, error) {
	if len(dirs) == 0 {
		return nil, errors.New("no directories to watch")
	}
	for _, dir := range dirs {
		if err := w.fs.Add(dir); err != nil {
			return nil, err
		}
	}

	batches := make(chan []Event)

	go func() {
		defer close(batches)

		var (
			pending []Event
			timer   *time.Timer
			fire    <-chan time.Time
		)
		defer func() {
			if timer != nil {
				timer.Stop()
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-w.fs.Events:
				if !ok {
					return
				}
				e, ok := translate(event)
				if !ok || !w.filter(e.Path) {
					continue
				}
				w.logger.Debug("input change", zap.String("path", e.Path), zap.String("operation", string(e.Operation)))
				pending = append(pending, e)

				if timer == nil {
					timer = time.NewTimer(w.debounce)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(w.debounce)
				}
				fire = timer.C

			case <-fire:
				fire = nil
				batch := pending
				pending = nil
				select {
				case batches <- batch:
				case <-ctx.Done():
					return
				}

			case err, ok := <-w.fs.Errors:
				if !ok {
					return
				}
				w.logger.Warn("watcher error", zap.Error(err))
			}
		}
	}()

	return batches, nil
}

// Close stops the underlying fsnotify watcher.
func (w *Watcher) Close() error {
	return w.fs.Close()
}

func translate(event fsnotify.Event) (Event, bool) {
	var op Operation
	switch {
	case event.Has(fsnotify.Create):
		op = Created
	case event.Has(fsnotify.Write):
		op = Modified
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		op = Removed
	default:
		return Event{}, false
	}
	return Event{Path: event.Name, Operation: op}, true
}
