package watcher

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// VaultWatcher watches a vault directory with fsnotify, filtering to
// markdown documents and emitting debounced event batches.
type VaultWatcher struct {
	fsWatcher *fsnotify.Watcher
	debouncer *Debouncer
	events    chan []Event
	errors    chan error
	stopCh    chan struct{}
	rootPath  string
	opts      Options
	mu        sync.Mutex
	stopped   bool
}

// Note: Events() returns batched events ([]Event) due to debouncing.
var _ interface {
	Start(ctx context.Context, path string) error
	Stop() error
	Events() <-chan []Event
	Errors() <-chan error
} = (*VaultWatcher)(nil)

// NewVaultWatcher creates a watcher with the given options.
func NewVaultWatcher(opts Options) (*VaultWatcher, error) {
	opts = opts.WithDefaults()

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fsnotify watcher: %w", err)
	}

	return &VaultWatcher{
		fsWatcher: fsw,
		debouncer: NewDebouncer(opts.DebounceWindow),
		events:    make(chan []Event, opts.EventBufferSize),
		errors:    make(chan error, 10),
		stopCh:    make(chan struct{}),
		opts:      opts,
	}, nil
}

// Start begins watching the vault. It blocks until Stop is called or the
// context is cancelled.
func (w *VaultWatcher) Start(ctx context.Context, path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve absolute path: %w", err)
	}
	w.rootPath = absPath

	if err := w.addRecursive(absPath); err != nil {
		return fmt.Errorf("add directories to watcher: %w", err)
	}

	go w.forwardDebouncedEvents(ctx)

	slog.Info("vault watcher started", slog.String("path", absPath))

	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
			w.emitError(err)
		}
	}
}

// addRecursive watches every non-hidden directory under root. fsnotify does
// not recurse on its own.
func (w *VaultWatcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if name := d.Name(); path != root && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

// handleEvent filters and translates a raw fsnotify event.
func (w *VaultWatcher) handleEvent(event fsnotify.Event) {
	// New subdirectories need an explicit watch.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !strings.HasPrefix(filepath.Base(event.Name), ".") {
				if err := w.fsWatcher.Add(event.Name); err != nil {
					w.emitError(fmt.Errorf("watch new directory %s: %w", event.Name, err))
				}
			}
			return
		}
	}

	if !strings.EqualFold(filepath.Ext(event.Name), ".md") {
		return
	}

	rel, err := filepath.Rel(w.rootPath, event.Name)
	if err != nil {
		return
	}
	rel = filepath.ToSlash(rel)
	if isHiddenPath(rel) {
		return
	}

	var op Operation
	switch {
	case event.Op.Has(fsnotify.Create):
		op = OpCreate
	case event.Op.Has(fsnotify.Write):
		op = OpModify
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		// Renames surface as a remove of the old path; the new path
		// arrives as its own create event.
		op = OpDelete
	default:
		return
	}

	w.debouncer.Add(Event{
		Path:      rel,
		Operation: op,
		Timestamp: time.Now(),
	})
}

func isHiddenPath(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}

// forwardDebouncedEvents moves batches from the debouncer to the public
// events channel. It is the only sender on w.events and therefore the only
// goroutine allowed to close it.
func (w *VaultWatcher) forwardDebouncedEvents(ctx context.Context) {
	defer close(w.events)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case batch, ok := <-w.debouncer.Output():
			if !ok {
				return
			}
			select {
			case w.events <- batch:
			default:
				slog.Warn("watcher event channel full, dropping batch",
					slog.Int("batch_size", len(batch)))
			}
		}
	}
}

func (w *VaultWatcher) emitError(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

// Events returns batches of debounced document events.
func (w *VaultWatcher) Events() <-chan []Event {
	return w.events
}

// Errors returns non-fatal watcher errors.
func (w *VaultWatcher) Errors() <-chan error {
	return w.errors
}

// Stop stops the watcher and releases resources. Safe to call multiple times.
func (w *VaultWatcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stopped {
		return nil
	}
	w.stopped = true

	// w.events is closed by forwardDebouncedEvents once it observes stopCh;
	// closing it here would race the forwarder's in-flight send. w.errors
	// stays open because emitError may still run while Start unwinds.
	close(w.stopCh)
	w.debouncer.Stop()
	return w.fsWatcher.Close()
}
