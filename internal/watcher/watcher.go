// Package watcher monitors a vault directory for markdown document changes
// and emits debounced batches of events, which callers feed into the
// incremental rescan queue.
package watcher

import (
	"context"
	"time"
)

// Operation is the kind of change observed on a document.
type Operation int

const (
	// OpCreate indicates a new document appeared.
	OpCreate Operation = iota
	// OpModify indicates an existing document changed.
	OpModify
	// OpDelete indicates a document was removed.
	OpDelete
)

// String returns a human-readable representation of the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "CREATE"
	case OpModify:
		return "MODIFY"
	case OpDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// Event is a single observed document change.
type Event struct {
	// Path is the document path relative to the vault root,
	// slash-separated to match the store's document IDs.
	Path string

	// Operation is the kind of change.
	Operation Operation

	// Timestamp is when the change was detected.
	Timestamp time.Time
}

// Watcher watches a vault directory until its context is cancelled.
type Watcher interface {
	// Start begins watching the given directory recursively. It blocks
	// until Stop is called or the context is cancelled.
	Start(ctx context.Context, path string) error

	// Stop stops the watcher and releases resources. Safe to call twice.
	Stop() error

	// Events returns batches of debounced document events.
	// The channel is closed when the watcher stops.
	Events() <-chan []Event

	// Errors returns non-fatal watcher errors; the watcher keeps running.
	Errors() <-chan error
}

// Options configures watcher behavior.
type Options struct {
	// DebounceWindow is how long to coalesce rapid events before emitting.
	// Default: 200ms.
	DebounceWindow time.Duration

	// EventBufferSize is the capacity of the batch channel. Default: 100.
	EventBufferSize int
}

// DefaultOptions returns the default watcher options.
func DefaultOptions() Options {
	return Options{
		DebounceWindow:  200 * time.Millisecond,
		EventBufferSize: 100,
	}
}

// WithDefaults fills zero-valued fields with defaults.
func (o Options) WithDefaults() Options {
	defaults := DefaultOptions()
	if o.DebounceWindow == 0 {
		o.DebounceWindow = defaults.DebounceWindow
	}
	if o.EventBufferSize == 0 {
		o.EventBufferSize = defaults.EventBufferSize
	}
	return o
}
