package watcher

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectBatch(t *testing.T, d *Debouncer, timeout time.Duration) []Event {
	t.Helper()
	select {
	case events := <-d.Output():
		return events
	case <-time.After(timeout):
		t.Fatal("timeout waiting for debounced events")
		return nil
	}
}

func TestDebouncer_SingleEvent_PassesThrough(t *testing.T) {
	// Given: a debouncer with a short window
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// When: a single event is added
	d.Add(Event{Path: "notes.md", Operation: OpCreate, Timestamp: time.Now()})

	// Then: the event passes through after the window
	events := collectBatch(t, d, 500*time.Millisecond)
	require.Len(t, events, 1)
	assert.Equal(t, "notes.md", events[0].Path)
	assert.Equal(t, OpCreate, events[0].Operation)
}

func TestDebouncer_RapidWrites_Coalesce(t *testing.T) {
	d := NewDebouncer(100 * time.Millisecond)
	defer d.Stop()

	// When: an editor fires several writes for the same document
	for i := 0; i < 5; i++ {
		d.Add(Event{Path: "notes.md", Operation: OpModify, Timestamp: time.Now()})
		time.Sleep(10 * time.Millisecond)
	}

	// Then: only one event comes out
	events := collectBatch(t, d, 500*time.Millisecond)
	require.Len(t, events, 1)
	assert.Equal(t, OpModify, events[0].Operation)
}

func TestDebouncer_CreateThenDelete_NoEvent(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// CREATE followed by DELETE cancels out: the document never existed
	// as far as downstream rescans care.
	d.Add(Event{Path: "tmp.md", Operation: OpCreate, Timestamp: time.Now()})
	d.Add(Event{Path: "tmp.md", Operation: OpDelete, Timestamp: time.Now()})

	select {
	case events := <-d.Output():
		t.Fatalf("expected no events, got %v", events)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestDebouncer_CreateThenModify_StaysCreate(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(Event{Path: "notes.md", Operation: OpCreate, Timestamp: time.Now()})
	d.Add(Event{Path: "notes.md", Operation: OpModify, Timestamp: time.Now()})

	events := collectBatch(t, d, 500*time.Millisecond)
	require.Len(t, events, 1)
	assert.Equal(t, OpCreate, events[0].Operation)
}

func TestDebouncer_DeleteThenCreate_BecomesModify(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	// Atomic-save editors delete and recreate; downstream sees a modify.
	d.Add(Event{Path: "notes.md", Operation: OpDelete, Timestamp: time.Now()})
	d.Add(Event{Path: "notes.md", Operation: OpCreate, Timestamp: time.Now()})

	events := collectBatch(t, d, 500*time.Millisecond)
	require.Len(t, events, 1)
	assert.Equal(t, OpModify, events[0].Operation)
}

func TestDebouncer_DistinctPaths_SeparateEvents(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	d.Add(Event{Path: "a.md", Operation: OpModify, Timestamp: time.Now()})
	d.Add(Event{Path: "b.md", Operation: OpModify, Timestamp: time.Now()})

	events := collectBatch(t, d, 500*time.Millisecond)
	assert.Len(t, events, 2)
}

func TestDebouncer_AddAfterStop_NoPanic(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	d.Stop()
	d.Stop() // stop is idempotent

	d.Add(Event{Path: "notes.md", Operation: OpModify, Timestamp: time.Now()})
}
