package watcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVaultWatcher_StopDuringEventFlood(t *testing.T) {
	dir := t.TempDir()

	// A tiny debounce window and event buffer keep the forwarder busy
	// sending while Stop runs.
	w, err := NewVaultWatcher(Options{
		DebounceWindow:  5 * time.Millisecond,
		EventBufferSize: 1,
	})
	require.NoError(t, err)

	started := make(chan error, 1)
	go func() { started <- w.Start(context.Background(), dir) }()

	// Drain events the way the watch command does.
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for range w.Events() {
		}
	}()

	// Given: a steady flood of document changes
	stopWrites := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stopWrites:
				return
			default:
			}
			path := filepath.Join(dir, fmt.Sprintf("note%d.md", i%10))
			_ = os.WriteFile(path, []byte("x"), 0o644)
		}
	}()

	time.Sleep(25 * time.Millisecond)

	// When: the watcher is stopped mid-flood
	require.NoError(t, w.Stop())
	close(stopWrites)
	wg.Wait()

	// Then: Start unwinds cleanly and the events channel is closed by its
	// sender, so no send races the close
	select {
	case err := <-started:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
	select {
	case <-drained:
	case <-time.After(2 * time.Second):
		t.Fatal("events channel was not closed after Stop")
	}

	// Stop stays idempotent.
	require.NoError(t, w.Stop())
}
