package macro

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leapstack-labs/argtable/internal/testutil"
)

func TestWatcher_SignalsOnStarChange(t *testing.T) {
	defer goleak.VerifyNone(t)
	macrosDir := writeMacros(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changed := make(chan struct{}, 4)
	done := make(chan error, 1)
	w := NewWatcher(macrosDir, 20*time.Millisecond, testutil.NewTestLogger(t))
	go func() {
		done <- w.Watch(ctx, func() { changed <- struct{}{} })
	}()

	// Give the watcher time to register the directory
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(macrosDir, "notes.txt"), []byte("ignored"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(macrosDir, "utils.star"), []byte("def f(a):\n    pass\n"), 0o644))

	select {
	case <-changed:
	case <-time.After(2 * time.Second):
		t.Fatal("expected change notification")
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop after cancel")
	}
}

func TestWatcher_MissingDir(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "missing"), 0, nil)
	err := w.Watch(context.Background(), func() {})
	require.Error(t, err)
}
