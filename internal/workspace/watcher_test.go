package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/fyrsmithlabs/crxproject/internal/project"
)

const testDebounce = 20 * time.Millisecond

func startWatcher(t *testing.T, root string) *Watcher {
	t.Helper()
	w, err := NewWatcher(root, testDebounce, nil)
	require.NoError(t, err)
	require.NoError(t, w.Start(context.Background()))
	return w
}

func writeMarker(t *testing.T, dir string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, project.Marker), []byte("{}"), 0o644))
}

func nextEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev, ok := <-w.Events():
		require.True(t, ok, "events channel closed")
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return Event{}
	}
}

func TestWatcher_ReportsMarkerChanges(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	app := filepath.Join(root, "app")
	require.NoError(t, os.Mkdir(app, 0o755))

	w := startWatcher(t, root)
	defer func() { require.NoError(t, w.Close()) }()

	writeMarker(t, app)
	assert.Equal(t, Event{Kind: Appeared, Path: app}, nextEvent(t, w))

	require.NoError(t, os.Remove(filepath.Join(app, project.Marker)))
	assert.Equal(t, Event{Kind: Vanished, Path: app}, nextEvent(t, w))
}

func TestWatcher_ReportsNewSubdirectory(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	w := startWatcher(t, root)
	defer func() { require.NoError(t, w.Close()) }()

	lib := filepath.Join(root, "lib")
	require.NoError(t, os.Mkdir(lib, 0o755))
	// Give the watcher time to add the new directory before the marker lands.
	time.Sleep(2 * testDebounce)
	writeMarker(t, lib)

	assert.Equal(t, Event{Kind: Appeared, Path: lib}, nextEvent(t, w))
}

func TestWatcher_ReportsRemovedProject(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	app := filepath.Join(root, "app")
	require.NoError(t, os.Mkdir(app, 0o755))
	writeMarker(t, app)

	w := startWatcher(t, root)
	defer func() { require.NoError(t, w.Close()) }()

	require.NoError(t, os.RemoveAll(app))
	assert.Equal(t, Event{Kind: Vanished, Path: app}, nextEvent(t, w))
}

func TestWatcher_IgnoresNonMarkerFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	root := t.TempDir()
	app := filepath.Join(root, "app")
	require.NoError(t, os.Mkdir(app, 0o755))

	w := startWatcher(t, root)

	require.NoError(t, os.WriteFile(filepath.Join(app, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "top.txt"), []byte("x"), 0o644))

	select {
	case ev := <-w.Events():
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(10 * testDebounce):
	}
	require.NoError(t, w.Close())
}

func TestWatcher_CloseClosesEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := startWatcher(t, t.TempDir())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)
}

func TestWatcher_CloseWithoutStart(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher(t.TempDir(), 0, nil)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	_, ok := <-w.Events()
	assert.False(t, ok)
	assert.Error(t, w.Start(context.Background()))
}

func TestWatcher_StopsOnContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	w, err := NewWatcher(t.TempDir(), testDebounce, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, w.Start(ctx))
	cancel()

	select {
	case _, ok := <-w.Events():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not stop")
	}
	require.NoError(t, w.Close())
}

func TestNewWatcher_Errors(t *testing.T) {
	_, err := NewWatcher(filepath.Join(t.TempDir(), "missing"), 0, nil)
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = NewWatcher(file, 0, nil)
	require.Error(t, err)
}

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "appeared", Appeared.String())
	assert.Equal(t, "vanished", Vanished.String())
	assert.Equal(t, "EventKind(7)", EventKind(7).String())
}
