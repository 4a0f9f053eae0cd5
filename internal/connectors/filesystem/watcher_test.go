package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const recordLineJSON = `{"source":"a","page":1,"content":"x"}` + "\n"

func newTestWatcher(root string) *Watcher {
	w := NewWatcher(root)
	w.settle = 20 * time.Millisecond
	return w
}

func TestWatcher_Existing(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.jsonl", "a.JSONL", "notes.txt", ".hidden.jsonl"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(recordLineJSON), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.jsonl"), 0o755))

	paths, err := NewWatcher(dir).Existing()

	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.JSONL"), filepath.Join(dir, "b.jsonl")}, paths)
}

func TestWatcher_Existing_MissingRoot(t *testing.T) {
	_, err := NewWatcher("/non/existent/path").Existing()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "root path error")
}

func TestWatcher_Watch(t *testing.T) {
	t.Run("emits new record files", func(t *testing.T) {
		dir := t.TempDir()
		w := newTestWatcher(dir)
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		paths, err := w.Watch(ctx)
		require.NoError(t, err)

		target := filepath.Join(dir, "batch-1.jsonl")
		go func() {
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644)
			os.WriteFile(target, []byte(recordLineJSON), 0o644)
		}()

		select {
		case path := <-paths:
			assert.Equal(t, target, path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for record file")
		}
	})

	t.Run("coalesces repeated writes", func(t *testing.T) {
		dir := t.TempDir()
		w := newTestWatcher(dir)
		w.settle = 200 * time.Millisecond
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		paths, err := w.Watch(ctx)
		require.NoError(t, err)

		target := filepath.Join(dir, "batch.jsonl")
		f, err := os.Create(target)
		require.NoError(t, err)
		for i := 0; i < 3; i++ {
			_, err := f.WriteString(recordLineJSON)
			require.NoError(t, err)
			time.Sleep(10 * time.Millisecond)
		}
		require.NoError(t, f.Close())

		select {
		case path := <-paths:
			assert.Equal(t, target, path)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for record file")
		}

		select {
		case path := <-paths:
			t.Fatalf("unexpected second event for %s", path)
		case <-time.After(400 * time.Millisecond):
		}
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		w := newTestWatcher(t.TempDir())
		defer w.Close()

		ctx, cancel := context.WithCancel(context.Background())
		paths, err := w.Watch(ctx)
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-paths:
			assert.False(t, ok)
		case <-time.After(time.Second):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		paths, err := NewWatcher("/non/existent/path").Watch(context.Background())

		assert.Error(t, err)
		assert.Nil(t, paths)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("returns error for a file root", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "f.jsonl")
		require.NoError(t, os.WriteFile(file, nil, 0o644))

		_, err := NewWatcher(file).Watch(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("returns error when closed", func(t *testing.T) {
		w := NewWatcher(t.TempDir())
		require.NoError(t, w.Close())

		paths, err := w.Watch(context.Background())

		assert.ErrorIs(t, err, ErrWatcherClosed)
		assert.Nil(t, paths)
	})
}

func TestWatcher_Close(t *testing.T) {
	w := NewWatcher(t.TempDir())

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestHandleFsEvent(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "batch.jsonl")
	require.NoError(t, os.WriteFile(file, []byte(recordLineJSON), 0o644))
	hidden := filepath.Join(dir, ".batch.jsonl")
	require.NoError(t, os.WriteFile(hidden, []byte(recordLineJSON), 0o644))
	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("x"), 0o644))
	subdir := filepath.Join(dir, "nested.jsonl")
	require.NoError(t, os.Mkdir(subdir, 0o755))

	tests := []struct {
		name   string
		path   string
		op     fsnotify.Op
		wantOK bool
	}{
		{"create", file, fsnotify.Create, true},
		{"write", file, fsnotify.Write, true},
		{"write and chmod", file, fsnotify.Write | fsnotify.Chmod, true},
		{"chmod only", file, fsnotify.Chmod, false},
		{"remove", filepath.Join(dir, "gone.jsonl"), fsnotify.Remove, false},
		{"rename", file, fsnotify.Rename, false},
		{"hidden", hidden, fsnotify.Create, false},
		{"wrong extension", text, fsnotify.Write, false},
		{"directory", subdir, fsnotify.Create, false},
		{"vanished before stat", filepath.Join(dir, "tmp.jsonl"), fsnotify.Create, false},
	}

	w := NewWatcher(dir)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := w.handleFsEvent(fsnotify.Event{Name: tt.path, Op: tt.op})
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.path, path)
			}
		})
	}
}

func TestIsHidden(t *testing.T) {
	assert.True(t, isHidden("/a/b/.c.jsonl"))
	assert.False(t, isHidden("/a/.b/c.jsonl"))
	assert.False(t, isHidden("c.jsonl"))
}
