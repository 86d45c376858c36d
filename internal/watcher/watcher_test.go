package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

func TestTranslate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		op   fsnotify.Op
		want Operation
		ok   bool
	}{
		{op: fsnotify.Create, want: Created, ok: true},
		{op: fsnotify.Write, want: Modified, ok: true},
		{op: fsnotify.Remove, want: Removed, ok: true},
		{op: fsnotify.Rename, want: Removed, ok: true},
		{op: fsnotify.Chmod, ok: false},
	}

	for _, tt := range tests {
		got, ok := translate(fsnotify.Event{Name: "/in/a.pdf", Op: tt.op})
		if ok != tt.ok {
			t.Fatalf("%v: expected ok=%v, got %v", tt.op, tt.ok, ok)
		}
		if ok && (got.Operation != tt.want || got.Path != "/in/a.pdf") {
			t.Fatalf("%v: unexpected event %+v", tt.op, got)
		}
	}
}

func TestWatchBatchesFilteredChanges(t *testing.T) {
	dir := t.TempDir()

	w, err := New(func(path string) bool { return strings.HasSuffix(path, ".txt") }, 50*time.Millisecond, zap.NewNop())
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	batches, err := w.Watch(ctx, dir)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "ignored.xlsx"), []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "alice.txt"), []byte("Alice"), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case batch := <-batches:
		if len(batch) == 0 {
			t.Fatal("expected at least one event")
		}
		for _, e := range batch {
			if filepath.Base(e.Path) != "alice.txt" {
				t.Fatalf("unexpected event for %s", e.Path)
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for a batch")
	}

	cancel()
	select {
	case _, ok := <-batches:
		if ok {
			t.Fatal("expected channel to close after cancellation")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("channel not closed after cancellation")
	}
}

func TestWatchRequiresDirectories(t *testing.T) {
	w, err := New(nil, 0, nil)
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	defer w.Close()

	if _, err := w.Watch(context.Background()); err == nil {
		t.Fatal("expected error without directories")
	}
	if _, err := w.Watch(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing directory")
	}
}
