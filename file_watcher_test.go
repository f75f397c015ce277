package cell

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func collectUntil(t *testing.T, ch <-chan []byte, want string, timeout time.Duration) bool {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case data, ok := <-ch:
			if !ok {
				return false
			}
			if string(data) == want {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

func TestFileWatcher_EmitsInitialContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "value.txt")
	if err := os.WriteFile(path, []byte("initial"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	select {
	case data := <-ch:
		if string(data) != "initial" {
			t.Errorf("expected initial contents, got %q", data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected an immediate emission")
	}
}

func TestFileWatcher_EmitsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "value.txt")
	if err := os.WriteFile(path, []byte("one"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	<-ch // initial

	if err := os.WriteFile(path, []byte("two"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if !collectUntil(t, ch, "two", 2*time.Second) {
		t.Error("expected an emission with the new contents")
	}
}

func TestFileWatcher_FileCreatedAfterWatchStarts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "late.txt")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if err := os.WriteFile(path, []byte("born"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if !collectUntil(t, ch, "born", 2*time.Second) {
		t.Error("expected an emission when the file appears")
	}
}

func TestFileWatcher_IgnoresSiblingFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mine.txt")
	if err := os.WriteFile(path, []byte("mine"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := NewFileWatcher(path).Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	<-ch // initial

	if err := os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	select {
	case data := <-ch:
		t.Errorf("unexpected emission %q for a sibling file", data)
	case <-time.After(200 * time.Millisecond):
	}
}
