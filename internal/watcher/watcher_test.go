package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestConfigWatcher_DetectsWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 1)
	w := NewConfigWatcher(path, func(p string) {
		select {
		case changed <- p:
		default:
		}
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	// give the watcher a moment to register
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("debug: true\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-changed:
		if p != path {
			t.Errorf("callback path = %q, want %q", p, path)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change callback")
	}
}

func TestConfigWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("debug: false\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 1)
	w := NewConfigWatcher(path, func(p string) {
		select {
		case changed <- p:
		default:
		}
	}, WithDebounce(50*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	other := filepath.Join(dir, "other.txt")
	if err := os.WriteFile(other, []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case p := <-changed:
		t.Errorf("unexpected callback for %q", p)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestConfigWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("a: 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var calls atomic.Int64
	done := make(chan struct{})
	w := NewConfigWatcher(path, func(string) {
		if calls.Add(1) == 1 {
			close(done)
		}
	}, WithDebounce(200*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := w.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer w.Stop()

	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		if err := os.WriteFile(path, []byte("a: 2\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)
	}

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for debounced callback")
	}
	// allow any stray second fire to land before asserting
	time.Sleep(400 * time.Millisecond)
	if n := calls.Load(); n > 2 {
		t.Errorf("callback fired %d times, want at most 2", n)
	}
}
