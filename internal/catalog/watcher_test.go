package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestWatcherReloadsOnWrite verifies an edit to the catalog file is picked
// up without an explicit Reload call.
func TestWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "exercises.txt")
	s, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	w := NewWatcher(s, 20*time.Millisecond, testLogger())
	go func() { done <- w.Run(ctx) }()
	defer func() {
		cancel()
		<-done
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)

	if err := os.WriteFile(path, []byte("PLANK\nRULE: a,b,c|1,2|flat\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if s.Registry().Has("PLANK") {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("watcher did not reload the catalog")
}

// TestWatcherIgnoresSiblings verifies writes to other files in the directory
// do not trigger a reload.
func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "exercises.txt")
	s, err := Open(path, testLogger())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}

	var loads int
	s.OnLoad(func(*Result, error) { loads++ })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	w := NewWatcher(s, 20*time.Millisecond, testLogger())
	go func() { done <- w.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	time.Sleep(200 * time.Millisecond)

	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if loads != 0 {
		t.Errorf("loads = %d, want 0", loads)
	}
}
