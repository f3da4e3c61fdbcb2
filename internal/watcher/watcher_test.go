package watcher

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"matgraph/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{Format: logging.HumanFormat, Level: logging.ErrorLevel})
}

func writeEvent(path string) fsnotify.Event {
	return fsnotify.Event{Name: path, Op: fsnotify.Write}
}

func TestDebouncerCoalesces(t *testing.T) {
	var calls int32
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	for i := 0; i < 10; i++ {
		d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	}

	time.Sleep(200 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Errorf("calls = %d, want 1", got)
	}
}

func TestDebouncerStop(t *testing.T) {
	var calls int32
	d := NewDebouncer(50 * time.Millisecond)

	d.Trigger(func() { atomic.AddInt32(&calls, 1) })
	d.Stop()

	time.Sleep(150 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("calls = %d, want 0 after Stop", got)
	}
}

func TestIsRelevant(t *testing.T) {
	tmp := t.TempDir()

	tests := []struct {
		name string
		path string
		want bool
	}{
		{"script write", filepath.Join(tmp, "main.m"), true},
		{"uppercase extension", filepath.Join(tmp, "MAIN.M"), true},
		{"log file", filepath.Join(tmp, "scan.log"), false},
		{"state db", filepath.Join(tmp, "matgraph.db"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := writeEvent(tt.path)
			if got := isRelevant(event); got != tt.want {
				t.Errorf("isRelevant(%s) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestWatcherInvalidatesOnScriptChange(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "main.m"), []byte("x = 1;\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	changed := make(chan string, 1)
	w, err := New(50, testLogger(), func(projectRoot string) {
		select {
		case changed <- projectRoot:
		default:
		}
	})
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.WatchProject(root); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(root, "main.m"), []byte("helper(1);\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case got := <-changed:
		if got != root {
			t.Errorf("changed root = %s, want %s", got, root)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no invalidation within timeout")
	}
}

func TestWatcherIgnoresUnrelatedFiles(t *testing.T) {
	root := t.TempDir()

	var calls int32
	w, err := New(50, testLogger(), func(string) { atomic.AddInt32(&calls, 1) })
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := w.WatchProject(root); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(filepath.Join(root, "notes.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	time.Sleep(300 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 0 {
		t.Errorf("handler called %d times for a non-script file", got)
	}
}
