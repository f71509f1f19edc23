package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"mdfview/internal/logs"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "mdfview.log")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestRecentReturnsLastLines(t *testing.T) {
	path := writeLog(t, "a\nb\nc\n")

	lines, offset, err := logs.Recent(path, 2, logs.Filter{})
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if !slices.Equal(lines, []string{"b", "c"}) {
		t.Fatalf("unexpected lines: %#v", lines)
	}
	if offset != 6 {
		t.Fatalf("offset = %d, want 6", offset)
	}
}

func TestRecentFiltersBySession(t *testing.T) {
	path := writeLog(t, "x session_id=s1 opened\ny session_id=s2 opened\nz session_id=s1 closed\n")

	lines, _, err := logs.Recent(path, 10, logs.Filter{Session: "s1"})
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(lines) != 2 || lines[1] != "z session_id=s1 closed" {
		t.Fatalf("unexpected lines: %#v", lines)
	}
}

func TestRecentIgnoresPartialLine(t *testing.T) {
	path := writeLog(t, "done\npart")

	lines, offset, err := logs.Recent(path, 5, logs.Filter{})
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if !slices.Equal(lines, []string{"done"}) || offset != 5 {
		t.Fatalf("lines=%#v offset=%d", lines, offset)
	}
}

func TestRecentMissingFile(t *testing.T) {
	lines, offset, err := logs.Recent(filepath.Join(t.TempDir(), "missing.log"), 5, logs.Filter{})
	if err != nil || lines != nil || offset != 0 {
		t.Fatalf("Recent = %v, %d, %v", lines, offset, err)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := writeLog(t, "start\n")
	_, offset, err := logs.Recent(path, 0, logs.Filter{})
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, offset, logs.Filter{}, 10*time.Millisecond, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
		})
	}()

	file, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	if _, err := file.WriteString("next\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	file.Close()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n > 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Follow returned error: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if !slices.Equal(got, []string{"next"}) {
		t.Fatalf("unexpected followed lines: %#v", got)
	}
}
