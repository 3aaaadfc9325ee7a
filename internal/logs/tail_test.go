package logs_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"animewatch/internal/logs"
)

func writeLog(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
}

func appendLog(t *testing.T, path, content string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	if _, err := f.WriteString(content); err != nil {
		t.Fatalf("append log: %v", err)
	}
}

func TestTailLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "animewatch.log")
	writeLog(t, path, "a\nb\nc\n")

	chunk, err := logs.Tail(path, 2)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(chunk.Lines) != 2 || chunk.Lines[0] != "b" || chunk.Lines[1] != "c" {
		t.Fatalf("unexpected lines: %#v", chunk.Lines)
	}
	if chunk.Offset != 6 {
		t.Fatalf("expected offset 6, got %d", chunk.Offset)
	}
}

func TestTailZeroLimitReportsEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "animewatch.log")
	writeLog(t, path, "a\nb\n")

	chunk, err := logs.Tail(path, 0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(chunk.Lines) != 0 || chunk.Offset != 4 {
		t.Fatalf("unexpected chunk: %#v", chunk)
	}
}

func TestTailMissingFile(t *testing.T) {
	chunk, err := logs.Tail(filepath.Join(t.TempDir(), "absent.log"), 5)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(chunk.Lines) != 0 || chunk.Offset != 0 {
		t.Fatalf("unexpected chunk: %#v", chunk)
	}
}

func TestTailRejectsDirectory(t *testing.T) {
	if _, err := logs.Tail(t.TempDir(), 5); err == nil {
		t.Fatal("expected error for directory path")
	}
}

func TestReadFromHoldsPartialLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "animewatch.log")
	writeLog(t, path, "one\ntw")

	chunk, err := logs.ReadFrom(path, 0)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(chunk.Lines) != 1 || chunk.Lines[0] != "one" || chunk.Offset != 4 {
		t.Fatalf("unexpected chunk: %#v", chunk)
	}

	appendLog(t, path, "o\n")
	chunk, err = logs.ReadFrom(path, chunk.Offset)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(chunk.Lines) != 1 || chunk.Lines[0] != "two" {
		t.Fatalf("unexpected chunk after append: %#v", chunk)
	}
}

func TestReadFromRestartsAfterRotation(t *testing.T) {
	path := filepath.Join(t.TempDir(), "animewatch.log")
	writeLog(t, path, "fresh\n")

	chunk, err := logs.ReadFrom(path, 1000)
	if err != nil {
		t.Fatalf("ReadFrom: %v", err)
	}
	if len(chunk.Lines) != 1 || chunk.Lines[0] != "fresh" {
		t.Fatalf("expected restart from top, got %#v", chunk)
	}
}

func TestFollowEmitsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "animewatch.log")
	writeLog(t, path, "start\n")

	start, err := logs.Tail(path, 0)
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	var got []string
	done := make(chan error, 1)
	go func() {
		done <- logs.Follow(ctx, path, start.Offset, func(line string) {
			mu.Lock()
			got = append(got, line)
			mu.Unlock()
			if line == "later" {
				cancel()
			}
		})
	}()

	appendLog(t, path, "later\n")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Follow: %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("follow did not return")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "later" {
		t.Fatalf("unexpected followed lines: %#v", got)
	}
}
