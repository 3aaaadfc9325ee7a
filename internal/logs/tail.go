package logs

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	maxLineBytes = 1024 * 1024
	pollInterval = 250 * time.Millisecond
)

// Chunk is a batch of complete lines and the offset just past them.
type Chunk struct {
	Lines  []string
	Offset int64
}

// Tail returns up to limit trailing lines of path. A missing file yields an
// empty chunk at offset zero. limit <= 0 returns no lines but still reports
// the end offset so callers can follow from there.
func Tail(path string, limit int) (Chunk, error) {
	file, err := open(path)
	if err != nil || file == nil {
		return Chunk{}, err
	}
	defer file.Close()

	var ring []string
	if limit > 0 {
		ring = make([]string, 0, limit)
	}
	scanner := newScanner(file)
	for scanner.Scan() {
		if limit <= 0 {
			continue
		}
		if len(ring) == limit {
			ring = append(ring[:0], ring[1:]...)
		}
		ring = append(ring, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return Chunk{}, fmt.Errorf("read log file: %w", err)
	}
	offset, err := file.Seek(0, io.SeekEnd)
	if err != nil {
		return Chunk{}, fmt.Errorf("seek log file: %w", err)
	}
	return Chunk{Lines: ring, Offset: offset}, nil
}

// ReadFrom returns the lines written after offset. An offset beyond the
// current size means the file was rotated, so reading restarts at zero.
func ReadFrom(path string, offset int64) (Chunk, error) {
	file, err := open(path)
	if err != nil || file == nil {
		return Chunk{}, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Chunk{}, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Chunk{}, fmt.Errorf("seek log file: %w", err)
	}

	reader := bufio.NewReaderSize(file, 64*1024)
	chunk := Chunk{Offset: offset}
	for {
		line, err := reader.ReadString('\n')
		if errors.Is(err, io.EOF) {
			// A partial trailing line is left for the next read.
			return chunk, nil
		}
		if err != nil {
			return chunk, fmt.Errorf("read log file: %w", err)
		}
		chunk.Offset += int64(len(line))
		chunk.Lines = append(chunk.Lines, trimNewline(line))
	}
}

// Follow invokes emit for every line appended after offset until ctx is done.
// It returns nil when the context is cancelled.
func Follow(ctx context.Context, path string, offset int64, emit func(string)) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		chunk, err := ReadFrom(path, offset)
		if err != nil {
			return err
		}
		for _, line := range chunk.Lines {
			emit(line)
		}
		offset = chunk.Offset

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func open(path string) (*os.File, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log file: %w", err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("stat log file: %w", err)
	}
	if info.IsDir() {
		file.Close()
		return nil, fmt.Errorf("log path %q is a directory", path)
	}
	return file, nil
}

func newScanner(r io.Reader) *bufio.Scanner {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	return scanner
}

func trimNewline(line string) string {
	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line
}
