// Package spool buffers samples that could not be uploaded, one JSON object
// per line, so a network outage does not lose readings across restarts.
package spool

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/dominicporter/software-for-climate-iot/internal/domain"
	"github.com/dominicporter/software-for-climate-iot/internal/ports"
)

const spoolFileName = "spool.jsonl"

// FileSpool is an append-only JSON-lines file with FIFO drain. When the size
// budget is exceeded the oldest entries are dropped first.
type FileSpool struct {
	mu        sync.Mutex
	path      string
	maxBytes  int64
	entries   int
	sizeBytes int64
}

func NewFileSpool(dir string, maxBytes int64) (*FileSpool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	s := &FileSpool{
		path:     filepath.Join(dir, spoolFileName),
		maxBytes: maxBytes,
	}
	if err := s.bootstrap(); err != nil {
		return nil, err
	}
	return s, nil
}

// bootstrap counts the surviving entries and truncates a torn trailing line
// left by a crash mid-append.
func (s *FileSpool) bootstrap() error {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReader(f)
	var good int64
	for {
		line, err := r.ReadBytes('\n')
		if err != nil {
			if errors.Is(err, io.EOF) && len(line) > 0 {
				// torn line
				s.sizeBytes = good
				return os.Truncate(s.path, good)
			}
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		s.entries++
		good += int64(len(line))
	}
	s.sizeBytes = good
	return nil
}

func (s *FileSpool) Append(sample *domain.Sample) error {
	line, err := json.Marshal(sample)
	if err != nil {
		return err
	}
	line = append(line, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.maxBytes > 0 && s.sizeBytes+int64(len(line)) > s.maxBytes {
		if err := s.dropOldestLocked(s.sizeBytes + int64(len(line)) - s.maxBytes); err != nil {
			return fmt.Errorf("spool evict: %w", err)
		}
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(line); err != nil {
		return err
	}
	s.entries++
	s.sizeBytes += int64(len(line))
	return nil
}

// Drain replays up to max entries through fn in FIFO order, rewriting the
// file with whatever fn did not accept. It stops at the first fn error.
// Corrupt entries are removed without counting toward the replayed total.
func (s *FileSpool) Drain(max int, fn func(*domain.Sample) error) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, err := s.readLinesLocked()
	if err != nil {
		return 0, err
	}

	var (
		replayed int
		fnErr    error
	)
	idx := 0
	for ; idx < len(lines); idx++ {
		if max > 0 && replayed >= max {
			break
		}
		var sample domain.Sample
		if err := json.Unmarshal(lines[idx], &sample); err != nil {
			// corrupt entry: drop it rather than wedge the spool
			continue
		}
		if err := fn(&sample); err != nil {
			fnErr = err
			break
		}
		replayed++
	}

	if err := s.rewriteLocked(lines[idx:]); err != nil {
		return replayed, err
	}
	return replayed, fnErr
}

func (s *FileSpool) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries
}

func (s *FileSpool) SizeBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sizeBytes
}

func (s *FileSpool) readLinesLocked() ([][]byte, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lines [][]byte
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func (s *FileSpool) dropOldestLocked(excess int64) error {
	lines, err := s.readLinesLocked()
	if err != nil {
		return err
	}
	var freed int64
	idx := 0
	for ; idx < len(lines) && freed < excess; idx++ {
		freed += int64(len(lines[idx]) + 1)
	}
	return s.rewriteLocked(lines[idx:])
}

func (s *FileSpool) rewriteLocked(lines [][]byte) error {
	tmp := s.path + ".tmp"
	var buf bytes.Buffer
	for _, line := range lines {
		buf.Write(line)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return err
	}
	s.entries = len(lines)
	s.sizeBytes = int64(buf.Len())
	return nil
}

var _ ports.Spool = (*FileSpool)(nil)
