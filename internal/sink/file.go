package sink

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"me_msggen/internal/domain"
)

// StreamSink writes formatted records to an io.Writer.
// Records are newline-terminated unless concat is set, which reproduces
// the legacy seeded file where records ran together.
type StreamSink struct {
	w      *bufio.Writer
	closer io.Closer
	concat bool
	count  int
}

// NewStreamSink wraps w; the sink does not close w.
func NewStreamSink(w io.Writer, concat bool) *StreamSink {
	return &StreamSink{w: bufio.NewWriter(w), concat: concat}
}

// FileSink stages records in a temporary file beside the target path.
// Commit moves the finished file into place; Discard removes it, leaving
// any previous file at the target untouched.
type FileSink struct {
	*StreamSink
	path   string
	tmp    *os.File
	closed bool
}

// NewFileSink opens a staging file in the target's directory
func NewFileSink(path string, concat bool) (*FileSink, error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, &domain.OutputError{Target: path, Err: fmt.Errorf("%w: %v", domain.ErrOutputUnwritable, err)}
	}
	s := NewStreamSink(f, concat)
	s.closer = f
	return &FileSink{StreamSink: s, path: path, tmp: f}, nil
}

// Close flushes and closes the staging file; the target is not touched yet.
func (f *FileSink) Close() error {
	if f.closed {
		return nil
	}
	f.closed = true
	return f.StreamSink.Close()
}

// Commit closes the staging file and renames it onto the target path
func (f *FileSink) Commit() error {
	if err := f.Close(); err != nil {
		return &domain.OutputError{Target: f.path, Err: err}
	}
	if err := os.Chmod(f.tmp.Name(), 0644); err != nil {
		return &domain.OutputError{Target: f.path, Err: err}
	}
	if err := os.Rename(f.tmp.Name(), f.path); err != nil {
		return &domain.OutputError{Target: f.path, Err: fmt.Errorf("%w: %v", domain.ErrOutputUnwritable, err)}
	}
	return nil
}

// Discard closes and removes the staging file. It is a no-op after Commit.
func (f *FileSink) Discard() {
	f.Close()
	if err := os.Remove(f.tmp.Name()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("Failed to remove staging file", slog.String("file", f.tmp.Name()), slog.Any("error", err))
	}
}

// NewConsoleSink echoes records to stdout
func NewConsoleSink() *StreamSink {
	return NewStreamSink(os.Stdout, false)
}

// Write appends one record
func (s *StreamSink) Write(msg *domain.Message) error {
	if _, err := s.w.WriteString(Format(msg)); err != nil {
		return err
	}
	if !s.concat {
		if err := s.w.WriteByte('\n'); err != nil {
			return err
		}
	}
	s.count++
	return nil
}

// Count returns the number of records written
func (s *StreamSink) Count() int {
	return s.count
}

// Close flushes buffered records and closes the underlying file, if owned
func (s *StreamSink) Close() error {
	err := s.w.Flush()
	if s.closer != nil {
		if cerr := s.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// MultiSink fans each record out to every sink
type MultiSink []domain.RecordWriter

// Write stops at the first failing sink
func (m MultiSink) Write(msg *domain.Message) error {
	for _, s := range m {
		if err := s.Write(msg); err != nil {
			return err
		}
	}
	return nil
}

// Close closes all sinks and returns the first error
func (m MultiSink) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WriteAll writes msgs to w in order
func WriteAll(w domain.RecordWriter, msgs []*domain.Message) error {
	for _, msg := range msgs {
		if err := w.Write(msg); err != nil {
			return fmt.Errorf("write %s: %w", msg.ClOrdID, err)
		}
	}
	return nil
}
