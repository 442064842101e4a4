package wal

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	// ErrWALClosed is returned when appending to a closed WAL.
	ErrWALClosed = errors.New("wal is closed")
)

/*
Config controls how the log is opened.

Fsync is opt-in: with it off, Append guarantees the line has left the
process (buffered writer flushed to the kernel), which survives a
process crash but not a power loss. With it on, every append pays for
an fsync of the file descriptor.
*/
type Config struct {
	Path  string
	Fsync bool
}

/*
WAL is an append-only log of mutations.

Concurrency model:
- one mutex serializes Append; at most one writer touches the file
- Replay never runs concurrently with Append: it happens during
  startup, before any traffic
- Compact holds the same mutex while it swaps files, so no append can
  land on the old file after the swap
*/
type WAL struct {
	path  string
	fsync bool

	mu     sync.Mutex
	file   *os.File
	writer *bufio.Writer
	closed bool
}

/*
Open opens (creating if necessary) the log for appending.
O_APPEND keeps every write at the tail regardless of offset bookkeeping.
*/
func Open(cfg Config) (*WAL, error) {
	f, err := os.OpenFile(cfg.Path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open wal %s: %w", cfg.Path, err)
	}

	return &WAL{
		path:   cfg.Path,
		fsync:  cfg.Fsync,
		file:   f,
		writer: bufio.NewWriter(f),
	}, nil
}

// Path returns the file backing the log.
func (w *WAL) Path() string { return w.path }

/*
Append durably records one mutation.

Atomic from the caller's perspective: either the whole line is written
and flushed before Append returns nil, or the append failed and the
caller must not apply the mutation. Encoding happens before the lock
is taken; only the file write is serialized.
*/
func (w *WAL) Append(rec Record) error {
	line, err := EncodeEntry(NewEntry(rec))
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWALClosed
	}

	if _, err := w.writer.Write(line); err != nil {
		return fmt.Errorf("append wal: %w", err)
	}
	if err := w.writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("append wal: %w", err)
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("flush wal: %w", err)
	}

	if w.fsync {
		if err := w.file.Sync(); err != nil {
			return fmt.Errorf("sync wal: %w", err)
		}
	}

	return nil
}

/*
Replay iterates the log in file order and hands every decoded record to
apply. It is a cold-start operation: the WAL must not be receiving
appends while it runs.

Line policy:
- blank line: skipped
- malformed line: fatal, the error aborts replay
- unterminated final line (no trailing newline): a crash cut the last
  append short; the fragment is dropped silently

A missing file is an empty log.
*/
func (w *WAL) Replay(apply func(Record) error) error {
	f, err := os.Open(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open wal for replay: %w", err)
	}
	defer f.Close()

	r := bufio.NewReader(f)
	lineNo := 0

	for {
		line, err := r.ReadBytes('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("read wal: %w", err)
		}

		// EOF without a terminator: whatever is in line is the tail a
		// crash cut short. Drop it and stop.
		if err == io.EOF {
			return nil
		}

		lineNo++
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		entry, err := DecodeEntry(line)
		if err != nil {
			return fmt.Errorf("wal line %d: %w", lineNo, err)
		}

		if err := apply(entry.Record); err != nil {
			return fmt.Errorf("wal line %d: %w", lineNo, err)
		}
	}
}

/*
Close flushes buffered data and closes the file. Idempotent.
*/
func (w *WAL) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	flushErr := w.writer.Flush()
	if err := w.file.Close(); err != nil {
		return err
	}
	return flushErr
}
