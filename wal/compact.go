package wal

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
)

/*
KV is one live mapping handed to Compact by the store's snapshot.
*/
type KV struct {
	Key   string
	Value string
}

/*
Compact rewrites the log to the minimum set of SET entries that
reproduce the current keyspace: one per live mapping.

Protocol:
 1. snapshot() produces the live pairs, under whatever consistency the
    store provides.
 2. All entries are written to a sibling temporary file and flushed.
 3. The temporary file atomically replaces the log.
 4. The appender reopens on the new file.

The append mutex is held across 2-4 so no mutation can land on the old
file after the swap. Compaction is never triggered from inside the
package; policy lives with the caller.
*/
func (w *WAL) Compact(snapshot func() []KV) error {
	pairs := snapshot()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWALClosed
	}

	dir := filepath.Dir(w.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".compact-*")
	if err != nil {
		return fmt.Errorf("compact wal: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		// On any failure the fragment must not be left behind.
		if err != nil {
			tmp.Close()
			os.Remove(tmpName)
		}
	}()

	bw := bufio.NewWriter(tmp)
	for _, kv := range pairs {
		var line []byte
		line, err = EncodeEntry(NewEntry(Record{Op: RecordSet, Key: kv.Key, Value: kv.Value}))
		if err != nil {
			return err
		}
		if _, err = bw.Write(line); err != nil {
			return fmt.Errorf("compact wal: %w", err)
		}
		if err = bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("compact wal: %w", err)
		}
	}

	if err = bw.Flush(); err != nil {
		return fmt.Errorf("compact wal: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("compact wal: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("compact wal: %w", err)
	}

	// Flush anything still buffered for the old file before it is
	// replaced, then drop it.
	if err = w.writer.Flush(); err != nil {
		return fmt.Errorf("compact wal: %w", err)
	}
	if err = w.file.Close(); err != nil {
		return fmt.Errorf("compact wal: %w", err)
	}

	if err = atomic.ReplaceFile(tmpName, w.path); err != nil {
		return fmt.Errorf("compact wal: promote: %w", err)
	}

	f, err := os.OpenFile(w.path, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("compact wal: reopen: %w", err)
	}

	w.file = f
	w.writer = bufio.NewWriter(f)
	return nil
}
