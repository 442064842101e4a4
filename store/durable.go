package store

import (
	"fmt"
	"sync"

	"govault/wal"
)

/*
Compactor is the capability interface for stores that can rewrite
their log to canonical form. The plain memory store does not have it.
*/
type Compactor interface {
	Compact() error
}

/*
durable decorates an in-memory store with write-ahead logging.

Ordering, for every mutation:
 1. append the record to the WAL (its own mutex, flushed before return)
 2. apply the change under the map's write lock

Any mutation a reader can observe is therefore already durable. If the
append fails, memory is untouched and the operation fails.

The lock order is fixed: WAL append mutex before store write lock.
Reads never touch the WAL.
*/
type durable struct {
	mem Store
	wal *wal.WAL

	// writeMu spans append-plus-apply for each mutation. Appends are
	// already serialized inside the WAL; extending that serialization
	// over the map update keeps the in-memory effect order identical
	// to the log order, so replay reproduces exactly what readers saw.
	writeMu sync.Mutex

	/*
		compactMu fences compaction against live mutations.

		RLock: Set / Delete / Clear, so mutations run concurrently
		with each other (each still serializes on the WAL mutex and
		the map lock).

		Lock: Compact, which must see a snapshot no concurrent append
		can outrun.
	*/
	compactMu sync.RWMutex
}

/*
NewDurable wires a WAL into mem and replays the log into it.

Replay is fully synchronous and happens before the store is returned,
so no concurrent access exists yet and no locking is needed. Only SET
and DELETE mutate state; GET records from legacy logs are skipped. A
malformed log aborts construction: starting with silently missing
state would be worse than not starting.
*/
func NewDurable(mem Store, w *wal.WAL) (Store, error) {
	err := w.Replay(func(rec wal.Record) error {
		switch rec.Op {
		case wal.RecordSet:
			return mem.Set(rec.Key, rec.Value)
		case wal.RecordDelete:
			_, err := mem.Delete(rec.Key)
			return err
		case wal.RecordGet:
			// Reads reproduce no state.
			return nil
		default:
			return fmt.Errorf("%w: op %d", wal.ErrInvalidRecord, rec.Op)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("replay: %w", err)
	}

	return &durable{mem: mem, wal: w}, nil
}

func (s *durable) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := validateValue(value); err != nil {
		return err
	}

	s.compactMu.RLock()
	defer s.compactMu.RUnlock()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.wal.Append(wal.Record{Op: wal.RecordSet, Key: key, Value: value}); err != nil {
		return err
	}
	return s.mem.Set(key, value)
}

func (s *durable) Get(key string) (string, bool) {
	return s.mem.Get(key)
}

/*
Delete logs every delete attempt, present key or not. That is the
simplest rule that is idempotent on replay; the cost is one spurious
line per miss.
*/
func (s *durable) Delete(key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	s.compactMu.RLock()
	defer s.compactMu.RUnlock()
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.wal.Append(wal.Record{Op: wal.RecordDelete, Key: key}); err != nil {
		return false, err
	}
	return s.mem.Delete(key)
}

func (s *durable) Exists(key string) bool {
	return s.mem.Exists(key)
}

func (s *durable) Snapshot() []wal.KV {
	return s.mem.Snapshot()
}

func (s *durable) Len() int {
	return s.mem.Len()
}

/*
Clear resets the mapping. The WAL is not truncated: a restart replays
history and resurrects the keyspace as of the last logged mutation.
Compact afterwards to make the empty state durable.
*/
func (s *durable) Clear() error {
	s.compactMu.RLock()
	defer s.compactMu.RUnlock()
	return s.mem.Clear()
}

/*
Compact rewrites the WAL down to one SET per live mapping.

Mutations are fenced out for the duration, so the snapshot handed to
the WAL cannot be outrun by an append the rewrite would then drop.
*/
func (s *durable) Compact() error {
	s.compactMu.Lock()
	defer s.compactMu.Unlock()
	return s.wal.Compact(s.mem.Snapshot)
}

/*
Close shuts the WAL down. The in-memory state is discarded with the
process; the log is what persists.
*/
func (s *durable) Close() error {
	if err := s.mem.Close(); err != nil {
		return err
	}
	return s.wal.Close()
}
