package store

import (
	"errors"
	"strings"
	"sync"

	"govault/wal"
)

var (
	// ErrInvalidKey rejects empty keys and keys carrying framing bytes.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidValue rejects values carrying framing bytes.
	ErrInvalidValue = errors.New("invalid value")
)

/*
Store is the keyspace contract the server and tests program against.

Get, Exists, Snapshot and Len are read-only and may run in parallel;
Set, Delete and Clear are mutually exclusive with everything else.
Delete reports whether the key was present.
*/
type Store interface {
	Set(key, value string) error
	Get(key string) (string, bool)
	Delete(key string) (bool, error)
	Exists(key string) bool
	Snapshot() []wal.KV
	Len() int
	Clear() error
	Close() error
}

/*
memory is the plain in-memory keyspace: one reader/writer lock over one
map. It carries no durability; see Durable for the WAL-backed wrapper.
*/
type memory struct {
	mu   sync.RWMutex
	data map[string]string
}

/*
NewMemory creates an empty, volatile store.
*/
func NewMemory() Store {
	return &memory{data: make(map[string]string)}
}

func (s *memory) Set(key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	if err := validateValue(value); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = value
	return nil
}

func (s *memory) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok
}

func (s *memory) Delete(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.data[key]
	delete(s.data, key)
	return ok, nil
}

func (s *memory) Exists(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[key]
	return ok
}

/*
Snapshot copies every live mapping under the read lock. Iteration order
is unspecified.
*/
func (s *memory) Snapshot() []wal.KV {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pairs := make([]wal.KV, 0, len(s.data))
	for k, v := range s.data {
		pairs = append(pairs, wal.KV{Key: k, Value: v})
	}
	return pairs
}

func (s *memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func (s *memory) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
	return nil
}

func (s *memory) Close() error { return nil }

/*
validateKey enforces the framing constraints: a key is a non-empty byte
sequence containing no space, carriage return or newline.
*/
func validateKey(key string) error {
	if key == "" || strings.ContainsAny(key, " \r\n") {
		return ErrInvalidKey
	}
	return nil
}

/*
validateValue enforces that a value fits on one line: any bytes except
carriage return and newline, the empty value included.
*/
func validateValue(value string) error {
	if strings.ContainsAny(value, "\r\n") {
		return ErrInvalidValue
	}
	return nil
}
