package wal

import (
	"errors"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
)

// ErrInvalidRecord indicates malformed or incomplete WAL data.
var ErrInvalidRecord = errors.New("invalid wal record")

/*
RecordOp is the operation a persisted record describes.

RecordGet exists only so that legacy logs containing GET entries still
decode; new records are never written for reads.
*/
type RecordOp int

const (
	RecordSet RecordOp = iota
	RecordGet
	RecordDelete
)

/*
Record is the canonical representation of one durable mutation.

It deliberately mirrors the logical operation, not the store's internal
state, so the store can be refactored without touching the log format.
*/
type Record struct {
	Op    RecordOp
	Key   string
	Value string
}

/*
Entry is one line of the log: a record plus the millisecond UNIX
timestamp at which it was appended. The timestamp is informational;
replay ordering comes from file order alone.
*/
type Entry struct {
	Timestamp uint64
	Record    Record
}

/*
On-disk shape, one JSON object per line:

	{"timestamp":1712345678901,"command":{"Set":{"key":"k","value":"v"}}}

The command object carries exactly one of the three tags.
*/
type entryJSON struct {
	Timestamp uint64      `json:"timestamp"`
	Command   commandJSON `json:"command"`
}

type commandJSON struct {
	Set    *setArgs `json:"Set,omitempty"`
	Get    *keyArgs `json:"Get,omitempty"`
	Delete *keyArgs `json:"Delete,omitempty"`
}

type setArgs struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type keyArgs struct {
	Key string `json:"key"`
}

/*
NewEntry stamps a record with the current wall-clock time.
*/
func NewEntry(rec Record) Entry {
	return Entry{
		Timestamp: uint64(time.Now().UnixMilli()),
		Record:    rec,
	}
}

/*
EncodeEntry serializes an entry to its log line, without the trailing
newline. Only SET and DELETE are encodable: reads carry no state and
must never reach the log.
*/
func EncodeEntry(e Entry) ([]byte, error) {
	j := entryJSON{Timestamp: e.Timestamp}

	switch e.Record.Op {
	case RecordSet:
		if e.Record.Key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrInvalidRecord)
		}
		j.Command.Set = &setArgs{Key: e.Record.Key, Value: e.Record.Value}

	case RecordDelete:
		if e.Record.Key == "" {
			return nil, fmt.Errorf("%w: empty key", ErrInvalidRecord)
		}
		j.Command.Delete = &keyArgs{Key: e.Record.Key}

	default:
		return nil, fmt.Errorf("%w: op %d is not persistable", ErrInvalidRecord, e.Record.Op)
	}

	return sonic.Marshal(j)
}

/*
DecodeEntry parses one log line.

Decoding is strict: a line that is not exactly one tagged command is an
error, and recovery stops there. GET entries decode successfully so
that logs written before reads were dropped from the format still
replay.
*/
func DecodeEntry(line []byte) (Entry, error) {
	var j entryJSON
	if err := sonic.Unmarshal(line, &j); err != nil {
		return Entry{}, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}

	e := Entry{Timestamp: j.Timestamp}

	switch {
	case j.Command.Set != nil && j.Command.Get == nil && j.Command.Delete == nil:
		e.Record = Record{Op: RecordSet, Key: j.Command.Set.Key, Value: j.Command.Set.Value}

	case j.Command.Get != nil && j.Command.Set == nil && j.Command.Delete == nil:
		e.Record = Record{Op: RecordGet, Key: j.Command.Get.Key}

	case j.Command.Delete != nil && j.Command.Set == nil && j.Command.Get == nil:
		e.Record = Record{Op: RecordDelete, Key: j.Command.Delete.Key}

	default:
		return Entry{}, fmt.Errorf("%w: command must carry exactly one operation", ErrInvalidRecord)
	}

	if e.Record.Key == "" {
		return Entry{}, fmt.Errorf("%w: empty key", ErrInvalidRecord)
	}

	return e, nil
}
