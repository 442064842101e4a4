package wal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWAL_CompactRewritesToLiveSet(t *testing.T) {
	w, _ := newTempWAL(t)

	// A history with overwrites and deletes compacts down to two SETs.
	require.NoError(t, w.Append(Record{Op: RecordSet, Key: "a", Value: "1"}))
	require.NoError(t, w.Append(Record{Op: RecordSet, Key: "a", Value: "2"}))
	require.NoError(t, w.Append(Record{Op: RecordSet, Key: "b", Value: "3"}))
	require.NoError(t, w.Append(Record{Op: RecordDelete, Key: "b"}))
	require.NoError(t, w.Append(Record{Op: RecordSet, Key: "c", Value: "4"}))

	live := []KV{{Key: "a", Value: "2"}, {Key: "c", Value: "4"}}
	require.NoError(t, w.Compact(func() []KV { return live }))

	records := replayAll(t, w)
	require.Len(t, records, 2)

	got := map[string]string{}
	for _, rec := range records {
		assert.Equal(t, RecordSet, rec.Op)
		got[rec.Key] = rec.Value
	}
	assert.Equal(t, map[string]string{"a": "2", "c": "4"}, got)
}

func TestWAL_AppendAfterCompact(t *testing.T) {
	w, _ := newTempWAL(t)

	require.NoError(t, w.Append(Record{Op: RecordSet, Key: "a", Value: "1"}))
	require.NoError(t, w.Compact(func() []KV { return []KV{{Key: "a", Value: "1"}} }))

	// The appender must be live on the new file.
	require.NoError(t, w.Append(Record{Op: RecordSet, Key: "b", Value: "2"}))

	records := replayAll(t, w)
	require.Len(t, records, 2)
	assert.Equal(t, "b", records[1].Key)
}

func TestWAL_CompactEmptyKeyspace(t *testing.T) {
	w, _ := newTempWAL(t)

	require.NoError(t, w.Append(Record{Op: RecordSet, Key: "a", Value: "1"}))
	require.NoError(t, w.Append(Record{Op: RecordDelete, Key: "a"}))
	require.NoError(t, w.Compact(func() []KV { return nil }))

	assert.Empty(t, replayAll(t, w))
}

func TestWAL_CompactLeavesNoTempFiles(t *testing.T) {
	w, path := newTempWAL(t)

	require.NoError(t, w.Append(Record{Op: RecordSet, Key: "a", Value: "1"}))
	require.NoError(t, w.Compact(func() []KV { return []KV{{Key: "a", Value: "1"}} }))

	entries, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "only the log itself should remain: %v", entries)
}

func TestWAL_CompactAfterClose(t *testing.T) {
	w, _ := newTempWAL(t)
	require.NoError(t, w.Close())

	err := w.Compact(func() []KV { return nil })
	assert.ErrorIs(t, err, ErrWALClosed)
}
