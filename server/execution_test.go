package server

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"govault/protocol"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := DefaultConfig()
	cfg.BindAddr = "127.0.0.1:0"
	cfg.WALPath = filepath.Join(t.TempDir(), "vault.log")

	srv, err := New(cfg, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { srv.Store().Close() })

	return srv
}

func TestServe_CommandMapping(t *testing.T) {
	srv := newTestServer(t)

	tests := []struct {
		name string
		line string
		want protocol.Response
	}{
		{"get before set", "GET color", protocol.NotFound()},
		{"set", "SET color blue", protocol.OK()},
		{"get after set", "GET color", protocol.Value("blue")},
		{"overwrite", "SET color red", protocol.OK()},
		{"get after overwrite", "GET color", protocol.Value("red")},
		{"delete", "DELETE color", protocol.OK()},
		{"get after delete", "GET color", protocol.NotFound()},
		{"delete absent", "DELETE color", protocol.NotFound()},
	}

	// Order matters here; the table is a session, not independent cases.
	for _, tt := range tests {
		got := srv.serve(tt.line)
		assert.Equal(t, tt.want, got, tt.name)
	}
}

func TestServe_EmptyCommand(t *testing.T) {
	srv := newTestServer(t)

	got := srv.serve("")
	assert.Equal(t, protocol.ResponseError, got.Kind)
	assert.Equal(t, "Empty command", got.Payload)
}

func TestServe_ParseError(t *testing.T) {
	srv := newTestServer(t)

	for _, line := range []string{"PING", "FOO bar", "SET onlykey", "GET"} {
		got := srv.serve(line)
		assert.Equal(t, protocol.ResponseError, got.Kind, "line %q", line)
		assert.True(t, strings.HasPrefix(got.Payload, "Parse error: "), "line %q got %q", line, got.Payload)
	}
}

func TestServe_ValueWithSpaces(t *testing.T) {
	srv := newTestServer(t)

	assert.Equal(t, protocol.OK(), srv.serve("SET greeting hello world"))
	assert.Equal(t, protocol.Value("hello world"), srv.serve("GET greeting"))
}

func TestServerCompact(t *testing.T) {
	srv := newTestServer(t)

	require.Equal(t, protocol.OK(), srv.serve("SET a 1"))
	require.Equal(t, protocol.OK(), srv.serve("SET a 2"))
	require.NoError(t, srv.Compact())

	assert.Equal(t, protocol.Value("2"), srv.serve("GET a"))
}
