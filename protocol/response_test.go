package protocol

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseEncode(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{"ok", OK(), "OK\r\n"},
		{"value", Value("test"), "VALUE test\r\n"},
		{"value with spaces", Value("hello world"), "VALUE hello world\r\n"},
		{"empty value", Value(""), "VALUE \r\n"},
		{"not found", NotFound(), "NOT_FOUND\r\n"},
		{"error", Errorf("test error"), "ERROR test error\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, string(tt.resp.Encode()))
		})
	}
}

func TestParseResponse(t *testing.T) {
	tests := []struct {
		line string
		want Response
	}{
		{"OK", OK()},
		{"NOT_FOUND", NotFound()},
		{"VALUE test", Value("test")},
		{"VALUE hello world", Value("hello world")},
		{"ERROR test error", Errorf("test error")},
	}

	for _, tt := range tests {
		got, err := ParseResponse(tt.line)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseResponse("GARBAGE")
	assert.ErrorIs(t, err, ErrUnknownResponse)
}

/*
Every response whose payload carries no newline must survive a
serialize-then-parse trip unchanged.
*/
func TestResponse_RoundTrip(t *testing.T) {
	responses := []Response{
		OK(),
		NotFound(),
		Value("v"),
		Value("spaced out value"),
		Errorf("Parse error: unknown verb %q", "PING"),
	}

	for _, resp := range responses {
		wire := string(resp.Encode())
		require.True(t, strings.HasSuffix(wire, "\r\n"))
		require.NotContains(t, strings.TrimSuffix(wire, "\r\n"), "\n")

		got, err := ParseResponse(strings.TrimSuffix(wire, "\r\n"))
		require.NoError(t, err)
		assert.Equal(t, resp, got)
	}
}
