package protocol

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownResponse is returned by ParseResponse for lines that match
// no response form. Seen only client-side, against a broken server.
var ErrUnknownResponse = errors.New("unknown response")

/*
ResponseKind selects the case of a Response.
*/
type ResponseKind int

const (
	// Mutation accepted.
	ResponseOK ResponseKind = iota

	// Value returned for a key.
	ResponseValue

	// Key absent.
	ResponseNotFound

	// Command rejected; Payload carries the diagnostic.
	ResponseError
)

/*
Response is the result of executing one command. Payload is the value
for ResponseValue and the message for ResponseError; it is empty for
the other kinds.
*/
type Response struct {
	Kind    ResponseKind
	Payload string
}

func OK() Response            { return Response{Kind: ResponseOK} }
func Value(v string) Response { return Response{Kind: ResponseValue, Payload: v} }
func NotFound() Response      { return Response{Kind: ResponseNotFound} }

func Errorf(format string, args ...any) Response {
	return Response{Kind: ResponseError, Payload: fmt.Sprintf(format, args...)}
}

/*
Encode serializes the response for the wire.

Total over all kinds; output always ends with "\r\n" and contains no
interior newline (payloads cannot carry one, the framing forbids it).
*/
func (r Response) Encode() []byte {
	switch r.Kind {
	case ResponseOK:
		return []byte("OK\r\n")
	case ResponseValue:
		return []byte("VALUE " + r.Payload + "\r\n")
	case ResponseNotFound:
		return []byte("NOT_FOUND\r\n")
	case ResponseError:
		return []byte("ERROR " + r.Payload + "\r\n")
	default:
		return []byte("ERROR internal: bad response kind\r\n")
	}
}

/*
ParseResponse decodes one response line received by a client. The
terminator must already be stripped.
*/
func ParseResponse(line string) (Response, error) {
	switch {
	case line == "OK":
		return OK(), nil
	case line == "NOT_FOUND":
		return NotFound(), nil
	case strings.HasPrefix(line, "VALUE "):
		return Value(strings.TrimPrefix(line, "VALUE ")), nil
	case strings.HasPrefix(line, "ERROR "):
		return Response{Kind: ResponseError, Payload: strings.TrimPrefix(line, "ERROR ")}, nil
	default:
		return Response{}, fmt.Errorf("%w: %q", ErrUnknownResponse, line)
	}
}
