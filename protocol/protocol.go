package protocol

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCommand = errors.New("empty command")
	ErrUnknownVerb  = errors.New("unknown verb")
	ErrMissingArgs  = errors.New("missing arguments")
)

/*
Verbs accepted on the wire. Matching is case-sensitive:
"set" is not a command.
*/
const (
	VerbSet    = "SET"
	VerbGet    = "GET"
	VerbDelete = "DELETE"
)

/*
Op identifies the operation a Command carries.
*/
type Op int

const (
	OpSet Op = iota
	OpGet
	OpDelete
)

/*
Command is a parsed client request.

It is a tagged value: Op selects the case, Key is always set,
Value is meaningful only for OpSet.
*/
type Command struct {
	Op    Op
	Key   string
	Value string
}

/*
ParseLine parses a single request line into a Command.

The input is one line with the terminator ("\r\n" or "\n") already
stripped. Grammar:

	SET <key> <value>
	GET <key>
	DELETE <key>

Tokens are separated by one or more spaces. The key runs up to the
next space (SET) or the end of the line (GET, DELETE). The value of
SET is the remainder of the line, verbatim, spaces included. The
parser validates framing only; key and value content is not inspected
beyond that.
*/
func ParseLine(line string) (Command, error) {
	if strings.TrimSpace(line) == "" {
		return Command{}, ErrEmptyCommand
	}

	verb, rest, _ := splitToken(line)

	switch verb {
	case VerbSet:
		key, value, hasValue := splitToken(rest)
		if key == "" {
			return Command{}, fmt.Errorf("%w: SET needs a key and a value", ErrMissingArgs)
		}
		if !hasValue {
			return Command{}, fmt.Errorf("%w: SET needs a value", ErrMissingArgs)
		}
		return Command{Op: OpSet, Key: key, Value: value}, nil

	case VerbGet, VerbDelete:
		key, trailing, hasTrailing := splitToken(rest)
		if key == "" {
			return Command{}, fmt.Errorf("%w: %s needs a key", ErrMissingArgs, verb)
		}
		if hasTrailing && trailing != "" {
			return Command{}, fmt.Errorf("%w: %s takes exactly one key", ErrMissingArgs, verb)
		}
		op := OpGet
		if verb == VerbDelete {
			op = OpDelete
		}
		return Command{Op: op, Key: key}, nil

	default:
		return Command{}, fmt.Errorf("%w: %q", ErrUnknownVerb, verb)
	}
}

/*
Line renders the command in wire format, terminator included.
Used by the client side; the server only parses.
*/
func (c Command) Line() string {
	switch c.Op {
	case OpSet:
		return fmt.Sprintf("%s %s %s\r\n", VerbSet, c.Key, c.Value)
	case OpGet:
		return fmt.Sprintf("%s %s\r\n", VerbGet, c.Key)
	case OpDelete:
		return fmt.Sprintf("%s %s\r\n", VerbDelete, c.Key)
	default:
		return ""
	}
}

/*
splitToken cuts the first space-delimited token off s. Separator runs
of any length are consumed, so the remainder never starts with a space.
hasRest reports whether a separator was present at all, which is how
"SET k" (no value field) is told apart from "SET k " (empty value).
*/
func splitToken(s string) (token, rest string, hasRest bool) {
	i := strings.IndexByte(s, ' ')
	if i < 0 {
		return s, "", false
	}
	return s[:i], strings.TrimLeft(s[i:], " "), true
}
