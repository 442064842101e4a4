package server

import (
	"strings"

	"govault/protocol"
)

/*
serve turns one request line (terminator stripped) into a response.
Parse failures are per-request: the connection stays open and the
client is told what was wrong.
*/
func (s *Server) serve(line string) protocol.Response {
	if strings.TrimSpace(line) == "" {
		return protocol.Errorf("Empty command")
	}

	cmd, err := protocol.ParseLine(line)
	if err != nil {
		s.metrics.parseErrors.Inc()
		return protocol.Errorf("Parse error: %v", err)
	}

	return s.execute(cmd)
}

/*
execute maps a parsed command onto the store. No networking in here,
and no concurrency beyond what the store provides.
*/
func (s *Server) execute(cmd protocol.Command) protocol.Response {
	switch cmd.Op {
	case protocol.OpSet:
		s.metrics.commandsTotal.WithLabelValues(protocol.VerbSet).Inc()
		if err := s.store.Set(cmd.Key, cmd.Value); err != nil {
			return protocol.Errorf("SET failed: %v", err)
		}
		return protocol.OK()

	case protocol.OpGet:
		s.metrics.commandsTotal.WithLabelValues(protocol.VerbGet).Inc()
		value, ok := s.store.Get(cmd.Key)
		if !ok {
			return protocol.NotFound()
		}
		return protocol.Value(value)

	case protocol.OpDelete:
		s.metrics.commandsTotal.WithLabelValues(protocol.VerbDelete).Inc()
		present, err := s.store.Delete(cmd.Key)
		if err != nil {
			return protocol.Errorf("DELETE failed: %v", err)
		}
		if !present {
			return protocol.NotFound()
		}
		return protocol.OK()

	default:
		return protocol.Errorf("internal: unhandled command")
	}
}
