package server

import (
	"bufio"
	"errors"
	"io"
	"net"
	"strings"
)

/*
handleConn owns the full lifecycle of one client connection: framing,
parsing, dispatch to the store, response writing, and reacting to the
shutdown broadcast.

Requests on a connection are handled strictly in order; responses go
out in the same order. No per-request timeout is imposed; back-pressure
on a slow client is the transport's buffering.
*/
func (s *Server) handleConn(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()

	s.metrics.connectionsTotal.Inc()
	s.metrics.connectionsActive.Inc()
	defer s.metrics.connectionsActive.Dec()

	s.log.Debug().Str("remote", remote).Msg("client connected")
	defer s.log.Debug().Str("remote", remote).Msg("client disconnected")

	// The read below blocks, so the broadcast is turned into a forced
	// close, which unblocks it. In-flight responses already written
	// are not revoked.
	finished := make(chan struct{})
	defer close(finished)
	go func() {
		select {
		case <-s.done:
			conn.Close()
		case <-finished:
		}
	}()

	reader := bufio.NewReader(conn)
	writer := bufio.NewWriter(conn)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			select {
			case <-s.done:
				return
			default:
			}
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.Warn().Err(err).Str("remote", remote).Msg("read failed")
			return
		}

		resp := s.serve(strings.TrimRight(line, "\r\n"))

		if _, err := writer.Write(resp.Encode()); err != nil {
			s.log.Warn().Err(err).Str("remote", remote).Msg("write failed")
			return
		}
		if err := writer.Flush(); err != nil {
			s.log.Warn().Err(err).Str("remote", remote).Msg("flush failed")
			return
		}
	}
}
