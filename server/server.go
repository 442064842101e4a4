package server

import (
	"errors"
	"net"
	"net/http"
	"sync"

	"github.com/rs/zerolog"

	"govault/store"
	"govault/wal"
)

/*
Server owns the listening socket, the shared store and the shutdown
broadcast. One handler goroutine is spawned per accepted connection.
*/
type Server struct {
	cfg   Config
	log   zerolog.Logger
	store store.Store

	ln    net.Listener
	ready chan struct{} // closed once the listener is bound

	// done is the shutdown broadcast: closing it is observed by the
	// acceptor and by every live handler on their next select.
	done     chan struct{}
	stopOnce sync.Once

	// sem gates the accept loop at MaxConnections.
	sem chan struct{}

	wg      sync.WaitGroup
	metrics *metrics

	metricsSrv *http.Server
}

/*
New opens the WAL, builds the durable store and replays the log.

Replay happens here, synchronously, before any socket exists: a
malformed log means the server refuses to start. The listener is not
bound until Start.
*/
func New(cfg Config, log zerolog.Logger) (*Server, error) {
	w, err := wal.Open(wal.Config{Path: cfg.WALPath, Fsync: cfg.Fsync})
	if err != nil {
		return nil, err
	}

	log.Info().Str("wal", cfg.WALPath).Msg("restoring state from wal")
	st, err := store.NewDurable(store.NewMemory(), w)
	if err != nil {
		w.Close()
		return nil, err
	}
	log.Info().Int("keys", st.Len()).Msg("restore complete")

	if cfg.MaxConnections <= 0 {
		cfg.MaxConnections = DefaultConfig().MaxConnections
	}

	return &Server{
		cfg:     cfg,
		log:     log,
		store:   st,
		ready:   make(chan struct{}),
		done:    make(chan struct{}),
		sem:     make(chan struct{}, cfg.MaxConnections),
		metrics: newMetrics(),
	}, nil
}

/*
Start binds the listener and runs the accept loop until Shutdown.

Accept errors are logged and the loop continues; only shutdown ends
it. Each accepted connection gets its own handler goroutine holding a
slot in the connection semaphore.
*/
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.BindAddr)
	if err != nil {
		return err
	}
	s.ln = ln
	close(s.ready)
	s.log.Info().Str("addr", ln.Addr().String()).Msg("listening")

	s.startMetrics()

	for {
		conn, err := ln.Accept()
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Error().Err(err).Msg("accept failed")
			continue
		}

		select {
		case s.sem <- struct{}{}:
		default:
			s.metrics.connectionsRejected.Inc()
			s.log.Warn().
				Str("remote", conn.RemoteAddr().String()).
				Int("cap", s.cfg.MaxConnections).
				Msg("connection limit reached, rejecting")
			conn.Close()
			continue
		}

		s.wg.Add(1)
		go func(c net.Conn) {
			defer s.wg.Done()
			defer func() { <-s.sem }()
			s.handleConn(c)
		}(conn)
	}
}

/*
Addr blocks until the listener is bound and returns its address.
Useful with a ":0" bind in tests.
*/
func (s *Server) Addr() string {
	<-s.ready
	return s.ln.Addr().String()
}

/*
Shutdown broadcasts the stop signal and closes the listener. The
accept loop exits on its next iteration; every handler observes the
broadcast and drops its connection. Handlers are not drained; callers
wanting drain semantics use Wait.
*/
func (s *Server) Shutdown() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.ln != nil {
			s.ln.Close()
		}
		if s.metricsSrv != nil {
			s.metricsSrv.Close()
		}
	})
}

/*
Wait blocks until every handler has exited, then releases the store
and the WAL behind it.
*/
func (s *Server) Wait() error {
	s.wg.Wait()
	return s.store.Close()
}

/*
Compact rewrites the WAL to canonical form. Exposed so the process
shell can bind it to external policy (a signal, a timer); the server
never compacts on its own.
*/
func (s *Server) Compact() error {
	c, ok := s.store.(store.Compactor)
	if !ok {
		return errors.New("store does not support compaction")
	}
	return c.Compact()
}

// Store exposes the shared keyspace, read-mostly for tests and shells.
func (s *Server) Store() store.Store { return s.store }

func (s *Server) startMetrics() {
	if s.cfg.MetricsAddr == "" {
		return
	}

	s.metricsSrv = &http.Server{
		Addr:    s.cfg.MetricsAddr,
		Handler: s.metrics.handler(),
	}
	go func() {
		if err := s.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error().Err(err).Msg("metrics listener failed")
		}
	}()
	s.log.Info().Str("addr", s.cfg.MetricsAddr).Msg("metrics listening")
}
