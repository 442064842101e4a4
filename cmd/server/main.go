package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	flag "github.com/spf13/pflag"
	_ "go.uber.org/automaxprocs"

	"govault/server"
)

func main() {
	cfg := server.DefaultConfig()
	flag.StringVar(&cfg.BindAddr, "addr", cfg.BindAddr, "address to listen on")
	flag.StringVar(&cfg.WALPath, "wal", cfg.WALPath, "write-ahead log path")
	flag.IntVar(&cfg.MaxConnections, "max-connections", cfg.MaxConnections, "concurrent connection cap")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (disabled when empty)")
	flag.BoolVar(&cfg.Fsync, "fsync", false, "fsync the WAL on every append")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	level := zerolog.InfoLevel
	if *debug {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	srv, err := server.New(cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("startup failed")
		os.Exit(1)
	}

	// SIGINT/SIGTERM stop the server; SIGHUP is the external
	// compaction trigger.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigs {
			if sig == syscall.SIGHUP {
				log.Info().Msg("compacting wal")
				if err := srv.Compact(); err != nil {
					log.Error().Err(err).Msg("compaction failed")
				}
				continue
			}
			log.Info().Str("signal", sig.String()).Msg("shutting down")
			srv.Shutdown()
			return
		}
	}()

	if err := srv.Start(); err != nil {
		log.Error().Err(err).Msg("server failed")
		os.Exit(1)
	}
	if err := srv.Wait(); err != nil {
		log.Error().Err(err).Msg("shutdown failed")
		os.Exit(1)
	}
}
