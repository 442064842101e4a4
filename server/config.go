package server

/*
Config enumerates everything the server reads at startup. There is no
other configuration channel; in particular, no environment variables.
*/
type Config struct {
	// BindAddr is the host:port the acceptor listens on.
	BindAddr string

	// WALPath is the write-ahead log file. Created on first start.
	WALPath string

	// MaxConnections caps concurrently served clients. Connections
	// beyond the cap are closed at accept time.
	MaxConnections int

	// MetricsAddr, when non-empty, serves Prometheus metrics over
	// HTTP at /metrics on this address.
	MetricsAddr string

	// Fsync makes every WAL append fsync the file. Off by default:
	// the baseline guarantee is surviving a process crash, and fsync
	// on every mutation costs most of the write throughput.
	Fsync bool
}

/*
DefaultConfig returns the stock configuration.
*/
func DefaultConfig() Config {
	return Config{
		BindAddr:       "127.0.0.1:8080",
		WALPath:        "vault.log",
		MaxConnections: 1000,
	}
}
