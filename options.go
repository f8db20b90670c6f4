package pagemark

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	path          string
	busyTimeoutMS int

	clock func() time.Time

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithSQLite sets the database file. Required.
// The file and its directory are created on first use.
func WithSQLite(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.path = path
	})
}

// WithBusyTimeout sets how long a write waits on a locked database.
// Default: 5s.
func WithBusyTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.busyTimeoutMS = int(d / time.Millisecond)
	})
}

// WithClock overrides the time source for uploadedAt and createdAt.
func WithClock(now func() time.Time) Option {
	return optionFunc(func(c *clientConfig) {
		c.clock = now
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
