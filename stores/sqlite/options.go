package sqlite

import (
	"time"
)

// Logger is an interface for logging operations
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Error(msg string, args ...any)
}

// MetricsHook is called after backend operations complete
type MetricsHook interface {
	OnGet(duration time.Duration, found bool, err error)
	OnSet(duration time.Duration, size int, err error)
	OnDelete(duration time.Duration, err error)
}

// Option configures the Backend
type Option func(*config)

// config holds all configuration options
type config struct {
	path         string
	busyTimeout  time.Duration
	autoMigrate  bool
	pollInterval time.Duration
	logger       Logger
	metricsHook  MetricsHook
}

// defaultConfig returns the default configuration
func defaultConfig() *config {
	return &config{
		busyTimeout:  5 * time.Second,
		autoMigrate:  true,
		pollInterval: 250 * time.Millisecond,
	}
}

// WithBusyTimeout sets the SQLite busy timeout
// Default is 5 seconds
func WithBusyTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.busyTimeout = timeout
	}
}

// WithAutoMigrate enables or disables automatic schema migration
// Default is true
func WithAutoMigrate(enabled bool) Option {
	return func(c *config) {
		c.autoMigrate = enabled
	}
}

// WithPollInterval sets how often Watch looks for changes
// Default is 250ms
func WithPollInterval(interval time.Duration) Option {
	return func(c *config) {
		if interval > 0 {
			c.pollInterval = interval
		}
	}
}

// WithLogger sets the logger for the backend
func WithLogger(logger Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}

// WithMetricsHook sets the metrics hook for the backend
func WithMetricsHook(hook MetricsHook) Option {
	return func(c *config) {
		c.metricsHook = hook
	}
}
