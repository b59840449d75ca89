package storage

import "github.com/jilio/yewdux"

// Option configures a Storage
type Option func(*config)

type config struct {
	backends map[Area]Backend
	codec    Codec
	logger   yewdux.Logger
}

// defaultConfig keeps both areas in separate memory backends
func defaultConfig() *config {
	return &config{
		backends: map[Area]Backend{
			Local:   NewMemoryBackend(),
			Session: NewMemoryBackend(),
		},
		codec: JSON,
	}
}

// WithBackend sets the backend used for area
func WithBackend(area Area, backend Backend) Option {
	return func(c *config) {
		c.backends[area] = backend
	}
}

// WithCodec sets the codec. Default is JSON.
func WithCodec(codec Codec) Option {
	return func(c *config) {
		c.codec = codec
	}
}

// WithLogger sets the logger used by listeners and tab sync to report
// failures that have no caller to return to.
func WithLogger(logger yewdux.Logger) Option {
	return func(c *config) {
		c.logger = logger
	}
}
