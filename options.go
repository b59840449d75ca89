package yewdux

// Option configures a Scope
type Option func(*Scope)

// WithLogger sets the logger used by the scope
func WithLogger(logger Logger) Option {
	return func(cx *Scope) {
		cx.logger = logger
	}
}

// WithObservability installs reduction and broadcast hooks
func WithObservability(obs Observability) Option {
	return func(cx *Scope) {
		cx.obs = obs
	}
}
