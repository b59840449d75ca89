package yewdux

import (
	"context"
	"time"
)

// Observability receives hooks around reductions and broadcasts.
// See the otel subpackage for an OpenTelemetry implementation.
type Observability interface {
	// OnReduceStart is called before a reduction runs
	OnReduceStart(ctx context.Context, storeType string) context.Context

	// OnReduceComplete is called after a reduction committed.
	// changed reports whether the change predicate asked for a broadcast.
	OnReduceComplete(ctx context.Context, duration time.Duration, changed bool)

	// OnNotify is called after a broadcast reached its subscribers
	OnNotify(ctx context.Context, storeType string, subscribers int)
}
