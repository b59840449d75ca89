// Package yewdux provides shared, typed application state.
//
// Each Go type used as state has exactly one live value per Scope. The value
// is created lazily on first access, replaced copy-on-write by reductions and
// broadcast to subscribers whenever the store's change predicate reports a
// difference.
//
// # Stores
//
// Any type can be a store. Optional interfaces customize its behaviour:
//
//	type Counter struct {
//	    Count int `json:"count"`
//	}
//
//	// New builds the initial state (the zero value is used otherwise).
//	func (Counter) New(cx *yewdux.Scope) Counter { return Counter{Count: 1} }
//
//	// ShouldNotify decides whether a reduction is broadcast. Without it the
//	// old and new snapshots are compared with reflect.DeepEqual.
//	func (c *Counter) ShouldNotify(old *Counter) bool { return c.Count != old.Count }
//
// # Dispatch
//
// Dispatch is the entry point for reading and changing a store:
//
//	cx := yewdux.NewScope()
//	dispatch := yewdux.New[Counter](cx)
//	dispatch.ReduceMut(func(c *Counter) { c.Count++ })
//	fmt.Println(dispatch.Get().Count)
//
// Snapshots returned by Get are never modified afterwards; treat them as
// read-only. A subscribing dispatch keeps its callback registered until it is
// released:
//
//	d := yewdux.Subscribe(cx, func(c *Counter) { render(c) })
//	defer d.Release()
//
// # Listeners
//
// Listeners are singleton background subscribers, one per listener type.
// They back derived stores, persistence and cross-process synchronization:
//
//	yewdux.InitListener[Counter](cx, logListener{})
//	yewdux.DeriveFrom[Counter, Doubled](cx)
//
// # Scheduling
//
// A Scope behaves like a single-threaded UI loop. Reductions and their
// broadcasts on one scope are totally ordered; a subscriber may reduce other
// stores (or the same one) from its callback. Calls from other goroutines
// wait for the running reduction and its broadcast to finish.
//
// # Subpackages
//
// storage persists stores to pluggable backends (memory, files, and
// stores/sqlite) and keeps them in sync across processes. history records
// undo/redo history for any store. otel exports reductions as OpenTelemetry
// spans and metrics.
package yewdux
