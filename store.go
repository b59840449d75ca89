package yewdux

import (
	"context"
	"reflect"

	clone "github.com/huandu/go-clone"
)

// Initializer builds the initial value of a store. Stores that don't
// implement it start from their zero value.
//
// New is called on a zero S the first time the store is used in a scope. It
// may use cx to read other stores or register listeners.
type Initializer[S any] interface {
	New(cx *Scope) S
}

// Notifier decides whether a reduction is broadcast to subscribers.
// ShouldNotify is called on the new snapshot with the previous one.
// A method that always returns true notifies on every reduction.
//
// Stores that don't implement it are compared with reflect.DeepEqual.
type Notifier[S any] interface {
	ShouldNotify(old *S) bool
}

// ChangeHook is implemented by stores that need a side effect each time a
// changed snapshot is committed. Changed runs before subscribers are
// notified and does not affect whether they are.
type ChangeHook interface {
	Changed(cx *Scope)
}

// Cloner is implemented by stores that copy themselves before being mutated
// in place. Stores that don't implement it are deep copied: maps, slices and
// pointers are duplicated, Cells keep sharing their value and channels are
// replaced by new empty ones. Stores holding pointer cycles must implement
// Cloner.
type Cloner[S any] interface {
	Clone() S
}

// Reducer is a named state transition (command pattern)
type Reducer[S any] interface {
	Apply(state *S) *S
}

// MutReducer is a named in-place state transition
type MutReducer[S any] interface {
	ApplyMut(state *S)
}

// AsyncReducer is a state transition that has to wait for something first.
//
// Await receives the snapshot current when the reduction began and may block
// until ctx is done. The returned reducer is applied to the snapshot current
// when Await returns, which may differ from the one passed in: other
// reductions can run in the meantime.
type AsyncReducer[S any] interface {
	Await(ctx context.Context, snapshot *S) (Reducer[S], error)
}

// ReducerFunc adapts a function to Reducer
type ReducerFunc[S any] func(state *S) *S

// Apply implements Reducer
func (f ReducerFunc[S]) Apply(state *S) *S {
	return f(state)
}

// MutReducerFunc adapts a function to MutReducer
type MutReducerFunc[S any] func(state *S)

// ApplyMut implements MutReducer
func (f MutReducerFunc[S]) ApplyMut(state *S) {
	f(state)
}

// StoreType returns the name used for S in logs and telemetry
func StoreType[S any]() string {
	t := reflect.TypeFor[S]()
	if pkg := t.PkgPath(); pkg != "" {
		return pkg + "." + t.Name()
	}
	return t.String()
}

func newState[S any](cx *Scope) S {
	if init, ok := any(new(S)).(Initializer[S]); ok {
		return init.New(cx)
	}

	var zero S
	return zero
}

func shouldNotify[S any](old, next *S) bool {
	if n, ok := any(next).(Notifier[S]); ok {
		return n.ShouldNotify(old)
	}
	return !reflect.DeepEqual(old, next)
}

func cloneState[S any](state *S) S {
	if c, ok := any(state).(Cloner[S]); ok {
		return c.Clone()
	}
	next, _ := clone.Clone(*state).(S)
	return next
}
