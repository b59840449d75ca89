package yewdux

import (
	"context"
	"time"
)

// storeContext is the source of truth for one store type in a scope: the
// current snapshot and the subscribers interested in it.
//
// The snapshot cell and the subscriber list are separate registry entries so
// that subscribing does not build the state. A store's New can therefore
// register listeners on itself.
type storeContext[S any] struct {
	scope *Scope
	subs  *subscribers[S]
}

func contextOf[S any](cx *Scope) storeContext[S] {
	return storeContext[S]{
		scope: cx,
		subs: resolve(cx, func(*Scope) *subscribers[S] {
			return &subscribers[S]{}
		}),
	}
}

// state returns the cell holding the current snapshot, creating the initial
// state on first use.
func (c storeContext[S]) state() *Cell[*S] {
	return resolve(c.scope, func(cx *Scope) *Cell[*S] {
		initial := newState[S](cx)
		cell := NewCell(&initial)
		cx.debug("initialized store", "store", StoreType[S]())
		return &cell
	})
}

// get returns the current snapshot
func (c storeContext[S]) get() *S {
	return c.state().Get()
}

// reduce replaces the current snapshot with the result of f and broadcasts
// it when the store's change predicate asks for it. It reports whether
// subscribers were notified.
func (c storeContext[S]) reduce(f func(*S) *S) bool {
	c.scope.turn.acquire()
	defer c.scope.turn.release()

	ctx := context.Background()
	start := time.Now()
	obs := c.scope.obs
	if obs != nil {
		ctx = obs.OnReduceStart(ctx, StoreType[S]())
	}

	cell := c.state()
	old := cell.Get()
	next := f(old)
	if next == nil {
		panic("yewdux: reducer returned nil state for " + StoreType[S]())
	}
	cell.Mutate(func(current **S) {
		*current = next
	})

	changed := shouldNotify(old, next)
	if obs != nil {
		obs.OnReduceComplete(ctx, time.Since(start), changed)
	}
	if !changed {
		return false
	}

	if hook, ok := any(next).(ChangeHook); ok {
		hook.Changed(c.scope)
	}
	c.notify(ctx, next)
	return true
}

// reduceMut applies f to a copy of the current snapshot
func (c storeContext[S]) reduceMut(f func(*S)) bool {
	return c.reduce(func(old *S) *S {
		next := cloneState(old)
		f(&next)
		return &next
	})
}

func (c storeContext[S]) notify(ctx context.Context, state *S) {
	c.scope.turn.acquire()
	defer c.scope.turn.release()

	n := c.subs.broadcast(state)
	if obs := c.scope.obs; obs != nil {
		obs.OnNotify(ctx, StoreType[S](), n)
	}
}

// subscribe registers fn. Unless silent, fn first receives the current
// snapshot.
func (c storeContext[S]) subscribe(fn func(*S), silent bool) *Subscription[S] {
	c.scope.turn.acquire()
	defer c.scope.turn.release()

	if !silent {
		fn(c.get())
	}

	id := c.subs.insert(fn)
	c.scope.debug("added subscriber", "store", StoreType[S](), "silent", silent)
	return newSubscription(c.scope, c.subs, id)
}
