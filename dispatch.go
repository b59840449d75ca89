package yewdux

import "context"

// Dispatch is the handle through which a store is read, changed and
// observed.
//
// The zero Dispatch uses the ambient scope of the calling goroutine (see
// Global). A Dispatch created by Subscribe or SubscribeSilent owns a
// subscription; call Release when it is no longer needed.
type Dispatch[S any] struct {
	scope *Scope
	sub   *Subscription[S]
}

// New returns a dispatch for S in cx
func New[S any](cx *Scope) Dispatch[S] {
	return Dispatch[S]{scope: cx}
}

// Subscribe returns a dispatch whose fn receives the current state
// immediately and after every change.
func Subscribe[S any](cx *Scope, fn func(state *S)) Dispatch[S] {
	return Dispatch[S]{
		scope: cx,
		sub:   contextOf[S](cx).subscribe(fn, false),
	}
}

// SubscribeSilent is like Subscribe but fn only hears about later changes
func SubscribeSilent[S any](cx *Scope, fn func(state *S)) Dispatch[S] {
	return Dispatch[S]{
		scope: cx,
		sub:   contextOf[S](cx).subscribe(fn, true),
	}
}

// Scope returns the scope the dispatch operates on
func (d Dispatch[S]) Scope() *Scope {
	if d.scope == nil {
		return Global()
	}
	return d.scope
}

func (d Dispatch[S]) context() storeContext[S] {
	return contextOf[S](d.Scope())
}

// Subscribe returns a new subscribing dispatch on the same scope
func (d Dispatch[S]) Subscribe(fn func(state *S)) Dispatch[S] {
	return Subscribe(d.Scope(), fn)
}

// SubscribeSilent returns a new silently subscribing dispatch on the same scope
func (d Dispatch[S]) SubscribeSilent(fn func(state *S)) Dispatch[S] {
	return SubscribeSilent(d.Scope(), fn)
}

// Get returns the current state. The snapshot must not be modified.
func (d Dispatch[S]) Get() *S {
	return d.context().get()
}

// Set replaces the state
func (d Dispatch[S]) Set(value S) {
	d.context().reduce(func(*S) *S {
		return &value
	})
}

// Reduce replaces the state with the snapshot returned by f.
// f must not modify the snapshot it receives.
func (d Dispatch[S]) Reduce(f func(state *S) *S) {
	d.context().reduce(f)
}

// ReduceMut applies f to a copy of the state, which then becomes current
func (d Dispatch[S]) ReduceMut(f func(state *S)) {
	d.context().reduceMut(f)
}

// Apply runs a reducer against the state
func (d Dispatch[S]) Apply(r Reducer[S]) {
	d.context().reduce(r.Apply)
}

// ApplyMut runs an in-place reducer against a copy of the state
func (d Dispatch[S]) ApplyMut(r MutReducer[S]) {
	d.context().reduceMut(r.ApplyMut)
}

// ApplyAsync waits for r and applies the reducer it produces to the state
// current at that time. Other reductions may run while r is waiting. If r
// fails or ctx ends first, the state is left untouched.
func (d Dispatch[S]) ApplyAsync(ctx context.Context, r AsyncReducer[S]) error {
	next, err := r.Await(ctx, d.Get())
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d.Apply(next)
	return nil
}

// ReduceAsync is ApplyAsync for a function. await runs without holding the
// scope; the function it returns is applied to the latest state.
func (d Dispatch[S]) ReduceAsync(ctx context.Context, await func(ctx context.Context, snapshot *S) (func(state *S) *S, error)) error {
	next, err := await(ctx, d.Get())
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d.Reduce(next)
	return nil
}

// ReduceMutAsync is ReduceAsync for an in-place mutation
func (d Dispatch[S]) ReduceMutAsync(ctx context.Context, await func(ctx context.Context, snapshot *S) (func(state *S), error)) error {
	next, err := await(ctx, d.Get())
	if err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	d.ReduceMut(next)
	return nil
}

// NotifySubscribers sends the current state to every subscriber,
// changed or not.
func (d Dispatch[S]) NotifySubscribers() {
	c := d.context()
	c.notify(context.Background(), c.get())
}

// Clone returns a dispatch sharing this dispatch's subscription.
// The subscriber stays registered until every clone has been released.
func (d Dispatch[S]) Clone() Dispatch[S] {
	if d.sub == nil {
		return d
	}
	return Dispatch[S]{scope: d.scope, sub: d.sub.Clone()}
}

// Equal reports whether both dispatches share one subscription.
// Dispatches without a subscription are never equal.
func (d Dispatch[S]) Equal(other Dispatch[S]) bool {
	return d.sub != nil && other.sub != nil && d.sub.ref == other.sub.ref
}

// Release gives up the dispatch's subscription, if any
func (d Dispatch[S]) Release() {
	d.sub.Release()
}

// Subscription returns the dispatch's subscription, or nil
func (d Dispatch[S]) Subscription() *Subscription[S] {
	return d.sub
}

// SetCallback returns a function that sets the state to f's result
func SetCallback[S, E any](d Dispatch[S], f func(E) S) func(E) {
	return func(e E) {
		d.Set(f(e))
	}
}

// ReduceCallback returns a function that reduces the state with f
func ReduceCallback[S, E any](d Dispatch[S], f func(state *S, e E) *S) func(E) {
	return func(e E) {
		d.Reduce(func(state *S) *S {
			return f(state, e)
		})
	}
}

// ReduceMutCallback returns a function that mutates the state with f
func ReduceMutCallback[S, E any](d Dispatch[S], f func(state *S, e E)) func(E) {
	return func(e E) {
		d.ReduceMut(func(state *S) {
			f(state, e)
		})
	}
}

// ApplyCallback returns a function that applies the reducer built by f
func ApplyCallback[S, E any](d Dispatch[S], f func(E) Reducer[S]) func(E) {
	return func(e E) {
		d.Apply(f(e))
	}
}
