package yewdux

import (
	"sync"
	"sync/atomic"
)

// slotID addresses one subscriber. The generation tells a reused slot apart
// from the subscriber that used to occupy it.
type slotID struct {
	index int
	gen   uint64
}

type slot[S any] struct {
	fn   func(*S)
	gen  uint64
	live bool
}

// subscribers is a slab of callbacks with a freelist of reusable slots
type subscribers[S any] struct {
	mu    sync.Mutex
	slots []slot[S]
	free  []int
	gen   uint64
	count int
}

func (r *subscribers[S]) insert(fn func(*S)) slotID {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.gen++
	var index int
	if n := len(r.free); n > 0 {
		index = r.free[n-1]
		r.free = r.free[:n-1]
	} else {
		r.slots = append(r.slots, slot[S]{})
		index = len(r.slots) - 1
	}

	r.slots[index] = slot[S]{fn: fn, gen: r.gen, live: true}
	r.count++
	return slotID{index: index, gen: r.gen}
}

// remove deletes a subscriber. Removing an id twice is a no-op.
func (r *subscribers[S]) remove(id slotID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.liveLocked(id) {
		return false
	}

	r.slots[id.index] = slot[S]{}
	r.free = append(r.free, id.index)
	r.count--
	return true
}

func (r *subscribers[S]) contains(id slotID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveLocked(id)
}

func (r *subscribers[S]) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

func (r *subscribers[S]) liveLocked(id slotID) bool {
	if id.index < 0 || id.index >= len(r.slots) {
		return false
	}
	s := r.slots[id.index]
	return s.live && s.gen == id.gen
}

// broadcast calls every subscriber present when the broadcast starts.
// Subscribers added meanwhile wait for the next broadcast; subscribers
// removed before their turn are skipped.
func (r *subscribers[S]) broadcast(state *S) int {
	r.mu.Lock()
	ids := make([]slotID, 0, r.count)
	for i, s := range r.slots {
		if s.live {
			ids = append(ids, slotID{index: i, gen: s.gen})
		}
	}
	r.mu.Unlock()

	called := 0
	for _, id := range ids {
		r.mu.Lock()
		var fn func(*S)
		if r.liveLocked(id) {
			fn = r.slots[id.index].fn
		}
		r.mu.Unlock()

		// Call outside the lock so callbacks can subscribe and unsubscribe
		if fn != nil {
			fn(state)
			called++
		}
	}

	return called
}

// Subscription keeps a subscriber registered. Clones share one registration,
// which is removed when the last clone is released.
type Subscription[S any] struct {
	ref      *subscriptionRef[S]
	released atomic.Bool
}

type subscriptionRef[S any] struct {
	scope  *Scope
	subs   *subscribers[S]
	id     slotID
	refs   atomic.Int64
	leaked atomic.Bool
}

func newSubscription[S any](cx *Scope, subs *subscribers[S], id slotID) *Subscription[S] {
	ref := &subscriptionRef[S]{scope: cx, subs: subs, id: id}
	ref.refs.Store(1)
	return &Subscription[S]{ref: ref}
}

// Clone returns another handle to the same registration.
// Cloning a released handle returns a released handle.
func (s *Subscription[S]) Clone() *Subscription[S] {
	clone := &Subscription[S]{ref: s.ref}
	if s.released.Load() {
		clone.released.Store(true)
		return clone
	}

	s.ref.refs.Add(1)
	return clone
}

// Release gives up this handle. The subscriber is removed once every clone
// has been released, unless the subscription was leaked. Release is
// idempotent per handle.
func (s *Subscription[S]) Release() {
	if s == nil || !s.released.CompareAndSwap(false, true) {
		return
	}

	if s.ref.refs.Add(-1) > 0 || s.ref.leaked.Load() {
		return
	}

	if s.ref.subs.remove(s.ref.id) {
		s.ref.scope.debug("removed subscriber", "store", StoreType[S]())
	}
}

// Leak keeps the subscriber registered for the lifetime of the scope,
// regardless of releases.
func (s *Subscription[S]) Leak() {
	s.ref.leaked.Store(true)
}

// Active reports whether the subscriber is still registered
func (s *Subscription[S]) Active() bool {
	return s != nil && s.ref.subs.contains(s.ref.id)
}
