package yewdux

import "sync"

// Listener observes every committed change of S.
type Listener[S any] interface {
	OnChange(cx *Scope, state *S)
}

// listenerSlot holds the subscription of the active listener of type L
type listenerSlot[L any] struct {
	mu       sync.Mutex
	dispatch interface{ Release() }
}

// InitListener registers l as the listener of type L for store S.
// A listener of the same type registered earlier is released first, so at
// most one listener per type is active in a scope.
//
// The listener hears about changes made after registration only.
// Panics raised by OnChange propagate to the code that changed the state.
func InitListener[S any, L Listener[S]](cx *Scope, l L) {
	slot := resolve(cx, func(*Scope) *listenerSlot[L] {
		return &listenerSlot[L]{}
	})

	// Same lock order as a broadcast: turn first, then the slot
	cx.turn.acquire()
	defer cx.turn.release()

	slot.mu.Lock()
	defer slot.mu.Unlock()

	if slot.dispatch != nil {
		slot.dispatch.Release()
		cx.debug("replaced listener", "store", StoreType[S](), "listener", StoreType[L]())
	}

	slot.dispatch = SubscribeSilent(cx, func(state *S) {
		l.OnChange(cx, state)
	})
}

// ListenerActive reports whether a listener of type L is registered in cx
func ListenerActive[L any](cx *Scope) bool {
	slot, ok := lookup[listenerSlot[L]](cx)
	if !ok {
		return false
	}

	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.dispatch != nil
}

// RemoveListener releases the listener of type L, if any
func RemoveListener[L any](cx *Scope) {
	slot, ok := lookup[listenerSlot[L]](cx)
	if !ok {
		return
	}

	cx.turn.acquire()
	defer cx.turn.release()

	slot.mu.Lock()
	defer slot.mu.Unlock()
	if slot.dispatch != nil {
		slot.dispatch.Release()
		slot.dispatch = nil
	}
}
