// Package history records the states of a store so they can be undone and
// redone.
//
//	history.Init[Drawing](cx)
//	...
//	history.Apply[Drawing](cx, history.Undo)
//
// Every committed change of the tracked store is appended after the current
// position, discarding states that had been undone. Moving through the
// history sets the tracked store to the recorded state.
package history

import (
	"slices"

	"github.com/jilio/yewdux"
)

// Store is the history of T. Use it through yewdux.New[history.Store[T]].
type Store[T any] struct {
	states []*T
	index  int
}

// New starts the history from the current state of T
func (Store[T]) New(cx *yewdux.Scope) Store[T] {
	return Store[T]{states: []*T{yewdux.New[T](cx).Get()}}
}

// ShouldNotify reports a change when the position or the recorded
// snapshots differ. Snapshots are compared by identity.
func (h *Store[T]) ShouldNotify(old *Store[T]) bool {
	return h.index != old.index || !slices.Equal(h.states, old.states)
}

// Index returns the position of the current state
func (h *Store[T]) Index() int {
	return h.index
}

// Len returns the number of recorded states
func (h *Store[T]) Len() int {
	return len(h.states)
}

// States returns the recorded snapshots, oldest first
func (h *Store[T]) States() []*T {
	return slices.Clone(h.states)
}

// Current returns the snapshot at the current position
func (h *Store[T]) Current() *T {
	if len(h.states) == 0 {
		return nil
	}
	return h.states[h.index]
}

// CanApply reports whether msg would change the history
func (h *Store[T]) CanApply(msg Message) bool {
	switch msg.kind {
	case kindUndo:
		return h.index > 0
	case kindRedo:
		return h.index+1 < len(h.states)
	case kindClear:
		return len(h.states) > 1
	case kindJump:
		return msg.index != h.index && msg.index >= 0 && msg.index < len(h.states)
	default:
		return false
	}
}

// record appends state after the current position. The state the history
// itself restored is recognized by identity and not recorded again.
func (h *Store[T]) record(state *T) *Store[T] {
	if h.Current() == state {
		return h
	}

	states := make([]*T, h.index+1, h.index+2)
	copy(states, h.states[:h.index+1])
	return &Store[T]{
		states: append(states, state),
		index:  h.index + 1,
	}
}

// apply returns the history after msg and whether the tracked store must
// move to the new current state
func (h *Store[T]) apply(msg Message) (*Store[T], bool) {
	switch msg.kind {
	case kindUndo, kindRedo, kindJump:
		target := h.index - 1
		if msg.kind == kindRedo {
			target = h.index + 1
		} else if msg.kind == kindJump {
			target = msg.index
		}
		if target < 0 || target >= len(h.states) {
			return h, false
		}
		return &Store[T]{states: h.states, index: target}, true
	case kindClear:
		return &Store[T]{states: []*T{h.Current()}}, false
	default:
		return h, false
	}
}
