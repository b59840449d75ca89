package history

import (
	"fmt"

	"github.com/jilio/yewdux"
)

type messageKind int

const (
	kindUndo messageKind = iota + 1
	kindRedo
	kindClear
	kindJump
)

// Message moves through a history
type Message struct {
	kind  messageKind
	index int
}

var (
	// Undo moves to the previous state
	Undo = Message{kind: kindUndo}
	// Redo moves to the next state
	Redo = Message{kind: kindRedo}
	// Clear forgets every state but the current one
	Clear = Message{kind: kindClear}
)

// JumpTo moves to the state at index
func JumpTo(index int) Message {
	return Message{kind: kindJump, index: index}
}

func (m Message) String() string {
	switch m.kind {
	case kindUndo:
		return "undo"
	case kindRedo:
		return "redo"
	case kindClear:
		return "clear"
	case kindJump:
		return fmt.Sprintf("jump to %d", m.index)
	default:
		return "invalid"
	}
}

// Apply applies msg to the history of T and moves T to the resulting
// current state. Messages that cannot apply leave both unchanged.
func Apply[T any](cx *yewdux.Scope, msg Message) {
	var restore *T
	yewdux.New[Store[T]](cx).Reduce(func(h *Store[T]) *Store[T] {
		next, move := h.apply(msg)
		if move {
			restore = next.Current()
		}
		return next
	})

	if restore != nil {
		yewdux.New[T](cx).Reduce(func(*T) *T {
			return restore
		})
	}
}

// Listener records every change of T in its history
type Listener[T any] struct{}

// OnChange implements yewdux.Listener
func (Listener[T]) OnChange(cx *yewdux.Scope, state *T) {
	yewdux.New[Store[T]](cx).Reduce(func(h *Store[T]) *Store[T] {
		return h.record(state)
	})
}

// Init starts recording the history of T
func Init[T any](cx *yewdux.Scope) {
	yewdux.InitListener[T](cx, Listener[T]{})
}
