package yewdux

import (
	"strings"
	"testing"
)

// Test store types

// Counter is compared field by field through ShouldNotify
type Counter struct {
	Count uint32
}

func (c *Counter) ShouldNotify(old *Counter) bool {
	return *c != *old
}

// Seeded starts from a non-zero value
type Seeded struct {
	Value int
}

func (Seeded) New(*Scope) Seeded {
	return Seeded{Value: 42}
}

// Tags has no Notifier and is compared with reflect.DeepEqual
type Tags struct {
	Names []string
}

// Todos holds every kind of reference a default deep copy has to follow
type Todos struct {
	Done  map[string]bool
	Order []string
	Meta  *TodoMeta
}

type TodoMeta struct {
	Title string
}

// Document keeps its body in a Cell
type Document struct {
	Body Cell[[]byte]
}

// Pinned copies itself, sharing Hits between snapshots
type Pinned struct {
	Hits    map[string]int
	Version int
}

func (p *Pinned) Clone() Pinned {
	return *p
}

// Ticks notifies on every reduction
type Ticks struct {
	N int
}

func (*Ticks) ShouldNotify(*Ticks) bool {
	return true
}

func mustPanic(t *testing.T, contains string, fn func()) {
	t.Helper()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic")
		}
		if msg, ok := r.(string); ok && !strings.Contains(msg, contains) {
			t.Fatalf("panic = %q, want it to contain %q", msg, contains)
		}
	}()

	fn()
}
