package yewdux

import (
	"encoding/json"
	"reflect"
	"sync"
	"sync/atomic"

	clone "github.com/huandu/go-clone"
	"github.com/petermattis/goid"
)

// revisions is shared by every cell so that no two mutations ever carry the
// same revision.
var revisions atomic.Uint64

func nextRevision() uint64 {
	return revisions.Add(1)
}

// Cell is a shared, mutable value with change tracking. Copies of a Cell
// share the same underlying value.
//
// Every call to Mutate stamps the copy it was called on with a new
// revision, whether or not the value actually changed. Two cells are equal
// (with == or Equal) only when they share the same underlying value AND carry
// the same revision. Content is never compared: two cells holding equal
// values are different, and the same cell before and after a mutation is
// different. This lets stores holding values that are expensive to copy or
// compare still trigger notifications:
//
//	data := yewdux.NewCell([]byte("large"))
//	old := data
//	data.Mutate(func(b *[]byte) { *b = append(*b, '!') })
//	data == old // false, although both see the same bytes
//
// Mutating a cell from inside its own Mutate or Read callback is a
// programming error and panics. The zero Cell holds the zero value of T.
//
// The shared value is safe for concurrent use; a single Cell variable is
// not. Mutate stamps the revision of the variable it is called on (and
// allocates the value of a zero Cell) without locking, so it must not race
// with Revision, Equal or another Mutate on that same variable. Copies may be
// used from different goroutines. Nested Read calls on one goroutine can
// deadlock while another goroutine is waiting in Mutate.
//
// Deep copies of a store, made before ReduceMut, keep sharing the value of
// every Cell they contain.
type Cell[T any] struct {
	shared *cellData[T]
	rev    uint64
}

type cellData[T any] struct {
	mu    sync.RWMutex
	value T

	// borrow bookkeeping, used to catch re-entrant access
	bmu     sync.Mutex
	writer  int64
	readers map[int64]int
}

// NewCell wraps value in a new cell
func NewCell[T any](value T) Cell[T] {
	return Cell[T]{
		shared: newCellData(value),
		rev:    nextRevision(),
	}
}

func newCellData[T any](value T) *cellData[T] {
	// copied as a pointer by the store's deep copy
	clone.MarkAsOpaquePointer(reflect.TypeFor[*cellData[T]]())
	return &cellData[T]{value: value}
}

// Get returns a copy of the current value
func (c *Cell[T]) Get() T {
	var v T
	c.Read(func(value *T) {
		v = *value
	})
	return v
}

// Read calls fn with shared access to the value. fn must not modify it.
func (c *Cell[T]) Read(fn func(value *T)) {
	if c.shared == nil {
		var zero T
		fn(&zero)
		return
	}

	gid := c.shared.rlock()
	defer c.shared.runlock(gid)
	fn(&c.shared.value)
}

// Mutate calls fn with exclusive access to the value and marks c as changed
func (c *Cell[T]) Mutate(fn func(value *T)) {
	MutateCell(c, func(value *T) struct{} {
		fn(value)
		return struct{}{}
	})
}

// MutateCell is Mutate for callbacks that return a result
func MutateCell[T, R any](c *Cell[T], fn func(value *T) R) R {
	if c.shared == nil {
		var zero T
		c.shared = newCellData(zero)
	}
	c.rev = nextRevision()

	c.shared.lock()
	defer c.shared.unlock()
	return fn(&c.shared.value)
}

// Revision returns the revision stamped by the last Mutate on this copy
func (c Cell[T]) Revision() uint64 {
	return c.rev
}

// Equal reports whether both cells share the same value at the same revision
func (c Cell[T]) Equal(other Cell[T]) bool {
	return c.shared == other.shared && c.rev == other.rev
}

// MarshalJSON encodes the wrapped value
func (c Cell[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Get())
}

// UnmarshalJSON replaces c with a new cell holding the decoded value
func (c *Cell[T]) UnmarshalJSON(data []byte) error {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = NewCell(v)
	return nil
}

func (d *cellData[T]) lock() {
	gid := goid.Get()
	d.check(gid, true)

	d.mu.Lock()
	d.bmu.Lock()
	d.writer = gid
	d.bmu.Unlock()
}

func (d *cellData[T]) unlock() {
	d.bmu.Lock()
	d.writer = 0
	d.bmu.Unlock()
	d.mu.Unlock()
}

func (d *cellData[T]) rlock() int64 {
	gid := goid.Get()
	d.check(gid, false)

	d.mu.RLock()
	d.bmu.Lock()
	if d.readers == nil {
		d.readers = make(map[int64]int)
	}
	d.readers[gid]++
	d.bmu.Unlock()
	return gid
}

func (d *cellData[T]) runlock(gid int64) {
	d.bmu.Lock()
	if d.readers[gid]--; d.readers[gid] == 0 {
		delete(d.readers, gid)
	}
	d.bmu.Unlock()
	d.mu.RUnlock()
}

// check panics when the calling goroutine already holds a conflicting borrow
func (d *cellData[T]) check(gid int64, exclusive bool) {
	d.bmu.Lock()
	defer d.bmu.Unlock()

	if d.writer == gid {
		panic("yewdux: cell already mutably borrowed")
	}
	if exclusive && d.readers[gid] > 0 {
		panic("yewdux: cell already borrowed")
	}
}
