package yewdux

import (
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/petermattis/goid"
)

// Scope owns one value per store type, together with its subscribers and
// listeners. Entries are created on first use and live as long as the scope.
type Scope struct {
	id      uuid.UUID
	entries map[reflect.Type]any
	mu      sync.Mutex
	turn    turn
	logger  Logger
	obs     Observability
}

// NewScope creates an empty scope
func NewScope(opts ...Option) *Scope {
	cx := &Scope{
		id:      uuid.New(),
		entries: make(map[reflect.Type]any),
	}

	for _, opt := range opts {
		opt(cx)
	}

	return cx
}

// globals holds the ambient scope of each goroutine that asked for one.
var globals sync.Map

// Global returns the ambient scope of the calling goroutine, creating it on
// first use. It is meant for the outermost integration boundary (the
// goroutine running the UI loop); everything else should pass a *Scope.
func Global() *Scope {
	gid := goid.Get()
	if cx, ok := globals.Load(gid); ok {
		return cx.(*Scope)
	}

	cx, _ := globals.LoadOrStore(gid, NewScope())
	return cx.(*Scope)
}

// ResetGlobal discards the ambient scope of the calling goroutine.
func ResetGlobal() {
	globals.Delete(goid.Get())
}

// ID returns the scope identifier used in logs and telemetry
func (cx *Scope) ID() string {
	return cx.id.String()
}

// resolve returns the entry of type T, building it with init when missing.
// init runs outside the registry lock so it may resolve other entries.
func resolve[T any](cx *Scope, init func(*Scope) *T) *T {
	key := reflect.TypeFor[T]()

	cx.mu.Lock()
	existing, ok := cx.entries[key]
	cx.mu.Unlock()
	if ok {
		return mustCast[T](key, existing)
	}

	created := init(cx)

	cx.mu.Lock()
	defer cx.mu.Unlock()

	// init may have resolved the same entry recursively
	if existing, ok := cx.entries[key]; ok {
		return mustCast[T](key, existing)
	}
	cx.entries[key] = created
	return created
}

// lookup returns the entry of type T without creating it
func lookup[T any](cx *Scope) (*T, bool) {
	key := reflect.TypeFor[T]()

	cx.mu.Lock()
	existing, ok := cx.entries[key]
	cx.mu.Unlock()
	if !ok {
		return nil, false
	}

	return mustCast[T](key, existing), true
}

func mustCast[T any](key reflect.Type, v any) *T {
	typed, ok := v.(*T)
	if !ok {
		panic(fmt.Sprintf("yewdux: type mismatch for %v: got %T", key, v))
	}
	return typed
}

func (cx *Scope) debug(msg string, args ...any) {
	if cx.logger != nil {
		cx.logger.Debug(msg, append(args, "scope", cx.ID())...)
	}
}

// turn serializes reductions and broadcasts within a scope. The goroutine
// holding the turn may take it again, which lets subscribers reduce stores
// while a broadcast is running.
type turn struct {
	mu    sync.Mutex
	owner atomic.Int64
	depth int
}

func (t *turn) acquire() {
	gid := goid.Get()
	if t.owner.Load() == gid {
		t.depth++
		return
	}

	t.mu.Lock()
	t.owner.Store(gid)
	t.depth = 1
}

func (t *turn) release() {
	t.depth--
	if t.depth == 0 {
		t.owner.Store(0)
		t.mu.Unlock()
	}
}
