package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jilio/yewdux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistRestoresAndSaves(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()

	// First run
	cx := yewdux.NewScope()
	s := New(WithBackend(Local, backend))
	_, err := Persist[counter](ctx, cx, s, Local)
	require.NoError(t, err)
	assert.Equal(t, 0, yewdux.New[counter](cx).Get().Count)
	assert.True(t, yewdux.ListenerActive[*Listener[counter]](cx))

	yewdux.New[counter](cx).Set(counter{Count: 8})

	// Second run sees the saved state
	next := yewdux.NewScope()
	_, err = Persist[counter](ctx, next, New(WithBackend(Local, backend)), Local)
	require.NoError(t, err)
	assert.Equal(t, 8, yewdux.New[counter](next).Get().Count)
}

func TestPersistCorruptState(t *testing.T) {
	ctx := context.Background()
	backend := NewMemoryBackend()
	require.NoError(t, backend.Set(ctx, Key[counter](), []byte("garbage")))

	cx := yewdux.NewScope()
	_, err := Persist[counter](ctx, cx, New(WithBackend(Local, backend)), Local)
	assert.ErrorIs(t, err, KindDeserialize)
	assert.False(t, yewdux.ListenerActive[*Listener[counter]](cx))
}

func TestInitTabSyncMemory(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	backend := NewMemoryBackend()

	// Two independent scopes sharing one backend, like two tabs
	left, right := yewdux.NewScope(), yewdux.NewScope()
	leftStorage := New(WithBackend(Local, backend))
	rightStorage := New(WithBackend(Local, backend))

	for _, tab := range []struct {
		cx *yewdux.Scope
		s  *Storage
	}{{left, leftStorage}, {right, rightStorage}} {
		_, err := Persist[counter](ctx, tab.cx, tab.s, Local)
		require.NoError(t, err)
		require.NoError(t, InitTabSync[counter](ctx, tab.cx, tab.s, Local))
	}

	yewdux.New[counter](left).Set(counter{Count: 5})
	assert.Equal(t, 5, yewdux.New[counter](right).Get().Count)

	yewdux.New[counter](right).Set(counter{Count: 6})
	assert.Equal(t, 6, yewdux.New[counter](left).Get().Count)
}

func TestInitTabSyncIgnoresOtherKeys(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	backend := NewMemoryBackend()

	cx := yewdux.NewScope()
	s := New(WithBackend(Local, backend))
	require.NoError(t, InitTabSync[counter](ctx, cx, s, Local))

	other := New(WithBackend(Local, backend))
	require.NoError(t, Save(ctx, other, &settings{Theme: "dark"}, Local))
	assert.Equal(t, 0, yewdux.New[counter](cx).Get().Count)

	require.NoError(t, Save(ctx, other, &counter{Count: 2}, Local))
	assert.Equal(t, 2, yewdux.New[counter](cx).Get().Count)
}

func TestInitTabSyncFile(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	dir := t.TempDir()

	mine, err := NewFileBackend(dir, ".json")
	require.NoError(t, err)
	theirs, err := NewFileBackend(dir, ".json")
	require.NoError(t, err)

	cx := yewdux.NewScope()
	require.NoError(t, InitTabSync[counter](ctx, cx, New(WithBackend(Local, mine)), Local))

	require.NoError(t, Save(ctx, New(WithBackend(Local, theirs)), &counter{Count: 9}, Local))

	dispatch := yewdux.New[counter](cx)
	require.Eventually(t, func() bool {
		return dispatch.Get().Count == 9
	}, 5*time.Second, 20*time.Millisecond)
}

func TestInitTabSyncNotWatchable(t *testing.T) {
	s := New(WithBackend(Local, failingBackend{}))

	err := InitTabSync[counter](context.Background(), yewdux.NewScope(), s, Local)
	assert.ErrorIs(t, err, ErrNotWatchable)
}

// flakyBackend is a MemoryBackend whose writes through Set can be made to fail
type flakyBackend struct {
	*MemoryBackend
	fail bool
}

func (f *flakyBackend) Set(ctx context.Context, key string, data []byte) error {
	if f.fail {
		return errors.New("disk full")
	}
	return f.MemoryBackend.Set(ctx, key, data)
}

func TestInitTabSyncAfterFailedSave(t *testing.T) {
	for _, savedBefore := range []bool{false, true} {
		name := "nothing saved"
		if savedBefore {
			name = "saved before"
		}
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			memory := NewMemoryBackend()
			backend := &flakyBackend{MemoryBackend: memory}
			s := New(WithBackend(Local, backend))
			cx := yewdux.NewScope()
			require.NoError(t, InitTabSync[counter](ctx, cx, s, Local))

			if savedBefore {
				require.NoError(t, Save(ctx, s, &counter{Count: 1}, Local))
			}

			backend.fail = true
			require.ErrorIs(t, Save(ctx, s, &counter{Count: 2}, Local), KindAccess)

			// Another writer stores exactly the bytes that failed to save
			data, err := s.Codec().Marshal(&counter{Count: 2})
			require.NoError(t, err)
			require.NoError(t, memory.Set(ctx, Key[counter](), data))

			assert.Equal(t, 2, yewdux.New[counter](cx).Get().Count)
		})
	}
}
