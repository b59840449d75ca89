package yewdux

import (
	"encoding/json"
	"sync"
	"testing"
)

func TestCellEquality(t *testing.T) {
	c := NewCell("expensive")
	old := c

	if !c.Equal(old) || c != old {
		t.Fatal("copies of an untouched cell should be equal")
	}

	c.Mutate(func(v *string) {
		*v += " and changed"
	})

	if c.Equal(old) || c == old {
		t.Error("cell should differ from its copy after Mutate")
	}
	if c.Get() != old.Get() {
		t.Errorf("copies should share the value: %q vs %q", c.Get(), old.Get())
	}
	if c.Revision() <= old.Revision() {
		t.Errorf("Revision() = %d, want > %d", c.Revision(), old.Revision())
	}
}

func TestCellMutateWithoutChangeStillBumps(t *testing.T) {
	c := NewCell(1)
	old := c

	c.Mutate(func(*int) {})

	if c.Equal(old) {
		t.Error("Mutate should mark the cell as changed even if nothing was written")
	}
}

func TestCellDistinctCellsNeverEqual(t *testing.T) {
	a := NewCell(7)
	b := NewCell(7)

	if a.Equal(b) {
		t.Error("cells with equal content but different identity must not be equal")
	}
}

func TestMutateCellReturnsResult(t *testing.T) {
	c := NewCell([]int{1, 2})

	n := MutateCell(&c, func(v *[]int) int {
		*v = append(*v, 3)
		return len(*v)
	})

	if n != 3 {
		t.Errorf("MutateCell() = %d, want 3", n)
	}
	if got := c.Get(); len(got) != 3 {
		t.Errorf("Get() = %v, want 3 elements", got)
	}
}

func TestCellZeroValue(t *testing.T) {
	var c Cell[int]

	if got := c.Get(); got != 0 {
		t.Errorf("Get() on zero cell = %d, want 0", got)
	}

	c.Mutate(func(v *int) { *v = 5 })
	if got := c.Get(); got != 5 {
		t.Errorf("Get() = %d, want 5", got)
	}
}

func TestCellReentrantMutatePanics(t *testing.T) {
	c := NewCell(0)

	mustPanic(t, "already mutably borrowed", func() {
		c.Mutate(func(*int) {
			alias := c
			alias.Mutate(func(*int) {})
		})
	})

	// The cell must still be usable after the panic unwound
	c.Mutate(func(v *int) { *v = 1 })
	if c.Get() != 1 {
		t.Errorf("Get() = %d, want 1", c.Get())
	}
}

func TestCellReadDuringMutatePanics(t *testing.T) {
	c := NewCell(0)

	mustPanic(t, "already mutably borrowed", func() {
		c.Mutate(func(*int) {
			c.Get()
		})
	})
}

func TestCellMutateDuringReadPanics(t *testing.T) {
	c := NewCell(0)

	mustPanic(t, "already borrowed", func() {
		c.Read(func(*int) {
			alias := c
			alias.Mutate(func(*int) {})
		})
	})
}

func TestCellCopiesAcrossGoroutines(t *testing.T) {
	c := NewCell(0)

	var wg sync.WaitGroup
	for range 8 {
		local := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				local.Mutate(func(n *int) { *n++ })
				_ = local.Revision()
			}
		}()
	}
	wg.Wait()

	if got := c.Get(); got != 800 {
		t.Errorf("Get() = %d, want 800", got)
	}
}

func TestCellJSON(t *testing.T) {
	type doc struct {
		Items Cell[[]string] `json:"items"`
	}

	data, err := json.Marshal(doc{Items: NewCell([]string{"a", "b"})})
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"items":["a","b"]}` {
		t.Errorf("Marshal = %s", data)
	}

	var decoded doc
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if got := decoded.Items.Get(); len(got) != 2 || got[1] != "b" {
		t.Errorf("decoded = %v", got)
	}
}

// blob keeps a large value in a cell; it relies on the default DeepEqual
// predicate, which sees a different revision after Mutate.
type blob struct {
	Data Cell[[]int]
}

func TestStoreWithCellNotifiesOnMutate(t *testing.T) {
	cx := NewScope()
	calls := 0
	d := SubscribeSilent(cx, func(*blob) { calls++ })
	defer d.Release()

	d.ReduceMut(func(s *blob) {
		s.Data.Mutate(func(v *[]int) { *v = append(*v, 1) })
	})
	if calls != 1 {
		t.Fatalf("calls = %d after Mutate, want 1", calls)
	}

	d.ReduceMut(func(*blob) {})
	if calls != 1 {
		t.Errorf("calls = %d after untouched reduction, want 1", calls)
	}
}
