package yewdux

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

type LargeState struct {
	ID     int
	Data   [1024]byte // 1KB payload
	Values []string
}

// Benchmark reading the current snapshot
func BenchmarkGet(b *testing.B) {
	d := New[Counter](NewScope())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Get()
	}
}

// Benchmark an in-place reduction with one subscriber
func BenchmarkReduceMut(b *testing.B) {
	cx := NewScope()
	SubscribeSilent(cx, func(*Counter) {})
	d := New[Counter](cx)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.ReduceMut(func(c *Counter) { c.Count++ })
	}
}

// Benchmark reductions that don't change anything
func BenchmarkReduceUnchanged(b *testing.B) {
	cx := NewScope()
	SubscribeSilent(cx, func(*Counter) {})
	d := New[Counter](cx)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Reduce(func(c *Counter) *Counter { return c })
	}
}

// Benchmark broadcasting to many subscribers
func BenchmarkMultipleSubscribers(b *testing.B) {
	benchmarks := []int{1, 10, 100, 1000}

	for _, numSubscribers := range benchmarks {
		b.Run(fmt.Sprintf("subscribers-%d", numSubscribers), func(b *testing.B) {
			cx := NewScope()
			for s := 0; s < numSubscribers; s++ {
				SubscribeSilent(cx, func(*Counter) {})
			}
			d := New[Counter](cx)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				d.ReduceMut(func(c *Counter) { c.Count++ })
			}
		})
	}
}

// Benchmark concurrent reducers sharing one scope
func BenchmarkConcurrentReduce(b *testing.B) {
	benchmarks := []int{1, 10, 100}

	for _, numWriters := range benchmarks {
		b.Run(fmt.Sprintf("writers-%d", numWriters), func(b *testing.B) {
			cx := NewScope()
			d := New[Counter](cx)

			reductionsPerWriter := b.N / numWriters
			if reductionsPerWriter == 0 {
				reductionsPerWriter = 1
			}

			b.ResetTimer()
			var wg sync.WaitGroup
			for w := 0; w < numWriters; w++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					for i := 0; i < reductionsPerWriter; i++ {
						d.ReduceMut(func(c *Counter) { c.Count++ })
					}
				}()
			}

			wg.Wait()
		})
	}
}

// Benchmark subscriber registration and release
func BenchmarkSubscribeRelease(b *testing.B) {
	cx := NewScope()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		SubscribeSilent(cx, func(*Counter) {}).Release()
	}
}

// Benchmark copy-on-write with a large state
func BenchmarkLargeState(b *testing.B) {
	cx := NewScope()
	d := New[LargeState](cx)
	d.Set(LargeState{Values: make([]string, 100)})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.ReduceMut(func(s *LargeState) { s.ID++ })
	}
}

// Benchmark the async path without suspension
func BenchmarkReduceAsync(b *testing.B) {
	d := New[Counter](NewScope())
	ctx := context.Background()
	inc := func(c *Counter) *Counter { return &Counter{Count: c.Count + 1} }

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = d.ReduceAsync(ctx, func(context.Context, *Counter) (func(*Counter) *Counter, error) {
			return inc, nil
		})
	}
}

func BenchmarkMemoryAllocation(b *testing.B) {
	cx := NewScope()
	d := New[Tags](cx)

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		d.Set(Tags{Names: []string{"a"}})
	}
}
