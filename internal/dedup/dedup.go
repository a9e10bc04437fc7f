// Package dedup coalesces concurrent calls that share a key into one execution.
package dedup

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Group runs at most one fn per key at a time. Callers arriving while a call is in
// flight wait for it and receive the same value and error. Once the call settles the
// key is released, so the next Do starts a fresh execution. Failures are not retried.
type Group[T any] struct {
	sf singleflight.Group

	mu       sync.Mutex
	inFlight map[string]int
}

// Do executes fn under key. fn receives a context detached from the caller's
// cancellation so that one waiter leaving does not fail the others; a caller whose
// ctx ends stops waiting and gets ctx.Err().
func (g *Group[T]) Do(ctx context.Context, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	runCtx := context.WithoutCancel(ctx)

	ch := g.sf.DoChan(key, func() (any, error) {
		g.mark(key)
		defer g.unmark(key)

		return fn(runCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}

		v, _ := res.Val.(T)

		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// InFlight reports whether any call for key is currently executing.
func (g *Group[T]) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.inFlight[key] > 0
}

// Forget releases key so the next Do starts a new execution even if the current one
// has not finished. Existing waiters still receive the running call's result.
func (g *Group[T]) Forget(key string) {
	g.sf.Forget(key)
}

func (g *Group[T]) mark(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.inFlight == nil {
		g.inFlight = make(map[string]int)
	}

	g.inFlight[key]++
}

func (g *Group[T]) unmark(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.inFlight[key]--
	if g.inFlight[key] <= 0 {
		delete(g.inFlight, key)
	}
}
