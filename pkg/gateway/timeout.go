package gateway

import (
	"context"
	"time"
)

type callResult[T any] struct {
	v   T
	err error
}

// call runs fn with its own deadline. It returns when the deadline passes
// even if fn ignores ctx; a late result is dropped.
func call[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := make(chan callResult[T], 1)
	go func() {
		v, err := fn(ctx)
		ch <- callResult[T]{v: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
