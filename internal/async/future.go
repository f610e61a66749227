package async

import (
	"context"
	"errors"
	"fmt"
)

// ErrPanic wraps a value recovered from a panicking work function.
var ErrPanic = errors.New("async: work panicked")

// Future is the eventual result of a function started with [Go].
type Future[T any] struct {
	value T
	err   error
	done  chan struct{}
}

// Go runs fn in a new goroutine with ctx. When ctx is already done, fn is not
// started and the future completes with ctx.Err().
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.value, f.err = zero, fmt.Errorf("%w: %v", ErrPanic, r)
			}
		}()

		// Early exit avoids running work nobody is waiting for.
		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.value, f.err = fn(ctx)
	}()

	return f
}

// Await blocks until the work completes or ctx is done, whichever happens
// first. On cancellation the zero value and ctx.Err() are returned even if
// the work later succeeds.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done is closed once the work has finished.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}
