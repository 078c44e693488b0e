package async

import (
	"context"
	"time"
)

// Future represents the pending result of an asynchronous computation.
type Future[T any] struct {
	result T
	err    error
	done   chan struct{}
}

// Run executes fn on its own goroutine and returns a Future for its result.
// A pre-cancelled context short-circuits without invoking fn.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.result, f.err = fn(ctx)
	}()

	return f
}

// Await blocks until the computation completes and returns its result.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.result, f.err
}

// AwaitWithTimeout waits for completion up to the given duration, returning
// ErrTimeout if the computation is still outstanding.
func (f *Future[T]) AwaitWithTimeout(d time.Duration) (T, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-time.After(d):
		var zero T
		return zero, ErrTimeout
	}
}

// IsComplete reports completion without blocking.
func (f *Future[T]) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}
