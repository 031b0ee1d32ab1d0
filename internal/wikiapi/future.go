package wikiapi

import "context"

// Future holds the eventual result of an asynchronous call.
type Future[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Go runs fn on a new goroutine and returns a future for its result.
func Go[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.value, f.err = fn(ctx)
	}()
	return f
}

// Resolved returns a completed future holding value.
func Resolved[T any](value T) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), value: value}
	close(f.done)
	return f
}

// Failed returns a completed future holding err.
func Failed[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{}), err: err}
	close(f.done)
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the result is available.
func (f *Future[T]) Wait() (T, error) {
	<-f.done
	return f.value, f.err
}

// Then chains fn onto f. fn only runs when f succeeds; a failure propagates
// unchanged to the returned future.
func Then[T, U any](f *Future[T], fn func(T) (U, error)) *Future[U] {
	next := &Future[U]{done: make(chan struct{})}
	go func() {
		defer close(next.done)
		value, err := f.Wait()
		if err != nil {
			next.err = err
			return
		}
		next.value, next.err = fn(value)
	}()
	return next
}
