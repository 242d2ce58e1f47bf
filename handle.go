package bserve

import (
	"sync"
)

// Variant describes how a handler must be driven to produce its result.
type Variant uint8

const (
	// Blocking handlers return their result directly; the serving goroutine waits for them.
	Blocking Variant = iota
	// Suspending handlers return an [Awaitable] that is waited on without holding the execution token.
	Suspending
)

func (v Variant) String() string {
	switch v {
	case Blocking:
		return "blocking"
	case Suspending:
		return "suspending"
	default:
		return "unknown"
	}
}

// Callable is an opaque piece of host code. It is called with the request body as the sole
// argument for POST requests, and without arguments otherwise.
type Callable interface {
	Call(args ...any) (any, error)
}

// CallableFunc allow casting a function to implement [Callable].
type CallableFunc func(args ...any) (any, error)

// Call implements the [Callable] interface.
func (f CallableFunc) Call(args ...any) (any, error) {
	return f(args...)
}

// Awaitable is what a [Suspending] handler returns. Done is closed once Result can be called
// without blocking.
type Awaitable interface {
	Done() <-chan struct{}
	Result() (any, error)
}

// Handler pairs host code with the discipline it is driven by. Handlers are never mutated after
// construction so a single value can be shared between the route table and any matcher built from it.
type Handler struct {
	variant Variant
	fn      Callable
}

// NewHandler classifies the callable as [Suspending] when isAsync is set, [Blocking] otherwise.
func NewHandler(fn Callable, isAsync bool) *Handler {
	h := &Handler{variant: Blocking, fn: fn}
	if isAsync {
		h.variant = Suspending
	}

	return h
}

func (h *Handler) Variant() Variant   { return h.variant }
func (h *Handler) Callable() Callable { return h.fn }

// Future is an [Awaitable] that is resolved explicitly.
type Future struct {
	done chan struct{}
	once sync.Once
	val  any
	err  error
}

// NewFuture inits an unresolved future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolve sets the outcome of the future. Only the first call has any effect.
func (f *Future) Resolve(v any, err error) {
	f.once.Do(func() {
		f.val, f.err = v, err
		close(f.done)
	})
}

func (f *Future) Done() <-chan struct{} { return f.done }

// Result returns the resolved outcome. It blocks until the future is resolved.
func (f *Future) Result() (any, error) {
	<-f.done
	return f.val, f.err
}

// Go runs fn on a new goroutine and returns a future for its outcome. The function runs without
// holding the execution token.
func Go(fn func() (any, error)) *Future {
	f := NewFuture()
	go func() {
		f.Resolve(fn())
	}()

	return f
}

var _ Awaitable = &Future{}
