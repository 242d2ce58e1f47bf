package bserve

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/cockroachdb/errors"
)

// Token is the execution token that every call into handler code must hold. Host code therefore
// never runs concurrently with other host code that shares the same token.
type Token struct {
	mu sync.Mutex
}

var defaultToken = &Token{}

// DefaultToken returns the process-wide execution token used when a server is not configured with
// its own.
func DefaultToken() *Token { return defaultToken }

// NewToken inits a token that is independent of the process-wide one.
func NewToken() *Token { return &Token{} }

// Do runs fn while holding the token. A panic in fn is recovered and returned as an [ErrInvocation].
func (t *Token) Do(fn func() (any, error)) (v any, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrInvocation, "panic: %s", fmt.Sprint(r))
		}
	}()

	return fn()
}

// invoke drives the handler according to its variant. The token is held around the call itself
// and, for suspending handlers, around retrieving the result; it is released while waiting.
func (t *Token) invoke(h *Handler, args ...any) (any, error) {
	v, err := t.Do(func() (any, error) { return h.fn.Call(args...) })
	if err != nil {
		return nil, errors.Mark(err, ErrInvocation)
	}

	if h.variant == Blocking {
		return v, nil
	}

	aw, ok := v.(Awaitable)
	if !ok || isNil(aw) {
		return nil, errors.Wrapf(ErrInvocation, "suspending handler returned %T, not an awaitable", v)
	}

	if err := await(aw); err != nil {
		return nil, err
	}

	v, err = t.Do(aw.Result)
	if err != nil {
		return nil, errors.Mark(err, ErrInvocation)
	}

	return v, nil
}

// await blocks until aw completes, without holding the token.
func await(aw Awaitable) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Wrapf(ErrInvocation, "panic while waiting: %s", fmt.Sprint(r))
		}
	}()

	done := aw.Done()
	if done == nil {
		return errors.Wrap(ErrInvocation, "awaitable has no done channel")
	}

	<-done

	return nil
}

func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.Interface, reflect.Slice:
		return rv.IsNil()
	default:
		return false
	}
}
