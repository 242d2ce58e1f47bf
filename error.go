package bserve

import (
	"net/http"

	"github.com/cockroachdb/errors"
)

// Code is an error code that mirrors the http status codes. Dispatch failures carry one so the serving
// loop can pick the fallback response structurally.
type Code int

const (
	CodeUnknown               Code = 0
	CodeBadRequest            Code = http.StatusBadRequest            // RFC 9110, 15.5.1
	CodeNotFound              Code = http.StatusNotFound              // RFC 9110, 15.5.5
	CodeMethodNotAllowed      Code = http.StatusMethodNotAllowed      // RFC 9110, 15.5.6
	CodeRequestEntityTooLarge Code = http.StatusRequestEntityTooLarge // RFC 9110, 15.5.14
	CodeInternalServerError   Code = http.StatusInternalServerError   // RFC 9110, 15.6.1
	CodeServiceUnavailable    Code = http.StatusServiceUnavailable    // RFC 9110, 15.6.4
)

var (
	// ErrBodyTooLarge is returned when a request body exceeds the configured maximum.
	ErrBodyTooLarge = errors.New("request body too large")
	// ErrBodyRead is returned when the request body could not be read, for example when the
	// client went away half-way through.
	ErrBodyRead = errors.New("failed to read request body")
	// ErrInvocation is returned when calling a handler failed or its result is not a response.
	ErrInvocation = errors.New("handler invocation failed")
	// ErrRender is returned when a response could not be written out.
	ErrRender = errors.New("failed to render response")
	// ErrRouteNotFound is returned when no handler matches the method and path.
	ErrRouteNotFound = errors.New("route not found")
	// ErrUnsupportedMethod is returned when registering for a method that is never routed.
	ErrUnsupportedMethod = errors.New("unsupported method")
)

// DispatchError describes why a request could not be served by its handler.
type DispatchError struct {
	code Code
	err  error
}

// NewDispatchError inits a new error given the error code.
func NewDispatchError(c Code, underlying error) *DispatchError {
	return &DispatchError{c, underlying}
}

func (e *DispatchError) Code() Code    { return e.code }
func (e *DispatchError) Unwrap() error { return e.err }
func (e *DispatchError) Error() string {
	status := http.StatusText(int(e.Code()))
	if status == "" {
		status = "Unknown"
	}

	return status + ": " + e.err.Error()
}

// dispatchErrorf wraps the kind with a message and maps it onto its status code.
func dispatchErrorf(kind error, format string, args ...any) *DispatchError {
	code := CodeInternalServerError
	if errors.Is(kind, ErrRouteNotFound) {
		code = CodeNotFound
	}

	return NewDispatchError(code, errors.Wrapf(kind, format, args...))
}

// CodeOf returns the error's status code if it is or wraps an [*DispatchError] and
// [CodeUnknown] otherwise.
func CodeOf(err error) Code {
	if derr, ok := asDispatchError(err); ok {
		return derr.Code()
	}

	return CodeUnknown
}

func asDispatchError(err error) (*DispatchError, bool) {
	var derr *DispatchError
	ok := errors.As(err, &derr)

	return derr, ok
}
