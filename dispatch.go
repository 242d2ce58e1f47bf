package bserve

import (
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// DefaultMaxBodySize is the largest request body, in bytes, that is passed to a handler.
const DefaultMaxBodySize = 10_000

const readChunkSize = 4096

// Dispatcher drives a matched handler: it reads the body, invokes the handler under the execution
// token and converts what it returned into a [Response].
type Dispatcher struct {
	token       *Token
	maxBodySize int
}

// NewDispatcher inits a dispatcher. A nil token means the process-wide [DefaultToken].
func NewDispatcher(token *Token, maxBodySize int) *Dispatcher {
	if token == nil {
		token = DefaultToken()
	}

	return &Dispatcher{token: token, maxBodySize: maxBodySize}
}

// Dispatch serves the request with the handler. Only POST requests have their body read, it is
// passed to the handler as its sole argument.
func (d *Dispatcher) Dispatch(h *Handler, r *http.Request) (Response, error) {
	var args []any
	if r.Method == http.MethodPost {
		body, err := readBody(r.Body, d.maxBodySize)
		if err != nil {
			return Response{}, err
		}

		args = append(args, body)
	}

	v, err := d.token.invoke(h, args...)
	if err != nil {
		return Response{}, dispatchErrorf(err, "%s handler", h.variant)
	}

	resp, err := AsResponse(v)
	if err != nil {
		return Response{}, dispatchErrorf(err, "convert result")
	}

	return resp, nil
}

// readBody accumulates the body chunk by chunk and gives up as soon as it grows past limit bytes.
func readBody(body io.Reader, limit int) ([]byte, error) {
	out := []byte{}
	if body == nil {
		return out, nil
	}

	chunk := make([]byte, readChunkSize)
	for {
		n, err := body.Read(chunk)
		if len(out)+n > limit {
			return nil, dispatchErrorf(ErrBodyTooLarge, "more than %d bytes", limit)
		}

		out = append(out, chunk[:n]...)

		switch {
		case errors.Is(err, io.EOF):
			return out, nil
		case err != nil:
			return nil, dispatchErrorf(ErrBodyRead, "after %d bytes: %v", len(out), err)
		}
	}
}
