package bserve

import (
	"bytes"
	"net/http"
	"sync"

	"github.com/cockroachdb/errors"
)

// ErrBufferFull is returned when the write would exceed the response buffer's limit.
var ErrBufferFull = errors.New("buffer is full")

var bufPool = sync.Pool{New: func() any { return new(bytes.Buffer) }}

// ResponseBuffer implements the http.ResponseWriter but buffers the status, headers and body until
// it is flushed. Until then the response can be thrown away with Reset and formulated anew, which
// is how a failed render still turns into a clean error response.
type ResponseBuffer struct {
	resp   http.ResponseWriter
	limit  int
	buf    *bytes.Buffer
	header http.Header
	status int

	wroteHeader bool // WriteHeader or Write was called since the last reset
	sentHeader  bool // status and headers went out to the underlying writer
	flushed     bool // an explicit flush happened, reset is no longer possible
}

// NewResponseBuffer inits a buffered response writer. A negative limit means the buffer is unbounded.
func NewResponseBuffer(resp http.ResponseWriter, limit int) *ResponseBuffer {
	return newBufferResponse(resp, limit)
}

func newBufferResponse(resp http.ResponseWriter, limit int) *ResponseBuffer {
	buf, _ := bufPool.Get().(*bytes.Buffer)
	buf.Reset()

	return &ResponseBuffer{
		resp:   resp,
		limit:  limit,
		buf:    buf,
		header: http.Header{},
		status: http.StatusOK,
	}
}

// Header returns the buffered header map. It is copied to the underlying writer on the first flush.
func (w *ResponseBuffer) Header() http.Header {
	return w.header
}

// WriteHeader records the status code. Only the first call since the last reset has any effect.
func (w *ResponseBuffer) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}

	w.wroteHeader, w.status = true, statusCode
}

// Write appends to the buffer, or fails with [ErrBufferFull] without writing anything if the limit
// would be exceeded.
func (w *ResponseBuffer) Write(p []byte) (int, error) {
	if w.limit >= 0 && w.buf.Len()+len(p) > w.limit {
		return 0, errors.Wrapf(ErrBufferFull, "writing %d bytes onto %d of %d", len(p), w.buf.Len(), w.limit)
	}

	w.wroteHeader = true

	return w.buf.Write(p)
}

// Status returns the status code that is, or will be, sent.
func (w *ResponseBuffer) Status() int {
	return w.status
}

// Reset discards the buffered status, headers and body. It panics when part of the response was
// already flushed explicitly.
func (w *ResponseBuffer) Reset() {
	if w.flushed {
		panic("bserve: cannot reset, response was already flushed")
	}

	w.buf.Reset()
	w.header = http.Header{}
	w.status = http.StatusOK
	w.wroteHeader = false
}

// FlushError writes what is buffered to the underlying writer and flushes that too. It is called by
// [http.ResponseController] and makes any later Reset panic.
func (w *ResponseBuffer) FlushError() error {
	w.flushed = true
	if err := w.FlushBuffer(); err != nil {
		return err
	}

	if err := http.NewResponseController(w.resp).Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return errors.Wrap(err, "flush underlying")
	}

	return nil
}

// FlushBuffer writes the status, headers and buffered body to the underlying writer.
func (w *ResponseBuffer) FlushBuffer() error {
	if !w.sentHeader {
		dst := w.resp.Header()
		for k, vs := range w.header {
			dst[k] = vs
		}

		w.resp.WriteHeader(w.status)
		w.sentHeader = true
	}

	if w.buf.Len() == 0 {
		return nil
	}

	if _, err := w.resp.Write(w.buf.Bytes()); err != nil {
		return errors.Wrap(err, "write buffered body")
	}

	w.buf.Reset()

	return nil
}

// Unwrap returns the underlying writer so [http.ResponseController] can reach it.
func (w *ResponseBuffer) Unwrap() http.ResponseWriter {
	return w.resp
}

// Free returns the buffer to the pool. The writer must not be used afterwards.
func (w *ResponseBuffer) Free() {
	if w.buf == nil {
		return
	}

	bufPool.Put(w.buf)
	w.buf = nil
}
