package bserve

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingResponseWriter struct {
	http.ResponseWriter
}

func (f failingResponseWriter) Write([]byte) (int, error) {
	return 0, errors.New("write fail")
}

func TestResponseBufferBasics(t *testing.T) {
	for _, tt := range []struct {
		name  string
		limit int
		do    func(t *testing.T, w *ResponseBuffer)
		code  int
		body  string
		hdr   http.Header
	}{
		{
			name: "nothing written is a 200", limit: -1,
			do:   func(*testing.T, *ResponseBuffer) {},
			code: http.StatusOK,
		},
		{
			name: "first status wins", limit: -1,
			do: func(_ *testing.T, w *ResponseBuffer) {
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, "made")
				w.WriteHeader(http.StatusAccepted)
			},
			code: http.StatusCreated, body: "made",
		},
		{
			name: "write fixes the status at 200", limit: -1,
			do: func(_ *testing.T, w *ResponseBuffer) {
				fmt.Fprint(w, "x")
				w.WriteHeader(http.StatusTeapot)
			},
			code: http.StatusOK, body: "x",
		},
		{
			name: "limit is inclusive", limit: 3,
			do: func(t *testing.T, w *ResponseBuffer) {
				n, err := w.Write([]byte("abc"))
				require.NoError(t, err)
				require.Equal(t, 3, n)

				n, err = w.Write([]byte("d"))
				require.ErrorIs(t, err, ErrBufferFull)
				require.Zero(t, n)
			},
			code: http.StatusOK, body: "abc",
		},
		{
			name: "write past the limit writes nothing", limit: 3,
			do: func(t *testing.T, w *ResponseBuffer) {
				_, err := w.Write([]byte("abcd"))
				require.ErrorIs(t, err, ErrBufferFull)
			},
			code: http.StatusOK,
		},
		{
			name: "reset forgets status, headers and body", limit: 4,
			do: func(_ *testing.T, w *ResponseBuffer) {
				w.Header().Set("X-Before", "1")
				w.WriteHeader(http.StatusCreated)
				fmt.Fprint(w, "1234")
				w.Reset()
				w.Header().Set("X-After", "2")
				fmt.Fprint(w, "5678")
			},
			code: http.StatusOK, body: "5678", hdr: http.Header{"X-After": {"2"}},
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			w := newBufferResponse(rec, tt.limit)
			defer w.Free()

			tt.do(t, w)
			assert.Zero(t, rec.Body.Len(), "nothing reaches the client before a flush")

			require.NoError(t, w.FlushBuffer())
			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.code, w.Status())
			assert.Equal(t, tt.body, rec.Body.String())

			for k := range tt.hdr {
				assert.Equal(t, tt.hdr.Get(k), rec.Header().Get(k))
			}

			assert.Empty(t, rec.Header().Get("X-Before"))
		})
	}
}

func TestResponseBufferFlushing(t *testing.T) {
	t.Run("explicit flushes stream the body and forbid reset", func(t *testing.T) {
		rec := httptest.NewRecorder()
		w := newBufferResponse(rec, 2)

		for range 3 {
			_, err := w.Write([]byte("ab"))
			require.NoError(t, err)
			require.NoError(t, http.NewResponseController(w).Flush())
		}

		assert.Equal(t, "ababab", rec.Body.String())
		assert.PanicsWithValue(t, "bserve: cannot reset, response was already flushed", w.Reset)
	})

	t.Run("underlying write errors are returned", func(t *testing.T) {
		w := newBufferResponse(failingResponseWriter{httptest.NewRecorder()}, -1)
		fmt.Fprint(w, "foo")

		require.ErrorContains(t, w.FlushError(), "write fail")
	})

	t.Run("unwraps to the underlying writer", func(t *testing.T) {
		rec := httptest.NewRecorder()
		assert.Equal(t, rec, newBufferResponse(rec, 0).Unwrap())
	})

	t.Run("free is idempotent", func(t *testing.T) {
		w := newBufferResponse(httptest.NewRecorder(), -1)
		w.Free()
		w.Free()
	})
}

// fallback replays what ServeMux does when serving failed after the response was (partly) rendered.
func fallback(w *ResponseBuffer, headers *HeaderSet, code int) {
	w.Reset()
	http.Error(w, http.StatusText(code), code)
	headers.Apply(w.Header())
}

func TestResponseBufferFallbackAfterRender(t *testing.T) {
	headers := NewHeaderSet()
	headers.Add("X-Overlay", "yes")

	rec := httptest.NewRecorder()
	w := newBufferResponse(rec, -1)

	w.Header().Set("X-Rendered", "partial")
	require.NoError(t, Text("half a response").render(w, httptest.NewRequest(http.MethodGet, "/", nil)))
	fallback(w, headers, http.StatusInternalServerError)
	require.NoError(t, w.FlushBuffer())

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error\n", rec.Body.String())
	assert.Equal(t, "yes", rec.Header().Get("X-Overlay"))
	assert.Empty(t, rec.Header().Get("X-Rendered"))
}

func TestResponseBufferHeaderSetBeforeFirstFlush(t *testing.T) {
	headers := NewHeaderSet()
	headers.Add("Content-Type", "text/x-overlay")
	headers.Add("Server", "bserve")

	rec := httptest.NewRecorder()
	w := newBufferResponse(rec, -1)

	require.NoError(t, Text("body").render(w, httptest.NewRequest(http.MethodGet, "/", nil)))
	headers.Apply(w.Header())
	require.NoError(t, w.FlushBuffer())

	// the overlay goes out even though render already wrote the status
	assert.Equal(t, "text/x-overlay", rec.Header().Get("Content-Type"))
	assert.Equal(t, "bserve", rec.Header().Get("Server"))
	assert.Equal(t, "body", rec.Body.String())

	headers.Add("X-Late", "1")
	headers.Apply(w.Header())
	require.NoError(t, w.FlushBuffer())
	assert.Empty(t, rec.Header().Get("X-Late"), "headers are fixed after the first flush")
}

func TestResponseBufferLimitTruncatesFallback(t *testing.T) {
	logs := NewTestLogger(t)
	routes, headers := NewRouteTable(), NewHeaderSet()
	headers.Add("X-Overlay", "yes")
	require.NoError(t, routes.AddRoute(http.MethodGet, "/big", CallableFunc(func(...any) (any, error) {
		return Text("longer than the buffer"), nil
	}), false))

	mux := NewServeMux(
		WithRouteTable(routes),
		WithHeaderSet(headers),
		WithBufferLimit(4),
		WithToken(NewToken()),
		WithLogger(logs))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/big", nil))

	// the fallback body does not fit either, but its status and the overlay still go out
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Body.String())
	assert.Equal(t, "yes", rec.Header().Get("X-Overlay"))
	assert.Equal(t, int64(1), logs.NumLogUnhandledServeError)
}

func TestResponseBufferServeContent(t *testing.T) {
	file := filepath.Join(t.TempDir(), "data.txt")
	require.NoError(t, os.WriteFile(file, []byte("0123456789"), 0o600))

	fi, err := os.Stat(file)
	require.NoError(t, err)

	for _, tt := range []struct {
		name   string
		header http.Header
		code   int
		body   string
	}{
		{"full", nil, http.StatusOK, "0123456789"},
		{"range", http.Header{"Range": {"bytes=2-4"}}, http.StatusPartialContent, "234"},
		{
			"not modified",
			http.Header{"If-Modified-Since": {fi.ModTime().Add(time.Hour).UTC().Format(http.TimeFormat)}},
			http.StatusNotModified, "",
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/data.txt", nil)
			for k, vs := range tt.header {
				req.Header[k] = vs
			}

			rec := httptest.NewRecorder()
			w := newBufferResponse(rec, -1)
			defer w.Free()

			require.NoError(t, StaticFile(file).render(w, req))
			require.NoError(t, w.FlushBuffer())

			assert.Equal(t, tt.code, rec.Code)
			assert.Equal(t, tt.code, w.Status())
			assert.Equal(t, tt.body, rec.Body.String())
		})
	}
}

func BenchmarkResponseBuffer(b *testing.B) {
	for _, size := range []int{1 << 10, 64 << 10} {
		body := Text(string(make([]byte, size)))
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		b.Run(fmt.Sprintf("text-%d", size), func(b *testing.B) {
			b.ReportAllocs()

			for range b.N {
				w := newBufferResponse(httptest.NewRecorder(), -1)
				if err := body.render(w, req); err != nil {
					b.Fatal(err)
				}

				if err := w.FlushBuffer(); err != nil {
					b.Fatal(err)
				}

				w.Free()
			}
		})
	}
}
