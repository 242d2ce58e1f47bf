package bserve_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/advdv/bserve"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestDispatchBodyLimit(t *testing.T) {
	for _, tc := range []struct {
		name     string
		size     int
		code     int
		numCalls int64
	}{
		{"empty", 0, http.StatusOK, 1},
		{"exactly at limit", bserve.DefaultMaxBodySize, http.StatusOK, 1},
		{"one byte over", bserve.DefaultMaxBodySize + 1, http.StatusInternalServerError, 0},
		{"far over", 2 * bserve.DefaultMaxBodySize, http.StatusInternalServerError, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var calls int64

			routes := bserve.NewRouteTable()
			mustAddRoute(t, routes, http.MethodPost, "/upload", textHandler("stored", &calls), false)

			mux := bserve.NewServeMux(bserve.WithRouteTable(routes), bserve.WithLogger(bserve.NewTestLogger(t)))
			rec := serve(t, mux, http.MethodPost, "/upload", strings.Repeat("x", tc.size))

			require.Equal(t, tc.code, rec.Code)
			require.Equal(t, tc.numCalls, calls)
		})
	}
}

func TestDispatchBodyLimitIsConfigurable(t *testing.T) {
	routes := bserve.NewRouteTable()
	mustAddRoute(t, routes, http.MethodPost, "/echo", echoHandler(), false)

	mux := bserve.NewServeMux(
		bserve.WithRouteTable(routes),
		bserve.WithMaxBodySize(3),
		bserve.WithLogger(bserve.NewTestLogger(t)))

	require.Equal(t, "abc", serve(t, mux, http.MethodPost, "/echo", "abc").Body.String())
	require.Equal(t, http.StatusInternalServerError, serve(t, mux, http.MethodPost, "/echo", "abcd").Code)
}

func TestDispatchOnlyPostReadsBody(t *testing.T) {
	routes := bserve.NewRouteTable()
	for _, method := range bserve.Methods {
		mustAddRoute(t, routes, method, "/echo", echoHandler(), false)
	}

	mux := bserve.NewServeMux(bserve.WithRouteTable(routes), bserve.WithLogger(bserve.NewTestLogger(t)))

	require.Equal(t, "payload", serve(t, mux, http.MethodPost, "/echo", "payload").Body.String())
	require.Empty(t, serve(t, mux, http.MethodPost, "/echo", "").Body.String())

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete, http.MethodPatch} {
		require.Equal(t, "<none>", serve(t, mux, method, "/echo", "payload").Body.String(), method)
	}
}

type failingReader struct{ n int }

func (r *failingReader) Read(p []byte) (int, error) {
	if r.n > 0 {
		r.n = 0
		return copy(p, "partial"), nil
	}

	return 0, errors.New("connection reset by peer")
}

func TestDispatchBodyReadFailure(t *testing.T) {
	var calls int64

	d := bserve.NewDispatcher(bserve.NewToken(), bserve.DefaultMaxBodySize)
	req := httptest.NewRequest(http.MethodPost, "/x", io.NopCloser(&failingReader{n: 1}))

	_, err := d.Dispatch(bserve.NewHandler(textHandler("x", &calls), false), req)
	require.ErrorIs(t, err, bserve.ErrBodyRead)
	require.Equal(t, bserve.CodeInternalServerError, bserve.CodeOf(err))
	require.Zero(t, calls)
}

func TestDispatchErrors(t *testing.T) {
	d := bserve.NewDispatcher(nil, bserve.DefaultMaxBodySize)
	req := httptest.NewRequest(http.MethodGet, "/x", nil)

	for name, fn := range map[string]bserve.CallableFunc{
		"host error": func(...any) (any, error) { return nil, errors.New("host exception") },
		"panic":      func(...any) (any, error) { panic("host panic") },
		"not a resp": func(...any) (any, error) { return 3.14, nil },
	} {
		t.Run(name, func(t *testing.T) {
			_, err := d.Dispatch(bserve.NewHandler(fn, false), req)
			require.ErrorIs(t, err, bserve.ErrInvocation)
			require.Equal(t, bserve.CodeInternalServerError, bserve.CodeOf(err))
		})
	}

	resp, err := d.Dispatch(bserve.NewHandler(textHandler("fine", nil), false), req)
	require.NoError(t, err)
	require.Equal(t, "fine", resp.Meta())
}
