package bserve_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/advdv/bserve"
	"github.com/stretchr/testify/require"
)

// textHandler returns a callable that counts its calls and responds with s.
func textHandler(s string, calls *int64) bserve.Callable {
	return bserve.CallableFunc(func(...any) (any, error) {
		if calls != nil {
			atomic.AddInt64(calls, 1)
		}

		return bserve.Text(s), nil
	})
}

// echoHandler responds with the request body, or "<none>" when it was called without one.
func echoHandler() bserve.Callable {
	return bserve.CallableFunc(func(args ...any) (any, error) {
		if len(args) == 0 {
			return "<none>", nil
		}

		body, _ := args[0].([]byte)

		return body, nil
	})
}

func serve(t *testing.T, mux http.Handler, method, target string, body string) *httptest.ResponseRecorder {
	t.Helper()

	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}

	rec, req := httptest.NewRecorder(), httptest.NewRequest(method, target, rdr)
	mux.ServeHTTP(rec, req)

	return rec
}

func mustAddRoute(t *testing.T, routes *bserve.RouteTable, method, pattern string, fn bserve.Callable, isAsync bool) {
	t.Helper()
	require.NoError(t, routes.AddRoute(method, pattern, fn, isAsync))
}

func serveRequest(mux http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	return rec
}
