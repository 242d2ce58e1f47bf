package bservefxtest

import (
	"net/http"
	"net/http/httptest"

	"github.com/advdv/bserve"
)

// CallHandler serves the request with fn registered as the only route, at the request's method
// and path, and returns the recorded response. It handles the boilerplate of building a route
// table and mux around a single callable.
func CallHandler(fn bserve.Callable, isAsync bool, req *http.Request) *httptest.ResponseRecorder {
	routes := bserve.NewRouteTable()
	if err := routes.AddRoute(req.Method, req.URL.Path, fn, isAsync); err != nil {
		panic("bservefxtest: add route: " + err.Error())
	}

	rec := httptest.NewRecorder()
	bserve.NewServeMux(bserve.WithRouteTable(routes), bserve.WithToken(bserve.NewToken())).ServeHTTP(rec, req)

	return rec
}
