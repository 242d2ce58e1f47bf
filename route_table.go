package bserve

import (
	"net/http"
	"slices"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Methods lists the request methods that can be routed. Requests with any other method never match.
var Methods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodDelete,
	http.MethodPatch,
}

// RouteTable is the source of truth for registered handlers. It holds one concurrent mapping from
// pattern to handler per supported method and may be written to while requests are being served.
type RouteTable struct {
	routes map[string]*sync.Map
}

// NewRouteTable inits an empty table.
func NewRouteTable() *RouteTable {
	t := &RouteTable{routes: make(map[string]*sync.Map, len(Methods))}
	for _, m := range Methods {
		t.routes[m] = new(sync.Map)
	}

	return t
}

// AddRoute registers the callable for the method and pattern, replacing what was registered there
// before. Patterns are not validated until a matcher is built from the table.
func (t *RouteTable) AddRoute(method, pattern string, fn Callable, isAsync bool) error {
	table, ok := t.routes[method]
	if !ok {
		return errors.Wrapf(ErrUnsupportedMethod, "%q", method)
	}

	table.Store(pattern, NewHandler(fn, isAsync))

	return nil
}

// Lookup returns the handler registered under the exact method and pattern.
func (t *RouteTable) Lookup(method, pattern string) (*Handler, bool) {
	table, ok := t.routes[method]
	if !ok {
		return nil, false
	}

	v, ok := table.Load(pattern)
	if !ok {
		return nil, false
	}

	h, _ := v.(*Handler)

	return h, true
}

// Patterns returns the sorted patterns currently registered for the method.
func (t *RouteTable) Patterns(method string) []string {
	patterns := lo.Keys(t.snapshot(method))
	slices.Sort(patterns)

	return patterns
}

// snapshot copies the current entries for a method.
func (t *RouteTable) snapshot(method string) map[string]*Handler {
	out := map[string]*Handler{}

	table, ok := t.routes[method]
	if !ok {
		return out
	}

	table.Range(func(k, v any) bool {
		out[k.(string)] = v.(*Handler) //nolint:forcetypeassert

		return true
	})

	return out
}
