package bserve

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Mount copies every route of sub into the table, with prefix prepended to its pattern. A route
// registered at "/" in sub is mounted at the prefix itself. Routes added to sub after mounting are
// not copied.
func (t *RouteTable) Mount(prefix string, sub *RouteTable) error {
	if !strings.HasPrefix(prefix, "/") || strings.HasSuffix(prefix, "/") {
		return errors.Newf("mount prefix %q must start, and not end, with a slash", prefix)
	}

	for _, method := range Methods {
		for pattern, h := range sub.snapshot(method) {
			mounted := prefix + pattern
			if pattern == "/" {
				mounted = prefix
			}

			t.routes[method].Store(mounted, h)
		}
	}

	return nil
}
