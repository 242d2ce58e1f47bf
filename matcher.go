package bserve

import (
	"slices"

	"github.com/advdv/bserve/internal/radix"
	"github.com/samber/lo"
)

// Params holds the wildcard values captured while matching a request path.
type Params = radix.Params

// Match is the result of a successful lookup.
type Match struct {
	Handler *Handler
	Pattern string
	Params  Params
}

// Matcher is an immutable index over a snapshot of a [RouteTable]. Routes added to the table after
// the matcher was built are not visible to it.
type Matcher struct {
	trees map[string]*radix.Tree[*Handler]
}

// BuildMatcher snapshots the table into one path trie per method. Patterns the trie rejects are
// reported to the logger and left out, the rest of the matcher is still built.
func BuildMatcher(table *RouteTable, logs Logger) *Matcher {
	m := &Matcher{trees: make(map[string]*radix.Tree[*Handler], len(Methods))}
	for _, method := range Methods {
		tree := radix.New[*Handler]()
		snap := table.snapshot(method)

		// insertion order decides which of two conflicting patterns survives, so keep it stable.
		patterns := lo.Keys(snap)
		slices.Sort(patterns)

		for _, pattern := range patterns {
			if err := tree.Insert(pattern, snap[pattern]); err != nil {
				logs.LogRouteRejected(method, pattern, err)
			}
		}

		m.trees[method] = tree
	}

	return m
}

// Match looks up the handler for the method and request path.
func (m *Matcher) Match(method, path string) (Match, bool) {
	tree, ok := m.trees[method]
	if !ok {
		return Match{}, false
	}

	h, pattern, params, ok := tree.Lookup(path)
	if !ok {
		return Match{}, false
	}

	return Match{Handler: h, Pattern: pattern, Params: params}, true
}

// Len returns the number of routes the matcher holds for the method.
func (m *Matcher) Len(method string) int {
	tree, ok := m.trees[method]
	if !ok {
		return 0
	}

	return tree.Len()
}
