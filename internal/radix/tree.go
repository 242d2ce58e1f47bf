// Package radix implements the path-matching trie used by the route matcher. Every node holds its
// literal children by segment, at most one named parameter child and at most one catch-all. Lookup
// prefers literal children, then the parameter, then the catch-all, and backtracks when a preferred
// branch dead-ends further down the path.
package radix

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Param is a single captured wildcard value.
type Param struct {
	Key   string
	Value string
}

// Params are the wildcard values captured by a lookup, in path order.
type Params []Param

// Get returns the value captured for the given wildcard name.
func (ps Params) Get(name string) (string, bool) {
	for _, p := range ps {
		if p.Key == name {
			return p.Value, true
		}
	}

	return "", false
}

type node[T any] struct {
	static map[string]*node[T]

	param     *node[T]
	paramName string

	catchAll     *node[T]
	catchAllName string

	isLeaf  bool
	pattern string
	payload T
}

// Tree maps route patterns to payloads.
type Tree[T any] struct {
	root *node[T]
	size int
}

// New inits an empty tree.
func New[T any]() *Tree[T] {
	return &Tree[T]{root: new(node[T])}
}

// Len returns the number of patterns in the tree.
func (t *Tree[T]) Len() int {
	return t.size
}

// Insert adds the pattern with its payload. Inserting the same pattern twice replaces the payload.
// The tree is left untouched when an error is returned.
func (t *Tree[T]) Insert(pattern string, value T) error {
	tmpl, err := Parse(pattern)
	if err != nil {
		return err
	}

	n := t.root
	for _, seg := range tmpl.segments {
		switch seg.Kind {
		case kindParam:
			if n.param == nil {
				n.param, n.paramName = new(node[T]), seg.Payload
			} else if n.paramName != seg.Payload {
				return errors.Wrapf(ErrMismatchingNames, "%q: :%s conflicts with :%s", pattern, seg.Payload, n.paramName)
			}

			n = n.param
		case kindCatchAll:
			if n.catchAll == nil {
				n.catchAll, n.catchAllName = new(node[T]), seg.Payload
			} else if n.catchAllName != seg.Payload {
				return errors.Wrapf(ErrMismatchingNames, "%q: *%s conflicts with *%s", pattern, seg.Payload, n.catchAllName)
			}

			n = n.catchAll
		default:
			child, ok := n.static[seg.Payload]
			if !ok {
				if n.static == nil {
					n.static = make(map[string]*node[T])
				}

				child = new(node[T])
				n.static[seg.Payload] = child
			}

			n = child
		}
	}

	if !n.isLeaf {
		t.size++
	}

	n.isLeaf, n.pattern, n.payload = true, pattern, value

	return nil
}

// Lookup finds the payload registered for a request path. The pattern that matched and any
// captured wildcard values are returned alongside it.
func (t *Tree[T]) Lookup(path string) (value T, pattern string, params Params, found bool) {
	if len(path) == 0 || path[0] != '/' {
		return value, "", nil, false
	}

	leaf := t.root.lookup(path[1:], &params)
	if leaf == nil {
		return value, "", nil, false
	}

	return leaf.payload, leaf.pattern, params, true
}

// lookup descends for the remaining path, which always holds at least one (possibly empty) segment.
func (n *node[T]) lookup(path string, params *Params) *node[T] {
	seg, rest, more := strings.Cut(path, "/")

	if child, ok := n.static[seg]; ok {
		if found := child.descend(rest, more, params); found != nil {
			return found
		}
	}

	if n.param != nil && len(seg) > 0 {
		mark := len(*params)
		*params = append(*params, Param{Key: n.paramName, Value: seg})

		if found := n.param.descend(rest, more, params); found != nil {
			return found
		}

		*params = (*params)[:mark]
	}

	if n.catchAll != nil && n.catchAll.isLeaf && len(path) > 0 {
		*params = append(*params, Param{Key: n.catchAllName, Value: path})
		return n.catchAll
	}

	return nil
}

func (n *node[T]) descend(rest string, more bool, params *Params) *node[T] {
	if more {
		return n.lookup(rest, params)
	}

	if n.isLeaf {
		return n
	}

	return nil
}
