package bserve

import (
	"sync"

	"github.com/advdv/bserve/internal/radix"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Reverser keeps track of named patterns and allows building URLs from them.
type Reverser struct {
	mu   sync.RWMutex
	pats map[string]radix.Template
}

// NewReverser inits the reverser.
func NewReverser() *Reverser {
	return &Reverser{pats: make(map[string]radix.Template)}
}

// Reverse fills the named pattern's parameters, in order, into a path.
func (r *Reverser) Reverse(name string, vals ...string) (string, error) {
	r.mu.RLock()
	pat, ok := r.pats[name]
	r.mu.RUnlock()

	if !ok {
		return "", errors.Newf("no pattern named: %q, got: %v", name, r.names())
	}

	res, err := radix.Build(pat, vals...)
	if err != nil {
		return "", errors.Wrap(err, "failed to build")
	}

	return res, nil
}

// Named is a convenience method that panics if naming the pattern fails.
func (r *Reverser) Named(name, pattern string) string {
	pattern, err := r.NamedPattern(name, pattern)
	if err != nil {
		panic("bserve: " + err.Error())
	}

	return pattern
}

// NamedPattern parses pattern and remembers it under name, while returning it as well. This allows
// naming a pattern inline with registering it:
//
//	table.AddRoute(http.MethodGet, rev.Named("blog_post", "/blog/:id"), fn, false)
func (r *Reverser) NamedPattern(name, pattern string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pats[name]; exists {
		return pattern, errors.Newf("pattern with name %q already exists", name)
	}

	pat, err := radix.Parse(pattern)
	if err != nil {
		return pattern, errors.Wrap(err, "failed to parse pattern")
	}

	r.pats[name] = pat

	return pattern, nil
}

func (r *Reverser) names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return lo.Keys(r.pats)
}
