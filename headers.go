package bserve

import (
	"net/http"
	"slices"
	"sync"

	"github.com/samber/lo"
)

// HeaderSet holds the headers that are set on every response. It may be changed at any time,
// including while requests are being served.
type HeaderSet struct {
	m sync.Map
}

// NewHeaderSet inits an empty header set.
func NewHeaderSet() *HeaderSet {
	return &HeaderSet{}
}

// Add sets the header, replacing any earlier value for the name.
func (s *HeaderSet) Add(name, value string) {
	s.m.Store(http.CanonicalHeaderKey(name), value)
}

// Remove deletes the header. Removing a header that is not set is a no-op.
func (s *HeaderSet) Remove(name string) {
	s.m.Delete(http.CanonicalHeaderKey(name))
}

// Get returns the value for the header.
func (s *HeaderSet) Get(name string) (string, bool) {
	v, ok := s.m.Load(http.CanonicalHeaderKey(name))
	if !ok {
		return "", false
	}

	return v.(string), true //nolint:forcetypeassert
}

// Names returns the sorted names of all headers in the set.
func (s *HeaderSet) Names() []string {
	names := lo.Keys(s.all())
	slices.Sort(names)

	return names
}

// Apply overlays every header onto h, replacing values already present under the same name.
func (s *HeaderSet) Apply(h http.Header) {
	s.m.Range(func(k, v any) bool {
		h.Set(k.(string), v.(string)) //nolint:forcetypeassert

		return true
	})
}

func (s *HeaderSet) all() map[string]string {
	out := map[string]string{}
	s.m.Range(func(k, v any) bool {
		out[k.(string)] = v.(string) //nolint:forcetypeassert

		return true
	})

	return out
}
