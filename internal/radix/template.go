package radix

import (
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	ErrEmptyPattern     = errors.New("pattern cannot be empty")
	ErrNoLeadingSlash   = errors.New("a leading slash is required")
	ErrUnnamedWildcard  = errors.New("wildcards must be named")
	ErrPartialWildcard  = errors.New("wildcard must be a whole path segment, without prefixes or suffixes")
	ErrCatchAllNotLast  = errors.New("catch-all is only allowed as the last path segment")
	ErrMismatchingNames = errors.New("two different names for wildcards sharing a common prefix isn't supported")
)

type segmentKind uint8

const (
	kindStatic segmentKind = iota
	kindParam
	kindCatchAll
)

// Segment is one slash-separated part of a parsed pattern.
type Segment struct {
	Kind    segmentKind
	Payload string
}

// IsWildcard tells whether the segment captures a value.
func (s Segment) IsWildcard() bool {
	return s.Kind != kindStatic
}

// Template is a parsed pattern.
type Template struct {
	segments []Segment
}

// Parse splits a pattern like "/users/:id/files/*rest" into its segments. Parameters are
// written as ":name" and a trailing catch-all as "*name".
func Parse(pattern string) (Template, error) {
	var tmpl Template

	if len(pattern) == 0 {
		return tmpl, ErrEmptyPattern
	}

	if pattern[0] != '/' {
		return tmpl, errors.Wrapf(ErrNoLeadingSlash, "%q", pattern)
	}

	parts := strings.Split(pattern[1:], "/")
	tmpl.segments = make([]Segment, 0, len(parts))

	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return Template{}, errors.Wrapf(err, "%q", pattern)
		}

		if seg.Kind == kindCatchAll && i != len(parts)-1 {
			return Template{}, errors.Wrapf(ErrCatchAllNotLast, "%q", pattern)
		}

		tmpl.segments = append(tmpl.segments, seg)
	}

	return tmpl, nil
}

func parseSegment(part string) (Segment, error) {
	if len(part) == 0 {
		return Segment{Kind: kindStatic}, nil
	}

	kind := kindStatic
	switch part[0] {
	case ':':
		kind = kindParam
	case '*':
		kind = kindCatchAll
	}

	if kind == kindStatic {
		if strings.ContainsAny(part, ":*") {
			return Segment{}, ErrPartialWildcard
		}

		return Segment{Kind: kindStatic, Payload: part}, nil
	}

	name := part[1:]
	if len(name) == 0 {
		return Segment{}, ErrUnnamedWildcard
	}

	if strings.ContainsAny(name, ":*") {
		return Segment{}, ErrPartialWildcard
	}

	return Segment{Kind: kind, Payload: name}, nil
}

// MustParse is like Parse but panics on a malformed pattern.
func MustParse(pattern string) Template {
	tmpl, err := Parse(pattern)
	if err != nil {
		panic(err.Error())
	}

	return tmpl
}

// IsStatic tells whether the template contains no wildcards.
func (t Template) IsStatic() bool {
	for _, seg := range t.segments {
		if seg.IsWildcard() {
			return false
		}
	}

	return true
}

// Segments returns the parsed segments.
func (t Template) Segments() []Segment {
	return t.segments
}

// ErrNotEnoughValues is returned by Build when a wildcard has no value to fill it.
var ErrNotEnoughValues = errors.New("not enough values")

// Build fills the template's wildcards in order. A catch-all value is inserted as-is, so it may
// span several segments.
func Build(t Template, vals ...string) (string, error) {
	var sb strings.Builder

	next := 0
	for _, seg := range t.segments {
		sb.WriteByte('/')

		if !seg.IsWildcard() {
			sb.WriteString(seg.Payload)
			continue
		}

		if next >= len(vals) {
			return "", errors.Wrapf(ErrNotEnoughValues, "for %q", seg.Payload)
		}

		if seg.Kind == kindParam && (vals[next] == "" || strings.Contains(vals[next], "/")) {
			return "", errors.Newf("value %q cannot fill parameter %q", vals[next], seg.Payload)
		}

		sb.WriteString(vals[next])
		next++
	}

	if next < len(vals) {
		return "", errors.Newf("too many values, %d unused", len(vals)-next)
	}

	return sb.String(), nil
}
