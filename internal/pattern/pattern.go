// Package pattern implements the path template language used for route
// registration.
//
// A template is a sequence of /-separated segments:
//
//	users                 literal segment
//	{id}                  required named parameter
//	{id}?                 optional named parameter (trailing only)
//	{id:^[0-9]+$}         required parameter with a regex constraint
//	{id:^[a-z]+$:i}       constrained parameter with regex flags
//	{id:^[0-9]+$}?        optional constrained parameter
//	*                     required rest capture (one or more segments)
//	*?                    optional rest capture (zero or more segments)
//
// Templates are compiled once at registration time. Compilation is pure
// and deterministic: the same template always yields the same compiled
// form. Malformed templates are configuration errors reported at
// startup, never at request time.
package pattern

import (
	"regexp"
	"strings"

	"github.com/routegrid/routegrid/internal/util"
)

// SegmentKind identifies the kind of a compiled pattern segment.
type SegmentKind int

// Segment kinds.
const (
	// KindLiteral matches a fixed path segment.
	KindLiteral SegmentKind = iota

	// KindParam captures one path segment under a name.
	KindParam

	// KindRest captures all remaining path segments.
	KindRest
)

// Segment is one compiled element of a pattern.
type Segment struct {
	Kind     SegmentKind
	Text     string // literal text, KindLiteral only
	Name     string // parameter name, KindParam only
	Required bool

	// constraint is the anchored per-segment regex, KindParam only.
	constraint *regexp.Regexp
}

// Pattern is an immutable compiled path template.
type Pattern struct {
	source   string
	segments []Segment
	static   bool
	hasRest  bool

	// minTail[i] is the minimum number of path segments required to
	// satisfy segments[i:]. It decides whether an optional parameter
	// may consume a segment without starving a later required one.
	minTail []int
}

// paramNamePattern validates parameter names.
var paramNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// validFlags is the set of supported per-segment regex flags, mapped to
// Go's inline (?flags) syntax.
const validFlags = "imsU"

// Compile parses a path template into a Pattern. It fails if a rest
// segment is not last, a rest segment follows an optional parameter,
// more than one rest segment is present, or a regex does not parse.
func Compile(template string) (*Pattern, error) {
	p := &Pattern{
		source: template,
		static: true,
	}

	sawOptionalParam := false

	for _, raw := range Split(template) {
		if p.hasRest {
			return nil, util.NewPatternError(template, "rest segment must be the last segment")
		}

		seg, err := compileSegment(template, raw)
		if err != nil {
			return nil, err
		}

		switch seg.Kind {
		case KindRest:
			if sawOptionalParam {
				return nil, util.NewPatternError(template,
					"rest segment cannot be preceded by an optional parameter")
			}
			p.hasRest = true
			p.static = false
		case KindParam:
			if !seg.Required {
				sawOptionalParam = true
			}
			p.static = false
		}

		p.segments = append(p.segments, seg)
	}

	p.minTail = computeMinTail(p.segments)

	return p, nil
}

// MustCompile is like Compile but panics on error. It is intended for
// templates known valid at build time, such as tests.
func MustCompile(template string) *Pattern {
	p, err := Compile(template)
	if err != nil {
		panic(err)
	}
	return p
}

// compileSegment compiles one raw template segment.
func compileSegment(template, raw string) (Segment, error) {
	switch raw {
	case "*":
		return Segment{Kind: KindRest, Required: true}, nil
	case "*?":
		return Segment{Kind: KindRest, Required: false}, nil
	}

	if !strings.HasPrefix(raw, "{") {
		return Segment{Kind: KindLiteral, Text: raw, Required: true}, nil
	}

	required := true
	body := raw
	if strings.HasSuffix(body, "?") {
		required = false
		body = body[:len(body)-1]
	}

	if !strings.HasSuffix(body, "}") {
		return Segment{}, util.NewPatternError(template, "unterminated parameter segment "+raw)
	}
	body = body[1 : len(body)-1]

	name := body
	expr := ""
	if i := strings.Index(body, ":"); i >= 0 {
		name = body[:i]
		expr = body[i+1:]
	}

	if !paramNamePattern.MatchString(name) {
		return Segment{}, util.NewPatternError(template, "invalid parameter name "+name)
	}

	seg := Segment{Kind: KindParam, Name: name, Required: required}

	if expr != "" {
		constraint, err := compileConstraint(template, expr)
		if err != nil {
			return Segment{}, err
		}
		seg.constraint = constraint
	}

	return seg, nil
}

// compileConstraint compiles a per-segment regex constraint, splitting
// off trailing flags and anchoring the expression to the whole segment.
// A trailing ":xyz" is treated as flags only when xyz consists solely of
// supported flag characters; otherwise the colon belongs to the regex.
func compileConstraint(template, expr string) (*regexp.Regexp, error) {
	flags := ""
	if i := strings.LastIndex(expr, ":"); i >= 0 && isFlagSet(expr[i+1:]) {
		flags = expr[i+1:]
		expr = expr[:i]
	}

	anchored := "^(?:" + expr + ")$"
	if flags != "" {
		anchored = "(?" + flags + ")" + anchored
	}

	constraint, err := regexp.Compile(anchored)
	if err != nil {
		return nil, util.NewPatternErrorWithCause(template, "invalid constraint regex", err)
	}

	return constraint, nil
}

// isFlagSet reports whether s is a non-empty set of supported regex
// flag characters.
func isFlagSet(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune(validFlags, r) {
			return false
		}
	}
	return true
}

// computeMinTail computes the minimum-required-segments suffix sums.
func computeMinTail(segments []Segment) []int {
	minTail := make([]int, len(segments)+1)
	for i := len(segments) - 1; i >= 0; i-- {
		need := 0
		if segments[i].Required {
			need = 1
		}
		minTail[i] = minTail[i+1] + need
	}
	return minTail
}

// Source returns the template string the pattern was compiled from.
func (p *Pattern) Source() string {
	return p.source
}

// String returns the template string.
func (p *Pattern) String() string {
	return p.source
}

// IsStatic reports whether the pattern consists only of literal
// segments. Static patterns are eligible for exact-phase lookup.
func (p *Pattern) IsStatic() bool {
	return p.static
}

// HasRest reports whether the pattern ends in a rest capture.
func (p *Pattern) HasRest() bool {
	return p.hasRest
}

// Segments returns the compiled segments.
func (p *Pattern) Segments() []Segment {
	return p.segments
}

// Clean normalizes a path: leading and trailing slashes are trimmed and
// empty segments are collapsed. Registered paths and request paths are
// cleaned identically so exact-phase lookups compare like with like.
func Clean(path string) string {
	return strings.Join(Split(path), "/")
}

// Split splits a path into its non-empty segments.
func Split(path string) []string {
	parts := strings.Split(path, "/")
	segs := parts[:0]
	for _, part := range parts {
		if part != "" {
			segs = append(segs, part)
		}
	}
	return segs
}

// Join concatenates path fragments and cleans the result.
func Join(fragments ...string) string {
	return Clean(strings.Join(fragments, "/"))
}
