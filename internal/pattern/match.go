package pattern

import "strings"

// Values holds the named parameters and rest capture produced by a
// successful match. Params is nil when the pattern captured nothing.
// Rest is non-nil only for patterns ending in a rest segment; an
// optional rest that absorbed nothing yields an empty, non-nil slice.
type Values struct {
	Params map[string]string
	Rest   []string
}

// Match evaluates the pattern against a request path. The path is
// normalized before walking, so callers may pass a raw URL path.
// foldCase selects case-insensitive literal comparison; parameter
// constraints are unaffected and honor only their own declared flags.
//
// Matching succeeds only when every compiled segment is consumed and
// every path segment is accounted for. On failure the zero Values is
// returned with no partial captures.
func (p *Pattern) Match(path string, foldCase bool) (Values, bool) {
	segs := Split(path)

	var params map[string]string
	var rest []string
	pi := 0

	for i, seg := range p.segments {
		switch seg.Kind {
		case KindLiteral:
			if pi >= len(segs) {
				return Values{}, false
			}
			if foldCase {
				if !strings.EqualFold(segs[pi], seg.Text) {
					return Values{}, false
				}
			} else if segs[pi] != seg.Text {
				return Values{}, false
			}
			pi++

		case KindParam:
			if pi >= len(segs) {
				if seg.Required {
					return Values{}, false
				}
				// Path exhausted: the optional parameter is absent and
				// the remaining compiled segments must tolerate that.
				continue
			}
			if !seg.Required && len(segs)-pi <= p.minTail[i+1] {
				// The current segment is needed by a later required
				// segment; treat this optional parameter as absent.
				continue
			}
			if seg.constraint != nil && !seg.constraint.MatchString(segs[pi]) {
				// A present but non-matching segment always fails the
				// whole pattern, even for optional parameters.
				return Values{}, false
			}
			if params == nil {
				params = make(map[string]string)
			}
			params[seg.Name] = segs[pi]
			pi++

		case KindRest:
			rest = append([]string{}, segs[pi:]...)
			if seg.Required && len(rest) == 0 {
				return Values{}, false
			}
			pi = len(segs)
		}
	}

	if pi != len(segs) {
		return Values{}, false
	}

	return Values{Params: params, Rest: rest}, true
}
