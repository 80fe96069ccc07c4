package assessment

import (
	"fmt"
	"regexp"
	"strings"
)

// Check is one deterministic predicate over submitted source text.
type Check struct {
	ID    string
	Label string
	Fn    func(src string) bool
}

// CodeRule applies an ordered list of independent checks to a code
// submission, one criterion per check. Failing checks do not short-circuit
// the rest.
type CodeRule struct {
	Checks []Check
}

func (r CodeRule) Evaluate(sub Submission) []Criterion {
	out := make([]Criterion, 0, len(r.Checks))
	for _, c := range r.Checks {
		out = append(out, Criterion{ID: c.ID, Label: c.Label, Passed: c.Fn(sub.Source)})
	}
	return out
}

// --- predicate constructors ---

// HasOpenTag matches an opening tag of the given kind, with or without
// attributes, case-insensitively.
func HasOpenTag(id, label, tag string) (Check, error) {
	re, err := regexp.Compile(`(?i)<\s*` + regexp.QuoteMeta(tag) + `(\s[^>]*)?>`)
	if err != nil {
		return Check{}, err
	}
	return Check{ID: id, Label: label, Fn: re.MatchString}, nil
}

// HasCloseTag matches a closing tag of the given kind.
func HasCloseTag(id, label, tag string) (Check, error) {
	re, err := regexp.Compile(`(?i)<\s*/\s*` + regexp.QuoteMeta(tag) + `\s*>`)
	if err != nil {
		return Check{}, err
	}
	return Check{ID: id, Label: label, Fn: re.MatchString}, nil
}

// TagContent matches when the text between the first opening and closing
// tag of the given kind satisfies the pattern.
func TagContent(id, label, tag, pattern string) (Check, error) {
	open, err := regexp.Compile(`(?i)<\s*` + regexp.QuoteMeta(tag) + `(\s[^>]*)?>`)
	if err != nil {
		return Check{}, err
	}
	clos, err := regexp.Compile(`(?i)<\s*/\s*` + regexp.QuoteMeta(tag) + `\s*>`)
	if err != nil {
		return Check{}, err
	}
	want, err := regexp.Compile(pattern)
	if err != nil {
		return Check{}, fmt.Errorf("check %s: bad pattern: %w", id, err)
	}
	fn := func(src string) bool {
		o := open.FindStringIndex(src)
		if o == nil {
			return false
		}
		c := clos.FindStringIndex(src[o[1]:])
		if c == nil {
			return false
		}
		return want.MatchString(src[o[1] : o[1]+c[0]])
	}
	return Check{ID: id, Label: label, Fn: fn}, nil
}

// Order matches when the first occurrence of element `first` precedes the
// first occurrence of element `second` in source order.
func Order(id, label, first, second string) (Check, error) {
	a, err := regexp.Compile(`(?i)<\s*` + regexp.QuoteMeta(first) + `(\s[^>]*)?>`)
	if err != nil {
		return Check{}, err
	}
	b, err := regexp.Compile(`(?i)<\s*` + regexp.QuoteMeta(second) + `(\s[^>]*)?>`)
	if err != nil {
		return Check{}, err
	}
	fn := func(src string) bool {
		ai := a.FindStringIndex(src)
		bi := b.FindStringIndex(src)
		return ai != nil && bi != nil && ai[0] < bi[0]
	}
	return Check{ID: id, Label: label, Fn: fn}, nil
}

// Pattern matches the submission against an arbitrary regular expression.
func Pattern(id, label, pattern string) (Check, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Check{}, fmt.Errorf("check %s: bad pattern: %w", id, err)
	}
	return Check{ID: id, Label: label, Fn: re.MatchString}, nil
}

// Contains matches a literal substring, case-insensitively.
func Contains(id, label, substr string) Check {
	needle := strings.ToLower(substr)
	return Check{ID: id, Label: label, Fn: func(src string) bool {
		return strings.Contains(strings.ToLower(src), needle)
	}}
}
