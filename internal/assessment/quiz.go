package assessment

// QuizRule grades a choice selection by exact set equality against the
// registered correct-answer set. Single-choice is the one-element case.
type QuizRule struct {
	Correct []int
	Multi   bool
}

func (q QuizRule) Evaluate(sub Submission) []Criterion {
	return []Criterion{{
		ID:     "selection",
		Label:  "Selected answer is correct",
		Passed: intSetEqual(sub.Selection, q.Correct),
	}}
}

func intSetEqual(a, b []int) bool {
	as, bs := toIntSet(a), toIntSet(b)
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}

func toIntSet(xs []int) map[int]struct{} {
	m := make(map[int]struct{}, len(xs))
	for _, x := range xs {
		m[x] = struct{}{}
	}
	return m
}
