package assessment

import (
	"errors"
	"sync"
)

// ErrUnknownAssessment is returned for ids with no registered rule.
var ErrUnknownAssessment = errors.New("assessment: unknown id")

// Criterion is one named pass/fail verdict of an evaluation.
type Criterion struct {
	ID     string `json:"criterion_id"`
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
}

// AllPassed reports whether every criterion passed. An empty list counts as
// passed (a rule with no checks gates nothing).
func AllPassed(cs []Criterion) bool {
	for _, c := range cs {
		if !c.Passed {
			return false
		}
	}
	return true
}

// Submission carries the learner's answer. Quiz rules read Selection, code
// rules read Source; the unused field is ignored.
type Submission struct {
	Selection []int  `json:"selection,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Rule maps a submission to its criteria. Implementations must be
// deterministic and side-effect-free: they inspect the submission only and
// never execute submitted code.
type Rule interface {
	Evaluate(sub Submission) []Criterion
}

// Registry binds assessment ids to rules. Rules are registered by content
// authors at load time and are immutable afterwards.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]Rule
}

func NewRegistry() *Registry {
	return &Registry{rules: map[string]Rule{}}
}

func (r *Registry) Register(id string, rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules[id] = rule
}

func (r *Registry) Evaluate(id string, sub Submission) ([]Criterion, error) {
	r.mu.RLock()
	rule, ok := r.rules[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownAssessment
	}
	return rule.Evaluate(sub), nil
}

// Has reports whether an id is registered, without evaluating.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rules[id]
	return ok
}
