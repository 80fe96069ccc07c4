package content

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrNotFound = errors.New("content: not found")

// Repo is the read-only course catalog collaborator.
type Repo interface {
	ListCourses(ctx context.Context) ([]Course, error)
	GetCourse(ctx context.Context, id string) (Course, error)
	GetModule(ctx context.Context, id string) (Module, error)
	GetTopic(ctx context.Context, id string) (Topic, error)
	// CourseOf resolves the course a module belongs to.
	CourseOf(ctx context.Context, moduleID string) (Course, error)
}

type memoryRepo struct {
	mu      sync.RWMutex
	courses map[string]Course
	modules map[string]Module
	topics  map[string]Topic
	order   []string // course ids in load order
}

// NewInMemoryRepo indexes a loaded catalog. Module and topic positions are
// normalized to their list order so ordinals stay contiguous.
func NewInMemoryRepo(courses []Course) Repo {
	r := &memoryRepo{
		courses: map[string]Course{},
		modules: map[string]Module{},
		topics:  map[string]Topic{},
	}
	for _, c := range courses {
		for mi := range c.Modules {
			m := &c.Modules[mi]
			m.CourseID = c.ID
			m.Position = mi
			for ti := range m.Topics {
				t := &m.Topics[ti]
				t.ModuleID = m.ID
				t.Position = ti
				r.topics[t.ID] = *t
			}
			r.modules[m.ID] = *m
		}
		r.courses[c.ID] = c
		r.order = append(r.order, c.ID)
	}
	return r
}

func (r *memoryRepo) ListCourses(ctx context.Context) ([]Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Course, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.courses[id])
	}
	return out, nil
}

func (r *memoryRepo) GetCourse(ctx context.Context, id string) (Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.courses[id]
	if !ok {
		return Course{}, ErrNotFound
	}
	return c, nil
}

func (r *memoryRepo) GetModule(ctx context.Context, id string) (Module, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[id]
	if !ok {
		return Module{}, ErrNotFound
	}
	return m, nil
}

func (r *memoryRepo) GetTopic(ctx context.Context, id string) (Topic, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.topics[id]
	if !ok {
		return Topic{}, ErrNotFound
	}
	return t, nil
}

func (r *memoryRepo) CourseOf(ctx context.Context, moduleID string) (Course, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[moduleID]
	if !ok {
		return Course{}, ErrNotFound
	}
	c, ok := r.courses[m.CourseID]
	if !ok {
		return Course{}, ErrNotFound
	}
	return c, nil
}

// SortedTopics returns a module's topics in ordinal order. Catalog loading
// already normalizes positions; this guards hand-built fixtures.
func SortedTopics(m Module) []Topic {
	ts := append([]Topic(nil), m.Topics...)
	sort.Slice(ts, func(i, j int) bool { return ts[i].Position < ts[j].Position })
	return ts
}
