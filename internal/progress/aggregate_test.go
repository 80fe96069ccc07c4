package progress

import (
	"testing"

	"github.com/codetrail/codetrail-lms/internal/content"
)

func moduleWithTopics(id string, n int) content.Module {
	m := content.Module{ID: id}
	for i := 0; i < n; i++ {
		m.Topics = append(m.Topics, content.Topic{ID: id + "-t" + string(rune('a'+i)), Position: i})
	}
	return m
}

func TestModuleCompletionPercent(t *testing.T) {
	m := moduleWithTopics("m1", 3)

	rec := NewRecord("u1", "m1")
	if got := ModuleCompletionPercent(m, rec); got != 0 {
		t.Errorf("fresh record percent = %d, want 0", got)
	}

	rec.CompletedTopics[m.Topics[0].ID] = true
	rec.CompletedTopics[m.Topics[1].ID] = true
	if got := ModuleCompletionPercent(m, rec); got != 67 {
		t.Errorf("2 of 3 topics percent = %d, want 67", got)
	}

	// Completed status wins even when topic bookkeeping lags, as after a
	// mentor force-completes the module via homework approval.
	rec.Status = StatusCompleted
	if got := ModuleCompletionPercent(m, rec); got != 100 {
		t.Errorf("completed module percent = %d, want 100", got)
	}

	if got := ModuleCompletionPercent(content.Module{ID: "empty"}, NewRecord("u1", "empty")); got != 0 {
		t.Errorf("zero-topic module percent = %d, want 0", got)
	}
}

func TestCourseCompletionPercent(t *testing.T) {
	course := content.Course{
		ID:      "c1",
		Modules: []content.Module{moduleWithTopics("m1", 2), moduleWithTopics("m2", 4)},
	}

	if got := CourseCompletionPercent(course, nil); got != 0 {
		t.Errorf("fresh learner percent = %d, want 0", got)
	}

	done := NewRecord("u1", "m1")
	done.Status = StatusCompleted
	half := NewRecord("u1", "m2")
	half.CompletedTopics[course.Modules[1].Topics[0].ID] = true
	half.CompletedTopics[course.Modules[1].Topics[1].ID] = true
	recs := map[string]Record{"m1": done, "m2": half}

	// Modules weigh equally: (100 + 50) / 2.
	if got := CourseCompletionPercent(course, recs); got != 75 {
		t.Errorf("percent = %d, want 75", got)
	}

	half.Status = StatusCompleted
	recs["m2"] = half
	if got := CourseCompletionPercent(course, recs); got != 100 {
		t.Errorf("all-complete percent = %d, want 100", got)
	}

	if got := CourseCompletionPercent(content.Course{ID: "empty"}, nil); got != 0 {
		t.Errorf("empty course percent = %d, want 0", got)
	}
}
