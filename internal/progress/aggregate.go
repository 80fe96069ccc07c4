package progress

import (
	"math"

	"github.com/codetrail/codetrail-lms/internal/content"
)

// CourseCompletionPercent derives the 0..100 dashboard figure for a course.
// A completed module contributes 100; otherwise the module contributes its
// completed-topic share. Modules weigh equally regardless of topic count;
// the course score is the rounded mean of the per-module terms.
func CourseCompletionPercent(course content.Course, records map[string]Record) int {
	if len(course.Modules) == 0 {
		return 0
	}
	sum := 0
	for i := range course.Modules {
		sum += ModuleCompletionPercent(course.Modules[i], records[course.Modules[i].ID])
	}
	return int(math.Round(float64(sum) / float64(len(course.Modules))))
}

// ModuleCompletionPercent is one module's term of the course aggregate.
func ModuleCompletionPercent(m content.Module, rec Record) int {
	if rec.Status == StatusCompleted {
		return 100
	}
	if len(m.Topics) == 0 {
		return 0
	}
	done := 0
	for i := range m.Topics {
		if rec.CompletedTopics[m.Topics[i].ID] {
			done++
		}
	}
	pct := int(math.Round(float64(done) / float64(len(m.Topics)) * 100))
	if pct > 100 {
		pct = 100
	}
	return pct
}
