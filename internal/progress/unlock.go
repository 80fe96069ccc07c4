package progress

import "github.com/codetrail/codetrail-lms/internal/content"

// IsLocked decides whether a module is currently reachable for a learner,
// given their records keyed by module id. Pure function: the first module
// of a course is never locked, module k>0 unlocks once module k-1 is
// completed, and preliminary courses are always fully unlocked. Locked is
// derived here only; it is never persisted.
func IsLocked(course content.Course, moduleID string, records map[string]Record) bool {
	if course.Preliminary {
		return false
	}
	var target *content.Module
	for i := range course.Modules {
		if course.Modules[i].ID == moduleID {
			target = &course.Modules[i]
			break
		}
	}
	if target == nil {
		return true
	}
	if target.Position == 0 {
		return false
	}
	for i := range course.Modules {
		m := &course.Modules[i]
		if m.Position == target.Position-1 {
			rec, ok := records[m.ID]
			return !ok || rec.Status != StatusCompleted
		}
	}
	return true
}

// EffectiveStatus is the stored status overlaid with the derived locked
// state, for display.
func EffectiveStatus(course content.Course, moduleID string, records map[string]Record) Status {
	if IsLocked(course, moduleID, records) {
		return StatusLocked
	}
	if rec, ok := records[moduleID]; ok {
		return rec.Status
	}
	return StatusNotStarted
}
