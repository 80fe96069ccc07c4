package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codetrail/codetrail-lms/internal/content"
	"github.com/codetrail/codetrail-lms/internal/progress"
)

// GET /courses — catalog list with the caller's completion percent.
func ListCoursesHandler(catalog content.Repo, eng *progress.Engine) http.HandlerFunc {
	type courseSummary struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		Preliminary bool   `json:"preliminary,omitempty"`
		Modules     int    `json:"modules"`
		Percent     int    `json:"percent"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := subjectAndRole(r)
		courses, err := catalog.ListCourses(r.Context())
		if err != nil {
			engineError(w, err)
			return
		}
		out := make([]courseSummary, 0, len(courses))
		for _, c := range courses {
			pct, err := eng.CourseCompletion(r.Context(), sub, c.ID)
			if err != nil {
				engineError(w, err)
				return
			}
			out = append(out, courseSummary{
				ID:          c.ID,
				Title:       c.Title,
				Preliminary: c.Preliminary,
				Modules:     len(c.Modules),
				Percent:     pct,
			})
		}
		writeJSON(w, out)
	}
}

// GET /courses/{courseID} — module list annotated with derived lock state,
// status, percent and homework sub-state.
func GetCourseHandler(eng *progress.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := subjectAndRole(r)
		ov, err := eng.Overview(r.Context(), sub, chi.URLParam(r, "courseID"))
		if err != nil {
			engineError(w, err)
			return
		}
		writeJSON(w, ov)
	}
}

// GET /courses/{courseID}/completion
func CourseCompletionHandler(eng *progress.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := subjectAndRole(r)
		pct, err := eng.CourseCompletion(r.Context(), sub, chi.URLParam(r, "courseID"))
		if err != nil {
			engineError(w, err)
			return
		}
		writeJSON(w, map[string]int{"percent": pct})
	}
}

// GET /modules/{moduleID} — module detail: topics, homework brief,
// resources. Topic bodies stay server-side; pages are served per topic.
func GetModuleHandler(catalog content.Repo, eng *progress.Engine) http.HandlerFunc {
	type topicSummary struct {
		ID       string `json:"id"`
		Title    string `json:"title"`
		Position int    `json:"position"`
	}
	type moduleDetail struct {
		ID        string             `json:"id"`
		CourseID  string             `json:"course_id"`
		Title     string             `json:"title"`
		Position  int                `json:"position"`
		Topics    []topicSummary     `json:"topics"`
		Homework  *content.Homework  `json:"homework,omitempty"`
		Resources []content.Resource `json:"resources,omitempty"`
		Locked    bool               `json:"locked"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := subjectAndRole(r)
		id := chi.URLParam(r, "moduleID")
		m, err := catalog.GetModule(r.Context(), id)
		if err != nil {
			engineError(w, progress.WrapContentErr(err))
			return
		}
		locked, err := eng.Locked(r.Context(), sub, id)
		if err != nil {
			engineError(w, err)
			return
		}
		out := moduleDetail{
			ID: m.ID, CourseID: m.CourseID, Title: m.Title, Position: m.Position,
			Homework: m.Homework, Resources: m.Resources, Locked: locked,
		}
		for _, t := range content.SortedTopics(m) {
			out.Topics = append(out.Topics, topicSummary{ID: t.ID, Title: t.Title, Position: t.Position})
		}
		writeJSON(w, out)
	}
}

// GET /modules/{moduleID}/locked
func ModuleLockedHandler(eng *progress.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := subjectAndRole(r)
		locked, err := eng.Locked(r.Context(), sub, chi.URLParam(r, "moduleID"))
		if err != nil {
			engineError(w, err)
			return
		}
		writeJSON(w, map[string]bool{"locked": locked})
	}
}
