package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codetrail/codetrail-lms/internal/progress"
)

// POST /modules/{moduleID}/homework  { "url": "...", "notes": "..." }
func SubmitHomeworkHandler(eng *progress.Engine) http.HandlerFunc {
	type req struct {
		URL   string `json:"url" validate:"required"`
		Notes string `json:"notes"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := subjectAndRole(r)
		var body req
		if !decodeValid(w, r, &body) {
			return
		}
		rec, err := eng.SubmitHomework(r.Context(), sub, chi.URLParam(r, "moduleID"), body.URL, body.Notes)
		if err != nil {
			engineError(w, err)
			return
		}
		writeJSON(w, rec)
	}
}

// POST /modules/{moduleID}/homework/review
// { "learner_id": "...", "approve": true, "comment": "..." }
// Mentor-only; RBAC guards the route, the engine re-checks the role.
func ReviewHomeworkHandler(eng *progress.Engine) http.HandlerFunc {
	type req struct {
		LearnerID string `json:"learner_id" validate:"required"`
		Approve   bool   `json:"approve"`
		Comment   string `json:"comment"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		_, role := subjectAndRole(r)
		var body req
		if !decodeValid(w, r, &body) {
			return
		}
		rec, err := eng.ReviewHomework(r.Context(), body.LearnerID,
			chi.URLParam(r, "moduleID"), role, body.Approve, body.Comment)
		if err != nil {
			engineError(w, err)
			return
		}
		writeJSON(w, rec)
	}
}
