package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codetrail/codetrail-lms/internal/progress"
)

// GET /topics/{topicID}/pages — the learner's revealed pages. Viewing is
// itself an interaction: it lazily creates the progression record and pins
// the resume cursor.
func TopicPagesHandler(eng *progress.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := subjectAndRole(r)
		view, err := eng.ViewTopic(r.Context(), sub, chi.URLParam(r, "topicID"))
		if err != nil {
			engineError(w, err)
			return
		}
		writeJSON(w, view)
	}
}
