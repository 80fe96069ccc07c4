package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/codetrail/codetrail-lms/internal/assessment"
	"github.com/codetrail/codetrail-lms/internal/progress"
)

// GET /modules/{moduleID}/progress — own record for students; mentors may
// pass ?learner_id= to inspect any learner.
func GetProgressHandler(eng *progress.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sub, role := subjectAndRole(r)
		learner := sub
		if q := r.URL.Query().Get("learner_id"); q != "" {
			if role != progress.MentorRole {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			learner = q
		}
		rec, err := eng.GetProgress(r.Context(), learner, chi.URLParam(r, "moduleID"))
		if err != nil {
			engineError(w, err)
			return
		}
		writeJSON(w, rec)
	}
}

// POST /modules/{moduleID}/advance  { "topic_id": "..." }
func AdvanceHandler(eng *progress.Engine) http.HandlerFunc {
	type req struct {
		TopicID string `json:"topic_id" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := subjectAndRole(r)
		var body req
		if !decodeValid(w, r, &body) {
			return
		}
		rec, err := eng.Advance(r.Context(), sub, chi.URLParam(r, "moduleID"), body.TopicID)
		if err != nil {
			engineError(w, err)
			return
		}
		writeJSON(w, rec)
	}
}

type verdictResponse struct {
	Criteria []assessment.Criterion `json:"criteria"`
	Passed   bool                   `json:"passed"`
	Record   progress.Record        `json:"record"`
}

// POST /modules/{moduleID}/quizzes/{quizID}  { "selection": [1] }
func QuizSubmitHandler(eng *progress.Engine) http.HandlerFunc {
	type req struct {
		Selection []int `json:"selection"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := subjectAndRole(r)
		var body req
		if !decodeValid(w, r, &body) {
			return
		}
		criteria, rec, err := eng.RecordQuizResult(r.Context(), sub,
			chi.URLParam(r, "moduleID"), chi.URLParam(r, "quizID"), body.Selection)
		if err != nil {
			engineError(w, err)
			return
		}
		writeJSON(w, verdictResponse{Criteria: criteria, Passed: assessment.AllPassed(criteria), Record: rec})
	}
}

// POST /modules/{moduleID}/exercises/{exerciseID}  { "source": "<html>..." }
func ExerciseSubmitHandler(eng *progress.Engine) http.HandlerFunc {
	type req struct {
		Source string `json:"source" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		sub, _ := subjectAndRole(r)
		var body req
		if !decodeValid(w, r, &body) {
			return
		}
		criteria, rec, err := eng.RecordExerciseResult(r.Context(), sub,
			chi.URLParam(r, "moduleID"), chi.URLParam(r, "exerciseID"), body.Source)
		if err != nil {
			engineError(w, err)
			return
		}
		writeJSON(w, verdictResponse{Criteria: criteria, Passed: assessment.AllPassed(criteria), Record: rec})
	}
}
