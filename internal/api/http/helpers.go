package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	authmw "github.com/codetrail/codetrail-lms/internal/auth/middleware"
	"github.com/codetrail/codetrail-lms/internal/progress"
	"github.com/codetrail/codetrail-lms/internal/rbac"
)

// Handlers only — routes remain in main.go

var validate = validator.New()

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// engineError maps the engine's typed failures onto HTTP status codes.
func engineError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, progress.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, progress.ErrInvalidTransition):
		status = http.StatusConflict
	case errors.Is(err, progress.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, progress.ErrValidation):
		status = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), status)
}

func decodeValid(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, "bad json: "+err.Error(), http.StatusBadRequest)
		return false
	}
	if err := validate.Struct(dst); err != nil {
		http.Error(w, "invalid payload: "+err.Error(), http.StatusUnprocessableEntity)
		return false
	}
	return true
}

func subjectAndRole(r *http.Request) (sub, role string) {
	return authmw.SubjectFromContext(r.Context()), rbac.RoleFromContext(r.Context())
}
