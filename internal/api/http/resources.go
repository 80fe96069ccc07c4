package http

import (
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/codetrail/codetrail-lms/internal/rbac"
	"github.com/codetrail/codetrail-lms/internal/storage"
)

// MountResources serves module supplementary files out of the blob store.
// Catalog resources reference blobs by key.
func MountResources(r chi.Router, bs storage.BlobStore) {
	// POST /resources/{moduleID} — mentor upload, key echoed back for the catalog
	r.With(rbac.Require("resource:upload")).Post("/{moduleID}", func(w http.ResponseWriter, r *http.Request) {
		moduleID := chi.URLParam(r, "moduleID")
		f, hdr, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "file required", http.StatusBadRequest)
			return
		}
		defer f.Close()

		key := "modules/" + moduleID + "/" + hdr.Filename
		if _, err := bs.Put(key, f); err != nil {
			http.Error(w, "store error: "+err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]string{"key": key})
	})

	// GET /resources/*  -> returns the blob at whatever follows /resources/
	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		key := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
		rc, err := bs.Get(key)
		if err != nil {
			http.Error(w, "not found: "+err.Error(), http.StatusNotFound)
			return
		}
		defer rc.Close()
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = io.Copy(w, rc)
	})
}
