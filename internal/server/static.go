package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// serveUpload handles GET {prefix}/{name}. Only names SanitizeFilename could
// have produced are looked up, which rules out traversal and dot entries.
// Directories are never listed.
func (s *Server) serveUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !IsSafeFilename(name) || isStagingName(name) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	f, err := os.Open(filepath.Join(s.cfg.UploadDir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "read failed")
		return
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "read failed")
		return
	}
	if !info.Mode().IsRegular() {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	// Stored files are data, never something the browser should run.
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Content-Security-Policy", "sandbox")
	http.ServeContent(w, r, name, info.ModTime(), f)
}
