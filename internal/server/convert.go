package server

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"ppt-upload/internal/pptx"
)

const markdownContentType = "text/markdown; charset=utf-8"

// convertUpload handles GET /files/{name}/markdown: it renders a stored .pptx
// deck as Markdown. Query parameters max_tags, notes and table mirror the
// convert command's flags.
func (s *Server) convertUpload(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if !IsSafeFilename(name) || isStagingName(name) {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if !pptx.IsDeckName(name) {
		writeError(w, http.StatusBadRequest, "not a pptx file")
		return
	}

	opts, err := convertOptions(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
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
	if err != nil || !info.Mode().IsRegular() {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	deck, err := pptx.Read(f, info.Size())
	if err != nil {
		s.logger.Warn("convert deck", "rid", RequestIDFromContext(r.Context()), "name", name, "err", err)
		writeError(w, http.StatusUnprocessableEntity, "convert failed")
		return
	}

	w.Header().Set("Content-Type", markdownContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(pptx.Render(deck, opts)))
}

func convertOptions(r *http.Request) (pptx.Options, error) {
	opts := pptx.DefaultOptions()
	q := r.URL.Query()

	if v := q.Get("max_tags"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return opts, errors.New("invalid max_tags")
		}
		opts.MaxTags = n
	}
	if v := q.Get("notes"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New("invalid notes")
		}
		opts.IncludeNotes = b
	}
	if v := q.Get("table"); v != "" {
		f, err := pptx.ParseTableFormat(v)
		if err != nil {
			return opts, errors.New("invalid table")
		}
		opts.TableFormat = f
	}
	return opts, nil
}
