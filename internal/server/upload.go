package server

import (
	"net/http"
	"path/filepath"
	"time"
)

// uploadField is the multipart field the handler reads.
const uploadField = "file"

// uploadHandler handles POST /upload: it takes the multipart field "file",
// stores it in dir under its sanitized name and reports the result as JSON.
// An existing file with the same name is replaced.
//
// It does not log; the access log already records the response status.
type uploadHandler struct {
	dir          string
	publicPrefix string
	recv         receiver
	metrics      *Metrics
}

func newUploadHandler(cfg Config, m *Metrics) *uploadHandler {
	return &uploadHandler{
		dir:          cfg.UploadDir,
		publicPrefix: cfg.PublicPrefix,
		recv:         newReceiver(cfg),
		metrics:      m,
	}
}

func (h *uploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	f, err := h.recv.receive(w, r, uploadField)
	if err != nil {
		h.fail(w, http.StatusBadRequest, uploadResultNoField, "No file field")
		return
	}
	defer f.cleanup()

	if f.Status != UploadErrOK {
		h.record(uploadResultUploadError)
		writeUploadError(w, f.Status)
		return
	}

	if err := ensureDir(h.dir); err != nil {
		h.fail(w, http.StatusInternalServerError, uploadResultMoveFailed, "move failed")
		return
	}

	safe := SanitizeFilename(f.OrigName)
	if err := moveFile(f.TmpPath, filepath.Join(h.dir, safe)); err != nil {
		h.fail(w, http.StatusInternalServerError, uploadResultMoveFailed, "move failed")
		return
	}
	f.TmpPath = ""

	if h.metrics != nil {
		h.metrics.RecordUpload(f.Size, time.Since(start))
	}

	writeJSON(w, http.StatusOK, uploadResp{
		OK:   true,
		Name: safe,
		Size: f.Size,
		Path: h.publicPrefix + "/" + safe,
	})
}

func (h *uploadHandler) fail(w http.ResponseWriter, status int, result, msg string) {
	h.record(result)
	writeError(w, status, msg)
}

func (h *uploadHandler) record(result string) {
	if h.metrics != nil {
		h.metrics.RecordUploadError(result)
	}
}
