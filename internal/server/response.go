package server

import (
	"encoding/json"
	"net/http"
)

const jsonContentType = "application/json; charset=utf-8"

// uploadResp is the body of a successful upload.
type uploadResp struct {
	OK   bool   `json:"ok"`
	Name string `json:"name"`
	Size int64  `json:"size"`
	Path string `json:"path"`
}

// errorResp is the body of every failed request. Code is only set for
// transfer errors.
type errorResp struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Code  *int   `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", jsonContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResp{OK: false, Error: msg})
}

func writeUploadError(w http.ResponseWriter, code UploadErrorCode) {
	n := int(code)
	writeJSON(w, http.StatusBadRequest, errorResp{OK: false, Error: "Upload error", Code: &n})
}
