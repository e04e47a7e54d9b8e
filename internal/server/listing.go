package server

import (
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sort"
	"time"
)

// StoredFile describes one file in the upload directory.
type StoredFile struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Path     string    `json:"path"`
	Modified time.Time `json:"modified"`
}

type listResp struct {
	OK    bool         `json:"ok"`
	Files []StoredFile `json:"files"`
}

// ListUploads returns the regular files directly inside dir, sorted by name.
// Subdirectories, symlinks and in-progress staging files are skipped. A
// missing dir yields an empty list.
func ListUploads(dir, publicPrefix string) ([]StoredFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []StoredFile{}, nil
		}
		return nil, fmt.Errorf("read upload dir: %w", err)
	}

	files := make([]StoredFile, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() || !IsSafeFilename(e.Name()) || isStagingName(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", e.Name(), err)
		}
		files = append(files, StoredFile{
			Name:     e.Name(),
			Size:     info.Size(),
			Path:     publicPrefix + "/" + e.Name(),
			Modified: info.ModTime().UTC(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// listFiles handles GET /files.
func (s *Server) listFiles(w http.ResponseWriter, r *http.Request) {
	files, err := ListUploads(s.cfg.UploadDir, s.cfg.PublicPrefix)
	if err != nil {
		s.logger.Error("list uploads", "rid", RequestIDFromContext(r.Context()), "err", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	writeJSON(w, http.StatusOK, listResp{OK: true, Files: files})
}
