package server

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	uploadDirPerm  os.FileMode = 0o775
	storedFilePerm os.FileMode = 0o644

	// stagingPrefix marks half-copied files inside the upload dir.
	stagingPrefix = ".incoming-"
)

// ensureDir creates dir and any parents if missing.
func ensureDir(dir string) error {
	if err := os.MkdirAll(dir, uploadDirPerm); err != nil {
		return fmt.Errorf("create upload dir: %w", err)
	}
	return nil
}

// moveFile puts src at dst, replacing whatever is there. A plain rename is
// tried first; when that fails (typically because src is on another
// filesystem) the data is copied next to dst and renamed into place, so dst
// is either the old file or the complete new one.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	if err := copyReplace(src, dst); err != nil {
		return err
	}
	_ = os.Remove(src)
	return nil
}

func copyReplace(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	tmp, err := os.CreateTemp(filepath.Dir(dst), stagingPrefix+"*")
	if err != nil {
		return fmt.Errorf("create staging file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err = io.Copy(tmp, in); err != nil {
		return fmt.Errorf("copy to staging file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync staging file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close staging file: %w", err)
	}
	if err = os.Chmod(tmpPath, storedFilePerm); err != nil {
		return fmt.Errorf("chmod staging file: %w", err)
	}
	if err = os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}

func isStagingName(name string) bool {
	return strings.HasPrefix(name, stagingPrefix)
}
