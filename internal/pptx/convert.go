package pptx

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// outputPerm is the mode of written Markdown files.
const outputPerm os.FileMode = 0o644

// ConvertFile renders the presentation at src and writes the result to dst,
// replacing any existing file.
func ConvertFile(src, dst string, opts Options) error {
	deck, err := Open(src)
	if err != nil {
		return err
	}
	if err := os.WriteFile(dst, []byte(Render(deck, opts)), outputPerm); err != nil {
		return fmt.Errorf("write %s: %w", dst, err)
	}
	return nil
}

// OutputPath is the default destination for src: the same path with its
// extension replaced by ".txt".
func OutputPath(src string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + ".txt"
}

// IsDeckName reports whether name has the .pptx extension.
func IsDeckName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".pptx")
}
