// validation.go - Filename sanitization for stored uploads.
package server

import "strings"

// fallbackName is used when nothing of the client's filename survives.
const fallbackName = "unnamed"

// isSafeByte reports whether b is in [A-Za-z0-9._-].
func isSafeByte(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9':
		return true
	case b == '.', b == '_', b == '-':
		return true
	}
	return false
}

// baseName returns the last path element of a client-supplied filename.
// Both '/' and '\' separate elements since browsers on Windows may send a
// full local path. Trailing separators are ignored.
func baseName(name string) string {
	name = strings.TrimRight(name, `/\`)
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	return name
}

// SanitizeFilename derives the stored name from a client filename: take the
// base name and replace every byte outside [A-Za-z0-9._-] with '_'. The
// replacement is per byte, so a multi-byte UTF-8 rune becomes several
// underscores. Names that would address a directory ("", ".", "..") are
// rewritten so the result is always a plain, non-empty file name.
func SanitizeFilename(filename string) string {
	base := baseName(filename)
	if base == "" {
		return fallbackName
	}

	b := []byte(base)
	for i := range b {
		if !isSafeByte(b[i]) {
			b[i] = '_'
		}
	}

	if strings.Trim(string(b), ".") == "" {
		return strings.Repeat("_", len(b))
	}

	return string(b)
}

// IsSafeFilename reports whether name could have been produced by
// SanitizeFilename, i.e. SanitizeFilename(name) == name.
func IsSafeFilename(name string) bool {
	if name == "" || strings.Trim(name, ".") == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isSafeByte(name[i]) {
			return false
		}
	}
	return true
}
