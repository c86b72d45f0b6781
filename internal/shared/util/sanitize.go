package util

import (
	"errors"
	"strings"
)

// SanitizeFileName reduces a client-supplied file name to a safe character set.
// Anything outside [A-Za-z0-9._-] becomes '_', and traversal sequences are
// rejected outright. The result never contains a path separator.
func SanitizeFileName(name string) (string, error) {
	s := strings.TrimSpace(name)
	if s == "" || strings.Contains(s, "..") {
		return "", errors.New("invalid file name")
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	out := strings.Trim(b.String(), ".")
	if out == "" {
		return "", errors.New("invalid file name")
	}
	return out, nil
}
