// Package slug derives document titles from uploaded filenames.
package slug

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Fallback is used when sanitization leaves nothing.
const Fallback = "untitled"

var (
	nonWord     = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)
	underscores = regexp.MustCompile(`_+`)
)

// Sanitize strips the extension and replaces runs of characters outside
// [letters, digits, underscore, hyphen] with a single underscore. Two
// filenames differing only in spacing or punctuation collapse to the same
// slug. The result is never empty.
func Sanitize(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	s := nonWord.ReplaceAllString(base, "_")
	s = underscores.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if s == "" {
		return Fallback
	}
	return s
}
