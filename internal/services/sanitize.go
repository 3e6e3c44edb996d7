package services

import (
	"strings"
	"unicode/utf8"
)

// sanitizeText drops invalid UTF-8 bytes so downstream rendering never sees
// broken encoding. Valid text passes through untouched.
func sanitizeText(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}
