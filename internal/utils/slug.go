package utils

import (
	"strings"
	"unicode"
)

// GenerateSlug turns a title into its slug: every whitespace rune becomes a
// single hyphen and everything else is kept as is.
//
//	GenerateSlug("KKN Desa  Penari") == "KKN-Desa--Penari"
func GenerateSlug(title string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return '-'
		}
		return r
	}, title)
}
