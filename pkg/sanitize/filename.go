package sanitize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reWhitespace = regexp.MustCompile(`\s+`)
	reDisallowed = regexp.MustCompile(`[^\w-]+`)
)

// stripDiacritics decomposes to NFD and removes combining marks, so
// "lý lịch" becomes "ly lich".
var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Filename converts an untrusted display filename into a storage-safe key
// segment. The extension (everything after the last dot) is carried over
// unchanged; the base is lowercased, stripped of diacritics, "đ" is folded
// to "d", whitespace runs collapse to a single hyphen and anything outside
// [a-z0-9_-] is dropped.
//
// Deterministic and idempotent. Uniqueness is NOT guaranteed: distinct
// names may sanitize to the same key.
func Filename(name string) string {
	base := name
	ext := ""
	if i := strings.LastIndex(name, "."); i >= 0 {
		base = name[:i]
		ext = name[i:]
	}

	base = strings.ToLower(base)
	if out, _, err := transform.String(stripDiacritics, base); err == nil {
		base = out
	}
	// NFD does not decompose the Vietnamese đ, fold it by hand.
	base = strings.ReplaceAll(base, "đ", "d")

	base = reWhitespace.ReplaceAllString(base, "-")
	base = reDisallowed.ReplaceAllString(base, "")

	return base + ext
}
