package slug

import (
	"path"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxLength = 64

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

	// Letters that do not decompose into a base letter plus a mark.
	folder = strings.NewReplacer("ı", "i", "ß", "ss", "ø", "o", "æ", "ae", "œ", "oe", "ł", "l", "đ", "d")
)

// Generate lowercases name, strips diacritics and joins the remaining
// alphanumeric runs with single hyphens:
//
//   - "Kadın Giyim" → "kadin-giyim"
//   - "Crème Brûlée!" → "creme-brulee"
func Generate(name string) string {
	s := folder.Replace(strings.ToLower(strings.TrimSpace(name)))

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = strings.Trim(nonAlnum.ReplaceAllString(s, "-"), "-")
	if len(s) > maxLength {
		s = strings.TrimRight(s[:maxLength], "-")
	}
	return s
}

// FromFilename slugs a file name without its extension and appends a short
// random suffix, so two uploads of "photo.jpg" get distinct identifiers.
// An empty result falls back to "file".
func FromFilename(filename string) string {
	base := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	base = strings.TrimSuffix(base, path.Ext(base))

	s := Generate(base)
	if s == "" {
		s = "file"
	}
	return s + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
