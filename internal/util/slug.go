package util

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slugify converte um título em minúsculas ASCII separadas por hífen.
// "Assembleia Geral Ordinária 2026" vira "assembleia-geral-ordinaria-2026".
func Slugify(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, s)
	if err != nil {
		plain = s
	}

	var b strings.Builder
	hifen := false
	for _, r := range strings.ToLower(plain) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			hifen = false
		case b.Len() > 0 && !hifen:
			b.WriteByte('-')
			hifen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
