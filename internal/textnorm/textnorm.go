// Package textnorm provides the local, dictionary-facing text normalization:
// case folding, diacritic stripping and ASCII transliteration keys. The full
// linguistic normalization lives in the external normalizer service; this
// package only has to make strings comparable.
package textnorm

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Fold lowercases and strips combining marks, so "Тверскаая" and "ё" variants
// compare equal ("ё" decomposes to "е" + mark under NFD).
func Fold(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isMn), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return CollapseSpaces(strings.ToLower(out))
}

// isMn reports whether the rune is a nonspacing combining mark.
func isMn(r rune) bool {
	return unicode.Is(unicode.Mn, r)
}

// AsciiKey returns the transliterated lookup key ("Москва" -> "moskva") so
// latin-keyboard input still hits the Cyrillic dictionaries.
func AsciiKey(s string) string {
	return CollapseSpaces(strings.ToLower(unidecode.Unidecode(s)))
}

// CollapseSpaces trims and squeezes interior whitespace runs to one space.
func CollapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Tokenize splits a raw address into letter/digit runs, dropping punctuation.
func Tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// streetTypeWords generic street-type tokens that carry no identity on their
// own; the corrector also compares candidates against terms with these
// removed ("орбат" should reach "улица Арбат").
var streetTypeWords = map[string]struct{}{
	"улица": {}, "ул": {},
	"проспект": {}, "пр-кт": {}, "пр": {},
	"переулок": {}, "пер": {},
	"бульвар": {}, "б-р": {},
	"набережная": {}, "наб": {},
	"шоссе": {}, "ш": {},
	"площадь": {}, "пл": {},
	"проезд": {}, "тупик": {}, "туп": {},
}

// StripStreetType removes street-type words from a folded term; returns the
// input unchanged when nothing but type words remain.
func StripStreetType(term string) string {
	fields := strings.Fields(term)
	kept := fields[:0]
	for _, f := range fields {
		if _, isType := streetTypeWords[f]; !isType {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 || len(kept) == len(fields) {
		return term
	}
	return strings.Join(kept, " ")
}
