package person

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// FuzzyKeyLength is the fixed length of fuzzy keys.
const FuzzyKeyLength = 4

// fuzzyKeyFiller pads short keys up to FuzzyKeyLength.
const fuzzyKeyFiller = 'x'

// NormalizeName produces the canonical form of a full name: lowercased with
// runs of whitespace collapsed to single spaces and outer whitespace trimmed.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// Tokenize splits text into lowercase word tokens. Tokens are maximal runs of
// letters and digits; everything else is a separator.
func Tokenize(text string) []string {
	var tokens []string
	var current strings.Builder

	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range strings.ToLower(text) {
		if IsWordRune(r) {
			current.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// IsWordRune reports whether r is part of a word for boundary purposes.
// Letters in any script count, so non-ASCII names behave like ASCII ones.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// IsWordBoundary reports whether the character positions just outside
// [start, end) in s are non-word or string edges. Both sides must be
// boundaries for a whole-word match. The byte offsets may sit next to
// multi-byte runes; the adjacent rune is decoded, not its first byte.
func IsWordBoundary(s string, start, end int) bool {
	if start > 0 {
		if r, _ := utf8.DecodeLastRuneInString(s[:start]); IsWordRune(r) {
			return false
		}
	}
	if end < len(s) {
		if r, _ := utf8.DecodeRuneInString(s[end:]); IsWordRune(r) {
			return false
		}
	}
	return true
}

// FuzzyKey reduces a normalized name to a fixed 4-character phonetic-style key:
// spaces removed, vowels stripped, consecutive duplicate letters collapsed,
// then truncated or padded with 'x' to exactly 4 characters.
//
// Names that reduce to the same key are grouped as fuzzy-match candidates.
func FuzzyKey(name string) string {
	normalized := NormalizeName(name)

	var reduced []byte
	var prev byte
	for i := 0; i < len(normalized); i++ {
		c := normalized[i]
		if c == ' ' || isVowel(c) {
			prev = 0
			continue
		}
		if c == prev {
			continue
		}
		reduced = append(reduced, c)
		prev = c
	}

	if len(reduced) > FuzzyKeyLength {
		reduced = reduced[:FuzzyKeyLength]
	}
	for len(reduced) < FuzzyKeyLength {
		reduced = append(reduced, fuzzyKeyFiller)
	}

	return string(reduced)
}

func isVowel(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
