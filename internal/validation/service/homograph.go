package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// defaultConfusables maps Cyrillic and Greek letters to the Latin letters they imitate.
var defaultConfusables = map[rune]rune{
	// Cyrillic lowercase
	'а': 'a', 'е': 'e', 'о': 'o', 'р': 'p', 'с': 'c', 'у': 'y',
	'х': 'x', 'і': 'i', 'ј': 'j', 'ѕ': 's', 'һ': 'h', 'ԁ': 'd',
	// Cyrillic uppercase
	'А': 'A', 'В': 'B', 'Е': 'E', 'К': 'K', 'М': 'M', 'Н': 'H',
	'О': 'O', 'Р': 'P', 'С': 'C', 'Т': 'T', 'Х': 'X',
	// Greek
	'Α': 'A', 'Β': 'B', 'Ε': 'E', 'Ζ': 'Z', 'Η': 'H', 'Ι': 'I',
	'Κ': 'K', 'Μ': 'M', 'Ν': 'N', 'Ο': 'O', 'Ρ': 'P', 'Τ': 'T',
	'Υ': 'Y', 'Χ': 'X', 'α': 'a', 'ν': 'v', 'ο': 'o',
}

// HasInvisibleFormatting reports whether s contains zero-width or bidirectional control
// characters, which hide or reorder what the user sees.
func (p *PatternLibrary) HasInvisibleFormatting(s string) bool {
	return strings.IndexFunc(s, isInvisibleFormatting) >= 0
}

// HasHomograph reports whether a word in s mixes ASCII letters with lookalikes from
// another script, or uses compatibility forms (fullwidth, mathematical alphanumerics)
// that NFKC folds into plain ASCII. Words written entirely in one non-Latin script pass.
func (p *PatternLibrary) HasHomograph(s string) bool {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	for _, word := range words {
		var ascii, lookalike bool
		for _, r := range word {
			if r <= unicode.MaxASCII {
				ascii = ascii || unicode.IsLetter(r)
				continue
			}
			if _, ok := p.confusables[r]; ok {
				lookalike = true
			}
			if folded := norm.NFKC.String(string(r)); folded != string(r) && isASCIIAlnum(folded) {
				return true
			}
		}
		if ascii && lookalike {
			return true
		}
	}
	return false
}

// AddConfusables extends the lookalike table. The value is the Latin letter imitated.
func (p *PatternLibrary) AddConfusables(pairs map[rune]rune) {
	for k, v := range pairs {
		p.confusables[k] = v
	}
}

func isInvisibleFormatting(r rune) bool {
	switch {
	case r >= '\u200B' && r <= '\u200D', r == '\u2060', r == '\uFEFF':
		return true
	case r >= '\u202A' && r <= '\u202E', r >= '\u2066' && r <= '\u2069':
		return true
	}
	return false
}

func isASCIIAlnum(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !(unicode.IsLetter(r) || unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}

func copyRunes(in map[rune]rune) map[rune]rune {
	out := make(map[rune]rune, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
