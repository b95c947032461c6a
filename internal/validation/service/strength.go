package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/allisson/fieldguard/internal/validation/domain"
)

// Password suggestions.
const (
	SuggestLength     = "Use at least 8 characters"
	SuggestLowercase  = "Add lowercase letters"
	SuggestUppercase  = "Add uppercase letters"
	SuggestDigit      = "Add numbers"
	SuggestSpecial    = "Add special characters (@$!%*?&)"
	SuggestNotCommon  = "Avoid common passwords"
	SuggestNotSequent = "Avoid sequential characters"
)

// StrengthScorer scores passwords and PINs heuristically.
type StrengthScorer struct {
	patterns *PatternLibrary
}

// NewStrengthScorer creates a StrengthScorer backed by the given pattern library.
func NewStrengthScorer(patterns *PatternLibrary) *StrengthScorer {
	return &StrengthScorer{patterns: patterns}
}

// Score rates password from 0 to 6.
//
// One point each for length >= 8, length >= 12, a lowercase letter, an uppercase letter,
// a digit and a character from SpecialChars. A common password loses 2 points and a
// password containing an ascending triple ("abc", "123") loses 1, never below zero.
func (s *StrengthScorer) Score(password string) domain.Strength {
	score := 0
	suggestions := []string{}

	length := utf8.RuneCountInString(password)
	if length >= 8 {
		score++
	} else {
		suggestions = append(suggestions, SuggestLength)
	}
	if length >= 12 {
		score++
	}

	var lower, upper, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		case strings.ContainsRune(SpecialChars, r):
			special = true
		}
	}

	for _, check := range []struct {
		ok         bool
		suggestion string
	}{
		{lower, SuggestLowercase},
		{upper, SuggestUppercase},
		{digit, SuggestDigit},
		{special, SuggestSpecial},
	} {
		if check.ok {
			score++
		} else {
			suggestions = append(suggestions, check.suggestion)
		}
	}

	if s.patterns.IsCommonPassword(password) {
		score = max(0, score-2)
		suggestions = append(suggestions, SuggestNotCommon)
	}

	if s.patterns.HasSequence(password) {
		score = max(0, score-1)
		suggestions = append(suggestions, SuggestNotSequent)
	}

	return domain.Strength{
		Score:       score,
		Feedback:    domain.StrengthFeedback(score),
		Suggestions: suggestions,
	}
}
