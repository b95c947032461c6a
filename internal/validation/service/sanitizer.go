package service

import (
	"regexp"
	"strings"

	"github.com/allisson/fieldguard/internal/validation/domain"
)

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// Sanitize applies the rule's sanitization flags to a string value. Non-string values are
// returned unchanged.
//
// Order: trim, then lowercase or uppercase (lowercase wins if both are set), then, when
// Sanitize is set, strip HTML tags, the characters ' " ; \ and ASCII control characters.
// Stripping can expose surrounding whitespace, so trim runs again at the end. The result
// is stable under a second pass.
func Sanitize(value any, rule domain.Rule) any {
	s, ok := value.(string)
	if !ok {
		return value
	}

	if rule.Trim {
		s = strings.TrimSpace(s)
	}

	switch {
	case rule.Lowercase:
		s = strings.ToLower(s)
	case rule.Uppercase:
		s = strings.ToUpper(s)
	}

	if rule.Sanitize {
		s = htmlTagPattern.ReplaceAllString(s, "")
		s = strings.Map(dropUnsafe, s)
		if rule.Trim {
			s = strings.TrimSpace(s)
		}
	}

	return s
}

func dropUnsafe(r rune) rune {
	switch {
	case r == '\'' || r == '"' || r == ';' || r == '\\':
		return -1
	case r < 0x20 || r == 0x7f:
		return -1
	default:
		return r
	}
}
