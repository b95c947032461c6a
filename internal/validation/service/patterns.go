// Package service implements the validation building blocks: pattern library, sanitizer,
// field validator, security scanner, strength scorer, lockout tracker and file checks.
package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/allisson/fieldguard/internal/validation/domain"
)

// Category identifies a security pattern set.
type Category string

// Security pattern categories.
const (
	CategorySQLInjection     Category = "sql_injection"
	CategoryXSS              Category = "xss"
	CategoryCommandInjection Category = "command_injection"
	CategoryPathTraversal    Category = "path_traversal"
	CategoryNoSQLInjection   Category = "nosql_injection"
	CategoryNullByte         Category = "null_byte"
	CategoryXMLInjection     Category = "xml_injection"
)

// SpecialChars is the set of characters that count as special for password scoring.
const SpecialChars = "@$!%*?&"

// SensitivePattern detects one kind of sensitive data leaking into an unrelated field.
type SensitivePattern struct {
	// Label names the data in warnings, e.g. "credit card number".
	Label   string
	Pattern *regexp.Regexp
	// FieldHints are lowercase substrings of field names that legitimately hold this data.
	FieldHints []string
	// Verify optionally confirms a regex match, e.g. with a checksum.
	Verify func(match string) bool
}

// PatternLibrary holds every table the validators and scanners read from. Callers extend a
// copy of the default library rather than editing validator logic.
type PatternLibrary struct {
	formats             map[domain.Kind]*regexp.Regexp
	security            map[Category][]*regexp.Regexp
	sensitive           []SensitivePattern
	commonPasswords     map[string]struct{}
	commonPins          map[string]struct{}
	sequences           []string
	profanity           []string
	dangerousExtensions map[string]struct{}
	confusables         map[rune]rune
}

var (
	emailPattern         = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phonePattern         = regexp.MustCompile(`^\d{10,13}$`)
	pinPattern           = regexp.MustCompile(`^\d{4,6}$`)
	namePattern          = regexp.MustCompile(`^[\p{L}\s'\-]{2,50}$`)
	cvvPattern           = regexp.MustCompile(`^\d{3,4}$`)
	cardNumberPattern    = regexp.MustCompile(`^\d{13,19}$`)
	ssnPattern           = regexp.MustCompile(`^(\d{3}-\d{2}-\d{4}|\d{9})$`)
	accountNumberPattern = regexp.MustCompile(`^\d{4,17}$`)
	routingNumberPattern = regexp.MustCompile(`^\d{9}$`)
	taxIDPattern         = regexp.MustCompile(`^(\d{2}-\d{7}|\d{9})$`)
	addressPattern       = regexp.MustCompile(`^[\p{L}\d\s,.'#/\-]{5,100}$`)
)

var defaultSecurityPatterns = map[Category][]string{
	CategorySQLInjection: {
		`(?i)\bunion\b[\s\S]*\bselect\b`,
		`(?i)\b(drop|alter|truncate)\s+(table|database|schema)\b`,
		`(?i)\binsert\s+into\b`,
		`(?i)\bdelete\s+from\b`,
		`(?i)\bupdate\s+\w+\s+set\b`,
		`(?i)'\s*(or|and)\s+'?\w+'?\s*=\s*'?\w+`,
		`;\s*--`,
		`(?i)\bexec(ute)?\s+(xp|sp)_\w+`,
		`/\*[\s\S]*?\*/`,
	},
	CategoryXSS: {
		`(?i)<\s*script\b`,
		`(?i)<\s*/\s*script\s*>`,
		`(?i)\b(java|vb)script\s*:`,
		`(?i)<[^>]*\bon[a-z]+\s*=`,
		`(?i)<\s*(iframe|object|embed|svg|img|link|meta|style)\b`,
		`(?i)data\s*:\s*text/html`,
		`(?i)expression\s*\(`,
	},
	CategoryCommandInjection: {
		"[;&|`]",
		`\$[({]`,
		`\$\w`,
		`>\s*/`,
	},
	CategoryPathTraversal: {
		`\.\./`,
		`\.\.\\`,
		`(?i)%2e%2e(%2f|%5c|/|\\)`,
		`(?i)\.\.(%2f|%5c)`,
		`(?i)/etc/(passwd|shadow|hosts)`,
		`(?i)c:\\windows`,
	},
	CategoryNoSQLInjection: {
		`(?i)\$(where|ne|eq|gt|gte|lt|lte|regex|in|nin|or|and|not|nor|exists|expr)\b`,
		`(?i)\bdb\.\w+\.(find|insert|update|remove|drop|aggregate)\s*\(`,
	},
	CategoryNullByte: {
		`\x00`,
		`(?i)%00`,
	},
	CategoryXMLInjection: {
		`(?i)<!DOCTYPE\b`,
		`(?i)<!ENTITY\b`,
		`(?i)<\?xml\b`,
		`(?i)<!\[CDATA\[`,
	},
}

var defaultCommonPasswords = []string{
	"password", "password1", "password123", "passw0rd", "123456", "12345678", "123456789",
	"1234567890", "qwerty", "qwerty123", "abc123", "111111", "000000", "iloveyou", "admin",
	"welcome", "letmein", "monkey", "dragon", "football", "baseball", "sunshine", "princess",
	"master", "trustno1", "1q2w3e4r", "superman", "shadow", "michael", "login",
}

var defaultCommonPins = []string{
	"0000", "1111", "2222", "3333", "4444", "5555", "6666", "7777", "8888", "9999",
	"1234", "4321", "1212", "1122", "6969", "2580", "0852", "1004", "2000", "2468",
	"000000", "111111", "123456", "654321", "121212", "112233", "123123", "696969",
}

var defaultProfanity = []string{
	"fuck", "shit", "bitch", "bastard", "asshole", "dickhead", "motherfucker", "cunt",
	"bullshit", "wanker",
}

var defaultDangerousExtensions = []string{
	"exe", "bat", "cmd", "sh", "ps1", "vbs", "js", "com", "scr", "msi", "jar",
}

// DefaultPatternLibrary returns a fresh library with the built-in tables.
func DefaultPatternLibrary() *PatternLibrary {
	p := &PatternLibrary{
		formats: map[domain.Kind]*regexp.Regexp{
			domain.KindEmail:         emailPattern,
			domain.KindPhone:         phonePattern,
			domain.KindPin:           pinPattern,
			domain.KindName:          namePattern,
			domain.KindCvv:           cvvPattern,
			domain.KindCardNumber:    cardNumberPattern,
			domain.KindSsn:           ssnPattern,
			domain.KindAccountNumber: accountNumberPattern,
			domain.KindRoutingNumber: routingNumberPattern,
			domain.KindTaxID:         taxIDPattern,
			domain.KindAddress:       addressPattern,
		},
		security:            make(map[Category][]*regexp.Regexp, len(defaultSecurityPatterns)),
		commonPasswords:     toSet(defaultCommonPasswords),
		commonPins:          toSet(defaultCommonPins),
		sequences:           sequentialTriples("abcdefghijklmnopqrstuvwxyz", "0123456789"),
		profanity:           append([]string(nil), defaultProfanity...),
		dangerousExtensions: toSet(defaultDangerousExtensions),
		confusables:         copyRunes(defaultConfusables),
	}

	for category, exprs := range defaultSecurityPatterns {
		for _, expr := range exprs {
			p.security[category] = append(p.security[category], regexp.MustCompile(expr))
		}
	}

	p.sensitive = []SensitivePattern{
		{
			Label:      "credit card number",
			Pattern:    regexp.MustCompile(`\b(?:\d[ -]?){12,18}\d\b`),
			FieldHints: []string{"card", "account"},
			Verify: func(match string) bool {
				return Luhn(stripNonDigits(match))
			},
		},
		{
			Label:      "social security number",
			Pattern:    regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`),
			FieldHints: []string{"ssn", "social", "tax"},
		},
		{
			Label:      "API key",
			Pattern:    regexp.MustCompile(`\b[A-Za-z0-9_\-]{32,}\b`),
			FieldHints: []string{"key", "token", "secret"},
			Verify:     hasLetterAndDigit,
		},
		{
			Label:      "password",
			Pattern:    regexp.MustCompile(`(?i)\b(password|passwd|pwd)\s*[=:]\s*\S+`),
			FieldHints: []string{"password", "passwd", "pwd"},
		},
	}

	return p
}

// Clone returns a deep copy that can be extended independently.
func (p *PatternLibrary) Clone() *PatternLibrary {
	c := &PatternLibrary{
		formats:             make(map[domain.Kind]*regexp.Regexp, len(p.formats)),
		security:            make(map[Category][]*regexp.Regexp, len(p.security)),
		sensitive:           append([]SensitivePattern(nil), p.sensitive...),
		commonPasswords:     copySet(p.commonPasswords),
		commonPins:          copySet(p.commonPins),
		sequences:           append([]string(nil), p.sequences...),
		profanity:           append([]string(nil), p.profanity...),
		dangerousExtensions: copySet(p.dangerousExtensions),
		confusables:         copyRunes(p.confusables),
	}
	for k, v := range p.formats {
		c.formats[k] = v
	}
	for k, v := range p.security {
		c.security[k] = append([]*regexp.Regexp(nil), v...)
	}
	return c
}

// Format returns the matcher for a rule kind.
func (p *PatternLibrary) Format(kind domain.Kind) (*regexp.Regexp, bool) {
	re, ok := p.formats[kind]
	return re, ok
}

// SetFormat replaces the matcher for a rule kind.
func (p *PatternLibrary) SetFormat(kind domain.Kind, re *regexp.Regexp) {
	p.formats[kind] = re
}

// SecurityPatterns returns the patterns of a category in evaluation order.
func (p *PatternLibrary) SecurityPatterns(category Category) []*regexp.Regexp {
	return p.security[category]
}

// AddSecurityPattern compiles expr and appends it to a category.
func (p *PatternLibrary) AddSecurityPattern(category Category, expr string) error {
	re, err := regexp.Compile(expr)
	if err != nil {
		return fmt.Errorf("invalid %s pattern: %w", category, err)
	}
	p.security[category] = append(p.security[category], re)
	return nil
}

// SensitivePatterns returns the data-leak patterns.
func (p *PatternLibrary) SensitivePatterns() []SensitivePattern {
	return p.sensitive
}

// AddSensitivePattern appends a data-leak pattern.
func (p *PatternLibrary) AddSensitivePattern(sp SensitivePattern) {
	p.sensitive = append(p.sensitive, sp)
}

// IsCommonPassword reports whether the whole password, case-insensitively, is a known
// common password.
func (p *PatternLibrary) IsCommonPassword(password string) bool {
	_, ok := p.commonPasswords[strings.ToLower(password)]
	return ok
}

// AddCommonPasswords extends the common-password list.
func (p *PatternLibrary) AddCommonPasswords(passwords ...string) {
	for _, pw := range passwords {
		p.commonPasswords[strings.ToLower(pw)] = struct{}{}
	}
}

// IsCommonPin reports whether pin is a known common PIN.
func (p *PatternLibrary) IsCommonPin(pin string) bool {
	_, ok := p.commonPins[pin]
	return ok
}

// AddCommonPins extends the common-PIN list.
func (p *PatternLibrary) AddCommonPins(pins ...string) {
	for _, pin := range pins {
		p.commonPins[pin] = struct{}{}
	}
}

// HasSequence reports whether s contains an ascending alphabetic or numeric triple.
func (p *PatternLibrary) HasSequence(s string) bool {
	lower := strings.ToLower(s)
	for _, seq := range p.sequences {
		if strings.Contains(lower, seq) {
			return true
		}
	}
	return false
}

// ContainsProfanity reports whether s contains a listed word, case-insensitively.
func (p *PatternLibrary) ContainsProfanity(s string) bool {
	lower := strings.ToLower(s)
	for _, word := range p.profanity {
		if strings.Contains(lower, word) {
			return true
		}
	}
	return false
}

// AddProfanity extends the profanity list.
func (p *PatternLibrary) AddProfanity(words ...string) {
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			p.profanity = append(p.profanity, w)
		}
	}
}

// IsDangerousExtension reports whether ext (with or without leading dot) is on the
// executable denylist.
func (p *PatternLibrary) IsDangerousExtension(ext string) bool {
	_, ok := p.dangerousExtensions[normalizeExtension(ext)]
	return ok
}

// AddDangerousExtensions extends the executable denylist.
func (p *PatternLibrary) AddDangerousExtensions(exts ...string) {
	for _, ext := range exts {
		p.dangerousExtensions[normalizeExtension(ext)] = struct{}{}
	}
}

func sequentialTriples(alphabets ...string) []string {
	var out []string
	for _, a := range alphabets {
		for i := 0; i+3 <= len(a); i++ {
			out = append(out, a[i:i+3])
		}
	}
	return out
}

func normalizeExtension(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func copySet(in map[string]struct{}) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for k := range in {
		out[k] = struct{}{}
	}
	return out
}

func stripNonDigits(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func hasLetterAndDigit(s string) bool {
	var letter, digit bool
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			letter = true
		}
	}
	return letter && digit
}
