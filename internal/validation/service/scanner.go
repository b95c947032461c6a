package service

import (
	"fmt"
	"strings"

	"github.com/allisson/fieldguard/internal/validation/domain"
)

// Messages shown for security findings. They never reveal which pattern matched.
const (
	MessageSecurityThreat     = "Potential security threat detected"
	MessageInvalidCharacters  = "Invalid characters detected"
	MessageInappropriate      = "Inappropriate content detected"
	MessageSpecialCharacters  = "Special characters detected"
	MessageLookalikeChars     = "Lookalike characters detected"
	SuggestRemoveSpecialChars = "Remove special characters such as ; & | ` $"
	SuggestRemoveSensitive    = "Do not include sensitive data in this field"
	SuggestSingleScript       = "Type the value using plain letters from a single alphabet"
)

// Findings are the errors and warnings a scanner reports for one value.
type Findings struct {
	Errors   []domain.ValidationError
	Warnings []domain.ValidationWarning
}

// Empty reports whether nothing was found.
func (f Findings) Empty() bool {
	return len(f.Errors) == 0 && len(f.Warnings) == 0
}

// Scanner screens a string value for attack payloads and leaked data, independent of the
// field's declared kind. cfg selects which categories run.
type Scanner interface {
	Scan(field, value string, cfg domain.SecurityConfig) Findings
}

// RegexScanner is the default Scanner. Within a category the first matching pattern
// wins; different categories stack.
type RegexScanner struct {
	patterns *PatternLibrary
}

// NewRegexScanner creates a RegexScanner backed by the given pattern library.
func NewRegexScanner(patterns *PatternLibrary) *RegexScanner {
	return &RegexScanner{patterns: patterns}
}

type blockingCategory struct {
	enabled  bool
	category Category
	code     domain.Code
	severity domain.Severity
	message  string
}

// Scan implements Scanner.
func (s *RegexScanner) Scan(field, value string, cfg domain.SecurityConfig) Findings {
	findings := Findings{}
	if value == "" {
		return findings
	}

	blocking := []blockingCategory{
		{
			cfg.EnableSQLInjectionCheck,
			CategorySQLInjection,
			domain.CodeSQLInjectionDetected,
			domain.SeverityCritical,
			MessageSecurityThreat,
		},
		{cfg.EnableXSSCheck, CategoryXSS, domain.CodeXSSDetected, domain.SeverityHigh, MessageSecurityThreat},
		{
			cfg.EnableXMLInjectionCheck,
			CategoryXMLInjection,
			domain.CodeXMLInjectionDetected,
			domain.SeverityHigh,
			MessageSecurityThreat,
		},
		{
			cfg.EnablePathTraversalCheck,
			CategoryPathTraversal,
			domain.CodePathTraversalDetected,
			domain.SeverityHigh,
			MessageSecurityThreat,
		},
		{
			cfg.EnableNoSQLInjectionCheck,
			CategoryNoSQLInjection,
			domain.CodeNoSQLInjectionDetected,
			domain.SeverityHigh,
			MessageSecurityThreat,
		},
		{
			cfg.EnableNullByteCheck,
			CategoryNullByte,
			domain.CodeNullByteDetected,
			domain.SeverityHigh,
			MessageInvalidCharacters,
		},
	}

	for _, c := range blocking {
		if c.enabled && s.matches(c.category, value) {
			findings.Errors = append(findings.Errors, domain.ValidationError{
				Field:    field,
				Kind:     domain.KindSecurity,
				Message:  c.message,
				Code:     c.code,
				Severity: c.severity,
			})
		}
	}

	// Punctuation has many legitimate uses in free text, so command injection only warns.
	if cfg.EnableCommandInjectionCheck && s.matches(CategoryCommandInjection, value) {
		findings.Warnings = append(findings.Warnings, domain.ValidationWarning{
			Field:      field,
			Kind:       domain.KindSecurity,
			Message:    MessageSpecialCharacters,
			Code:       domain.CodeCommandInjectionDetected,
			Suggestion: SuggestRemoveSpecialChars,
		})
	}

	if cfg.EnableSensitiveDataCheck {
		findings.Warnings = append(findings.Warnings, s.scanSensitive(field, value)...)
	}

	if cfg.EnableProfanityCheck && s.patterns.ContainsProfanity(value) {
		findings.Errors = append(findings.Errors, domain.ValidationError{
			Field:    field,
			Kind:     domain.KindSecurity,
			Message:  MessageInappropriate,
			Code:     domain.CodeProfanityDetected,
			Severity: domain.SeverityMedium,
		})
	}

	if cfg.EnableHomographCheck {
		s.scanHomograph(field, value, &findings)
	}

	return findings
}

// scanHomograph blocks invisible formatting characters and warns about lookalike
// letters. Mixed scripts have legitimate uses in names, so they only warn.
func (s *RegexScanner) scanHomograph(field, value string, findings *Findings) {
	if s.patterns.HasInvisibleFormatting(value) {
		findings.Errors = append(findings.Errors, domain.ValidationError{
			Field:    field,
			Kind:     domain.KindSecurity,
			Message:  MessageInvalidCharacters,
			Code:     domain.CodeHomographDetected,
			Severity: domain.SeverityHigh,
		})
		return
	}

	if s.patterns.HasHomograph(value) {
		findings.Warnings = append(findings.Warnings, domain.ValidationWarning{
			Field:      field,
			Kind:       domain.KindSecurity,
			Message:    MessageLookalikeChars,
			Code:       domain.CodeHomographDetected,
			Suggestion: SuggestSingleScript,
		})
	}
}

func (s *RegexScanner) matches(category Category, value string) bool {
	for _, re := range s.patterns.SecurityPatterns(category) {
		if re.MatchString(value) {
			return true
		}
	}
	return false
}

// scanSensitive reports at most one warning per sensitive data type, skipping types the
// field is named for.
func (s *RegexScanner) scanSensitive(field, value string) []domain.ValidationWarning {
	var warnings []domain.ValidationWarning
	lowerField := strings.ToLower(field)

	for _, sp := range s.patterns.SensitivePatterns() {
		if fieldNamedFor(lowerField, sp.FieldHints) {
			continue
		}
		if !sensitiveMatch(sp, value) {
			continue
		}
		warnings = append(warnings, domain.ValidationWarning{
			Field:      field,
			Kind:       domain.KindSecurity,
			Message:    fmt.Sprintf("Potential %s detected in field %s", sp.Label, field),
			Code:       domain.CodeSensitiveDataDetected,
			Suggestion: SuggestRemoveSensitive,
		})
	}

	return warnings
}

func fieldNamedFor(lowerField string, hints []string) bool {
	for _, h := range hints {
		if strings.Contains(lowerField, h) {
			return true
		}
	}
	return false
}

func sensitiveMatch(sp SensitivePattern, value string) bool {
	if sp.Verify == nil {
		return sp.Pattern.MatchString(value)
	}
	for _, m := range sp.Pattern.FindAllString(value, -1) {
		if sp.Verify(m) {
			return true
		}
	}
	return false
}

// ChainScanner runs several scanners and concatenates their findings in order.
type ChainScanner struct {
	scanners []Scanner
}

// NewChainScanner composes scanners. Nil entries are skipped.
func NewChainScanner(scanners ...Scanner) *ChainScanner {
	c := &ChainScanner{}
	for _, s := range scanners {
		if s != nil {
			c.scanners = append(c.scanners, s)
		}
	}
	return c
}

// Scan implements Scanner.
func (c *ChainScanner) Scan(field, value string, cfg domain.SecurityConfig) Findings {
	out := Findings{}
	for _, s := range c.scanners {
		f := s.Scan(field, value, cfg)
		out.Errors = append(out.Errors, f.Errors...)
		out.Warnings = append(out.Warnings, f.Warnings...)
	}
	return out
}
