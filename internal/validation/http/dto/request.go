// Package dto provides data transfer objects for HTTP request and response handling.
package dto

import (
	"encoding/base64"
	"regexp"
	"time"

	validation "github.com/jellydator/validation"

	customValidation "github.com/allisson/fieldguard/internal/validation"
	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
)

// MaxFileContentSize bounds the decoded size of inline file content.
const MaxFileContentSize = 10 * 1024 * 1024

// adHocSchemaName names schemas built from a request body.
const adHocSchemaName = "ad_hoc"

// ValidateFormRequest validates data against a pre-built schema named in the URL.
type ValidateFormRequest struct {
	Data   map[string]any `json:"data"`
	UserID string         `json:"user_id"`
}

// Validate checks if the validate form request is valid.
func (r *ValidateFormRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Length(0, 255), customValidation.Identifier),
	)
}

// RuleRequest is the wire form of a validation rule. Custom predicates cannot be sent over
// the API; use Pattern instead.
type RuleRequest struct {
	Kind      string   `json:"kind"`
	Required  bool     `json:"required"`
	Min       *float64 `json:"min,omitempty"`
	Max       *float64 `json:"max,omitempty"`
	MinLength *int     `json:"min_length,omitempty"`
	MaxLength *int     `json:"max_length,omitempty"`
	Pattern   string   `json:"pattern,omitempty"`
	Message   string   `json:"message,omitempty"`
	Sanitize  bool     `json:"sanitize"`
	Trim      bool     `json:"trim"`
	Lowercase bool     `json:"lowercase"`
	Uppercase bool     `json:"uppercase"`
}

// Validate checks if the rule request is valid.
func (r RuleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind,
			validation.Required,
			customValidation.RuleKind,
			validation.NotIn(string(validationDomain.KindCustom)).Error("custom rules are not accepted over the API"),
		),
		validation.Field(&r.Pattern, validation.Length(0, 1024), customValidation.Regexp),
		validation.Field(&r.Message, validation.Length(0, 255)),
	)
}

// ToRule converts the request into a domain rule. Validate must have passed.
func (r RuleRequest) ToRule() validationDomain.Rule {
	rule := validationDomain.Rule{
		Kind:      validationDomain.Kind(r.Kind),
		Required:  r.Required,
		Min:       r.Min,
		Max:       r.Max,
		MinLength: r.MinLength,
		MaxLength: r.MaxLength,
		Message:   r.Message,
		Sanitize:  r.Sanitize,
		Trim:      r.Trim,
		Lowercase: r.Lowercase,
		Uppercase: r.Uppercase,
	}
	if r.Pattern != "" {
		rule.Pattern = regexp.MustCompile(r.Pattern)
	}
	return rule
}

// FieldRequest is the wire form of a schema field.
type FieldRequest struct {
	Name  string        `json:"name"`
	Rules []RuleRequest `json:"rules"`
}

// Validate checks if the field request is valid.
func (f FieldRequest) Validate() error {
	return validation.ValidateStruct(&f,
		validation.Field(&f.Name, validation.Required, validation.Length(1, 100), customValidation.Identifier),
		validation.Field(&f.Rules, validation.Required, validation.Length(1, 20)),
	)
}

// SchemaRequest is the wire form of an ad-hoc schema.
type SchemaRequest struct {
	Name   string         `json:"name"`
	Fields []FieldRequest `json:"fields"`
}

// AdHocFormRequest validates data against a schema supplied in the body.
type AdHocFormRequest struct {
	Schema SchemaRequest  `json:"schema"`
	Data   map[string]any `json:"data"`
	UserID string         `json:"user_id"`
}

// Validate checks if the ad-hoc form request is valid.
func (r *AdHocFormRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Schema),
		validation.Field(&r.UserID, validation.Length(0, 255), customValidation.Identifier),
	)
}

// Validate checks if the schema request is valid.
func (s SchemaRequest) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Length(0, 100), customValidation.Identifier),
		validation.Field(&s.Fields, validation.Required, validation.Length(1, 100)),
	)
}

// ToSchema builds the domain schema. Domain-level checks (duplicate fields, conflicting
// flags, inverted bounds) surface as ErrInvalidSchema or ErrInvalidRule.
func (s SchemaRequest) ToSchema() (*validationDomain.Schema, error) {
	name := s.Name
	if name == "" {
		name = adHocSchemaName
	}

	fields := make([]validationDomain.Field, 0, len(s.Fields))
	for _, f := range s.Fields {
		rules := make([]validationDomain.Rule, 0, len(f.Rules))
		for _, r := range f.Rules {
			rules = append(rules, r.ToRule())
		}
		fields = append(fields, validationDomain.NewField(f.Name, rules...))
	}
	return validationDomain.NewSchema(name, fields...)
}

// CheckSubmissionRequest carries a payload for the duplicate-submission guard.
type CheckSubmissionRequest struct {
	Data map[string]any `json:"data"`
}

// Validate checks if the check submission request is valid.
func (r *CheckSubmissionRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Data, validation.Required),
	)
}

// ValidateFileRequest describes an upload and the constraints to check it against.
// Content is optional base64 data used for content sniffing.
type ValidateFileRequest struct {
	Name              string   `json:"name"`
	Size              int64    `json:"size"`
	MimeType          string   `json:"mime_type"`
	Content           string   `json:"content,omitempty"`
	MaxSize           int64    `json:"max_size"`
	AllowedTypes      []string `json:"allowed_types"`
	AllowedExtensions []string `json:"allowed_extensions"`
}

// Validate checks if the validate file request is valid.
func (r *ValidateFileRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 255)),
		validation.Field(&r.Size, validation.Min(int64(0))),
		validation.Field(&r.MimeType, validation.Length(0, 255)),
		validation.Field(&r.Content, customValidation.Base64, customValidation.MaxDecodedSize(MaxFileContentSize)),
		validation.Field(&r.MaxSize, validation.Min(int64(0))),
	)
}

// ToDomain converts the request into the upload and its options. Validate must have passed.
func (r *ValidateFileRequest) ToDomain() (validationDomain.FileUpload, validationDomain.FileUploadOptions) {
	var content []byte
	if r.Content != "" {
		content, _ = base64.StdEncoding.DecodeString(r.Content)
	}
	return validationDomain.FileUpload{
			Name:     r.Name,
			Size:     r.Size,
			MimeType: r.MimeType,
			Content:  content,
		}, validationDomain.FileUploadOptions{
			MaxSize:           r.MaxSize,
			AllowedTypes:      r.AllowedTypes,
			AllowedExtensions: r.AllowedExtensions,
		}
}

// PasswordStrengthRequest carries a password to score.
type PasswordStrengthRequest struct {
	Password string `json:"password"`
}

// Validate checks if the password strength request is valid.
func (r *PasswordStrengthRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Password, validation.Required, validation.Length(1, 1024)),
	)
}

// SecurityConfigRequest replaces the live security configuration.
type SecurityConfigRequest struct {
	EnableSQLInjectionCheck     bool `json:"enable_sql_injection_check"`
	EnableXSSCheck              bool `json:"enable_xss_check"`
	EnableCommandInjectionCheck bool `json:"enable_command_injection_check"`
	EnablePathTraversalCheck    bool `json:"enable_path_traversal_check"`
	EnableNoSQLInjectionCheck   bool `json:"enable_nosql_injection_check"`
	EnableNullByteCheck         bool `json:"enable_null_byte_check"`
	EnableXMLInjectionCheck     bool `json:"enable_xml_injection_check"`
	EnableHomographCheck        bool `json:"enable_homograph_check"`
	EnableSensitiveDataCheck    bool `json:"enable_sensitive_data_check"`
	EnableProfanityCheck        bool `json:"enable_profanity_check"`
	EnableRateLimiting          bool `json:"enable_rate_limiting"`
	MaxAttempts                 int  `json:"max_attempts"`
	BlockDurationSeconds        int  `json:"block_duration_seconds"`
}

// Validate checks if the security config request is valid. Range checks are left to
// SecurityConfig.Validate.
func (r *SecurityConfigRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.MaxAttempts, validation.Required),
		validation.Field(&r.BlockDurationSeconds, validation.Required),
	)
}

// ToDomain converts the request into a SecurityConfig.
func (r *SecurityConfigRequest) ToDomain() validationDomain.SecurityConfig {
	return validationDomain.SecurityConfig{
		EnableSQLInjectionCheck:     r.EnableSQLInjectionCheck,
		EnableXSSCheck:              r.EnableXSSCheck,
		EnableCommandInjectionCheck: r.EnableCommandInjectionCheck,
		EnablePathTraversalCheck:    r.EnablePathTraversalCheck,
		EnableNoSQLInjectionCheck:   r.EnableNoSQLInjectionCheck,
		EnableNullByteCheck:         r.EnableNullByteCheck,
		EnableXMLInjectionCheck:     r.EnableXMLInjectionCheck,
		EnableHomographCheck:        r.EnableHomographCheck,
		EnableSensitiveDataCheck:    r.EnableSensitiveDataCheck,
		EnableProfanityCheck:        r.EnableProfanityCheck,
		EnableRateLimiting:          r.EnableRateLimiting,
		MaxAttempts:                 r.MaxAttempts,
		BlockDuration:               time.Duration(r.BlockDurationSeconds) * time.Second,
	}
}
