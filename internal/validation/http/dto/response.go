package dto

import (
	validationDomain "github.com/allisson/fieldguard/internal/validation/domain"
)

// SecurityConfigResponse is the wire form of the live security configuration.
type SecurityConfigResponse struct {
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

// MapSecurityConfigToResponse converts a SecurityConfig into its wire form.
func MapSecurityConfigToResponse(cfg validationDomain.SecurityConfig) SecurityConfigResponse {
	return SecurityConfigResponse{
		EnableSQLInjectionCheck:     cfg.EnableSQLInjectionCheck,
		EnableXSSCheck:              cfg.EnableXSSCheck,
		EnableCommandInjectionCheck: cfg.EnableCommandInjectionCheck,
		EnablePathTraversalCheck:    cfg.EnablePathTraversalCheck,
		EnableNoSQLInjectionCheck:   cfg.EnableNoSQLInjectionCheck,
		EnableNullByteCheck:         cfg.EnableNullByteCheck,
		EnableXMLInjectionCheck:     cfg.EnableXMLInjectionCheck,
		EnableHomographCheck:        cfg.EnableHomographCheck,
		EnableSensitiveDataCheck:    cfg.EnableSensitiveDataCheck,
		EnableProfanityCheck:        cfg.EnableProfanityCheck,
		EnableRateLimiting:          cfg.EnableRateLimiting,
		MaxAttempts:                 cfg.MaxAttempts,
		BlockDurationSeconds:        int(cfg.BlockDuration.Seconds()),
	}
}

// SubmissionCheckResponse reports the outcome of the duplicate-submission guard.
type SubmissionCheckResponse struct {
	Duplicate bool                              `json:"duplicate"`
	Error     *validationDomain.ValidationError `json:"error,omitempty"`
}

// SchemaListResponse lists the pre-built schema names.
type SchemaListResponse struct {
	Schemas []string `json:"schemas"`
}
