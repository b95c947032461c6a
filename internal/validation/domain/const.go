// Package domain defines validation rules, schemas, results and security configuration.
package domain

// Kind identifies the semantic type a rule validates.
//
// Rule kinds form a closed set. The additional finding kinds (KindSecurity,
// KindRateLimit, KindFile, KindSubmission) tag errors that do not come from a rule
// and are rejected by Rule.Validate.
type Kind string

const (
	KindRequired      Kind = "required"
	KindEmail         Kind = "email"
	KindPhone         Kind = "phone"
	KindPassword      Kind = "password"
	KindPin           Kind = "pin"
	KindAmount        Kind = "amount"
	KindAccountNumber Kind = "account_number"
	KindRoutingNumber Kind = "routing_number"
	KindCardNumber    Kind = "card_number"
	KindCvv           Kind = "cvv"
	KindDate          Kind = "date"
	KindName          Kind = "name"
	KindAddress       Kind = "address"
	KindSsn           Kind = "ssn"
	KindTaxID         Kind = "tax_id"
	KindCustom        Kind = "custom"
)

// Finding kinds.
const (
	KindSecurity   Kind = "security"
	KindRateLimit  Kind = "rate_limit"
	KindFile       Kind = "file"
	KindSubmission Kind = "submission"
)

// RuleKinds lists every kind accepted by Rule.Validate.
var RuleKinds = []Kind{
	KindRequired,
	KindEmail,
	KindPhone,
	KindPassword,
	KindPin,
	KindAmount,
	KindAccountNumber,
	KindRoutingNumber,
	KindCardNumber,
	KindCvv,
	KindDate,
	KindName,
	KindAddress,
	KindSsn,
	KindTaxID,
	KindCustom,
}

// IsRuleKind reports whether k may be used in a Rule.
func (k Kind) IsRuleKind() bool {
	for _, rk := range RuleKinds {
		if k == rk {
			return true
		}
	}
	return false
}

// Severity communicates UI treatment of an error. It never changes validity.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Code is a stable machine-readable identifier for errors and warnings.
type Code string

// Field validation codes.
const (
	CodeRequired               Code = "REQUIRED"
	CodeInvalidEmail           Code = "INVALID_EMAIL"
	CodeInvalidPhone           Code = "INVALID_PHONE"
	CodeWeakPassword           Code = "WEAK_PASSWORD"
	CodeInvalidPin             Code = "INVALID_PIN"
	CodeCommonPin              Code = "COMMON_PIN"
	CodeInvalidAmount          Code = "INVALID_AMOUNT"
	CodeAmountTooLow           Code = "AMOUNT_TOO_LOW"
	CodeAmountTooHigh          Code = "AMOUNT_TOO_HIGH"
	CodeInvalidCardNumber      Code = "INVALID_CARD_NUMBER"
	CodeInvalidCardChecksum    Code = "INVALID_CARD_CHECKSUM"
	CodeInvalidCvv             Code = "INVALID_CVV"
	CodeInvalidSsn             Code = "INVALID_SSN"
	CodeEncryptionFailed       Code = "ENCRYPTION_FAILED"
	CodeInvalidName            Code = "INVALID_NAME"
	CodeInvalidAccountNumber   Code = "INVALID_ACCOUNT_NUMBER"
	CodeInvalidRoutingNumber   Code = "INVALID_ROUTING_NUMBER"
	CodeInvalidDate            Code = "INVALID_DATE"
	CodeInvalidAddress         Code = "INVALID_ADDRESS"
	CodeInvalidTaxID           Code = "INVALID_TAX_ID"
	CodeCustomValidationFailed Code = "CUSTOM_VALIDATION_FAILED"
	CodeTooShort               Code = "TOO_SHORT"
	CodeTooLong                Code = "TOO_LONG"
	CodePatternMismatch        Code = "PATTERN_MISMATCH"
)

// Security screening codes.
const (
	CodeSQLInjectionDetected     Code = "SQL_INJECTION_DETECTED"
	CodeXSSDetected              Code = "XSS_DETECTED"
	CodeCommandInjectionDetected Code = "COMMAND_INJECTION_DETECTED"
	CodePathTraversalDetected    Code = "PATH_TRAVERSAL_DETECTED"
	CodeNoSQLInjectionDetected   Code = "NOSQL_INJECTION_DETECTED"
	CodeNullByteDetected         Code = "NULL_BYTE_DETECTED"
	CodeXMLInjectionDetected     Code = "XML_INJECTION_DETECTED"
	CodeHomographDetected        Code = "HOMOGRAPH_DETECTED"
	CodeSensitiveDataDetected    Code = "SENSITIVE_DATA_DETECTED"
	CodeProfanityDetected        Code = "PROFANITY_DETECTED"
)

// Rate limiting and submission codes.
const (
	CodeRateLimitExceeded   Code = "RATE_LIMIT_EXCEEDED"
	CodeAccountLocked       Code = "ACCOUNT_LOCKED"
	CodeDuplicateSubmission Code = "DUPLICATE_SUBMISSION"
)

// File upload codes.
const (
	CodeFileTooLarge           Code = "FILE_TOO_LARGE"
	CodeInvalidFileType        Code = "INVALID_FILE_TYPE"
	CodeInvalidFileExtension   Code = "INVALID_FILE_EXTENSION"
	CodeDangerousFileExtension Code = "DANGEROUS_FILE_EXTENSION"
	CodeFileContentMismatch    Code = "FILE_CONTENT_MISMATCH"
)

// Warning codes.
const (
	CodePasswordSuggestion Code = "PASSWORD_SUGGESTION"
)
