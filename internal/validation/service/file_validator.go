package service

import (
	"fmt"
	"mime"
	"path"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/allisson/fieldguard/internal/validation/domain"
)

// FileField is the field name used for file upload findings.
const FileField = "file"

// FileValidator checks upload metadata and, when supplied, upload content.
type FileValidator struct {
	patterns *PatternLibrary
}

// NewFileValidator creates a FileValidator backed by the given pattern library.
func NewFileValidator(patterns *PatternLibrary) *FileValidator {
	return &FileValidator{patterns: patterns}
}

// Validate checks size, MIME allowlist, extension allowlist and the executable denylist.
// The denylist wins over the allowlist. When content is present its sniffed type must
// agree with the declared MIME type. The sanitized value is the base file name.
func (v *FileValidator) Validate(file domain.FileUpload, opts domain.FileUploadOptions) domain.ValidationResult {
	name := path.Base(strings.ReplaceAll(file.Name, `\`, "/"))
	result := domain.NewValidationResult(name)

	fail := func(code domain.Code, severity domain.Severity, message string) {
		result.AddError(domain.ValidationError{
			Field:    FileField,
			Kind:     domain.KindFile,
			Message:  message,
			Code:     code,
			Severity: severity,
		})
	}

	if opts.MaxSize > 0 && file.Size > opts.MaxSize {
		fail(domain.CodeFileTooLarge, domain.SeverityMedium,
			fmt.Sprintf("File size must not exceed %s", formatBytes(opts.MaxSize)))
	}

	declared := baseMediaType(file.MimeType)
	var detected *mimetype.MIME
	if len(file.Content) > 0 {
		detected = mimetype.Detect(file.Content)
		if declared == "" {
			declared = baseMediaType(detected.String())
		}
	}

	if len(opts.AllowedTypes) > 0 && !containsFold(opts.AllowedTypes, declared, baseMediaType) {
		fail(domain.CodeInvalidFileType, domain.SeverityMedium, "File type is not allowed")
	}

	// Windows drops trailing dots and spaces, so "evil.exe." is stored as "evil.exe".
	parts := strings.Split(strings.ToLower(strings.TrimRight(name, ". ")), ".")
	ext := ""
	if len(parts) > 1 {
		ext = parts[len(parts)-1]
	}

	if len(opts.AllowedExtensions) > 0 && !containsFold(opts.AllowedExtensions, ext, normalizeExtension) {
		fail(domain.CodeInvalidFileExtension, domain.SeverityMedium, "File extension is not allowed")
	}

	if ext != "" && v.patterns.IsDangerousExtension(ext) {
		fail(domain.CodeDangerousFileExtension, domain.SeverityCritical, "Executable files are not allowed")
	}

	// Inner segments such as "invoice.exe.pdf" disguise executables.
	if len(parts) > 2 {
		for _, inner := range parts[1 : len(parts)-1] {
			if v.patterns.IsDangerousExtension(inner) {
				result.AddWarning(domain.ValidationWarning{
					Field:      FileField,
					Kind:       domain.KindFile,
					Message:    "File name contains a hidden executable extension",
					Code:       domain.CodeDangerousFileExtension,
					Suggestion: "Rename the file before uploading",
				})
				break
			}
		}
	}

	if detected != nil && file.MimeType != "" && !mimeMatches(detected, declared) {
		fail(domain.CodeFileContentMismatch, domain.SeverityHigh, "File content does not match its declared type")
	}

	return result
}

// mimeMatches walks the detected type and its parents, so a declared text/plain accepts
// sniffed text/csv content.
func mimeMatches(detected *mimetype.MIME, declared string) bool {
	for m := detected; m != nil; m = m.Parent() {
		if m.Is(declared) {
			return true
		}
	}
	return false
}

func baseMediaType(v string) string {
	if v == "" {
		return ""
	}
	mt, _, err := mime.ParseMediaType(v)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(v))
	}
	return mt
}

func containsFold(list []string, want string, normalize func(string) string) bool {
	if want == "" {
		return false
	}
	for _, item := range list {
		if normalize(item) == want {
			return true
		}
	}
	return false
}

func formatBytes(n int64) string {
	const unit = 1024
	switch {
	case n >= unit*unit:
		return fmt.Sprintf("%.1f MB", float64(n)/(unit*unit))
	case n >= unit:
		return fmt.Sprintf("%.1f KB", float64(n)/unit)
	default:
		return fmt.Sprintf("%d bytes", n)
	}
}
