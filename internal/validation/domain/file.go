package domain

// FileUpload describes a file submitted by a user. Content is optional; when present
// it is sniffed for its real type.
type FileUpload struct {
	Name     string
	Size     int64
	MimeType string
	Content  []byte
}

// FileUploadOptions configures ValidateFileUpload. Zero values disable the check:
// MaxSize 0 means unlimited, empty lists allow everything (the executable denylist
// always applies).
type FileUploadOptions struct {
	MaxSize           int64
	AllowedTypes      []string
	AllowedExtensions []string
}
