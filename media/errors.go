package media

import "fmt"

// Validation rejection rules.
const (
	RuleUnsupportedType = "unsupported_type"
	RuleFileTooLarge    = "file_too_large"
)

// ValidationError reports a file rejected by upload policy before any
// decoding work was attempted.
type ValidationError struct {
	Filename    string
	Rule        string // RuleUnsupportedType | RuleFileTooLarge
	ContentType string
	Size        int64
	Limit       int64
}

func (e *ValidationError) Error() string {
	switch e.Rule {
	case RuleUnsupportedType:
		return fmt.Sprintf("%s: unsupported media type %q", e.Filename, e.ContentType)
	case RuleFileTooLarge:
		return fmt.Sprintf("%s: file size %d exceeds limit of %d bytes", e.Filename, e.Size, e.Limit)
	default:
		return fmt.Sprintf("%s: rejected by upload policy (%s)", e.Filename, e.Rule)
	}
}

// TranscodeError reports an accepted file whose bytes could not be decoded
// or re-encoded. It is never retried; the orchestrator surfaces it as a
// per-file failure.
type TranscodeError struct {
	Filename string
	Err      error
}

func (e *TranscodeError) Error() string {
	return fmt.Sprintf("%s: transcode failed: %v", e.Filename, e.Err)
}

func (e *TranscodeError) Unwrap() error { return e.Err }

// UploadError wraps a blob store transport failure for one object.
type UploadError struct {
	Filename   string
	ObjectName string
	Err        error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("%s: upload of object %s failed: %v", e.Filename, e.ObjectName, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
