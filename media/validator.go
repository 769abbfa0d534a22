package media

// Validator checks a file's declared media type and byte length against
// upload policy. It is a pure pre-decode gate: it must run before any bytes
// are parsed so hostile or oversized input never reaches the decoder.
type Validator struct {
	allowedTypes map[string]bool
	maxSizeBytes int64
}

// NewValidator builds a Validator from an allowed MIME type list and a
// per-file size limit in bytes.
func NewValidator(allowedTypes []string, maxSizeBytes int64) *Validator {
	allowed := make(map[string]bool, len(allowedTypes))
	for _, t := range allowedTypes {
		allowed[t] = true
	}
	return &Validator{allowedTypes: allowed, maxSizeBytes: maxSizeBytes}
}

// Validate returns nil if the file passes policy, or a *ValidationError
// naming the violated rule and the offending file. The declared content
// type is trusted only as a first gate; the decoder still rejects files
// whose bytes are not a parsable image.
func (v *Validator) Validate(filename, contentType string, size int64) error {
	if !v.allowedTypes[contentType] {
		return &ValidationError{
			Filename:    filename,
			Rule:        RuleUnsupportedType,
			ContentType: contentType,
		}
	}
	if size > v.maxSizeBytes {
		return &ValidationError{
			Filename: filename,
			Rule:     RuleFileTooLarge,
			Size:     size,
			Limit:    v.maxSizeBytes,
		}
	}
	return nil
}
