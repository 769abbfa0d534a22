package services

import (
	"fmt"
	"strings"
)

// Violation is one client-caused problem with a submission request: either
// a bad form field (Field set) or a file rejected by upload policy
// (Filename set).
type Violation struct {
	Field    string `json:"field,omitempty"`
	Filename string `json:"filename,omitempty"`
	Reason   string `json:"reason"`
}

// RequestValidationError collects every field and file-policy violation
// found before any decoding or upload work started. Maps to HTTP 400.
type RequestValidationError struct {
	Violations []Violation
}

func (e *RequestValidationError) Error() string {
	reasons := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		reasons[i] = v.Reason
	}
	return "invalid submission: " + strings.Join(reasons, "; ")
}

// FileFailure is one per-file outcome inside an aggregate failure.
type FileFailure struct {
	Filename string `json:"filename"`
	Reason   string `json:"reason"`
}

// SubmissionError is the orchestrator's aggregate failure: every per-file
// transcode or upload reason, collected after all siblings settled.
// Individual file errors never escape past the orchestrator on their own.
type SubmissionError struct {
	Failures []FileFailure
}

func (e *SubmissionError) Error() string {
	reasons := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		reasons[i] = f.Reason
	}
	return fmt.Sprintf("submission rejected: %d file(s) failed: %s",
		len(e.Failures), strings.Join(reasons, "; "))
}

// PersistenceError marks the worst-case failure: every blob upload
// succeeded but the metadata write did not, leaving durable objects with no
// record referencing them. Logged distinctly so the orphans can be
// garbage-collected out-of-band.
type PersistenceError struct {
	UploadedURLs []string
	Err          error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("photo set persistence failed after %d upload(s) completed: %v", len(e.UploadedURLs), e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// InvalidTransitionError rejects an approval action on a set that is no
// longer pending. Terminal states are immutable; resubmission means a new
// set, never a reopened one.
type InvalidTransitionError struct {
	ID   uint
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("photo set %d: cannot transition from %s to %s", e.ID, e.From, e.To)
}
