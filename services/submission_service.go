package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/brightfix/showcasebackend/media"
	"github.com/brightfix/showcasebackend/models"
	"github.com/brightfix/showcasebackend/repository"
)

// FileUpload is one raw file handed to the orchestrator. Data is read
// exactly once, inside the file's own pipeline task.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// SubmissionInput carries the metadata and both file groups of one
// submission request.
type SubmissionInput struct {
	Title           *string
	Description     *string
	ServiceCategory string
	Before          []FileUpload
	After           []FileUpload
}

// SubmissionPolicy parameterizes the shared orchestrator for the different
// portal entry points instead of duplicating the pipeline per route.
type SubmissionPolicy struct {
	InitialStatus     string
	RequireTitle      bool
	RequireBothGroups bool
	MaxFiles          int
}

// WorkerSubmissionPolicy is the normal path: sets enter the approval queue
// pending and must carry at least one photo in each group.
func WorkerSubmissionPolicy(maxFiles int) SubmissionPolicy {
	return SubmissionPolicy{
		InitialStatus:     models.StatusPending,
		RequireTitle:      true,
		RequireBothGroups: true,
		MaxFiles:          maxFiles,
	}
}

// DirectApprovedPolicy is the trusted shortcut: an admin-created set is
// publicly visible immediately and may be asymmetric (e.g. after-only).
func DirectApprovedPolicy(maxFiles int) SubmissionPolicy {
	return SubmissionPolicy{
		InitialStatus:     models.StatusApproved,
		RequireTitle:      false,
		RequireBothGroups: false,
		MaxFiles:          maxFiles,
	}
}

// SubmissionService turns a raw multi-file request into a persisted
// PhotoSet, or into one aggregate error listing every per-file failure. It
// holds no per-request state and is safe for concurrent use.
type SubmissionService struct {
	validator  *media.Validator
	transcoder *media.Transcoder
	blobs      media.BlobStore
	photoSets  repository.PhotoSetRepositoryInterface

	// transcoding is CPU-bound; the semaphore keeps a burst of large
	// submissions from starving the scheduler
	transcodeSem  *semaphore.Weighted
	uploadTimeout time.Duration
}

func NewSubmissionService(
	validator *media.Validator,
	transcoder *media.Transcoder,
	blobs media.BlobStore,
	photoSets repository.PhotoSetRepositoryInterface,
	transcodeConcurrency int,
	uploadTimeout time.Duration,
) *SubmissionService {
	if transcodeConcurrency < 1 {
		transcodeConcurrency = 1
	}
	return &SubmissionService{
		validator:     validator,
		transcoder:    transcoder,
		blobs:         blobs,
		photoSets:     photoSets,
		transcodeSem:  semaphore.NewWeighted(int64(transcodeConcurrency)),
		uploadTimeout: uploadTimeout,
	}
}

// pipelineEntry pairs one upload with the photo type of its form group.
type pipelineEntry struct {
	file      FileUpload
	photoType string
}

// fileResult is the settled outcome of one per-file pipeline task.
type fileResult struct {
	photo models.Photo
	err   error
}

// Submit runs the full pipeline: validation sweep, concurrent
// transcode+upload per file, settle-all join, all-or-nothing persistence.
//
// Any per-file transcode or upload failure rejects the whole submission; no
// PhotoSet is created. Blobs uploaded by siblings that had already
// succeeded are not deleted (their object names are logged for out-of-band
// cleanup).
func (s *SubmissionService) Submit(ctx context.Context, actor models.AuthorizedActor, input SubmissionInput, policy SubmissionPolicy) (*models.PhotoSet, error) {
	entries, err := s.validateRequest(input, policy)
	if err != nil {
		return nil, err
	}

	results := make([]fileResult, len(entries))
	var wg sync.WaitGroup
	wg.Add(len(entries))
	for i, entry := range entries {
		go func(i int, entry pipelineEntry) {
			defer wg.Done()
			results[i] = s.processFile(ctx, entry)
		}(i, entry)
	}
	// settle-all: a failed file never cancels its siblings, so no work is
	// silently lost mid-upload, but the aggregate still fails below
	wg.Wait()

	var failures []FileFailure
	var photos []models.Photo
	var urls []string
	for _, res := range results {
		if res.err != nil {
			failures = append(failures, FileFailure{
				Filename: res.photo.Filename,
				Reason:   res.err.Error(),
			})
			continue
		}
		photos = append(photos, res.photo)
		urls = append(urls, res.photo.URL)
	}

	if len(failures) > 0 {
		// all-or-nothing: completed sibling uploads become orphans; record
		// them so an operator sweep can reclaim the objects
		if len(urls) > 0 {
			log.Printf("submission: rejecting set with %d failed file(s); %d orphaned upload(s): %v",
				len(failures), len(urls), urls)
		}
		return nil, &SubmissionError{Failures: failures}
	}

	set := &models.PhotoSet{
		Title:           input.Title,
		Description:     input.Description,
		ServiceCategory: input.ServiceCategory,
		Status:          policy.InitialStatus,
		OwnerID:         actor.ID,
		Photos:          photos,
	}
	if err := s.photoSets.Create(set); err != nil {
		// worst case: blobs are durable but no record references them
		log.Printf("submission: PERSISTENCE FAILURE, %d orphaned upload(s) need GC: %v (cause: %v)",
			len(urls), urls, err)
		return nil, &PersistenceError{UploadedURLs: urls, Err: err}
	}

	log.Printf("submission: created photo set %d (%s, %d photos) for actor %d",
		set.ID, set.Status, len(set.Photos), actor.ID)
	return set, nil
}

// validateRequest checks form fields and runs the pure pre-decode validator
// over every file. It returns the flattened pipeline entries, or a
// RequestValidationError carrying every violation found. Nothing has been
// decoded or uploaded when this fails.
func (s *SubmissionService) validateRequest(input SubmissionInput, policy SubmissionPolicy) ([]pipelineEntry, error) {
	var violations []Violation

	if input.ServiceCategory == "" {
		violations = append(violations, Violation{Field: "serviceCategory", Reason: "service category is required"})
	}
	if policy.RequireTitle && (input.Title == nil || *input.Title == "") {
		violations = append(violations, Violation{Field: "title", Reason: "title is required"})
	}

	total := len(input.Before) + len(input.After)
	if total == 0 {
		violations = append(violations, Violation{Field: "beforeImages", Reason: "at least one image is required"})
	} else if policy.RequireBothGroups {
		if len(input.Before) == 0 {
			violations = append(violations, Violation{Field: "beforeImages", Reason: "at least one before image is required"})
		}
		if len(input.After) == 0 {
			violations = append(violations, Violation{Field: "afterImages", Reason: "at least one after image is required"})
		}
	}
	if policy.MaxFiles > 0 && total > policy.MaxFiles {
		// the limit spans both groups, so the violation is not pinned on one
		violations = append(violations, Violation{
			Field:  "images",
			Reason: fmt.Sprintf("too many files: %d exceeds the limit of %d per submission", total, policy.MaxFiles),
		})
	}

	entries := make([]pipelineEntry, 0, total)
	for _, f := range input.Before {
		entries = append(entries, pipelineEntry{file: f, photoType: models.PhotoTypeBefore})
	}
	for _, f := range input.After {
		entries = append(entries, pipelineEntry{file: f, photoType: models.PhotoTypeAfter})
	}
	for _, entry := range entries {
		if err := s.validator.Validate(entry.file.Filename, entry.file.ContentType, entry.file.Size); err != nil {
			violations = append(violations, Violation{Filename: entry.file.Filename, Reason: err.Error()})
		}
	}

	if len(violations) > 0 {
		return nil, &RequestValidationError{Violations: violations}
	}
	return entries, nil
}

// processFile runs one file through Transcode -> Upload. The result carries
// the filename even on failure so the aggregate error can name it.
func (s *SubmissionService) processFile(ctx context.Context, entry pipelineEntry) fileResult {
	res := fileResult{photo: models.Photo{Filename: entry.file.Filename, Type: entry.photoType}}

	if err := s.transcodeSem.Acquire(ctx, 1); err != nil {
		res.err = fmt.Errorf("%s: cancelled before transcoding: %w", entry.file.Filename, err)
		return res
	}
	processed, err := s.transcoder.Transcode(entry.file.Filename, entry.file.Data)
	s.transcodeSem.Release(1)
	if err != nil {
		res.err = err
		return res
	}

	objectName := media.ObjectName(entry.file.Filename)
	uploadCtx, cancel := context.WithTimeout(ctx, s.uploadTimeout)
	defer cancel()
	url, err := s.blobs.Put(uploadCtx, objectName, processed.Data, processed.ContentType)
	if err != nil {
		res.err = &media.UploadError{Filename: entry.file.Filename, ObjectName: objectName, Err: err}
		return res
	}

	res.photo.URL = url
	res.photo.Size = int64(len(processed.Data))
	res.photo.ContentType = processed.ContentType
	return res
}
