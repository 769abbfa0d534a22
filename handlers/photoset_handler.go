package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"gorm.io/gorm"

	"github.com/brightfix/showcasebackend/config"
	"github.com/brightfix/showcasebackend/models"
	"github.com/brightfix/showcasebackend/repository"
	"github.com/brightfix/showcasebackend/services"
)

// multipart form parse threshold; larger file parts spill to temp files
const multipartMaxMemory = 32 << 20

// Form field names accepted for the two image groups. Both the singular and
// plural spellings exist in the portals, so both are read.
var (
	beforeFieldNames = []string{"beforeImages", "beforeImage"}
	afterFieldNames  = []string{"afterImages", "afterImage"}
)

type PhotoSetHandler struct {
	Submissions  *services.SubmissionService
	Approvals    *services.ApprovalService
	PhotoSetRepo repository.PhotoSetRepositoryInterface
	Cfg          config.Config
}

func NewPhotoSetHandler(
	submissions *services.SubmissionService,
	approvals *services.ApprovalService,
	photoSetRepo repository.PhotoSetRepositoryInterface,
	cfg config.Config,
) *PhotoSetHandler {
	return &PhotoSetHandler{
		Submissions:  submissions,
		Approvals:    approvals,
		PhotoSetRepo: photoSetRepo,
		Cfg:          cfg,
	}
}

// CreateSubmission handles the normal worker path: the created set enters
// the approval queue pending.
func (h *PhotoSetHandler) CreateSubmission(w http.ResponseWriter, r *http.Request) {
	h.createWithPolicy(w, r, services.WorkerSubmissionPolicy(h.Cfg.MaxFilesPerSubmit))
}

// CreateDirect handles the trusted admin path: the created set is approved
// immediately, bypassing the queue. Guarded by RequireAdmin in the router.
func (h *PhotoSetHandler) CreateDirect(w http.ResponseWriter, r *http.Request) {
	h.createWithPolicy(w, r, services.DirectApprovedPolicy(h.Cfg.MaxFilesPerSubmit))
}

func (h *PhotoSetHandler) createWithPolicy(w http.ResponseWriter, r *http.Request, policy services.SubmissionPolicy) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Actor not found in context")
		return
	}

	input, closers, err := h.readSubmissionForm(r)
	defer func() {
		for _, c := range closers {
			c.Close()
		}
	}()
	if err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Could not parse multipart form: "+err.Error())
		return
	}

	set, err := h.Submissions.Submit(r.Context(), actor, input, policy)
	if err != nil {
		h.writeSubmissionError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, set)
}

// readSubmissionForm extracts metadata fields and both file groups from the
// multipart request. The returned closers must be closed by the caller once
// the submission has settled.
func (h *PhotoSetHandler) readSubmissionForm(r *http.Request) (services.SubmissionInput, []io.Closer, error) {
	var input services.SubmissionInput
	var closers []io.Closer

	if err := r.ParseMultipartForm(multipartMaxMemory); err != nil {
		return input, closers, err
	}

	input.ServiceCategory = r.FormValue("serviceCategory")
	if v := r.FormValue("title"); v != "" {
		input.Title = &v
	}
	if v := r.FormValue("description"); v != "" {
		input.Description = &v
	}

	openGroup := func(fieldNames []string) ([]services.FileUpload, error) {
		var uploads []services.FileUpload
		for _, field := range fieldNames {
			for _, fh := range r.MultipartForm.File[field] {
				f, err := fh.Open()
				if err != nil {
					return nil, err
				}
				closers = append(closers, f)
				uploads = append(uploads, services.FileUpload{
					Filename:    fh.Filename,
					ContentType: fh.Header.Get("Content-Type"),
					Size:        fh.Size,
					Data:        f,
				})
			}
		}
		return uploads, nil
	}

	var err error
	if input.Before, err = openGroup(beforeFieldNames); err != nil {
		return input, closers, err
	}
	if input.After, err = openGroup(afterFieldNames); err != nil {
		return input, closers, err
	}
	return input, closers, nil
}

// writeSubmissionError maps the orchestrator's error taxonomy onto the API:
// client-caused validation problems are 400 with a violation breakdown,
// per-file pipeline failures are 500 with the full failure list.
func (h *PhotoSetHandler) writeSubmissionError(w http.ResponseWriter, err error) {
	var reqErr *services.RequestValidationError
	if errors.As(err, &reqErr) {
		WriteAPIErrorMeta(w, http.StatusBadRequest, "validation_failed", "Submission rejected by upload policy",
			map[string]interface{}{"violations": reqErr.Violations})
		return
	}

	var subErr *services.SubmissionError
	if errors.As(err, &subErr) {
		WriteAPIErrorMeta(w, http.StatusInternalServerError, "submission_failed",
			"One or more files could not be processed; nothing was saved",
			map[string]interface{}{"failures": subErr.Failures})
		return
	}

	var persistErr *services.PersistenceError
	if errors.As(err, &persistErr) {
		log.Printf("Error persisting photo set: %v", persistErr)
		WriteAPIError(w, http.StatusInternalServerError, "persistence_failed", "Failed to save the submission")
		return
	}

	log.Printf("Error processing submission: %v", err)
	WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to process submission")
}

func (h *PhotoSetHandler) photoSetID(r *http.Request) (uint, bool) {
	idStr := chi.URLParam(r, "photoset_id")
	id, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// GetPhotoSet returns one aggregate with its photos.
func (h *PhotoSetHandler) GetPhotoSet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.photoSetID(r)
	if !ok {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Invalid photo set ID")
		return
	}

	set, err := h.PhotoSetRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Photo set not found")
		} else {
			log.Printf("Error fetching photo set %d: %v", id, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to retrieve photo set")
		}
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// ListPhotoSets serves the review queue and other portal listings:
// ?status=pending|approved|rejected&page=&page_size=
func (h *PhotoSetHandler) ListPhotoSets(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status == "" {
		status = models.StatusPending
	}
	if !models.IsValidStatus(status) {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Unknown status: "+status)
		return
	}
	h.listByStatus(w, r, status)
}

// ListGallery is the public surface: approved sets only, no auth.
func (h *PhotoSetHandler) ListGallery(w http.ResponseWriter, r *http.Request) {
	h.listByStatus(w, r, models.StatusApproved)
}

func (h *PhotoSetHandler) listByStatus(w http.ResponseWriter, r *http.Request, status string) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	sets, total, err := h.PhotoSetRepo.ListByStatus(status, page, pageSize)
	if err != nil {
		log.Printf("Error listing photo sets (status %s): %v", status, err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to list photo sets")
		return
	}
	if sets == nil {
		sets = []models.PhotoSet{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"items": sets,
		"total": total,
	})
}

// UpdateStatus applies a reviewer decision: {"status": "approved"|"rejected"}.
func (h *PhotoSetHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := h.photoSetID(r)
	if !ok {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Invalid photo set ID")
		return
	}
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Actor not found in context")
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	var set *models.PhotoSet
	var err error
	switch req.Status {
	case models.StatusApproved:
		set, err = h.Approvals.Approve(actor, id)
	case models.StatusRejected:
		set, err = h.Approvals.Reject(actor, id)
	default:
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Status must be 'approved' or 'rejected'")
		return
	}

	if err != nil {
		var transErr *services.InvalidTransitionError
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			WriteAPIError(w, http.StatusNotFound, "not_found", "Photo set not found")
		case errors.As(err, &transErr):
			WriteAPIError(w, http.StatusConflict, "invalid_transition", transErr.Error())
		default:
			log.Printf("Error updating status of photo set %d: %v", id, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to update photo set status")
		}
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// UpdateMetadata patches title and/or description; absent fields are left
// unchanged. Status and photos are never editable here.
func (h *PhotoSetHandler) UpdateMetadata(w http.ResponseWriter, r *http.Request) {
	id, ok := h.photoSetID(r)
	if !ok {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Invalid photo set ID")
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Invalid request body: "+err.Error())
		return
	}

	set, err := h.PhotoSetRepo.UpdateMetadata(id, req.Title, req.Description)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Photo set not found")
		} else {
			log.Printf("Error updating metadata of photo set %d: %v", id, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to update photo set")
		}
		return
	}
	writeJSON(w, http.StatusOK, set)
}

// PendingCount returns the badge count for the review dashboard.
func (h *PhotoSetHandler) PendingCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.Approvals.PendingCount()
	if err != nil {
		log.Printf("Error counting pending photo sets: %v", err)
		WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to count pending photo sets")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"count": count})
}

// DeletePhotoSet removes a set and its photos. Blob objects are not
// deleted here; reclaiming them is an operator concern.
func (h *PhotoSetHandler) DeletePhotoSet(w http.ResponseWriter, r *http.Request) {
	id, ok := h.photoSetID(r)
	if !ok {
		WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Invalid photo set ID")
		return
	}

	if err := h.PhotoSetRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			WriteAPIError(w, http.StatusNotFound, "not_found", "Photo set not found")
		} else {
			log.Printf("Error deleting photo set %d: %v", id, err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to delete photo set")
		}
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
