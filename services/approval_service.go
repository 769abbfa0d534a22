package services

import (
	"errors"
	"log"

	"github.com/brightfix/showcasebackend/models"
	"github.com/brightfix/showcasebackend/repository"
)

// ApprovalService is the state machine governing public visibility of a
// photo set: pending -> approved | rejected, both terminal. There is no way
// back out of a terminal state; a redo is a new submission.
type ApprovalService struct {
	photoSets repository.PhotoSetRepositoryInterface
}

func NewApprovalService(photoSets repository.PhotoSetRepositoryInterface) *ApprovalService {
	return &ApprovalService{photoSets: photoSets}
}

// Approve transitions a pending set to approved.
func (s *ApprovalService) Approve(actor models.AuthorizedActor, id uint) (*models.PhotoSet, error) {
	return s.transition(actor, id, models.StatusApproved)
}

// Reject transitions a pending set to rejected.
func (s *ApprovalService) Reject(actor models.AuthorizedActor, id uint) (*models.PhotoSet, error) {
	return s.transition(actor, id, models.StatusRejected)
}

// transition performs the guarded pending -> target move. The repository
// does a compare-and-set, so two reviewers racing over the same set cannot
// overwrite each other: the loser gets an InvalidTransitionError.
func (s *ApprovalService) transition(actor models.AuthorizedActor, id uint, target string) (*models.PhotoSet, error) {
	set, err := s.photoSets.UpdateStatus(id, models.StatusPending, target)
	if err != nil {
		if errors.Is(err, repository.ErrStatusConflict) {
			from := "unknown"
			if current, getErr := s.photoSets.GetByID(id); getErr == nil {
				from = current.Status
			}
			return nil, &InvalidTransitionError{ID: id, From: from, To: target}
		}
		return nil, err
	}
	log.Printf("approval: actor %d set photo set %d to %s", actor.ID, id, target)
	return set, nil
}

// PendingCount reports how many sets are waiting for review, for the
// dashboard badge.
func (s *ApprovalService) PendingCount() (int64, error) {
	return s.photoSets.CountByStatus(models.StatusPending)
}
