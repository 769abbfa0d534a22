package repository

import (
	"github.com/brightfix/showcasebackend/models"
)

// PhotoSetRepositoryInterface defines the methods for photo set data
// operations. The PhotoSet aggregate (set + photos) is always written and
// deleted as a unit.
type PhotoSetRepositoryInterface interface {
	// Create persists a set and all of its photos in one transaction
	Create(set *models.PhotoSet) error
	GetByID(id uint) (*models.PhotoSet, error)
	// ListByStatus returns one page of sets, newest-submitted-first, plus
	// the total count for that status
	ListByStatus(status string, page, pageSize int) ([]models.PhotoSet, int64, error)
	// UpdateStatus performs a compare-and-set: the row must currently hold
	// fromStatus. ErrRecordNotFound means the id does not exist;
	// ErrStatusConflict means it exists but is no longer in fromStatus.
	UpdateStatus(id uint, fromStatus, toStatus string) (*models.PhotoSet, error)
	// UpdateMetadata patches title and/or description; nil leaves a field
	// unchanged. Status and photos are never touched here.
	UpdateMetadata(id uint, title, description *string) (*models.PhotoSet, error)
	CountByStatus(status string) (int64, error)
	// Delete removes the set and its photos
	Delete(id uint) error
}
