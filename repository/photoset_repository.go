package repository

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/facette/natsort"
	"gorm.io/gorm"

	"github.com/brightfix/showcasebackend/models"
)

// ErrStatusConflict is returned by UpdateStatus when the target row exists
// but is not in the expected current status. Callers translate it into an
// invalid-transition error; it must never be silently ignored.
var ErrStatusConflict = errors.New("photo set status conflict")

// PhotoSetRepository handles database operations for PhotoSet aggregates
type PhotoSetRepository struct {
	DB *gorm.DB
}

// NewPhotoSetRepository creates a new instance of PhotoSetRepository
func NewPhotoSetRepository(db *gorm.DB) *PhotoSetRepository {
	return &PhotoSetRepository{DB: db}
}

// Create persists the set and its photos in a single transaction so a
// reader can never observe a set with a partial photo list.
func (r *PhotoSetRepository) Create(set *models.PhotoSet) error {
	now := time.Now().Unix()
	if set.SubmittedAt == 0 {
		set.SubmittedAt = now
	}
	if set.Status == "" {
		set.Status = models.StatusPending
	}
	if !models.IsValidStatus(set.Status) {
		return fmt.Errorf("invalid photo set status %q", set.Status)
	}
	for i := range set.Photos {
		if set.Photos[i].UploadedAt == 0 {
			set.Photos[i].UploadedAt = now
		}
	}

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		// gorm writes the associated photos with the set
		return tx.Create(set).Error
	})
	if err != nil {
		return fmt.Errorf("failed to create photo set (category %s): %w", set.ServiceCategory, err)
	}
	return nil
}

// GetByID retrieves a photo set with its photos preloaded
func (r *PhotoSetRepository) GetByID(id uint) (*models.PhotoSet, error) {
	var set models.PhotoSet
	err := r.DB.Preload("Photos").First(&set, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get photo set by ID %d: %w", id, err)
	}
	sortPhotosForDisplay(&set)
	return &set, nil
}

// Paging bounds for ListByStatus. The gallery listing is public, so the
// page size is clamped server-side rather than trusted from the query.
const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ListByStatus returns one page of sets in the given status ordered
// newest-submitted-first, plus the total count for pagination.
func (r *PhotoSetRepository) ListByStatus(status string, page, pageSize int) ([]models.PhotoSet, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	var total int64
	err := r.DB.Model(&models.PhotoSet{}).Where("status = ?", status).Count(&total).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count photo sets with status %s: %w", status, err)
	}

	var sets []models.PhotoSet
	err = r.DB.Preload("Photos").
		Where("status = ?", status).
		Order("submitted_at DESC").
		Order("id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&sets).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list photo sets with status %s: %w", status, err)
	}
	for i := range sets {
		sortPhotosForDisplay(&sets[i])
	}
	return sets, total, nil
}

// UpdateStatus transitions a set from fromStatus to toStatus using a
// compare-and-set so a concurrent reviewer cannot overwrite a terminal
// state. Returns the updated aggregate.
func (r *PhotoSetRepository) UpdateStatus(id uint, fromStatus, toStatus string) (*models.PhotoSet, error) {
	if !models.IsValidStatus(toStatus) {
		return nil, fmt.Errorf("invalid photo set status %q", toStatus)
	}

	result := r.DB.Model(&models.PhotoSet{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Update("status", toStatus)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update status for photo set ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		r.DB.Model(&models.PhotoSet{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, ErrStatusConflict
	}
	return r.GetByID(id)
}

// UpdateMetadata patches title and/or description, never status or photos
func (r *PhotoSetRepository) UpdateMetadata(id uint, title, description *string) (*models.PhotoSet, error) {
	updates := map[string]interface{}{}
	if title != nil {
		updates["title"] = *title
	}
	if description != nil {
		updates["description"] = *description
	}
	if len(updates) == 0 {
		return r.GetByID(id)
	}

	result := r.DB.Model(&models.PhotoSet{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update metadata for photo set ID %d: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		var count int64
		r.DB.Model(&models.PhotoSet{}).Where("id = ?", id).Count(&count)
		if count == 0 {
			return nil, gorm.ErrRecordNotFound
		}
	}
	return r.GetByID(id)
}

// CountByStatus is a cheap aggregate for the dashboard badge
func (r *PhotoSetRepository) CountByStatus(status string) (int64, error) {
	var count int64
	err := r.DB.Model(&models.PhotoSet{}).Where("status = ?", status).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count photo sets with status %s: %w", status, err)
	}
	return count, nil
}

// Delete removes a set and its photos in one transaction (composition:
// photos never outlive their set)
func (r *PhotoSetRepository) Delete(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("photo_set_id = ?", id).Delete(&models.Photo{}).Error; err != nil {
			return fmt.Errorf("failed to delete photos for photo set ID %d: %w", id, err)
		}
		result := tx.Delete(&models.PhotoSet{}, id)
		if result.Error != nil {
			return fmt.Errorf("failed to delete photo set ID %d: %w", id, result.Error)
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// sortPhotosForDisplay groups a set's photos before-first and orders each
// group naturally by original filename, so "img2.jpg" sorts ahead of
// "img10.jpg". Upload completion order carries no meaning.
func sortPhotosForDisplay(set *models.PhotoSet) {
	sort.SliceStable(set.Photos, func(i, j int) bool {
		a, b := set.Photos[i], set.Photos[j]
		if a.Type != b.Type {
			return a.Type == models.PhotoTypeBefore
		}
		if a.Filename != b.Filename {
			return natsort.Compare(a.Filename, b.Filename)
		}
		return a.ID < b.ID
	})
}
