package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/brightfix/showcasebackend/models"
	"github.com/brightfix/showcasebackend/repository"
)

// fakePhotoSetRepo is an in-memory stand-in for the GORM repository.
type fakePhotoSetRepo struct {
	mu      sync.Mutex
	nextID  uint
	sets    map[uint]*models.PhotoSet
	failing bool // when set, Create returns an error
}

func newFakePhotoSetRepo() *fakePhotoSetRepo {
	return &fakePhotoSetRepo{nextID: 1, sets: make(map[uint]*models.PhotoSet)}
}

func (r *fakePhotoSetRepo) Create(set *models.PhotoSet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failing {
		return errors.New("database is on fire")
	}
	if set.Status == "" {
		set.Status = models.StatusPending
	}
	set.ID = r.nextID
	r.nextID++
	for i := range set.Photos {
		set.Photos[i].ID = uint(i + 1)
		set.Photos[i].PhotoSetID = set.ID
	}
	copied := *set
	r.sets[set.ID] = &copied
	return nil
}

func (r *fakePhotoSetRepo) GetByID(id uint) (*models.PhotoSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *set
	return &copied, nil
}

func (r *fakePhotoSetRepo) ListByStatus(status string, page, pageSize int) ([]models.PhotoSet, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.PhotoSet
	for _, set := range r.sets {
		if set.Status == status {
			out = append(out, *set)
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakePhotoSetRepo) UpdateStatus(id uint, fromStatus, toStatus string) (*models.PhotoSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if set.Status != fromStatus {
		return nil, repository.ErrStatusConflict
	}
	set.Status = toStatus
	copied := *set
	return &copied, nil
}

func (r *fakePhotoSetRepo) UpdateMetadata(id uint, title, description *string) (*models.PhotoSet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	set, ok := r.sets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	if title != nil {
		set.Title = title
	}
	if description != nil {
		set.Description = description
	}
	copied := *set
	return &copied, nil
}

func (r *fakePhotoSetRepo) CountByStatus(status string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, set := range r.sets {
		if set.Status == status {
			count++
		}
	}
	return count, nil
}

func (r *fakePhotoSetRepo) Delete(id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sets[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.sets, id)
	return nil
}

// fakeBlobStore records uploads in memory. Object names containing
// failNameFragment fail their Put, simulating a transport error.
type fakeBlobStore struct {
	mu               sync.Mutex
	objects          map[string][]byte
	failNameFragment string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (s *fakeBlobStore) Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failNameFragment != "" && strings.Contains(objectName, s.failNameFragment) {
		return "", errors.New("transport failure")
	}
	s.objects[objectName] = data
	return fmt.Sprintf("https://blobs.test/%s", objectName), nil
}

func (s *fakeBlobStore) Delete(ctx context.Context, objectName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, objectName)
	return nil
}

func (s *fakeBlobStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.objects)
}
