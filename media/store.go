package media

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// BlobStore durably stores processed image bytes under a unique object name
// and returns a stable public URL. Implementations must be safe for
// concurrent use; sibling uploads in one submission run in parallel.
type BlobStore interface {
	// Put writes one object and returns its public URL
	Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error)
	// Delete removes an object; deleting a missing object is not an error
	Delete(ctx context.Context, objectName string) error
}

// ObjectName builds a collision-free storage name for one upload attempt:
// unix-nano timestamp plus a random UUID plus a sanitized slice of the
// original base name, always carrying the canonical extension. Uniqueness
// per attempt is what makes caller-side retries safe.
func ObjectName(filename string) string {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	base = sanitizeBaseName(base)
	if base == "" {
		base = "photo"
	}
	return fmt.Sprintf("%d-%s-%s%s", time.Now().UnixNano(), uuid.NewString(), base, CanonicalExtension)
}

func sanitizeBaseName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		case r == ' ' || r == '.':
			b.WriteRune('-')
		}
	}
	s := b.String()
	if len(s) > 48 {
		s = s[:48]
	}
	return s
}

// LocalBlobStore implements BlobStore on the local filesystem. Objects live
// flat under basePath and are served by the asset route under publicBaseURL.
type LocalBlobStore struct {
	basePath      string
	publicBaseURL string
}

// NewLocalBlobStore creates the base directory if needed.
func NewLocalBlobStore(basePath, publicBaseURL string) (*LocalBlobStore, error) {
	absBasePath, err := filepath.Abs(basePath)
	if err != nil {
		return nil, fmt.Errorf("invalid base storage path '%s': %w", basePath, err)
	}
	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base storage directory '%s': %w", absBasePath, err)
	}
	log.Printf("media.store: Initialized LocalBlobStore at %s", absBasePath)
	return &LocalBlobStore{
		basePath:      absBasePath,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}, nil
}

func (ls *LocalBlobStore) fullPath(objectName string) (string, error) {
	cleaned := filepath.Clean(objectName)
	fullPath := filepath.Join(ls.basePath, cleaned)
	absFullPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to get absolute path for '%s': %w", objectName, err)
	}
	// anchored on the separator so a sibling like basePath+"-evil" is rejected
	if !strings.HasPrefix(absFullPath, ls.basePath+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid object name: access denied for '%s'", objectName)
	}
	return absFullPath, nil
}

// Put writes the object and returns its public URL.
func (ls *LocalBlobStore) Put(ctx context.Context, objectName string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	fullPath, err := ls.fullPath(objectName)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write object '%s': %w", objectName, err)
	}
	log.Printf("media.store: Saved object %s (%d bytes)", objectName, len(data))
	return ls.publicBaseURL + "/" + objectName, nil
}

// Delete removes the object, ignoring files that are already gone.
func (ls *LocalBlobStore) Delete(ctx context.Context, objectName string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	fullPath, err := ls.fullPath(objectName)
	if err != nil {
		return err
	}
	err = os.Remove(fullPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete object '%s': %w", objectName, err)
	}
	return nil
}

// BasePath exposes the storage root so the asset route can serve from it.
func (ls *LocalBlobStore) BasePath() string {
	return ls.basePath
}
