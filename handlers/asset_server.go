package handlers

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// AssetServer serves stored objects from the local blob store directory.
// Only used with the local blob driver; with s3 the returned URLs point at
// the bucket and this route is never registered.
//
// example usage in main.go:
//
//	r.Get("/api/media/*", handlers.AssetServer(store.BasePath(), "/api/media/"))
func AssetServer(baseDir, routePrefix string) http.HandlerFunc {
	cleanBase := filepath.Clean(baseDir)

	return func(w http.ResponseWriter, r *http.Request) {
		relativePath := strings.TrimPrefix(r.URL.Path, routePrefix)
		if relativePath == "" || strings.Contains(relativePath, "..") {
			WriteAPIError(w, http.StatusBadRequest, "invalid_request", "Invalid asset path")
			return
		}

		assetPath := filepath.Clean(filepath.Join(cleanBase, relativePath))
		if !strings.HasPrefix(assetPath, cleanBase) {
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Forbidden")
			return
		}

		if _, err := os.Stat(assetPath); os.IsNotExist(err) {
			http.NotFound(w, r)
			return
		} else if err != nil {
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to read asset")
			return
		}

		// processed objects are immutable; cache hard
		cacheDuration := 24 * time.Hour
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(cacheDuration.Seconds())))
		w.Header().Set("Expires", time.Now().Add(cacheDuration).Format(http.TimeFormat))

		http.ServeFile(w, r, assetPath)
	}
}
