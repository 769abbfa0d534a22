package handlers

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestAssetServerServesStoredObject(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "photo.jpg"), []byte("jpeg bytes"), 0644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	server := AssetServer(dir, "/api/media/")

	req := httptest.NewRequest(http.MethodGet, "/api/media/photo.jpg", nil)
	rec := httptest.NewRecorder()
	server(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Body.String() != "jpeg bytes" {
		t.Fatalf("unexpected body %q", rec.Body.String())
	}
	if rec.Header().Get("Cache-Control") == "" {
		t.Fatal("expected a cache header on immutable assets")
	}
}

func TestAssetServerRejectsTraversal(t *testing.T) {
	server := AssetServer(t.TempDir(), "/api/media/")
	req := httptest.NewRequest(http.MethodGet, "/api/media/..%2fsecret.txt", nil)
	rec := httptest.NewRecorder()
	server(rec, req)
	if rec.Code != http.StatusBadRequest && rec.Code != http.StatusForbidden && rec.Code != http.StatusNotFound {
		t.Fatalf("traversal attempt should be rejected, got %d", rec.Code)
	}
}

func TestAssetServerMissingObject(t *testing.T) {
	server := AssetServer(t.TempDir(), "/api/media/")
	req := httptest.NewRequest(http.MethodGet, "/api/media/nope.jpg", nil)
	rec := httptest.NewRecorder()
	server(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
