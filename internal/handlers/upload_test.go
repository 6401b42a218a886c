package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/socialvibe/socialvibe/internal/config"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

func newUploadHandler(t *testing.T) *UploadHandler {
	t.Helper()
	return NewUploadHandler(&config.UploadConfig{
		Dir:          t.TempDir(),
		MaxFileBytes: 1 << 20,
		MaxFiles:     3,
	})
}

func multipartBody(t *testing.T, field string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		part, err := mw.CreateFormFile(field, name)
		if err != nil {
			t.Fatalf("creating form file: %v", err)
		}
		if _, err := part.Write(data); err != nil {
			t.Fatalf("writing form file: %v", err)
		}
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestUploadSingle_Success(t *testing.T) {
	h := newUploadHandler(t)

	body, contentType := multipartBody(t, "image", map[string][]byte{"photo.png": pngBytes})
	r := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Single(w, r)

	assertStatus(t, w, http.StatusCreated)
	data, _ := decodeBody(t, w)["data"].(map[string]any)
	url, _ := data["url"].(string)
	if !strings.HasPrefix(url, "/uploads/") || !strings.HasSuffix(url, ".png") {
		t.Fatalf("unexpected URL %q", url)
	}
	if data["mimeType"] != "image/png" {
		t.Errorf("expected image/png, got %v", data["mimeType"])
	}

	stored := filepath.Join(h.dir, strings.TrimPrefix(url, "/uploads/"))
	if _, err := os.Stat(stored); err != nil {
		t.Errorf("expected stored file at %s: %v", stored, err)
	}
}

func TestUploadSingle_RandomizesFilename(t *testing.T) {
	h := newUploadHandler(t)

	body, contentType := multipartBody(t, "image", map[string][]byte{"../../evil.png": pngBytes})
	r := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Single(w, r)

	assertStatus(t, w, http.StatusCreated)
	data, _ := decodeBody(t, w)["data"].(map[string]any)
	name, _ := data["filename"].(string)
	if strings.Contains(name, "evil") || strings.Contains(name, "..") {
		t.Errorf("expected randomized name, got %q", name)
	}
}

func TestUploadSingle_RejectsNonImage(t *testing.T) {
	h := newUploadHandler(t)

	body, contentType := multipartBody(t, "image", map[string][]byte{"doc.txt": []byte("plain text, not an image")})
	r := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Single(w, r)

	assertStatus(t, w, http.StatusBadRequest)
}

func TestUploadSingle_RejectsOversize(t *testing.T) {
	h := NewUploadHandler(&config.UploadConfig{
		Dir:          t.TempDir(),
		MaxFileBytes: 16,
		MaxFiles:     3,
	})

	body, contentType := multipartBody(t, "image", map[string][]byte{"big.png": pngBytes})
	r := httptest.NewRequest(http.MethodPost, "/api/upload/image", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Single(w, r)

	assertStatus(t, w, http.StatusBadRequest)
}

func TestUploadMultiple_Success(t *testing.T) {
	h := newUploadHandler(t)

	body, contentType := multipartBody(t, "images", map[string][]byte{
		"a.png": pngBytes,
		"b.png": pngBytes,
	})
	r := httptest.NewRequest(http.MethodPost, "/api/upload/images", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Multiple(w, r)

	assertStatus(t, w, http.StatusCreated)
	data, _ := decodeBody(t, w)["data"].(map[string]any)
	files, _ := data["files"].([]any)
	if len(files) != 2 {
		t.Errorf("expected 2 files, got %v", files)
	}
}

func TestUploadMultiple_TooMany(t *testing.T) {
	h := newUploadHandler(t)

	body, contentType := multipartBody(t, "images", map[string][]byte{
		"a.png": pngBytes, "b.png": pngBytes, "c.png": pngBytes, "d.png": pngBytes,
	})
	r := httptest.NewRequest(http.MethodPost, "/api/upload/images", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Multiple(w, r)

	assertStatus(t, w, http.StatusBadRequest)
}

func TestUploadMultiple_Empty(t *testing.T) {
	h := newUploadHandler(t)

	body, contentType := multipartBody(t, "other", map[string][]byte{"a.png": pngBytes})
	r := httptest.NewRequest(http.MethodPost, "/api/upload/images", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.Multiple(w, r)

	assertStatus(t, w, http.StatusBadRequest)
}
