package handlers

import (
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/socialvibe/socialvibe/internal/config"
)

// UploadHandler stores images on local disk and serves them back under
// /uploads/. Filenames are random so originals never collide.
type UploadHandler struct {
	dir          string
	maxFileBytes int64
	maxFiles     int
}

func NewUploadHandler(cfg *config.UploadConfig) *UploadHandler {
	return &UploadHandler{
		dir:          cfg.Dir,
		maxFileBytes: cfg.MaxFileBytes,
		maxFiles:     cfg.MaxFiles,
	}
}

type UploadedFile struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	MimeType string `json:"mimeType"`
}

// Single accepts one image under the "image" form field.
func (h *UploadHandler) Single(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxFileBytes); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	uploaded, err := h.store(file, header)
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, "File uploaded", uploaded)
}

// Multiple accepts up to the configured number of images under "images".
func (h *UploadHandler) Multiple(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxFileBytes * int64(h.maxFiles)); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	if r.MultipartForm == nil {
		writeFail(w, http.StatusBadRequest, "At least one image is required")
		return
	}
	headers := r.MultipartForm.File["images"]
	if len(headers) == 0 {
		writeFail(w, http.StatusBadRequest, "At least one image is required")
		return
	}
	if len(headers) > h.maxFiles {
		writeFail(w, http.StatusBadRequest, fmt.Sprintf("At most %d files are allowed", h.maxFiles))
		return
	}

	uploaded := make([]*UploadedFile, 0, len(headers))
	for _, header := range headers {
		file, err := header.Open()
		if err != nil {
			writeFail(w, http.StatusBadRequest, "Failed to read uploaded file")
			return
		}
		out, err := h.store(file, header)
		file.Close()
		if err != nil {
			h.writeStoreError(w, err)
			return
		}
		uploaded = append(uploaded, out)
	}

	writeSuccess(w, http.StatusCreated, "Files uploaded", map[string]any{"files": uploaded})
}

var (
	errFileTooLarge = fmt.Errorf("file too large")
	errNotAnImage   = fmt.Errorf("not an image")
)

func (h *UploadHandler) store(file multipart.File, header *multipart.FileHeader) (*UploadedFile, error) {
	if header.Size > h.maxFileBytes {
		return nil, errFileTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if int64(len(data)) > h.maxFileBytes {
		return nil, errFileTooLarge
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, errNotAnImage
	}

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext == "" {
		ext = extensionForMime(mimeType)
	}
	name := uuid.NewString() + ext

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating upload dir: %w", err)
	}
	if err := os.WriteFile(filepath.Join(h.dir, name), data, 0o644); err != nil {
		return nil, fmt.Errorf("writing upload: %w", err)
	}

	return &UploadedFile{
		URL:      "/uploads/" + name,
		Filename: name,
		Size:     int64(len(data)),
		MimeType: mimeType,
	}, nil
}

func (h *UploadHandler) writeStoreError(w http.ResponseWriter, err error) {
	switch err {
	case errFileTooLarge:
		writeFail(w, http.StatusBadRequest, fmt.Sprintf("Files must be at most %dMB", h.maxFileBytes>>20))
	case errNotAnImage:
		writeFail(w, http.StatusBadRequest, "Only image files are allowed")
	default:
		log.Printf("Error storing upload: %v", err)
		writeFail(w, http.StatusInternalServerError, "Failed to store file")
	}
}

func extensionForMime(mimeType string) string {
	switch mimeType {
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}
