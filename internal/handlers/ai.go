package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/socialvibe/socialvibe/internal/services/ai"
)

const maxImageBytes = 10 << 20

// AIHandler serves the assistant endpoints. The suggestion routes return
// curated content; only image-to-text calls the vision model.
type AIHandler struct {
	service *ai.Service
}

func NewAIHandler(service *ai.Service) *AIHandler {
	return &AIHandler{service: service}
}

type SuggestRequest struct {
	Content string `json:"content"`
}

func (h *AIHandler) ContentSuggestions(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"suggestions": h.service.ContentSuggestions(req.Content),
	})
}

func (h *AIHandler) TopicSuggestions(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"topics": h.service.TopicSuggestions(),
	})
}

func (h *AIHandler) TagSuggestions(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"tags": h.service.TagSuggestions(req.Content),
	})
}

func (h *AIHandler) HashtagSuggestions(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	_ = json.NewDecoder(r.Body).Decode(&req)

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"hashtags": h.service.HashtagSuggestions(req.Content),
	})
}

func (h *AIHandler) OptimizationSuggestions(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeFail(w, http.StatusBadRequest, "Content is required")
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"suggestions": h.service.OptimizationSuggestions(req.Content),
	})
}

func (h *AIHandler) SentimentAnalysis(w http.ResponseWriter, r *http.Request) {
	var req SuggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Content) == "" {
		writeFail(w, http.StatusBadRequest, "Content is required")
		return
	}

	writeSuccess(w, http.StatusOK, "", h.service.SentimentAnalysis(req.Content))
}

func (h *AIHandler) DescribeStyles(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"styles": ai.DescribeStyles(),
	})
}

// ImageToText turns an uploaded image into suggested post text. The image
// arrives as multipart form data under the "image" field.
func (h *AIHandler) ImageToText(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Image file is required")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		writeFail(w, http.StatusBadRequest, "Image must be at most 10MB")
		return
	}

	image, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		log.Printf("Error reading uploaded image: %v", err)
		writeFail(w, http.StatusInternalServerError, "Failed to read image")
		return
	}

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(http.DetectContentType(image), "image/") {
		writeFail(w, http.StatusBadRequest, "File must be an image")
		return
	}

	style := r.FormValue("style")
	prompt := r.FormValue("prompt")

	text, err := h.service.DescribeImage(r.Context(), image, mimeType, style, prompt)
	if err != nil {
		switch {
		case errors.Is(err, ai.ErrInvalidInput):
			writeFail(w, http.StatusBadRequest, "Image file is required")
		case errors.Is(err, ai.ErrNotConfigured):
			writeFail(w, http.StatusServiceUnavailable, "Image analysis is not configured")
		case errors.Is(err, ai.ErrUpstreamUnavailable):
			log.Printf("Vision service unavailable: %v", err)
			writeFail(w, http.StatusBadGateway, "Image analysis is temporarily unavailable")
		default:
			log.Printf("Error describing image: %v", err)
			writeFail(w, http.StatusInternalServerError, "Failed to analyze image")
		}
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]any{
		"text":  text,
		"style": style,
	})
}

// Health reports whether the assistant endpoints are usable.
func (h *AIHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeSuccess(w, http.StatusOK, "AI service is available", nil)
}
