package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/socialvibe/socialvibe/internal/config"
	"github.com/socialvibe/socialvibe/internal/services/ai"
)

func stubAIHandler() *AIHandler {
	return NewAIHandler(ai.NewService(&config.AIConfig{Stub: true}))
}

func TestContentSuggestionsEndpoint(t *testing.T) {
	h := stubAIHandler()

	w := httptest.NewRecorder()
	h.ContentSuggestions(w, newRequest(t, http.MethodPost, "/api/ai/content-suggestions", map[string]string{
		"content": "coffee on the balcony",
	}, testUser()))

	assertStatus(t, w, http.StatusOK)
	body := decodeBody(t, w)
	if body["success"] != true {
		t.Fatalf("expected success envelope, got %v", body)
	}
	data, _ := body["data"].(map[string]any)
	suggestions, _ := data["suggestions"].([]any)
	if len(suggestions) == 0 {
		t.Error("expected suggestions")
	}
}

func TestTopicAndTagEndpoints(t *testing.T) {
	h := stubAIHandler()

	w := httptest.NewRecorder()
	h.TopicSuggestions(w, newRequest(t, http.MethodGet, "/api/ai/topic-suggestions", nil, testUser()))
	assertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	h.TagSuggestions(w, newRequest(t, http.MethodPost, "/api/ai/tag-suggestions", map[string]string{"content": "x"}, testUser()))
	assertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	h.HashtagSuggestions(w, newRequest(t, http.MethodPost, "/api/ai/hashtag-suggestions", nil, testUser()))
	assertStatus(t, w, http.StatusOK)
}

func TestOptimizationRequiresContent(t *testing.T) {
	h := stubAIHandler()

	w := httptest.NewRecorder()
	h.OptimizationSuggestions(w, newRequest(t, http.MethodPost, "/api/ai/optimize", map[string]string{
		"content": "  ",
	}, testUser()))
	assertStatus(t, w, http.StatusBadRequest)

	w = httptest.NewRecorder()
	h.OptimizationSuggestions(w, newRequest(t, http.MethodPost, "/api/ai/optimize", map[string]string{
		"content": "my draft post",
	}, testUser()))
	assertStatus(t, w, http.StatusOK)
}

func TestSentimentRequiresContent(t *testing.T) {
	h := stubAIHandler()

	w := httptest.NewRecorder()
	h.SentimentAnalysis(w, newRequest(t, http.MethodPost, "/api/ai/sentiment", map[string]string{}, testUser()))
	assertStatus(t, w, http.StatusBadRequest)
}

func TestDescribeStylesEndpoint(t *testing.T) {
	h := stubAIHandler()

	w := httptest.NewRecorder()
	h.DescribeStyles(w, newRequest(t, http.MethodGet, "/api/ai/image-to-text/styles", nil, testUser()))

	assertStatus(t, w, http.StatusOK)
	data, _ := decodeBody(t, w)["data"].(map[string]any)
	styles, _ := data["styles"].([]any)
	if len(styles) != 4 {
		t.Errorf("expected 4 styles, got %v", styles)
	}
}

func TestImageToText_StubMode(t *testing.T) {
	h := stubAIHandler()

	body, contentType := multipartBody(t, "image", map[string][]byte{"photo.png": pngBytes})
	r := httptest.NewRequest(http.MethodPost, "/api/ai/image-to-text", body)
	r.Header.Set("Content-Type", contentType)
	r = r.WithContext(SetUserInContext(r.Context(), testUser()))
	w := httptest.NewRecorder()
	h.ImageToText(w, r)

	assertStatus(t, w, http.StatusOK)
	data, _ := decodeBody(t, w)["data"].(map[string]any)
	if text, _ := data["text"].(string); text == "" {
		t.Error("expected generated text")
	}
}

func TestImageToText_MissingFile(t *testing.T) {
	h := stubAIHandler()

	body, contentType := multipartBody(t, "other", map[string][]byte{"photo.png": pngBytes})
	r := httptest.NewRequest(http.MethodPost, "/api/ai/image-to-text", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ImageToText(w, r)

	assertStatus(t, w, http.StatusBadRequest)
}

func TestImageToText_RejectsNonImage(t *testing.T) {
	h := stubAIHandler()

	body, contentType := multipartBody(t, "image", map[string][]byte{"doc.txt": []byte("definitely not an image")})
	r := httptest.NewRequest(http.MethodPost, "/api/ai/image-to-text", body)
	r.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	h.ImageToText(w, r)

	assertStatus(t, w, http.StatusBadRequest)
}
