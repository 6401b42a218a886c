package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/socialvibe/socialvibe/internal/models"
	"github.com/socialvibe/socialvibe/internal/services"
)

const (
	maxFeedContentLength = 2000
	maxFeedMediaItems    = 9
	maxCommentLength     = 500
)

type FeedHandler struct {
	feedService services.FeedServiceInterface
	userService services.UserServiceInterface
}

func NewFeedHandler(feedService services.FeedServiceInterface, userService services.UserServiceInterface) *FeedHandler {
	return &FeedHandler{
		feedService: feedService,
		userService: userService,
	}
}

type CreateFeedRequest struct {
	Content  string             `json:"content"`
	Media    []models.MediaItem `json:"media"`
	Tags     []string           `json:"tags"`
	Mentions []string           `json:"mentions"`
	IsPublic *bool              `json:"is_public"`
}

func (h *FeedHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req CreateFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid request body")
		return
	}

	var details []string
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" && len(req.Media) == 0 {
		details = append(details, "content or media is required")
	}
	if len(req.Content) > maxFeedContentLength {
		details = append(details, "content must be at most 2000 characters")
	}
	if len(req.Media) > maxFeedMediaItems {
		details = append(details, "at most 9 media items are allowed")
	}
	if len(details) > 0 {
		writeValidationError(w, details...)
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	feed, err := h.feedService.Create(r.Context(), models.CreateFeedParams{
		AuthorID: user.ID,
		Content:  req.Content,
		Media:    req.Media,
		Tags:     req.Tags,
		Mentions: req.Mentions,
		IsPublic: isPublic,
	})
	if err != nil {
		log.Printf("Error creating feed: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"feed": feed})
}

func (h *FeedHandler) List(w http.ResponseWriter, r *http.Request) {
	viewerID := viewerIDFromContext(r)
	limit, offset := parsePagination(r, 20, 50)

	feeds, total, err := h.feedService.ListVisible(r.Context(), viewerID, limit, offset)
	if err != nil {
		log.Printf("Error listing feeds: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"feeds": feeds, "total": total})
}

func (h *FeedHandler) Get(w http.ResponseWriter, r *http.Request) {
	feedID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid feed ID")
		return
	}

	feed, err := h.feedService.Get(r.Context(), feedID, viewerIDFromContext(r))
	switch {
	case errors.Is(err, services.ErrFeedNotFound):
		writeError(w, http.StatusNotFound, "NotFound", "Feed not found")
	case errors.Is(err, services.ErrFeedAccessDenied):
		writeError(w, http.StatusForbidden, "Forbidden", "This post is private")
	case err != nil:
		log.Printf("Error fetching feed: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]any{"feed": feed})
	}
}

func (h *FeedHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	authorID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid user ID")
		return
	}
	limit, offset := parsePagination(r, 20, 50)

	feeds, total, err := h.feedService.ListByAuthor(r.Context(), authorID, viewerIDFromContext(r), limit, offset)
	if err != nil {
		log.Printf("Error listing user feeds: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"feeds": feeds, "total": total})
}

type UpdateFeedRequest struct {
	Content  *string  `json:"content"`
	Tags     []string `json:"tags"`
	IsPublic *bool    `json:"is_public"`
}

func (h *FeedHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	feedID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid feed ID")
		return
	}

	var req UpdateFeedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid request body")
		return
	}
	if req.Content != nil {
		content := strings.TrimSpace(*req.Content)
		if content == "" {
			writeValidationError(w, "content must not be empty")
			return
		}
		if len(content) > maxFeedContentLength {
			writeValidationError(w, "content must be at most 2000 characters")
			return
		}
		req.Content = &content
	}

	err = h.feedService.Update(r.Context(), feedID, user.ID, services.UpdateFeedParams{
		Content:  req.Content,
		Tags:     req.Tags,
		IsPublic: req.IsPublic,
	})
	switch {
	case errors.Is(err, services.ErrFeedNotFound):
		writeError(w, http.StatusNotFound, "NotFound", "Feed not found")
	case errors.Is(err, services.ErrNotFeedAuthor):
		writeError(w, http.StatusForbidden, "Forbidden", "Only the author can edit this post")
	case err != nil:
		log.Printf("Error updating feed: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Feed updated"})
	}
}

func (h *FeedHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	feedID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid feed ID")
		return
	}

	err = h.feedService.SoftDelete(r.Context(), feedID, user.ID)
	switch {
	case errors.Is(err, services.ErrFeedNotFound):
		writeError(w, http.StatusNotFound, "NotFound", "Feed not found")
	case errors.Is(err, services.ErrNotFeedAuthor):
		writeError(w, http.StatusForbidden, "Forbidden", "Only the author can delete this post")
	case err != nil:
		log.Printf("Error deleting feed: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Feed deleted"})
	}
}

// ToggleLike likes the feed, or removes the caller's like if one exists.
func (h *FeedHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	feedID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid feed ID")
		return
	}

	liked, count, err := h.feedService.ToggleLike(r.Context(), feedID, user.ID)
	if errors.Is(err, services.ErrFeedNotFound) {
		writeError(w, http.StatusNotFound, "NotFound", "Feed not found")
		return
	}
	if err != nil {
		log.Printf("Error toggling like: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"liked": liked, "like_count": count})
}

type AddCommentRequest struct {
	Content string `json:"content"`
}

func (h *FeedHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	feedID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid feed ID")
		return
	}

	var req AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid request body")
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeValidationError(w, "content is required")
		return
	}
	if len(req.Content) > maxCommentLength {
		writeValidationError(w, "content must be at most 500 characters")
		return
	}

	comment, err := h.feedService.AddComment(r.Context(), feedID, user, req.Content)
	if errors.Is(err, services.ErrFeedNotFound) {
		writeError(w, http.StatusNotFound, "NotFound", "Feed not found")
		return
	}
	if err != nil {
		log.Printf("Error adding comment: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"comment": comment})
}

func (h *FeedHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	feedID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid feed ID")
		return
	}
	limit, offset := parsePagination(r, 20, 100)

	comments, total, err := h.feedService.ListComments(r.Context(), feedID, limit, offset)
	if err != nil {
		log.Printf("Error listing comments: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"comments": comments, "total": total})
}

func viewerIDFromContext(r *http.Request) *uuid.UUID {
	if user := GetUserFromContext(r.Context()); user != nil {
		id := user.ID
		return &id
	}
	return nil
}
