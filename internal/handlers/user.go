package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/socialvibe/socialvibe/internal/services"
)

type UserHandler struct {
	userService services.UserServiceInterface
	authService services.AuthServiceInterface
}

func NewUserHandler(userService services.UserServiceInterface, authService services.AuthServiceInterface) *UserHandler {
	return &UserHandler{
		userService: userService,
		authService: authService,
	}
}

// GetProfile returns a user's public profile by username.
func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	profile, err := h.userService.GetPublicProfile(r.Context(), username)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "NotFound", "User not found")
		return
	}
	if err != nil {
		log.Printf("Error fetching profile: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": profile})
}

type UpdateProfileRequest struct {
	DisplayName *string          `json:"display_name"`
	Bio         *string          `json:"bio"`
	AvatarURL   *string          `json:"avatar_url"`
	Preferences *json.RawMessage `json:"preferences"`
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid request body")
		return
	}

	var details []string
	params := services.UpdateProfileParams{}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" || len(name) > 50 {
			details = append(details, "display_name must be 1-50 characters")
		}
		params.DisplayName = &name
	}
	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if len(bio) > 500 {
			details = append(details, "bio must be at most 500 characters")
		}
		params.Bio = &bio
	}
	if req.AvatarURL != nil {
		avatar := strings.TrimSpace(*req.AvatarURL)
		if len(avatar) > 500 {
			details = append(details, "avatar_url must be at most 500 characters")
		}
		params.AvatarURL = &avatar
	}
	if req.Preferences != nil {
		prefs := user.Preferences
		if err := json.Unmarshal(*req.Preferences, &prefs); err != nil {
			details = append(details, "preferences must be a valid preferences object")
		}
		params.Preferences = &prefs
	}
	if len(details) > 0 {
		writeValidationError(w, details...)
		return
	}

	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, params)
	if errors.Is(err, services.ErrUserNotFound) {
		writeError(w, http.StatusNotFound, "NotFound", "User not found")
		return
	}
	if err != nil {
		log.Printf("Error updating profile: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"user": updated})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid request body")
		return
	}

	if !h.authService.VerifyPassword(user.PasswordHash, req.CurrentPassword) {
		writeError(w, http.StatusUnauthorized, "InvalidCredentials", "Current password is incorrect")
		return
	}
	if err := validatePassword(req.NewPassword); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	hash, err := h.authService.HashPassword(req.NewPassword)
	if err != nil {
		log.Printf("Error hashing password: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		log.Printf("Error updating password: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated successfully"})
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if len(query) < 2 {
		writeError(w, http.StatusBadRequest, "BadRequest", "Search query must be at least 2 characters")
		return
	}

	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	results, err := h.userService.Search(r.Context(), query, limit)
	if err != nil {
		log.Printf("Error searching users: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": results})
}

func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	followeeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid user ID")
		return
	}

	err = h.userService.Follow(r.Context(), user.ID, followeeID)
	switch {
	case errors.Is(err, services.ErrCannotFollowSelf):
		writeError(w, http.StatusBadRequest, "BadRequest", "You cannot follow yourself")
	case errors.Is(err, services.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "NotFound", "User not found")
	case err != nil:
		log.Printf("Error following user: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
	default:
		writeJSON(w, http.StatusOK, map[string]string{"message": "Now following"})
	}
}

func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	followeeID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid user ID")
		return
	}

	if err := h.userService.Unfollow(r.Context(), user.ID, followeeID); err != nil {
		log.Printf("Error unfollowing user: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Unfollowed"})
}

func (h *UserHandler) ListFollowers(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid user ID")
		return
	}

	limit, offset := parsePagination(r, 20, 50)
	followers, err := h.userService.ListFollowers(r.Context(), userID, limit, offset)
	if err != nil {
		log.Printf("Error listing followers: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": followers})
}

func (h *UserHandler) ListFollowing(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid user ID")
		return
	}

	limit, offset := parsePagination(r, 20, 50)
	following, err := h.userService.ListFollowing(r.Context(), userID, limit, offset)
	if err != nil {
		log.Printf("Error listing following: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"users": following})
}

type DeactivateRequest struct {
	Password string `json:"password"`
}

// Deactivate disables the account and releases its friend code.
func (h *UserHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req DeactivateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid request body")
		return
	}

	if !h.authService.VerifyPassword(user.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "InvalidCredentials", "Password is incorrect")
		return
	}

	if err := h.userService.Deactivate(r.Context(), user.ID); err != nil {
		log.Printf("Error deactivating account: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Account deactivated"})
}
