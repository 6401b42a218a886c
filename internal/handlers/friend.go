package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/socialvibe/socialvibe/internal/services"
)

// FriendHandler serves the friend-code, request and friendship endpoints.
// These use the success/data envelope throughout.
type FriendHandler struct {
	friendService services.FriendServiceInterface
	codeService   services.FriendCodeServiceInterface
	notifier      services.NotifierInterface
}

func NewFriendHandler(friendService services.FriendServiceInterface, codeService services.FriendCodeServiceInterface, notifier services.NotifierInterface) *FriendHandler {
	return &FriendHandler{
		friendService: friendService,
		codeService:   codeService,
		notifier:      notifier,
	}
}

// GetCode returns the caller's friend code, allocating one on first call.
func (h *FriendHandler) GetCode(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	code, err := h.codeService.EnsureCode(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeFail(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Error ensuring friend code: %v", err)
		writeFail(w, http.StatusInternalServerError, "Failed to get friend code")
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]string{"friendCode": code})
}

// RegenerateCode replaces the caller's friend code with a fresh one.
func (h *FriendHandler) RegenerateCode(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	code, err := h.codeService.Regenerate(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) {
			writeFail(w, http.StatusNotFound, "User not found")
			return
		}
		log.Printf("Error regenerating friend code: %v", err)
		writeFail(w, http.StatusInternalServerError, "Failed to generate friend code")
		return
	}

	writeSuccess(w, http.StatusOK, "Friend code regenerated", map[string]string{"friendCode": code})
}

type SubmitRequestBody struct {
	FriendCode string `json:"friendCode"`
}

func (h *FriendHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var body SubmitRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(body.FriendCode) == "" {
		writeFail(w, http.StatusBadRequest, "Friend code is required")
		return
	}

	request, err := h.friendService.SubmitRequest(r.Context(), user, body.FriendCode)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFriendCodeNotFound):
			writeFail(w, http.StatusNotFound, "No user found with that friend code")
		case errors.Is(err, services.ErrCannotFriendSelf):
			writeFail(w, http.StatusBadRequest, "You cannot add yourself as a friend")
		case errors.Is(err, services.ErrAlreadyFriends):
			writeFail(w, http.StatusBadRequest, "You are already friends with this user")
		case errors.Is(err, services.ErrDuplicateRequest):
			writeFail(w, http.StatusBadRequest, "A friend request is already pending")
		default:
			log.Printf("Error submitting friend request: %v", err)
			writeFail(w, http.StatusInternalServerError, "Failed to send friend request")
		}
		return
	}

	h.notifyAsync(func(ctx context.Context) {
		h.notifier.FriendRequestReceived(ctx, request.TargetID, user.Username)
	})

	writeSuccess(w, http.StatusCreated, "Friend request sent", map[string]string{
		"requestId": request.ID.String(),
	})
}

func (h *FriendHandler) ListRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	requests, err := h.friendService.ListIncoming(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing friend requests: %v", err)
		writeFail(w, http.StatusInternalServerError, "Failed to load friend requests")
		return
	}

	writeSuccess(w, http.StatusOK, "", requests)
}

func (h *FriendHandler) CountRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	count, err := h.friendService.CountIncoming(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error counting friend requests: %v", err)
		writeFail(w, http.StatusInternalServerError, "Failed to count friend requests")
		return
	}

	writeSuccess(w, http.StatusOK, "", map[string]int{"count": count})
}

func (h *FriendHandler) AcceptRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	request, err := h.friendService.Accept(r.Context(), requestID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			writeFail(w, http.StatusNotFound, "Friend request not found")
		case errors.Is(err, services.ErrNotRequestRecipient):
			writeFail(w, http.StatusForbidden, "Only the recipient can accept this request")
		case errors.Is(err, services.ErrRequestAlreadyProcessed):
			writeFail(w, http.StatusBadRequest, "Friend request was already processed")
		case errors.Is(err, services.ErrAlreadyFriends):
			writeFail(w, http.StatusBadRequest, "You are already friends with this user")
		default:
			log.Printf("Error accepting friend request: %v", err)
			writeFail(w, http.StatusInternalServerError, "Failed to accept friend request")
		}
		return
	}

	h.notifyAsync(func(ctx context.Context) {
		h.notifier.FriendRequestAccepted(ctx, request.RequesterID, user.Username)
	})

	writeSuccess(w, http.StatusOK, "Friend request accepted", nil)
}

func (h *FriendHandler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	requestID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid request ID")
		return
	}

	err = h.friendService.Reject(r.Context(), requestID, user.ID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrRequestNotFound):
			writeFail(w, http.StatusNotFound, "Friend request not found")
		case errors.Is(err, services.ErrNotRequestRecipient):
			writeFail(w, http.StatusForbidden, "Only the recipient can reject this request")
		case errors.Is(err, services.ErrRequestAlreadyProcessed):
			writeFail(w, http.StatusBadRequest, "Friend request was already processed")
		default:
			log.Printf("Error rejecting friend request: %v", err)
			writeFail(w, http.StatusInternalServerError, "Failed to reject friend request")
		}
		return
	}

	writeSuccess(w, http.StatusOK, "Friend request rejected", nil)
}

func (h *FriendHandler) ListFriends(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	friends, err := h.friendService.ListFriends(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error listing friends: %v", err)
		writeFail(w, http.StatusInternalServerError, "Failed to load friends")
		return
	}

	writeSuccess(w, http.StatusOK, "", friends)
}

// RemoveFriend removes the friendship in both directions. Removing a
// friendship that does not exist still succeeds.
func (h *FriendHandler) RemoveFriend(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	friendID, err := uuid.Parse(r.PathValue("friendId"))
	if err != nil {
		writeFail(w, http.StatusBadRequest, "Invalid friend ID")
		return
	}

	if err := h.friendService.RemoveFriendship(r.Context(), user.ID, friendID); err != nil {
		log.Printf("Error removing friendship: %v", err)
		writeFail(w, http.StatusInternalServerError, "Failed to remove friend")
		return
	}

	writeSuccess(w, http.StatusOK, "Friend removed", nil)
}

// notifyAsync runs a notification outside the request lifecycle; the request
// context dies when the response is written.
func (h *FriendHandler) notifyAsync(fn func(ctx context.Context)) {
	if h.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		fn(ctx)
	}()
}
