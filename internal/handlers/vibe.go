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

	"github.com/socialvibe/socialvibe/internal/models"
	"github.com/socialvibe/socialvibe/internal/services"
)

const (
	minTipAmount = 1
	maxTipAmount = 10000
	maxTipMsgLen = 100
)

var paymentMethods = map[string]bool{
	"credit_card": true,
	"paypal":      true,
	"apple_pay":   true,
	"google_pay":  true,
}

// VibeHandler serves the coin wallet endpoints.
type VibeHandler struct {
	walletService services.WalletServiceInterface
	userService   services.UserServiceInterface
	notifier      services.NotifierInterface
}

func NewVibeHandler(walletService services.WalletServiceInterface, userService services.UserServiceInterface, notifier services.NotifierInterface) *VibeHandler {
	return &VibeHandler{
		walletService: walletService,
		userService:   userService,
		notifier:      notifier,
	}
}

func (h *VibeHandler) Balance(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	balance, err := h.walletService.Balance(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error fetching balance: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"balance": balance, "currency": "VIBE"})
}

func (h *VibeHandler) Packages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"packages": models.CoinPackages})
}

type PurchaseRequest struct {
	PackageID     int    `json:"packageId"`
	PaymentMethod string `json:"paymentMethod"`
}

func (h *VibeHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid request body")
		return
	}
	if !paymentMethods[req.PaymentMethod] {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid payment method")
		return
	}

	receipt, newBalance, err := h.walletService.Purchase(r.Context(), user.ID, req.PackageID, req.PaymentMethod)
	if errors.Is(err, services.ErrPackageNotFound) {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid package")
		return
	}
	if err != nil {
		log.Printf("Error purchasing coins: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Purchase successful",
		"transaction": receipt,
		"newBalance":  newBalance,
	})
}

type EarnRequest struct {
	Activity string `json:"activity"`
}

func (h *VibeHandler) Earn(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req EarnRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid request body")
		return
	}

	earned, newBalance, err := h.walletService.Earn(r.Context(), user.ID, req.Activity)
	if errors.Is(err, services.ErrUnknownActivity) {
		writeError(w, http.StatusBadRequest, "BadRequest", "Unknown activity")
		return
	}
	if err != nil {
		log.Printf("Error recording earn: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":    "Coins earned",
		"earned":     earned,
		"newBalance": newBalance,
	})
}

type TipRequest struct {
	FeedID  string `json:"feedId"`
	Amount  int64  `json:"amount"`
	Message string `json:"message"`
}

// Tip moves coins from the caller to a feed author. The debit, the tip
// record and the credit land in one transaction.
func (h *VibeHandler) Tip(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req TipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid request body")
		return
	}

	feedID, err := uuid.Parse(req.FeedID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BadRequest", "Invalid feed ID")
		return
	}
	if req.Amount < minTipAmount || req.Amount > maxTipAmount {
		writeError(w, http.StatusBadRequest, "BadRequest", "Tip amount must be between 1 and 10000")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if len(req.Message) > maxTipMsgLen {
		writeError(w, http.StatusBadRequest, "BadRequest", "Tip message must be at most 100 characters")
		return
	}

	receipt, newBalance, err := h.walletService.Tip(r.Context(), user.ID, feedID, req.Amount, req.Message)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrFeedNotFound):
			writeError(w, http.StatusNotFound, "NotFound", "Feed not found")
		case errors.Is(err, services.ErrCannotTipSelf):
			writeError(w, http.StatusBadRequest, "BadRequest", "You cannot tip your own post")
		case errors.Is(err, services.ErrInsufficientBalance):
			writeError(w, http.StatusBadRequest, "InsufficientBalance", "Not enough Vibe coins")
		default:
			log.Printf("Error sending tip: %v", err)
			writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		}
		return
	}

	if h.notifier != nil {
		authorID := receipt.RecipientID
		amount := receipt.Amount
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			h.notifier.TipReceived(ctx, authorID, user.Username, amount)
		}()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":     "Tip sent",
		"transaction": receipt,
		"newBalance":  newBalance,
	})
}

func (h *VibeHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	limit, offset := parsePagination(r, 20, 100)

	txs, total, err := h.walletService.Transactions(r.Context(), user.ID, limit, offset)
	if err != nil {
		log.Printf("Error listing transactions: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs, "total": total})
}

func (h *VibeHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	limit, _ := parsePagination(r, 10, 50)

	entries, err := h.userService.Leaderboard(r.Context(), limit)
	if err != nil {
		log.Printf("Error loading leaderboard: %v", err)
		writeError(w, http.StatusInternalServerError, "InternalError", "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"leaderboard": entries})
}
