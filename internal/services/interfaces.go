package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/socialvibe/socialvibe/internal/models"
)

// UserServiceInterface defines the contract for account operations.
type UserServiceInterface interface {
	Create(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetPublicProfile(ctx context.Context, username string) (*models.PublicProfile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*models.User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, newPasswordHash string) error
	UpdateLastLogin(ctx context.Context, userID uuid.UUID) error
	Search(ctx context.Context, query string, limit int) ([]models.UserSearchResult, error)
	Follow(ctx context.Context, followerID, followeeID uuid.UUID) error
	Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error
	ListFollowers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSearchResult, error)
	ListFollowing(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSearchResult, error)
	Deactivate(ctx context.Context, userID uuid.UUID) error
	Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

// AuthServiceInterface defines the contract for credential and token operations.
type AuthServiceInterface interface {
	HashPassword(password string) (string, error)
	VerifyPassword(hash, password string) bool
	IssueToken(userID uuid.UUID) (string, error)
	ParseToken(tokenString string) (uuid.UUID, error)
}

// FriendCodeServiceInterface defines the contract for friend-code allocation.
type FriendCodeServiceInterface interface {
	EnsureCode(ctx context.Context, userID uuid.UUID) (string, error)
	Regenerate(ctx context.Context, userID uuid.UUID) (string, error)
}

// FriendServiceInterface defines the contract for the request lifecycle and
// the friendship graph.
type FriendServiceInterface interface {
	SubmitRequest(ctx context.Context, requester *models.User, code string) (*models.FriendRequest, error)
	ListIncoming(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error)
	CountIncoming(ctx context.Context, userID uuid.UUID) (int, error)
	Accept(ctx context.Context, requestID, actorID uuid.UUID) (*models.FriendRequest, error)
	Reject(ctx context.Context, requestID, actorID uuid.UUID) error
	ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendEdge, error)
	RemoveFriendship(ctx context.Context, userID, friendID uuid.UUID) error
}

// WalletServiceInterface defines the contract for coin movement.
type WalletServiceInterface interface {
	Balance(ctx context.Context, userID uuid.UUID) (int64, error)
	Credit(ctx context.Context, userID uuid.UUID, amount int64, txType, description string) (int64, error)
	Debit(ctx context.Context, userID uuid.UUID, amount int64, txType, description string) (int64, error)
	Purchase(ctx context.Context, userID uuid.UUID, packageID int, paymentMethod string) (*models.PurchaseReceipt, int64, error)
	Earn(ctx context.Context, userID uuid.UUID, activity string) (int64, int64, error)
	Tip(ctx context.Context, tipperID, feedID uuid.UUID, amount int64, message string) (*models.TipReceipt, int64, error)
	Transactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.CoinTransaction, int, error)
}

// FeedServiceInterface defines the contract for feed operations.
type FeedServiceInterface interface {
	Create(ctx context.Context, params models.CreateFeedParams) (*models.Feed, error)
	Get(ctx context.Context, feedID uuid.UUID, viewerID *uuid.UUID) (*models.FeedWithAuthor, error)
	ListVisible(ctx context.Context, viewerID *uuid.UUID, limit, offset int) ([]models.FeedWithAuthor, int, error)
	ListByAuthor(ctx context.Context, authorID uuid.UUID, viewerID *uuid.UUID, limit, offset int) ([]models.FeedWithAuthor, int, error)
	Update(ctx context.Context, feedID, userID uuid.UUID, params UpdateFeedParams) error
	SoftDelete(ctx context.Context, feedID, userID uuid.UUID) error
	ToggleLike(ctx context.Context, feedID, userID uuid.UUID) (bool, int, error)
	AddComment(ctx context.Context, feedID uuid.UUID, author *models.User, content string) (*models.FeedComment, error)
	ListComments(ctx context.Context, feedID uuid.UUID, limit, offset int) ([]models.FeedComment, int, error)
}

// NotifierInterface defines the contract for fire-and-forget notifications.
type NotifierInterface interface {
	FriendRequestReceived(ctx context.Context, targetID uuid.UUID, fromUsername string)
	FriendRequestAccepted(ctx context.Context, requesterID uuid.UUID, byUsername string)
	TipReceived(ctx context.Context, authorID uuid.UUID, fromUsername string, amount int64)
}
