package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/socialvibe/socialvibe/internal/models"
	"github.com/socialvibe/socialvibe/internal/services"
)

// Function-field mocks; tests wire only what the handler under test calls.

type mockUserService struct {
	CreateFunc           func(ctx context.Context, params models.CreateUserParams) (*models.User, error)
	GetByIDFunc          func(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmailFunc       func(ctx context.Context, email string) (*models.User, error)
	GetByUsernameFunc    func(ctx context.Context, username string) (*models.User, error)
	GetPublicProfileFunc func(ctx context.Context, username string) (*models.PublicProfile, error)
	UpdateProfileFunc    func(ctx context.Context, userID uuid.UUID, params services.UpdateProfileParams) (*models.User, error)
	UpdatePasswordFunc   func(ctx context.Context, userID uuid.UUID, newPasswordHash string) error
	UpdateLastLoginFunc  func(ctx context.Context, userID uuid.UUID) error
	SearchFunc           func(ctx context.Context, query string, limit int) ([]models.UserSearchResult, error)
	FollowFunc           func(ctx context.Context, followerID, followeeID uuid.UUID) error
	UnfollowFunc         func(ctx context.Context, followerID, followeeID uuid.UUID) error
	ListFollowersFunc    func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSearchResult, error)
	ListFollowingFunc    func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSearchResult, error)
	DeactivateFunc       func(ctx context.Context, userID uuid.UUID) error
	LeaderboardFunc      func(ctx context.Context, limit int) ([]models.LeaderboardEntry, error)
}

func (m *mockUserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	return m.CreateFunc(ctx, params)
}

func (m *mockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return m.GetByIDFunc(ctx, id)
}

func (m *mockUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return m.GetByEmailFunc(ctx, email)
}

func (m *mockUserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return m.GetByUsernameFunc(ctx, username)
}

func (m *mockUserService) GetPublicProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	return m.GetPublicProfileFunc(ctx, username)
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID uuid.UUID, params services.UpdateProfileParams) (*models.User, error) {
	return m.UpdateProfileFunc(ctx, userID, params)
}

func (m *mockUserService) UpdatePassword(ctx context.Context, userID uuid.UUID, newPasswordHash string) error {
	return m.UpdatePasswordFunc(ctx, userID, newPasswordHash)
}

func (m *mockUserService) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	if m.UpdateLastLoginFunc == nil {
		return nil
	}
	return m.UpdateLastLoginFunc(ctx, userID)
}

func (m *mockUserService) Search(ctx context.Context, query string, limit int) ([]models.UserSearchResult, error) {
	return m.SearchFunc(ctx, query, limit)
}

func (m *mockUserService) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return m.FollowFunc(ctx, followerID, followeeID)
}

func (m *mockUserService) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	return m.UnfollowFunc(ctx, followerID, followeeID)
}

func (m *mockUserService) ListFollowers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSearchResult, error) {
	return m.ListFollowersFunc(ctx, userID, limit, offset)
}

func (m *mockUserService) ListFollowing(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSearchResult, error) {
	return m.ListFollowingFunc(ctx, userID, limit, offset)
}

func (m *mockUserService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	return m.DeactivateFunc(ctx, userID)
}

func (m *mockUserService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	return m.LeaderboardFunc(ctx, limit)
}

type mockAuthService struct {
	HashPasswordFunc   func(password string) (string, error)
	VerifyPasswordFunc func(hash, password string) bool
	IssueTokenFunc     func(userID uuid.UUID) (string, error)
	ParseTokenFunc     func(tokenString string) (uuid.UUID, error)
}

func (m *mockAuthService) HashPassword(password string) (string, error) {
	if m.HashPasswordFunc == nil {
		return "hashed:" + password, nil
	}
	return m.HashPasswordFunc(password)
}

func (m *mockAuthService) VerifyPassword(hash, password string) bool {
	if m.VerifyPasswordFunc == nil {
		return hash == "hashed:"+password
	}
	return m.VerifyPasswordFunc(hash, password)
}

func (m *mockAuthService) IssueToken(userID uuid.UUID) (string, error) {
	if m.IssueTokenFunc == nil {
		return "token-" + userID.String(), nil
	}
	return m.IssueTokenFunc(userID)
}

func (m *mockAuthService) ParseToken(tokenString string) (uuid.UUID, error) {
	return m.ParseTokenFunc(tokenString)
}

type mockFriendCodeService struct {
	EnsureCodeFunc func(ctx context.Context, userID uuid.UUID) (string, error)
	RegenerateFunc func(ctx context.Context, userID uuid.UUID) (string, error)
}

func (m *mockFriendCodeService) EnsureCode(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.EnsureCodeFunc(ctx, userID)
}

func (m *mockFriendCodeService) Regenerate(ctx context.Context, userID uuid.UUID) (string, error) {
	return m.RegenerateFunc(ctx, userID)
}

type mockFriendService struct {
	SubmitRequestFunc    func(ctx context.Context, requester *models.User, code string) (*models.FriendRequest, error)
	ListIncomingFunc     func(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error)
	CountIncomingFunc    func(ctx context.Context, userID uuid.UUID) (int, error)
	AcceptFunc           func(ctx context.Context, requestID, actorID uuid.UUID) (*models.FriendRequest, error)
	RejectFunc           func(ctx context.Context, requestID, actorID uuid.UUID) error
	ListFriendsFunc      func(ctx context.Context, userID uuid.UUID) ([]models.FriendEdge, error)
	RemoveFriendshipFunc func(ctx context.Context, userID, friendID uuid.UUID) error
}

func (m *mockFriendService) SubmitRequest(ctx context.Context, requester *models.User, code string) (*models.FriendRequest, error) {
	return m.SubmitRequestFunc(ctx, requester, code)
}

func (m *mockFriendService) ListIncoming(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error) {
	return m.ListIncomingFunc(ctx, userID)
}

func (m *mockFriendService) CountIncoming(ctx context.Context, userID uuid.UUID) (int, error) {
	return m.CountIncomingFunc(ctx, userID)
}

func (m *mockFriendService) Accept(ctx context.Context, requestID, actorID uuid.UUID) (*models.FriendRequest, error) {
	return m.AcceptFunc(ctx, requestID, actorID)
}

func (m *mockFriendService) Reject(ctx context.Context, requestID, actorID uuid.UUID) error {
	return m.RejectFunc(ctx, requestID, actorID)
}

func (m *mockFriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendEdge, error) {
	return m.ListFriendsFunc(ctx, userID)
}

func (m *mockFriendService) RemoveFriendship(ctx context.Context, userID, friendID uuid.UUID) error {
	return m.RemoveFriendshipFunc(ctx, userID, friendID)
}

type mockWalletService struct {
	BalanceFunc      func(ctx context.Context, userID uuid.UUID) (int64, error)
	CreditFunc       func(ctx context.Context, userID uuid.UUID, amount int64, txType, description string) (int64, error)
	DebitFunc        func(ctx context.Context, userID uuid.UUID, amount int64, txType, description string) (int64, error)
	PurchaseFunc     func(ctx context.Context, userID uuid.UUID, packageID int, paymentMethod string) (*models.PurchaseReceipt, int64, error)
	EarnFunc         func(ctx context.Context, userID uuid.UUID, activity string) (int64, int64, error)
	TipFunc          func(ctx context.Context, tipperID, feedID uuid.UUID, amount int64, message string) (*models.TipReceipt, int64, error)
	TransactionsFunc func(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.CoinTransaction, int, error)
}

func (m *mockWalletService) Balance(ctx context.Context, userID uuid.UUID) (int64, error) {
	return m.BalanceFunc(ctx, userID)
}

func (m *mockWalletService) Credit(ctx context.Context, userID uuid.UUID, amount int64, txType, description string) (int64, error) {
	return m.CreditFunc(ctx, userID, amount, txType, description)
}

func (m *mockWalletService) Debit(ctx context.Context, userID uuid.UUID, amount int64, txType, description string) (int64, error) {
	return m.DebitFunc(ctx, userID, amount, txType, description)
}

func (m *mockWalletService) Purchase(ctx context.Context, userID uuid.UUID, packageID int, paymentMethod string) (*models.PurchaseReceipt, int64, error) {
	return m.PurchaseFunc(ctx, userID, packageID, paymentMethod)
}

func (m *mockWalletService) Earn(ctx context.Context, userID uuid.UUID, activity string) (int64, int64, error) {
	return m.EarnFunc(ctx, userID, activity)
}

func (m *mockWalletService) Tip(ctx context.Context, tipperID, feedID uuid.UUID, amount int64, message string) (*models.TipReceipt, int64, error) {
	return m.TipFunc(ctx, tipperID, feedID, amount, message)
}

func (m *mockWalletService) Transactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.CoinTransaction, int, error) {
	return m.TransactionsFunc(ctx, userID, limit, offset)
}

type mockFeedService struct {
	CreateFunc       func(ctx context.Context, params models.CreateFeedParams) (*models.Feed, error)
	GetFunc          func(ctx context.Context, feedID uuid.UUID, viewerID *uuid.UUID) (*models.FeedWithAuthor, error)
	ListVisibleFunc  func(ctx context.Context, viewerID *uuid.UUID, limit, offset int) ([]models.FeedWithAuthor, int, error)
	ListByAuthorFunc func(ctx context.Context, authorID uuid.UUID, viewerID *uuid.UUID, limit, offset int) ([]models.FeedWithAuthor, int, error)
	UpdateFunc       func(ctx context.Context, feedID, userID uuid.UUID, params services.UpdateFeedParams) error
	SoftDeleteFunc   func(ctx context.Context, feedID, userID uuid.UUID) error
	ToggleLikeFunc   func(ctx context.Context, feedID, userID uuid.UUID) (bool, int, error)
	AddCommentFunc   func(ctx context.Context, feedID uuid.UUID, author *models.User, content string) (*models.FeedComment, error)
	ListCommentsFunc func(ctx context.Context, feedID uuid.UUID, limit, offset int) ([]models.FeedComment, int, error)
}

func (m *mockFeedService) Create(ctx context.Context, params models.CreateFeedParams) (*models.Feed, error) {
	return m.CreateFunc(ctx, params)
}

func (m *mockFeedService) Get(ctx context.Context, feedID uuid.UUID, viewerID *uuid.UUID) (*models.FeedWithAuthor, error) {
	return m.GetFunc(ctx, feedID, viewerID)
}

func (m *mockFeedService) ListVisible(ctx context.Context, viewerID *uuid.UUID, limit, offset int) ([]models.FeedWithAuthor, int, error) {
	return m.ListVisibleFunc(ctx, viewerID, limit, offset)
}

func (m *mockFeedService) ListByAuthor(ctx context.Context, authorID uuid.UUID, viewerID *uuid.UUID, limit, offset int) ([]models.FeedWithAuthor, int, error) {
	return m.ListByAuthorFunc(ctx, authorID, viewerID, limit, offset)
}

func (m *mockFeedService) Update(ctx context.Context, feedID, userID uuid.UUID, params services.UpdateFeedParams) error {
	return m.UpdateFunc(ctx, feedID, userID, params)
}

func (m *mockFeedService) SoftDelete(ctx context.Context, feedID, userID uuid.UUID) error {
	return m.SoftDeleteFunc(ctx, feedID, userID)
}

func (m *mockFeedService) ToggleLike(ctx context.Context, feedID, userID uuid.UUID) (bool, int, error) {
	return m.ToggleLikeFunc(ctx, feedID, userID)
}

func (m *mockFeedService) AddComment(ctx context.Context, feedID uuid.UUID, author *models.User, content string) (*models.FeedComment, error) {
	return m.AddCommentFunc(ctx, feedID, author, content)
}

func (m *mockFeedService) ListComments(ctx context.Context, feedID uuid.UUID, limit, offset int) ([]models.FeedComment, int, error) {
	return m.ListCommentsFunc(ctx, feedID, limit, offset)
}

// mockNotifier records calls; notifications run async so tests use a channel.
type mockNotifier struct {
	calls chan string
}

func newMockNotifier() *mockNotifier {
	return &mockNotifier{calls: make(chan string, 8)}
}

func (m *mockNotifier) FriendRequestReceived(ctx context.Context, targetID uuid.UUID, fromUsername string) {
	m.calls <- "request:" + fromUsername
}

func (m *mockNotifier) FriendRequestAccepted(ctx context.Context, requesterID uuid.UUID, byUsername string) {
	m.calls <- "accepted:" + byUsername
}

func (m *mockNotifier) TipReceived(ctx context.Context, authorID uuid.UUID, fromUsername string, amount int64) {
	m.calls <- "tip:" + fromUsername
}
