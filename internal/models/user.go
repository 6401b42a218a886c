package models

import (
	"time"

	"github.com/google/uuid"
)

// User is the account record. PasswordHash never serializes; FriendCode is
// nil until the user first asks for one.
type User struct {
	ID           uuid.UUID   `json:"id"`
	Email        string      `json:"email"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	DisplayName  string      `json:"display_name"`
	AvatarURL    string      `json:"avatar_url"`
	Bio          string      `json:"bio"`
	VibeCoins    int64       `json:"vibe_coins"`
	FriendCode   *string     `json:"friend_code,omitempty"`
	IsVerified   bool        `json:"is_verified"`
	IsActive     bool        `json:"is_active"`
	Preferences  Preferences `json:"preferences"`
	LastLoginAt  time.Time   `json:"last_login_at"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

type CreateUserParams struct {
	Email        string
	Username     string
	PasswordHash string
	DisplayName  string
}

// Preferences is stored as a JSONB column.
type Preferences struct {
	Language      string            `json:"language"`
	Notifications NotificationPrefs `json:"notifications"`
	Privacy       PrivacyPrefs      `json:"privacy"`
}

type NotificationPrefs struct {
	Likes    bool `json:"likes"`
	Comments bool `json:"comments"`
	Follows  bool `json:"follows"`
	Tips     bool `json:"tips"`
}

type PrivacyPrefs struct {
	ProfileVisibility string `json:"profile_visibility"` // "public" or "friends"
	ShowEmail         bool   `json:"show_email"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Language: "en",
		Notifications: NotificationPrefs{
			Likes:    true,
			Comments: true,
			Follows:  true,
			Tips:     true,
		},
		Privacy: PrivacyPrefs{
			ProfileVisibility: "public",
			ShowEmail:         false,
		},
	}
}

// PublicProfile is the view of an account exposed to other users.
type PublicProfile struct {
	ID             uuid.UUID `json:"id"`
	Username       string    `json:"username"`
	DisplayName    string    `json:"display_name"`
	AvatarURL      string    `json:"avatar_url"`
	Bio            string    `json:"bio"`
	IsVerified     bool      `json:"is_verified"`
	FollowerCount  int       `json:"follower_count"`
	FollowingCount int       `json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
}

type UserSearchResult struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarURL   string `json:"avatar_url"`
	VibeCoins   int64  `json:"vibe_coins"`
}
