package models

import (
	"time"

	"github.com/google/uuid"
)

type FeedStatus string

const (
	FeedStatusActive  FeedStatus = "active"
	FeedStatusHidden  FeedStatus = "hidden"
	FeedStatusDeleted FeedStatus = "deleted"
)

// MediaItem is one attachment on a feed entry; the slice is stored as JSONB.
type MediaItem struct {
	URL       string `json:"url"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Width     int    `json:"width,omitempty"`
	Height    int    `json:"height,omitempty"`
}

type Feed struct {
	ID        uuid.UUID   `json:"id"`
	AuthorID  uuid.UUID   `json:"author_id"`
	Content   string      `json:"content"`
	Media     []MediaItem `json:"media"`
	Tags      []string    `json:"tags"`
	IsPublic  bool        `json:"is_public"`
	IsEdited  bool        `json:"is_edited"`
	EditedAt  *time.Time  `json:"edited_at,omitempty"`
	TotalTips int64       `json:"total_tips"`
	ViewCount int64       `json:"view_count"`
	Status    FeedStatus  `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// FeedWithAuthor joins the author's profile and the viewer-dependent
// like/comment aggregates onto a feed entry.
type FeedWithAuthor struct {
	Feed
	AuthorUsername    string `json:"author_username"`
	AuthorDisplayName string `json:"author_display_name"`
	AuthorAvatarURL   string `json:"author_avatar_url"`
	AuthorVerified    bool   `json:"author_verified"`
	LikeCount         int    `json:"like_count"`
	CommentCount      int    `json:"comment_count"`
	IsLiked           bool   `json:"is_liked"`
}

type CreateFeedParams struct {
	AuthorID uuid.UUID
	Content  string
	Media    []MediaItem
	Tags     []string
	Mentions []string // usernames, resolved to active users on insert
	IsPublic bool
}

type FeedComment struct {
	ID        uuid.UUID `json:"id"`
	FeedID    uuid.UUID `json:"feed_id"`
	UserID    uuid.UUID `json:"user_id"`
	Username  string    `json:"username"`
	AvatarURL string    `json:"avatar_url"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedTip struct {
	ID        uuid.UUID `json:"id"`
	FeedID    uuid.UUID `json:"feed_id"`
	TipperID  uuid.UUID `json:"tipper_id"`
	Amount    int64     `json:"amount"`
	Message   string    `json:"message,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
