package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/socialvibe/socialvibe/internal/models"
)

var (
	ErrFeedNotFound     = errors.New("feed not found")
	ErrNotFeedAuthor    = errors.New("only the author can modify a feed")
	ErrFeedAccessDenied = errors.New("feed is not visible to this user")
)

const feedColumns = `f.id, f.author_id, f.content, f.media, f.tags, f.is_public, f.is_edited,
	f.edited_at, f.total_tips, f.view_count, f.status, f.created_at, f.updated_at,
	u.username, u.display_name, u.avatar_url, u.is_verified,
	(SELECT COUNT(*) FROM feed_likes l WHERE l.feed_id = f.id),
	(SELECT COUNT(*) FROM feed_comments c WHERE c.feed_id = f.id)`

// FeedService stores feed entries and their likes, comments and mentions.
// Deletion is a status flip; deleted entries never surface again.
type FeedService struct {
	db DB
}

func NewFeedService(db DB) *FeedService {
	return &FeedService{db: db}
}

func scanFeed(row Row, viewerLiked *bool) (*models.FeedWithAuthor, error) {
	f := &models.FeedWithAuthor{}
	dest := []any{
		&f.ID, &f.AuthorID, &f.Content, &f.Media, &f.Tags, &f.IsPublic, &f.IsEdited,
		&f.EditedAt, &f.TotalTips, &f.ViewCount, &f.Status, &f.CreatedAt, &f.UpdatedAt,
		&f.AuthorUsername, &f.AuthorDisplayName, &f.AuthorAvatarURL, &f.AuthorVerified,
		&f.LikeCount, &f.CommentCount,
	}
	if viewerLiked != nil {
		dest = append(dest, viewerLiked)
	}
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	if viewerLiked != nil {
		f.IsLiked = *viewerLiked
	}
	if f.Media == nil {
		f.Media = []models.MediaItem{}
	}
	if f.Tags == nil {
		f.Tags = []string{}
	}
	return f, nil
}

// Create inserts a feed entry, normalizes tags and records mention rows for
// every resolvable active username.
func (s *FeedService) Create(ctx context.Context, params models.CreateFeedParams) (*models.Feed, error) {
	tags := normalizeTags(params.Tags)
	media := params.Media
	if media == nil {
		media = []models.MediaItem{}
	}

	feed := &models.Feed{
		AuthorID: params.AuthorID,
		Content:  params.Content,
		Media:    media,
		Tags:     tags,
		IsPublic: params.IsPublic,
		Status:   models.FeedStatusActive,
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO feeds (author_id, content, media, tags, is_public)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, total_tips, view_count, created_at, updated_at`,
		params.AuthorID, params.Content, media, tags, params.IsPublic,
	).Scan(&feed.ID, &feed.TotalTips, &feed.ViewCount, &feed.CreatedAt, &feed.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("creating feed: %w", err)
	}

	if len(params.Mentions) > 0 {
		if _, err := s.db.Exec(ctx,
			`INSERT INTO feed_mentions (feed_id, user_id)
			 SELECT $1, id FROM users WHERE username = ANY($2) AND is_active = true
			 ON CONFLICT DO NOTHING`,
			feed.ID, params.Mentions,
		); err != nil {
			return nil, fmt.Errorf("recording mentions: %w", err)
		}
	}

	return feed, nil
}

// Get returns one feed entry if the viewer may see it and bumps its view
// count. A nil viewerID means an anonymous request.
func (s *FeedService) Get(ctx context.Context, feedID uuid.UUID, viewerID *uuid.UUID) (*models.FeedWithAuthor, error) {
	var liked bool
	var row Row
	if viewerID != nil {
		row = s.db.QueryRow(ctx,
			`SELECT `+feedColumns+`,
			        EXISTS(SELECT 1 FROM feed_likes l WHERE l.feed_id = f.id AND l.user_id = $2)
			 FROM feeds f JOIN users u ON u.id = f.author_id
			 WHERE f.id = $1`,
			feedID, *viewerID,
		)
	} else {
		row = s.db.QueryRow(ctx,
			`SELECT `+feedColumns+`, false
			 FROM feeds f JOIN users u ON u.id = f.author_id
			 WHERE f.id = $1`,
			feedID,
		)
	}

	feed, err := scanFeed(row, &liked)
	if isNoRows(err) {
		return nil, ErrFeedNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting feed: %w", err)
	}

	if feed.Status != models.FeedStatusActive {
		return nil, ErrFeedNotFound
	}
	if !feed.IsPublic && (viewerID == nil || *viewerID != feed.AuthorID) {
		return nil, ErrFeedAccessDenied
	}

	if _, err := s.db.Exec(ctx,
		`UPDATE feeds SET view_count = view_count + 1 WHERE id = $1`, feedID,
	); err != nil {
		return nil, fmt.Errorf("bumping view count: %w", err)
	}
	feed.ViewCount++

	return feed, nil
}

// ListVisible pages through the entries the viewer may see: their own and
// their friends' when authenticated, public entries otherwise.
func (s *FeedService) ListVisible(ctx context.Context, viewerID *uuid.UUID, limit, offset int) ([]models.FeedWithAuthor, int, error) {
	var (
		rows  Rows
		total int
		err   error
	)

	if viewerID != nil {
		visible := `f.status = 'active' AND (
			f.author_id = $1
			OR EXISTS(SELECT 1 FROM friend_edges e WHERE e.owner_id = $1 AND e.friend_id = f.author_id)
		)`
		if err = s.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM feeds f WHERE `+visible, *viewerID,
		).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("counting feeds: %w", err)
		}
		rows, err = s.db.Query(ctx,
			`SELECT `+feedColumns+`,
			        EXISTS(SELECT 1 FROM feed_likes l WHERE l.feed_id = f.id AND l.user_id = $1)
			 FROM feeds f JOIN users u ON u.id = f.author_id
			 WHERE `+visible+`
			 ORDER BY f.created_at DESC
			 LIMIT $2 OFFSET $3`,
			*viewerID, limit, offset,
		)
	} else {
		if err = s.db.QueryRow(ctx,
			`SELECT COUNT(*) FROM feeds f WHERE f.status = 'active' AND f.is_public = true`,
		).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("counting feeds: %w", err)
		}
		rows, err = s.db.Query(ctx,
			`SELECT `+feedColumns+`, false
			 FROM feeds f JOIN users u ON u.id = f.author_id
			 WHERE f.status = 'active' AND f.is_public = true
			 ORDER BY f.created_at DESC
			 LIMIT $1 OFFSET $2`,
			limit, offset,
		)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("listing feeds: %w", err)
	}
	defer rows.Close()

	feeds, err := collectFeeds(rows)
	if err != nil {
		return nil, 0, err
	}
	return feeds, total, nil
}

// ListByAuthor pages an author's active entries. Non-public entries are
// included only for the author themselves.
func (s *FeedService) ListByAuthor(ctx context.Context, authorID uuid.UUID, viewerID *uuid.UUID, limit, offset int) ([]models.FeedWithAuthor, int, error) {
	visible := `f.author_id = $1 AND f.status = 'active' AND (f.is_public = true OR f.author_id = $2)`
	viewer := uuid.Nil
	if viewerID != nil {
		viewer = *viewerID
	}

	var total int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM feeds f WHERE `+visible, authorID, viewer,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting author feeds: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+feedColumns+`,
		        EXISTS(SELECT 1 FROM feed_likes l WHERE l.feed_id = f.id AND l.user_id = $2)
		 FROM feeds f JOIN users u ON u.id = f.author_id
		 WHERE `+visible+`
		 ORDER BY f.created_at DESC
		 LIMIT $3 OFFSET $4`,
		authorID, viewer, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing author feeds: %w", err)
	}
	defer rows.Close()

	feeds, err := collectFeeds(rows)
	if err != nil {
		return nil, 0, err
	}
	return feeds, total, nil
}

func collectFeeds(rows Rows) ([]models.FeedWithAuthor, error) {
	feeds := []models.FeedWithAuthor{}
	for rows.Next() {
		var liked bool
		feed, err := scanFeed(rows, &liked)
		if err != nil {
			return nil, fmt.Errorf("scanning feed: %w", err)
		}
		feeds = append(feeds, *feed)
	}
	return feeds, rows.Err()
}

type UpdateFeedParams struct {
	Content  *string
	Tags     []string
	IsPublic *bool
}

// Update edits an entry in place and marks it edited.
func (s *FeedService) Update(ctx context.Context, feedID, userID uuid.UUID, params UpdateFeedParams) error {
	if err := s.requireAuthor(ctx, feedID, userID); err != nil {
		return err
	}

	var tags any
	if params.Tags != nil {
		tags = normalizeTags(params.Tags)
	}

	_, err := s.db.Exec(ctx,
		`UPDATE feeds SET
		    content = COALESCE($1, content),
		    tags = COALESCE($2, tags),
		    is_public = COALESCE($3, is_public),
		    is_edited = true,
		    edited_at = NOW(),
		    updated_at = NOW()
		 WHERE id = $4`,
		params.Content, tags, params.IsPublic, feedID,
	)
	if err != nil {
		return fmt.Errorf("updating feed: %w", err)
	}
	return nil
}

// SoftDelete flips the status to deleted; the row and its tip history stay.
func (s *FeedService) SoftDelete(ctx context.Context, feedID, userID uuid.UUID) error {
	if err := s.requireAuthor(ctx, feedID, userID); err != nil {
		return err
	}

	_, err := s.db.Exec(ctx,
		`UPDATE feeds SET status = 'deleted', updated_at = NOW() WHERE id = $1`,
		feedID,
	)
	if err != nil {
		return fmt.Errorf("deleting feed: %w", err)
	}
	return nil
}

func (s *FeedService) requireAuthor(ctx context.Context, feedID, userID uuid.UUID) error {
	var authorID uuid.UUID
	var status models.FeedStatus
	err := s.db.QueryRow(ctx,
		`SELECT author_id, status FROM feeds WHERE id = $1`, feedID,
	).Scan(&authorID, &status)
	if isNoRows(err) {
		return ErrFeedNotFound
	}
	if err != nil {
		return fmt.Errorf("getting feed author: %w", err)
	}
	if status == models.FeedStatusDeleted {
		return ErrFeedNotFound
	}
	if authorID != userID {
		return ErrNotFeedAuthor
	}
	return nil
}

// ToggleLike flips the viewer's like and returns the new state and count.
func (s *FeedService) ToggleLike(ctx context.Context, feedID, userID uuid.UUID) (bool, int, error) {
	if err := s.requireActive(ctx, feedID); err != nil {
		return false, 0, err
	}

	liked := false
	tag, err := s.db.Exec(ctx,
		`DELETE FROM feed_likes WHERE feed_id = $1 AND user_id = $2`,
		feedID, userID,
	)
	if err != nil {
		return false, 0, fmt.Errorf("unliking feed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, err := s.db.Exec(ctx,
			`INSERT INTO feed_likes (feed_id, user_id) VALUES ($1, $2)
			 ON CONFLICT DO NOTHING`,
			feedID, userID,
		); err != nil {
			return false, 0, fmt.Errorf("liking feed: %w", err)
		}
		liked = true
	}

	var count int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM feed_likes WHERE feed_id = $1`, feedID,
	).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("counting likes: %w", err)
	}
	return liked, count, nil
}

// AddComment appends a comment to an active entry.
func (s *FeedService) AddComment(ctx context.Context, feedID uuid.UUID, author *models.User, content string) (*models.FeedComment, error) {
	if err := s.requireActive(ctx, feedID); err != nil {
		return nil, err
	}

	comment := &models.FeedComment{
		FeedID:    feedID,
		UserID:    author.ID,
		Username:  author.Username,
		AvatarURL: author.AvatarURL,
		Content:   content,
	}
	err := s.db.QueryRow(ctx,
		`INSERT INTO feed_comments (feed_id, user_id, content)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		feedID, author.ID, content,
	).Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("adding comment: %w", err)
	}
	return comment, nil
}

// ListComments pages an entry's comments, newest first.
func (s *FeedService) ListComments(ctx context.Context, feedID uuid.UUID, limit, offset int) ([]models.FeedComment, int, error) {
	if err := s.requireActive(ctx, feedID); err != nil {
		return nil, 0, err
	}

	var total int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM feed_comments WHERE feed_id = $1`, feedID,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting comments: %w", err)
	}

	rows, err := s.db.Query(ctx,
		`SELECT c.id, c.feed_id, c.user_id, u.username, u.avatar_url, c.content, c.created_at
		 FROM feed_comments c JOIN users u ON u.id = c.user_id
		 WHERE c.feed_id = $1
		 ORDER BY c.created_at DESC
		 LIMIT $2 OFFSET $3`,
		feedID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	comments := []models.FeedComment{}
	for rows.Next() {
		var c models.FeedComment
		if err := rows.Scan(&c.ID, &c.FeedID, &c.UserID, &c.Username, &c.AvatarURL, &c.Content, &c.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("scanning comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, total, rows.Err()
}

func (s *FeedService) requireActive(ctx context.Context, feedID uuid.UUID) error {
	var status models.FeedStatus
	err := s.db.QueryRow(ctx,
		`SELECT status FROM feeds WHERE id = $1`, feedID,
	).Scan(&status)
	if isNoRows(err) {
		return ErrFeedNotFound
	}
	if err != nil {
		return fmt.Errorf("checking feed status: %w", err)
	}
	if status != models.FeedStatusActive {
		return ErrFeedNotFound
	}
	return nil
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := []string{}
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(t, "#")))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
