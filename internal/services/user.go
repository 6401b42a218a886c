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
	ErrUserNotFound          = errors.New("user not found")
	ErrEmailAlreadyExists    = errors.New("email already exists")
	ErrUsernameAlreadyExists = errors.New("username already exists")
	ErrCannotFollowSelf      = errors.New("cannot follow yourself")
)

const userColumns = `id, email, username, password_hash, display_name, avatar_url, bio,
	vibe_coins, friend_code, is_verified, is_active, preferences, last_login_at, created_at, updated_at`

type UserService struct {
	db DB
}

func NewUserService(db DB) *UserService {
	return &UserService{db: db}
}

func scanUser(row Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.DisplayName,
		&user.AvatarURL, &user.Bio, &user.VibeCoins, &user.FriendCode, &user.IsVerified,
		&user.IsActive, &user.Preferences, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if isNoRows(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning user: %w", err)
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	username := strings.TrimSpace(params.Username)

	var emailTaken, usernameTaken bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE email = $1), EXISTS(SELECT 1 FROM users WHERE username = $2)`,
		email, username,
	).Scan(&emailTaken, &usernameTaken)
	if err != nil {
		return nil, fmt.Errorf("checking user existence: %w", err)
	}
	if emailTaken {
		return nil, ErrEmailAlreadyExists
	}
	if usernameTaken {
		return nil, ErrUsernameAlreadyExists
	}

	user := &models.User{}
	err = s.db.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash, display_name, preferences)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+userColumns,
		email, username, params.PasswordHash, params.DisplayName, models.DefaultPreferences(),
	).Scan(
		&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.DisplayName,
		&user.AvatarURL, &user.Bio, &user.VibeCoins, &user.FriendCode, &user.IsVerified,
		&user.IsActive, &user.Preferences, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		// The pre-check races with concurrent signups; the unique indexes decide.
		if isUniqueViolation(err) {
			if strings.Contains(constraintName(err), "username") {
				return nil, ErrUsernameAlreadyExists
			}
			return nil, ErrEmailAlreadyExists
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		strings.ToLower(strings.TrimSpace(email)),
	))
}

func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1 AND is_active = true`, username,
	))
}

// GetPublicProfile returns the profile view of a user plus follow counts.
func (s *UserService) GetPublicProfile(ctx context.Context, username string) (*models.PublicProfile, error) {
	profile := &models.PublicProfile{}
	err := s.db.QueryRow(ctx,
		`SELECT u.id, u.username, u.display_name, u.avatar_url, u.bio, u.is_verified,
		        (SELECT COUNT(*) FROM user_follows f WHERE f.followee_id = u.id),
		        (SELECT COUNT(*) FROM user_follows f WHERE f.follower_id = u.id),
		        u.created_at
		 FROM users u WHERE u.username = $1 AND u.is_active = true`,
		username,
	).Scan(
		&profile.ID, &profile.Username, &profile.DisplayName, &profile.AvatarURL,
		&profile.Bio, &profile.IsVerified, &profile.FollowerCount, &profile.FollowingCount,
		&profile.CreatedAt,
	)
	if isNoRows(err) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return profile, nil
}

type UpdateProfileParams struct {
	DisplayName *string
	Bio         *string
	AvatarURL   *string
	Preferences *models.Preferences
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, params UpdateProfileParams) (*models.User, error) {
	user, err := scanUser(s.db.QueryRow(ctx,
		`UPDATE users SET
		    display_name = COALESCE($1, display_name),
		    bio = COALESCE($2, bio),
		    avatar_url = COALESCE($3, avatar_url),
		    preferences = COALESCE($4, preferences),
		    updated_at = NOW()
		 WHERE id = $5 AND is_active = true
		 RETURNING `+userColumns,
		params.DisplayName, params.Bio, params.AvatarURL, params.Preferences, userID,
	))
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, newPasswordHash string) error {
	result, err := s.db.Exec(ctx,
		`UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2 AND is_active = true`,
		newPasswordHash, userID,
	)
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UserService) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID,
	)
	if err != nil {
		return fmt.Errorf("updating last login: %w", err)
	}
	return nil
}

func (s *UserService) Search(ctx context.Context, query string, limit int) ([]models.UserSearchResult, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, username, display_name, avatar_url
		 FROM users
		 WHERE (username ILIKE $1 OR display_name ILIKE $1) AND is_active = true
		 ORDER BY username
		 LIMIT $2`,
		"%"+query+"%", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("searching users: %w", err)
	}
	defer rows.Close()

	results := []models.UserSearchResult{}
	for rows.Next() {
		var r models.UserSearchResult
		if err := rows.Scan(&r.ID, &r.Username, &r.DisplayName, &r.AvatarURL); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

func (s *UserService) Follow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	if followerID == followeeID {
		return ErrCannotFollowSelf
	}

	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE id = $1 AND is_active = true)`, followeeID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("checking followee: %w", err)
	}
	if !exists {
		return ErrUserNotFound
	}

	_, err = s.db.Exec(ctx,
		`INSERT INTO user_follows (follower_id, followee_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("following user: %w", err)
	}
	return nil
}

func (s *UserService) Unfollow(ctx context.Context, followerID, followeeID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM user_follows WHERE follower_id = $1 AND followee_id = $2`,
		followerID, followeeID,
	)
	if err != nil {
		return fmt.Errorf("unfollowing user: %w", err)
	}
	return nil
}

func (s *UserService) ListFollowers(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSearchResult, error) {
	return s.listFollowEdge(ctx,
		`SELECT u.id, u.username, u.display_name, u.avatar_url
		 FROM user_follows f JOIN users u ON u.id = f.follower_id
		 WHERE f.followee_id = $1 AND u.is_active = true
		 ORDER BY f.created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
}

func (s *UserService) ListFollowing(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.UserSearchResult, error) {
	return s.listFollowEdge(ctx,
		`SELECT u.id, u.username, u.display_name, u.avatar_url
		 FROM user_follows f JOIN users u ON u.id = f.followee_id
		 WHERE f.follower_id = $1 AND u.is_active = true
		 ORDER BY f.created_at DESC
		 LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
}

func (s *UserService) listFollowEdge(ctx context.Context, query string, args ...any) ([]models.UserSearchResult, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing follows: %w", err)
	}
	defer rows.Close()

	users := []models.UserSearchResult{}
	for rows.Next() {
		var u models.UserSearchResult
		if err := rows.Scan(&u.ID, &u.Username, &u.DisplayName, &u.AvatarURL); err != nil {
			return nil, fmt.Errorf("scanning follow row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// Deactivate soft deletes the account and removes its friend graph entries
// in the same transaction so no edge points at a dead account.
func (s *UserService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	tag, err := tx.Exec(ctx,
		`UPDATE users SET is_active = false, friend_code = NULL, updated_at = NOW()
		 WHERE id = $1 AND is_active = true`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("deactivating user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM friend_edges WHERE owner_id = $1 OR friend_id = $1`, userID,
	); err != nil {
		return fmt.Errorf("removing friend edges: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM friend_requests
		 WHERE (requester_id = $1 OR target_id = $1) AND status = 'pending'`,
		userID,
	); err != nil {
		return fmt.Errorf("removing pending requests: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing deactivation: %w", err)
	}
	committed = true
	return nil
}

// Leaderboard ranks active users by coin balance.
func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := s.db.Query(ctx,
		`SELECT username, display_name, avatar_url, vibe_coins
		 FROM users WHERE is_active = true
		 ORDER BY vibe_coins DESC, username
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("loading leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []models.LeaderboardEntry{}
	for rows.Next() {
		var e models.LeaderboardEntry
		if err := rows.Scan(&e.Username, &e.DisplayName, &e.AvatarURL, &e.VibeCoins); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		e.Rank = len(entries) + 1
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
