package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const (
	// FriendCodeLength is fixed; codes are shared out of band, so they stay
	// short enough to read aloud.
	FriendCodeLength = 8

	friendCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// maxCodeAttempts bounds the collision-retry loop. With 36^8 possible
	// codes, hitting it means something is badly wrong with the store.
	maxCodeAttempts = 20
)

var ErrCodeSpaceExhausted = errors.New("friend code space exhausted")

// FriendCodeService allocates the short codes users share to add friends.
// The partial unique index on users.friend_code is authoritative; the
// existence pre-check only saves round trips.
type FriendCodeService struct {
	db DB
}

func NewFriendCodeService(db DB) *FriendCodeService {
	return &FriendCodeService{db: db}
}

// GenerateFriendCode returns one random candidate code.
func GenerateFriendCode() (string, error) {
	buf := make([]byte, FriendCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating friend code: %w", err)
	}
	for i := range buf {
		buf[i] = friendCodeAlphabet[int(buf[i])%len(friendCodeAlphabet)]
	}
	return string(buf), nil
}

// EnsureCode returns the user's friend code, allocating one on first use.
func (s *FriendCodeService) EnsureCode(ctx context.Context, userID uuid.UUID) (string, error) {
	var code *string
	err := s.db.QueryRow(ctx,
		`SELECT friend_code FROM users WHERE id = $1 AND is_active = true`,
		userID,
	).Scan(&code)
	if isNoRows(err) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading friend code: %w", err)
	}
	if code != nil {
		return *code, nil
	}

	return s.assign(ctx, userID, true)
}

// Regenerate replaces the user's friend code with a fresh one. The old code
// stops resolving immediately.
func (s *FriendCodeService) Regenerate(ctx context.Context, userID uuid.UUID) (string, error) {
	return s.assign(ctx, userID, false)
}

// assign writes a fresh unique code. When onlyIfUnset is true a concurrent
// assignment wins and its code is returned instead.
func (s *FriendCodeService) assign(ctx context.Context, userID uuid.UUID, onlyIfUnset bool) (string, error) {
	query := `UPDATE users SET friend_code = $1, updated_at = NOW() WHERE id = $2 AND is_active = true`
	if onlyIfUnset {
		query += ` AND friend_code IS NULL`
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		candidate, err := GenerateFriendCode()
		if err != nil {
			return "", err
		}

		var taken bool
		err = s.db.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM users WHERE friend_code = $1)`,
			candidate,
		).Scan(&taken)
		if err != nil {
			return "", fmt.Errorf("checking friend code: %w", err)
		}
		if taken {
			continue
		}

		tag, err := s.db.Exec(ctx, query, candidate, userID)
		if err != nil {
			// Lost a race for this candidate; try another.
			if isUniqueViolation(err) {
				continue
			}
			return "", fmt.Errorf("assigning friend code: %w", err)
		}
		if tag.RowsAffected() == 0 {
			if !onlyIfUnset {
				return "", ErrUserNotFound
			}
			// Another request assigned a code first; return theirs.
			var code *string
			err = s.db.QueryRow(ctx,
				`SELECT friend_code FROM users WHERE id = $1 AND is_active = true`,
				userID,
			).Scan(&code)
			if isNoRows(err) || (err == nil && code == nil) {
				return "", ErrUserNotFound
			}
			if err != nil {
				return "", fmt.Errorf("re-reading friend code: %w", err)
			}
			return *code, nil
		}
		return candidate, nil
	}

	return "", ErrCodeSpaceExhausted
}
