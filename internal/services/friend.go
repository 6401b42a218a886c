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
	ErrFriendCodeNotFound      = errors.New("friend code not found")
	ErrCannotFriendSelf        = errors.New("cannot send a friend request to yourself")
	ErrAlreadyFriends          = errors.New("users are already friends")
	ErrDuplicateRequest        = errors.New("a pending request already exists")
	ErrRequestNotFound         = errors.New("friend request not found")
	ErrNotRequestRecipient     = errors.New("only the recipient can act on a request")
	ErrRequestAlreadyProcessed = errors.New("friend request was already processed")
)

// FriendService owns the request lifecycle and the materialized friendship
// edges. Requests move pending -> accepted/rejected exactly once; accepting
// one writes both directed edges in a single transaction.
type FriendService struct {
	db DB
}

func NewFriendService(db DB) *FriendService {
	return &FriendService{db: db}
}

// SubmitRequest creates a pending request from requester to the owner of
// code. The requester's profile is snapshotted onto the request row.
func (s *FriendService) SubmitRequest(ctx context.Context, requester *models.User, code string) (*models.FriendRequest, error) {
	code = strings.ToUpper(strings.TrimSpace(code))

	var targetID uuid.UUID
	err := s.db.QueryRow(ctx,
		`SELECT id FROM users WHERE friend_code = $1 AND is_active = true`,
		code,
	).Scan(&targetID)
	if isNoRows(err) {
		return nil, ErrFriendCodeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("resolving friend code: %w", err)
	}

	if targetID == requester.ID {
		return nil, ErrCannotFriendSelf
	}

	alreadyFriends, err := s.AreFriends(ctx, requester.ID, targetID)
	if err != nil {
		return nil, err
	}
	if alreadyFriends {
		return nil, ErrAlreadyFriends
	}

	var pendingExists bool
	err = s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friend_requests
			WHERE requester_id = $1 AND target_id = $2 AND status = 'pending'
		)`,
		requester.ID, targetID,
	).Scan(&pendingExists)
	if err != nil {
		return nil, fmt.Errorf("checking pending request: %w", err)
	}
	if pendingExists {
		return nil, ErrDuplicateRequest
	}

	request := &models.FriendRequest{
		RequesterID:        requester.ID,
		TargetID:           targetID,
		RequesterUsername:  requester.Username,
		RequesterEmail:     requester.Email,
		RequesterAvatarURL: requester.AvatarURL,
		Status:             models.FriendRequestPending,
	}
	err = s.db.QueryRow(ctx,
		`INSERT INTO friend_requests (requester_id, target_id, requester_username, requester_email, requester_avatar_url)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		requester.ID, targetID, requester.Username, requester.Email, requester.AvatarURL,
	).Scan(&request.ID, &request.CreatedAt, &request.UpdatedAt)
	if err != nil {
		// The partial unique index closes the race the pre-check leaves open.
		if isUniqueViolation(err) {
			return nil, ErrDuplicateRequest
		}
		return nil, fmt.Errorf("creating friend request: %w", err)
	}

	return request, nil
}

// ListIncoming returns the pending requests addressed to userID, newest first.
func (s *FriendService) ListIncoming(ctx context.Context, userID uuid.UUID) ([]models.FriendRequest, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, requester_id, target_id, requester_username, requester_email,
		        requester_avatar_url, status, created_at, updated_at
		 FROM friend_requests
		 WHERE target_id = $1 AND status = 'pending'
		 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friend requests: %w", err)
	}
	defer rows.Close()

	requests := []models.FriendRequest{}
	for rows.Next() {
		var r models.FriendRequest
		if err := rows.Scan(
			&r.ID, &r.RequesterID, &r.TargetID, &r.RequesterUsername, &r.RequesterEmail,
			&r.RequesterAvatarURL, &r.Status, &r.CreatedAt, &r.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning friend request: %w", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (s *FriendService) CountIncoming(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM friend_requests WHERE target_id = $1 AND status = 'pending'`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting friend requests: %w", err)
	}
	return count, nil
}

func (s *FriendService) getRequestByID(ctx context.Context, requestID uuid.UUID) (*models.FriendRequest, error) {
	r := &models.FriendRequest{}
	err := s.db.QueryRow(ctx,
		`SELECT id, requester_id, target_id, requester_username, requester_email,
		        requester_avatar_url, status, created_at, updated_at
		 FROM friend_requests WHERE id = $1`,
		requestID,
	).Scan(
		&r.ID, &r.RequesterID, &r.TargetID, &r.RequesterUsername, &r.RequesterEmail,
		&r.RequesterAvatarURL, &r.Status, &r.CreatedAt, &r.UpdatedAt,
	)
	if isNoRows(err) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting friend request: %w", err)
	}
	return r, nil
}

// Accept finalizes a pending request addressed to actorID. Both directed
// edges and the status flip commit together, or not at all.
func (s *FriendService) Accept(ctx context.Context, requestID, actorID uuid.UUID) (*models.FriendRequest, error) {
	request, err := s.getRequestByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.TargetID != actorID {
		return nil, ErrNotRequestRecipient
	}
	if request.Status != models.FriendRequestPending {
		return nil, ErrRequestAlreadyProcessed
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback(ctx)
		}
	}()

	// Re-check under lock; a concurrent accept/reject loses here.
	var status models.FriendRequestStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM friend_requests WHERE id = $1 FOR UPDATE`,
		requestID,
	).Scan(&status)
	if isNoRows(err) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("locking friend request: %w", err)
	}
	if status != models.FriendRequestPending {
		return nil, ErrRequestAlreadyProcessed
	}

	type profile struct {
		username    string
		displayName string
		email       string
		avatarURL   string
		bio         string
	}
	readProfile := func(id uuid.UUID) (profile, error) {
		var p profile
		err := tx.QueryRow(ctx,
			`SELECT username, display_name, email, avatar_url, bio
			 FROM users WHERE id = $1 AND is_active = true`,
			id,
		).Scan(&p.username, &p.displayName, &p.email, &p.avatarURL, &p.bio)
		if isNoRows(err) {
			return p, ErrUserNotFound
		}
		if err != nil {
			return p, fmt.Errorf("reading profile: %w", err)
		}
		return p, nil
	}

	requesterProfile, err := readProfile(request.RequesterID)
	if err != nil {
		return nil, err
	}
	targetProfile, err := readProfile(request.TargetID)
	if err != nil {
		return nil, err
	}

	insertEdge := func(ownerID, friendID uuid.UUID, p profile) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO friend_edges (owner_id, friend_id, username, display_name, email, avatar_url, bio)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			ownerID, friendID, p.username, p.displayName, p.email, p.avatarURL, p.bio,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyFriends
			}
			return fmt.Errorf("inserting friend edge: %w", err)
		}
		return nil
	}

	if err := insertEdge(request.TargetID, request.RequesterID, requesterProfile); err != nil {
		return nil, err
	}
	if err := insertEdge(request.RequesterID, request.TargetID, targetProfile); err != nil {
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`UPDATE friend_requests SET status = 'accepted', updated_at = NOW() WHERE id = $1`,
		requestID,
	); err != nil {
		return nil, fmt.Errorf("updating request status: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing accept: %w", err)
	}
	committed = true

	request.Status = models.FriendRequestAccepted
	return request, nil
}

// Reject marks a pending request rejected. No edges are created and the
// terminal status never changes again.
func (s *FriendService) Reject(ctx context.Context, requestID, actorID uuid.UUID) error {
	request, err := s.getRequestByID(ctx, requestID)
	if err != nil {
		return err
	}
	if request.TargetID != actorID {
		return ErrNotRequestRecipient
	}
	if request.Status != models.FriendRequestPending {
		return ErrRequestAlreadyProcessed
	}

	tag, err := s.db.Exec(ctx,
		`UPDATE friend_requests SET status = 'rejected', updated_at = NOW()
		 WHERE id = $1 AND status = 'pending'`,
		requestID,
	)
	if err != nil {
		return fmt.Errorf("rejecting friend request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRequestAlreadyProcessed
	}
	return nil
}

// ListFriends returns userID's friends ordered by snapshot username.
func (s *FriendService) ListFriends(ctx context.Context, userID uuid.UUID) ([]models.FriendEdge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, owner_id, friend_id, username, display_name, email, avatar_url, bio, is_online, created_at
		 FROM friend_edges
		 WHERE owner_id = $1
		 ORDER BY username`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing friends: %w", err)
	}
	defer rows.Close()

	friends := []models.FriendEdge{}
	for rows.Next() {
		var f models.FriendEdge
		if err := rows.Scan(
			&f.ID, &f.OwnerID, &f.FriendID, &f.Username, &f.DisplayName,
			&f.Email, &f.AvatarURL, &f.Bio, &f.IsOnline, &f.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning friend edge: %w", err)
		}
		friends = append(friends, f)
	}
	return friends, rows.Err()
}

// RemoveFriendship deletes both directions of the edge pair. Removing a
// friendship that does not exist is not an error.
func (s *FriendService) RemoveFriendship(ctx context.Context, userID, friendID uuid.UUID) error {
	_, err := s.db.Exec(ctx,
		`DELETE FROM friend_edges
		 WHERE (owner_id = $1 AND friend_id = $2)
		    OR (owner_id = $2 AND friend_id = $1)`,
		userID, friendID,
	)
	if err != nil {
		return fmt.Errorf("removing friendship: %w", err)
	}
	return nil
}

func (s *FriendService) AreFriends(ctx context.Context, a, b uuid.UUID) (bool, error) {
	var exists bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(
			SELECT 1 FROM friend_edges
			WHERE (owner_id = $1 AND friend_id = $2)
			   OR (owner_id = $2 AND friend_id = $1)
		)`,
		a, b,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking friendship: %w", err)
	}
	return exists, nil
}
