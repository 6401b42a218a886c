package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/socialvibe/socialvibe/internal/models"
)

func testRequester() *models.User {
	return &models.User{
		ID:        uuid.New(),
		Email:     "alice@example.com",
		Username:  "alice",
		AvatarURL: "/uploads/alice.png",
	}
}

func TestSubmitRequest_Success(t *testing.T) {
	requester := testRequester()
	targetID := uuid.New()
	requestID := uuid.New()
	now := time.Now()

	db := &fakeDB{}
	db.QueryRowFunc = func(query string, args []any) Row {
		switch {
		case strings.Contains(query, "WHERE friend_code"):
			if got := args[0].(string); got != "ABCD1234" {
				t.Errorf("expected normalized code ABCD1234, got %q", got)
			}
			return rowFromValues(targetID)
		case strings.Contains(query, "friend_edges"):
			return rowFromValues(false)
		case strings.Contains(query, "status = 'pending'"):
			return rowFromValues(false)
		case strings.Contains(query, "INSERT INTO friend_requests"):
			return rowFromValues(requestID, now, now)
		}
		t.Fatalf("unexpected query: %s", query)
		return nil
	}
	svc := NewFriendService(db)

	request, err := svc.SubmitRequest(context.Background(), requester, "  abcd1234 ")
	if err != nil {
		t.Fatalf("SubmitRequest: %v", err)
	}
	if request.ID != requestID {
		t.Errorf("expected request ID %s, got %s", requestID, request.ID)
	}
	if request.Status != models.FriendRequestPending {
		t.Errorf("expected pending status, got %s", request.Status)
	}
	if request.RequesterUsername != "alice" {
		t.Errorf("expected requester snapshot, got %q", request.RequesterUsername)
	}
}

func TestSubmitRequest_CodeNotFound(t *testing.T) {
	svc := NewFriendService(&fakeDB{})

	_, err := svc.SubmitRequest(context.Background(), testRequester(), "NOPE0000")
	if !errors.Is(err, ErrFriendCodeNotFound) {
		t.Errorf("expected ErrFriendCodeNotFound, got %v", err)
	}
}

func TestSubmitRequest_SelfCode(t *testing.T) {
	requester := testRequester()
	db := &fakeDB{
		QueryRowFunc: func(query string, args []any) Row {
			return rowFromValues(requester.ID)
		},
	}
	svc := NewFriendService(db)

	_, err := svc.SubmitRequest(context.Background(), requester, "SELF0001")
	if !errors.Is(err, ErrCannotFriendSelf) {
		t.Errorf("expected ErrCannotFriendSelf, got %v", err)
	}
}

func TestSubmitRequest_AlreadyFriends(t *testing.T) {
	targetID := uuid.New()
	db := &fakeDB{}
	db.QueryRowFunc = func(query string, args []any) Row {
		switch {
		case strings.Contains(query, "WHERE friend_code"):
			return rowFromValues(targetID)
		case strings.Contains(query, "friend_edges"):
			if !strings.Contains(query, "owner_id = $2 AND friend_id = $1") {
				t.Errorf("expected bidirectional edge check, got %s", query)
			}
			return rowFromValues(true)
		}
		return errRow{errors.New("unexpected query")}
	}
	svc := NewFriendService(db)

	_, err := svc.SubmitRequest(context.Background(), testRequester(), "ABCD1234")
	if !errors.Is(err, ErrAlreadyFriends) {
		t.Errorf("expected ErrAlreadyFriends, got %v", err)
	}
}

func TestSubmitRequest_DuplicateViaInsertRace(t *testing.T) {
	targetID := uuid.New()
	db := &fakeDB{}
	db.QueryRowFunc = func(query string, args []any) Row {
		switch {
		case strings.Contains(query, "WHERE friend_code"):
			return rowFromValues(targetID)
		case strings.Contains(query, "friend_edges"):
			return rowFromValues(false)
		case strings.Contains(query, "status = 'pending'"):
			return rowFromValues(false)
		case strings.Contains(query, "INSERT INTO friend_requests"):
			return errRow{uniqueViolationErr("friend_requests_pending_idx")}
		}
		return errRow{errors.New("unexpected query")}
	}
	svc := NewFriendService(db)

	_, err := svc.SubmitRequest(context.Background(), testRequester(), "ABCD1234")
	if !errors.Is(err, ErrDuplicateRequest) {
		t.Errorf("expected ErrDuplicateRequest, got %v", err)
	}
}

func requestRow(r models.FriendRequest) Row {
	return rowFromValues(
		r.ID, r.RequesterID, r.TargetID, r.RequesterUsername, r.RequesterEmail,
		r.RequesterAvatarURL, string(r.Status), r.CreatedAt, r.UpdatedAt,
	)
}

func TestAccept_CreatesBothEdgesAndCommits(t *testing.T) {
	requesterID := uuid.New()
	targetID := uuid.New()
	request := models.FriendRequest{
		ID:                uuid.New(),
		RequesterID:       requesterID,
		TargetID:          targetID,
		RequesterUsername: "alice",
		Status:            models.FriendRequestPending,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	var tx *fakeTx
	db := &fakeDB{}
	db.BeginFunc = func() (Tx, error) {
		tx = &fakeTx{db: db}
		return tx, nil
	}
	db.QueryRowFunc = func(query string, args []any) Row {
		switch {
		case strings.Contains(query, "FOR UPDATE"):
			return rowFromValues(string(models.FriendRequestPending))
		case strings.Contains(query, "FROM friend_requests WHERE id"):
			return requestRow(request)
		case strings.Contains(query, "FROM users WHERE id"):
			return rowFromValues("name", "Name", "name@example.com", "", "")
		}
		return errRow{errors.New("unexpected query: " + query)}
	}
	svc := NewFriendService(db)

	accepted, err := svc.Accept(context.Background(), request.ID, targetID)
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if accepted.Status != models.FriendRequestAccepted {
		t.Errorf("expected accepted status, got %s", accepted.Status)
	}
	if !tx.committed {
		t.Error("expected transaction commit")
	}

	edgeInserts := 0
	statusUpdates := 0
	for _, q := range db.execs {
		if strings.Contains(q, "INSERT INTO friend_edges") {
			edgeInserts++
		}
		if strings.Contains(q, "status = 'accepted'") {
			statusUpdates++
		}
	}
	if edgeInserts != 2 {
		t.Errorf("expected exactly 2 edge inserts, got %d", edgeInserts)
	}
	if statusUpdates != 1 {
		t.Errorf("expected exactly 1 status update, got %d", statusUpdates)
	}
}

func TestAccept_NotRecipient(t *testing.T) {
	request := models.FriendRequest{
		ID:          uuid.New(),
		RequesterID: uuid.New(),
		TargetID:    uuid.New(),
		Status:      models.FriendRequestPending,
	}
	db := &fakeDB{
		QueryRowFunc: func(query string, args []any) Row {
			return requestRow(request)
		},
	}
	svc := NewFriendService(db)

	_, err := svc.Accept(context.Background(), request.ID, uuid.New())
	if !errors.Is(err, ErrNotRequestRecipient) {
		t.Errorf("expected ErrNotRequestRecipient, got %v", err)
	}
}

func TestAccept_AlreadyProcessed(t *testing.T) {
	targetID := uuid.New()
	request := models.FriendRequest{
		ID:          uuid.New(),
		RequesterID: uuid.New(),
		TargetID:    targetID,
		Status:      models.FriendRequestRejected,
	}
	db := &fakeDB{
		QueryRowFunc: func(query string, args []any) Row {
			return requestRow(request)
		},
	}
	svc := NewFriendService(db)

	_, err := svc.Accept(context.Background(), request.ID, targetID)
	if !errors.Is(err, ErrRequestAlreadyProcessed) {
		t.Errorf("expected ErrRequestAlreadyProcessed, got %v", err)
	}
}

func TestAccept_LosesLockRace(t *testing.T) {
	targetID := uuid.New()
	request := models.FriendRequest{
		ID:          uuid.New(),
		RequesterID: uuid.New(),
		TargetID:    targetID,
		Status:      models.FriendRequestPending,
	}

	var tx *fakeTx
	db := &fakeDB{}
	db.BeginFunc = func() (Tx, error) {
		tx = &fakeTx{db: db}
		return tx, nil
	}
	db.QueryRowFunc = func(query string, args []any) Row {
		switch {
		case strings.Contains(query, "FOR UPDATE"):
			// A concurrent reject got there first
			return rowFromValues(string(models.FriendRequestRejected))
		case strings.Contains(query, "FROM friend_requests WHERE id"):
			return requestRow(request)
		}
		return errRow{errors.New("unexpected query")}
	}
	svc := NewFriendService(db)

	_, err := svc.Accept(context.Background(), request.ID, targetID)
	if !errors.Is(err, ErrRequestAlreadyProcessed) {
		t.Fatalf("expected ErrRequestAlreadyProcessed, got %v", err)
	}
	if !tx.rolledBack {
		t.Error("expected transaction rollback")
	}
	if len(db.execs) != 0 {
		t.Errorf("expected no writes after losing the race, got %v", db.execs)
	}
}

func TestReject_GuardedUpdate(t *testing.T) {
	targetID := uuid.New()
	request := models.FriendRequest{
		ID:          uuid.New(),
		RequesterID: uuid.New(),
		TargetID:    targetID,
		Status:      models.FriendRequestPending,
	}
	db := &fakeDB{
		QueryRowFunc: func(query string, args []any) Row {
			return requestRow(request)
		},
	}
	svc := NewFriendService(db)

	if err := svc.Reject(context.Background(), request.ID, targetID); err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if len(db.execs) != 1 || !strings.Contains(db.execs[0], "status = 'pending'") {
		t.Errorf("expected guarded UPDATE, got %v", db.execs)
	}
}

func TestReject_RaceReturnsAlreadyProcessed(t *testing.T) {
	targetID := uuid.New()
	request := models.FriendRequest{
		ID:          uuid.New(),
		RequesterID: uuid.New(),
		TargetID:    targetID,
		Status:      models.FriendRequestPending,
	}
	db := &fakeDB{
		QueryRowFunc: func(query string, args []any) Row {
			return requestRow(request)
		},
		ExecFunc: func(query string, args []any) (CommandTag, error) {
			return fakeCommandTag{0}, nil
		},
	}
	svc := NewFriendService(db)

	err := svc.Reject(context.Background(), request.ID, targetID)
	if !errors.Is(err, ErrRequestAlreadyProcessed) {
		t.Errorf("expected ErrRequestAlreadyProcessed, got %v", err)
	}
}

func TestListFriends_EmptyIsNotNil(t *testing.T) {
	svc := NewFriendService(&fakeDB{})

	friends, err := svc.ListFriends(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("ListFriends: %v", err)
	}
	if friends == nil {
		t.Error("expected empty slice, got nil")
	}
	if len(friends) != 0 {
		t.Errorf("expected no friends, got %d", len(friends))
	}
}

func TestRemoveFriendship_Idempotent(t *testing.T) {
	db := &fakeDB{
		ExecFunc: func(query string, args []any) (CommandTag, error) {
			return fakeCommandTag{0}, nil
		},
	}
	svc := NewFriendService(db)

	if err := svc.RemoveFriendship(context.Background(), uuid.New(), uuid.New()); err != nil {
		t.Errorf("expected idempotent removal, got %v", err)
	}
}

func TestAreFriends_ChecksBothDirections(t *testing.T) {
	db := &fakeDB{
		QueryRowFunc: func(query string, args []any) Row {
			if !strings.Contains(query, "owner_id = $2 AND friend_id = $1") {
				t.Errorf("expected bidirectional check, got %s", query)
			}
			return rowFromValues(true)
		},
	}
	svc := NewFriendService(db)

	ok, err := svc.AreFriends(context.Background(), uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("AreFriends: %v", err)
	}
	if !ok {
		t.Error("expected friends")
	}
}
