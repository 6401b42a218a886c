package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/socialvibe/socialvibe/internal/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Email:    "alice@example.com",
		Username: "alice",
		IsActive: true,
	}
}

// newRequest builds a request with an optional JSON body and an optional
// authenticated user in the context.
func newRequest(t *testing.T, method, target string, body any, user *models.User) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	r := httptest.NewRequest(method, target, &buf)
	if user != nil {
		r = r.WithContext(SetUserInContext(r.Context(), user))
	}
	return r
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var got map[string]any
	if err := json.NewDecoder(w.Body).Decode(&got); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
	return got
}

func assertStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}

// waitForCall blocks until the mock notifier records a call, or fails the
// test after a short deadline. Notifications run on their own goroutine.
func waitForCall(t *testing.T, n *mockNotifier) string {
	t.Helper()
	select {
	case call := <-n.calls:
		return call
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for notification")
		return ""
	}
}
