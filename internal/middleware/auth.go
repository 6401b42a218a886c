package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/socialvibe/socialvibe/internal/handlers"
	"github.com/socialvibe/socialvibe/internal/models"
	"github.com/socialvibe/socialvibe/internal/services"
)

var (
	errNoToken         = errors.New("no bearer token")
	errAccountDisabled = errors.New("account disabled")
)

type AuthMiddleware struct {
	authService services.AuthServiceInterface
	userService services.UserServiceInterface
}

func NewAuthMiddleware(authService services.AuthServiceInterface, userService services.UserServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		userService: userService,
	}
}

func (m *AuthMiddleware) resolveUser(r *http.Request) (*models.User, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return nil, errNoToken
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, errNoToken
	}

	userID, err := m.authService.ParseToken(token)
	if err != nil {
		return nil, err
	}

	user, err := m.userService.GetByID(r.Context(), userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, errAccountDisabled
	}
	return user, nil
}

// Authenticate adds the user to the request context when a valid token is
// present. Requests without one pass through untouched.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolveUser(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := handlers.SetUserInContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAuth rejects requests without a valid token.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, err := m.resolveUser(r)
		if err != nil {
			writeAuthError(w, err)
			return
		}

		ctx := handlers.SetUserInContext(r.Context(), user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func writeAuthError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)

	switch {
	case errors.Is(err, services.ErrTokenExpired):
		w.Write([]byte(`{"error":"TokenExpired","message":"Token has expired"}`))
	case errors.Is(err, services.ErrTokenInvalid):
		w.Write([]byte(`{"error":"InvalidToken","message":"Token is invalid"}`))
	case errors.Is(err, errAccountDisabled):
		w.Write([]byte(`{"error":"AccountDisabled","message":"Account has been disabled"}`))
	case errors.Is(err, services.ErrUserNotFound):
		w.Write([]byte(`{"error":"InvalidToken","message":"Token is invalid"}`))
	default:
		w.Write([]byte(`{"error":"Unauthorized","message":"Authentication required"}`))
	}
}
