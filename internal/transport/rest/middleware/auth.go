package middleware

import (
	"context"
	"net/http"
	"strings"

	"quizclash/internal/service"
)

type contextKey string

const (
	UIDKey         contextKey = "uid"
	DisplayNameKey contextKey = "displayName"
)

// AuthMiddleware provides JWT authentication middleware
type AuthMiddleware struct {
	authSvc *service.AuthService
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(authSvc *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{authSvc: authSvc}
}

// RequireUser validates the player JWT from the Authorization header
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r)
		if token == "" {
			http.Error(w, `{"error":"missing authorization header"}`, http.StatusUnauthorized)
			return
		}

		claims, err := m.authSvc.ValidateUserToken(token)
		if err != nil {
			http.Error(w, `{"error":"invalid or expired token"}`, http.StatusUnauthorized)
			return
		}

		ctx := r.Context()
		ctx = context.WithValue(ctx, UIDKey, claims.UID)
		ctx = context.WithValue(ctx, DisplayNameKey, claims.DisplayName)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUID extracts the authenticated player's uid from context
func GetUID(ctx context.Context) string {
	if v := ctx.Value(UIDKey); v != nil {
		return v.(string)
	}
	return ""
}

// GetDisplayName extracts the authenticated player's display name from context
func GetDisplayName(ctx context.Context) string {
	if v := ctx.Value(DisplayNameKey); v != nil {
		return v.(string)
	}
	return ""
}

func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if auth == "" {
		return ""
	}
	parts := strings.SplitN(auth, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}
