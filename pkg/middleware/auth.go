package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gamevault/storefront/pkg/auth"
	"github.com/gamevault/storefront/pkg/logger"
	"github.com/gamevault/storefront/pkg/response"
)

type authKey int

const (
	userIDKey authKey = iota
	roleKey
)

// Auth requires a valid "Authorization: Bearer <jwt>" header and stores the
// caller's id and role in the request context.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, found := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			response.Unauthorized(w, "Missing bearer token")
			return
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(raw))
		if err != nil {
			logger.WithCtx(r.Context()).Debug("rejected token", "error", err)
			response.Unauthorized(w, "Invalid token")
			return
		}

		ctx := WithIdentity(r.Context(), claims.UserID, claims.Role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// WithIdentity stores an authenticated identity in ctx.
func WithIdentity(ctx context.Context, userID uint, role string) context.Context {
	ctx = context.WithValue(ctx, userIDKey, userID)
	return context.WithValue(ctx, roleKey, role)
}

// UserIDFromCtx returns the id stored by Auth.
func UserIDFromCtx(r *http.Request) (uint, bool) {
	id, ok := r.Context().Value(userIDKey).(uint)
	return id, ok
}

// RoleFromCtx returns the role stored by Auth.
func RoleFromCtx(r *http.Request) (string, bool) {
	role, ok := r.Context().Value(roleKey).(string)
	return role, ok
}
