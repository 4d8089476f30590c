package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/kalakriti/pkg/auth"
	"github.com/shashiranjanraj/kalakriti/pkg/response"
)

// claimsKey is the unexported context key for the authenticated claims.
type claimsKey struct{}

// Auth validates the Bearer token and stores the claims in the request
// context for downstream handlers and the capability middleware.
func Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if token == "" || token == r.Header.Get("Authorization") {
			response.Unauthorized(w)
			return
		}

		claims, err := auth.ValidateToken(token)
		if err != nil {
			response.Unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey{}, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClaimsFromCtx returns the authenticated claims stored by Auth.
func ClaimsFromCtx(ctx context.Context) (*auth.Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*auth.Claims)
	return claims, ok
}

// UserIDFromCtx returns the authenticated user's id stored by Auth.
func UserIDFromCtx(ctx context.Context) (string, bool) {
	if claims, ok := ClaimsFromCtx(ctx); ok {
		return claims.UserID, true
	}
	return "", false
}

// WithClaims stores claims directly into ctx. Intended for handler tests.
func WithClaims(ctx context.Context, claims *auth.Claims) context.Context {
	return context.WithValue(ctx, claimsKey{}, claims)
}
