package auth

import (
	"context"
	"elsofra/internal/service"
	"encoding/json"
	"net/http"
	"strings"
)

type TokenValidator interface {
	ValidateToken(token string) (*service.AdminClaims, error)
}

type claimsKey struct{}

// AdminAuthMiddleware rejects requests without a valid "Bearer <jwt>" header
// and stores the verified claims in the request context.
func AdminAuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, "missing bearer token")
				return
			}
			claims, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				unauthorized(w, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
		})
	}
}

// AdminFromContext returns the claims set by AdminAuthMiddleware, if any.
func AdminFromContext(ctx context.Context) (*service.AdminClaims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*service.AdminClaims)
	return claims, ok
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg, "code": "unauthorized"})
}
