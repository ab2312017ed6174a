package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/modulehub/modulehub/internal/models"
	"github.com/modulehub/modulehub/internal/services"
)

type contextKey int

const identityKey contextKey = iota

// identityFrom returns the authenticated actor, or nil for anonymous
// requests.
func identityFrom(ctx context.Context) *models.Identity {
	identity, _ := ctx.Value(identityKey).(*models.Identity)
	return identity
}

// authenticator resolves a bearer token to an identity on the request
// context. Requests without an Authorization header pass through as
// anonymous; presenting an invalid token is rejected outright.
func authenticator(auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				writeDetail(w, http.StatusUnauthorized, "invalid authorization header")
				return
			}

			identity, err := auth.VerifyAccess(r.Context(), token)
			if err != nil {
				writeDetail(w, http.StatusUnauthorized, "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
