package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/andreasstove999/ecommerce-system/store-service-go/internal/auth"
)

type TokenVerifier interface {
	Verify(token string) (auth.Principal, error)
}

// Authenticate attaches the principal from a valid bearer token. Requests
// without a token pass through anonymously; an invalid token is rejected.
func Authenticate(verifier TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			p, err := verifier.Verify(strings.TrimSpace(token))
			if err != nil {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRoles rejects anonymous callers with 401 and callers lacking every
// listed role with 403. With no roles it only requires authentication.
func RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := PrincipalFrom(r.Context())
			if !ok {
				writeProblem(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			if len(roles) > 0 && !p.HasAnyRole(roles...) {
				writeProblem(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func WithPrincipal(ctx context.Context, p auth.Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

func PrincipalFrom(ctx context.Context) (auth.Principal, bool) {
	p, ok := ctx.Value(ctxPrincipal).(auth.Principal)
	return p, ok
}
