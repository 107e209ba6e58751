package middleware

import (
	"net/http"
	"strings"

	"steptree/internal/auth"
	"steptree/internal/httputil"
)

// AuthMiddleware validates the bearer token on every request except the
// listed public paths and stores the verified claims on the request
func AuthMiddleware(verifier auth.JWTVerifier, publicPaths ...string) func(http.Handler) http.Handler {
	public := make(map[string]bool, len(publicPaths))
	for _, p := range publicPaths {
		public[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Pre-flight and public routes pass through
			if r.Method == http.MethodOptions || public[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				httputil.RespondError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(strings.TrimSpace(token))
			if err != nil {
				httputil.RespondError(w, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithClaims(r, claims))
		})
	}
}

// RequireScope rejects requests whose claims lack scope with 403. It must
// run inside AuthMiddleware; a request without claims is 401.
func RequireScope(scope string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := httputil.GetClaims(r)
			if claims == nil {
				httputil.RespondError(w, http.StatusUnauthorized, "authentication required")
				return
			}
			if !claims.HasScope(scope) {
				httputil.RespondErrorWithExtras(w, http.StatusForbidden, "missing scope", map[string]interface{}{
					"required_scope": scope,
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
