package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"docconv/internal/auth"
	"docconv/internal/httputil"
)

// AuthMiddleware requires a valid bearer token on every request except the
// exempt paths. A nil verifier disables authentication.
func AuthMiddleware(verifier auth.JWTVerifier, logger *slog.Logger, exempt ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if verifier == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Pre-flight requests carry no credentials
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			for _, p := range exempt {
				if r.URL.Path == p {
					next.ServeHTTP(w, r)
					return
				}
			}

			token, ok := bearerToken(r)
			if !ok {
				httputil.RespondError(w, r, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := verifier.VerifyToken(token)
			if err != nil {
				logger.Debug("token rejected",
					"error", err,
					"path", r.URL.Path,
					"request_id", httputil.GetRequestID(r),
				)
				httputil.RespondError(w, r, http.StatusUnauthorized, "invalid token")
				return
			}

			next.ServeHTTP(w, httputil.WithUserID(r, claims.GetUserID()))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
