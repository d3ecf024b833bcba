package httpapi

import (
	"net/http"
	"strings"
)

// requireBearer wraps next with a bearer-token check against the service's
// single configured token — extract, compare, 401 on mismatch. This server
// has no user accounts: the token gates the whole service, and
// orgId/ghostId scoping comes from the request body instead.
func requireBearer(token string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if token == "" {
			next(w, r)
			return
		}
		got := extractBearerToken(r)
		if got == "" || got != token {
			writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or invalid bearer token")
			return
		}
		next(w, r)
	}
}

func extractBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(h, prefix))
}
