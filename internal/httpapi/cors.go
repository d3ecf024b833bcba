package httpapi

import "net/http"

// allowedHeaders is the full preflight header list: the bearer token,
// content negotiation, client-info/apikey headers some deployments send,
// and the two device-identifying headers the ingest endpoint reads.
const allowedHeaders = "authorization, content-type, x-client-info, apikey, x-ghost-batch-id, x-ghost-device"

// withCORS wraps next with permissive CORS headers and answers OPTIONS
// preflight requests directly with 200. These endpoints are called
// directly from an extension's background script and a dashboard origin
// the operator does not control at deploy time, so there is no fixed
// whitelist to check against.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
