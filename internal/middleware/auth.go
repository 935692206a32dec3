package middleware

import (
	"crypto/subtle"
	"log/slog"
	"net/http"

	"github.com/skyfeed/aggregator/internal/metrics"
)

// APIKeyHeader is the header carrying the shared API key.
const APIKeyHeader = "X-API-Key"

// AuthConfig holds configuration for the auth middleware.
type AuthConfig struct {
	Logger  *slog.Logger
	APIKey  string
	Metrics metrics.Recorder
}

// Auth returns a middleware that rejects requests whose X-API-Key header
// does not exactly match the configured key. Rejected requests never
// reach the next handler.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	recorder := cfg.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}

	expected := []byte(cfg.APIKey)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, present := extractAPIKey(r)

			reason := ""
			switch {
			case !present:
				reason = "missing_key"
			case len(expected) == 0 || subtle.ConstantTimeCompare([]byte(key), expected) != 1:
				reason = "invalid_key"
			}

			if reason != "" {
				recorder.IncAuthFailure()
				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("ip", r.RemoteAddr),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// extractAPIKey returns the X-API-Key header value and whether it was sent.
func extractAPIKey(r *http.Request) (string, bool) {
	values, ok := r.Header[http.CanonicalHeaderKey(APIKeyHeader)]
	if !ok || len(values) == 0 {
		return "", false
	}
	return values[0], true
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"detail":"Invalid or missing API key"}`))
}
