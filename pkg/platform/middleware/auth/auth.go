package auth

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	id "certifier/pkg/domain"
	"certifier/pkg/requestcontext"
	"certifier/pkg/secrets"
)

// CallbackTokenHeader carries the shared secret presented by the grading pipeline.
const CallbackTokenHeader = "X-Callback-Token"

// JWTValidator defines the interface for validating learner tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims we expect from the JWT validator
type JWTClaims struct {
	LearnerID string
	JTI       string
}

func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// OptionalAuth populates the learner id when a bearer token is presented and
// lets anonymous requests through so the handler can answer with its own
// anonymous-user status. A token that is present but invalid is rejected.
func OptionalAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}

			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || token == "" {
				logger.WarnContext(ctx, "unauthorized access - malformed authorization header",
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			learnerID, err := id.ParseLearnerID(claims.LearnerID)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - malformed token claims",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid or expired token")
				return
			}

			ctx = requestcontext.WithLearnerID(ctx, learnerID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireCallbackToken verifies the shared secret against a bcrypt hash.
// An empty hash disables the check; cmd/server logs a warning when it
// starts that way.
func RequireCallbackToken(tokenHash string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if tokenHash == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if err := secrets.Verify(r.Header.Get(CallbackTokenHeader), tokenHash); err != nil {
				logger.WarnContext(ctx, "rejected certificate callback",
					"error", err,
					"request_id", requestcontext.RequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid callback token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
