package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"sendbox-backend/internal/domain"
	"sendbox-backend/internal/logger"
	"sendbox-backend/internal/security"
)

type contextKey string

const userIDKey contextKey = "user-id"

// callerID extracts the authenticated user from the request context.
func callerID(r *http.Request) int32 {
	if id, ok := r.Context().Value(userIDKey).(int32); ok {
		return id
	}
	return 0
}

// authMiddleware validates the bearer token and injects the caller's
// user ID into the request context. Tokens must be access tokens;
// refresh tokens are rejected.
func authMiddleware(tm security.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := extractToken(r)
			if err != nil {
				writeError(w, err)
				return
			}

			claims, err := tm.ValidateToken(token)
			if err != nil {
				writeError(w, domain.E(domain.ErrUnauthenticated, "invalid or expired token"))
				return
			}
			if claims.Type != security.TokenTypeAccess {
				writeError(w, domain.E(domain.ErrUnauthenticated, "access token required"))
				return
			}

			ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", domain.E(domain.ErrUnauthenticated, "authorization token is not provided")
	}

	token := authHeader
	if len(token) > 7 && strings.EqualFold(token[0:7], "Bearer ") {
		token = token[7:]
	}
	return token, nil
}

// loggingMiddleware records one line per request.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.Info("Request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}
