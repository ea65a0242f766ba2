// Package middleware provides HTTP middleware for the QuizForge API.
package middleware

import (
	"context"
	"crypto/subtle"
	"net/http"
	"strings"
)

// Context keys for request-scoped values.
type contextKey string

// TeacherIDKey is the context key for the authenticated teacher id.
const TeacherIDKey contextKey = "teacher_id"

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Enabled bool
	APIKey  string
}

// Auth returns an authentication middleware. Requests authenticate with
// the service API key and identify the acting teacher through the
// X-Teacher-ID header. With auth disabled, a missing teacher id falls
// back to a development default.
func Auth(cfg AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			teacherID := r.Header.Get("X-Teacher-ID")

			if !cfg.Enabled {
				if teacherID == "" {
					teacherID = "dev"
				}
				ctx := context.WithValue(r.Context(), TeacherIDKey, teacherID)
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			key := bearerToken(r)
			if key == "" {
				key = r.Header.Get("X-API-Key")
			}
			if key == "" {
				http.Error(w, `{"error": "missing api key"}`, http.StatusUnauthorized)
				return
			}
			if subtle.ConstantTimeCompare([]byte(key), []byte(cfg.APIKey)) != 1 {
				http.Error(w, `{"error": "invalid api key"}`, http.StatusUnauthorized)
				return
			}

			if teacherID == "" {
				http.Error(w, `{"error": "missing X-Teacher-ID header"}`, http.StatusBadRequest)
				return
			}

			ctx := context.WithValue(r.Context(), TeacherIDKey, teacherID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return parts[1]
}

// TeacherFromContext extracts the teacher id from context.
func TeacherFromContext(ctx context.Context) string {
	if v := ctx.Value(TeacherIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// CORS returns CORS middleware for browser clients.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					allowed = true
					break
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-API-Key, X-Teacher-ID")
				w.Header().Set("Access-Control-Max-Age", "86400")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
