package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"morak/internal/models"
	"morak/internal/security"
	"morak/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const MemberContextKey ContextKey = "member"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	auth   Authenticator
	logger *zap.Logger
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(auth Authenticator, logger *zap.Logger) *Middleware {
	return &Middleware{auth: auth, logger: logger}
}

// RequireMember rejects requests without a valid access token and stores the
// authenticated member in the request context
func (m *Middleware) RequireMember(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		member, err := m.auth.Authenticate(r.Context(), accessTokenFromRequest(r))
		if err != nil {
			if errors.Is(err, service.ErrUnauthorized) {
				respondWithError(w, m.logger, http.StatusUnauthorized, ErrUnauthorized, "", nil)
				return
			}
			respondWithError(w, m.logger, http.StatusInternalServerError, ErrInternalServerError, "authentication failed", err)
			return
		}

		ctx := context.WithValue(r.Context(), MemberContextKey, member)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Logging returns an access log middleware
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}

// RateLimit rejects clients that exceed the limiter's budget
func RateLimit(rl *security.RateLimiter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !rl.Allow(security.GetClientIP(r)) {
				respondWithError(w, logger, http.StatusTooManyRequests, ErrTooManyRequests, "", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// GetMemberFromContext retrieves the member from the request context
func GetMemberFromContext(ctx context.Context) *models.Member {
	member, ok := ctx.Value(MemberContextKey).(*models.Member)
	if !ok {
		return nil
	}
	return member
}

// accessTokenFromRequest reads the access token cookie, falling back to a
// bearer Authorization header
func accessTokenFromRequest(r *http.Request) string {
	if token := security.CookieValue(r, security.AccessTokenCookie); token != "" {
		return token
	}
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	return ""
}

// pathID parses a positive integer route parameter
func pathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
