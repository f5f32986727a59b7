package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/redmonkez12/go-auth-service/internal/httputil"
	"github.com/redmonkez12/go-auth-service/internal/logging"
	"github.com/redmonkez12/go-auth-service/internal/user"
)

// ContextKey is a type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// Middleware handles authentication for protected routes
type Middleware struct {
	service *Service
}

func NewMiddleware(service *Service) *Middleware {
	return &Middleware{service: service}
}

// RequireAuth resolves the bearer token to a user and stores it in the request context.
func (m *Middleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.GetLoggerFromContext(r.Context())

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			httputil.RespondUnauthorized(w, "missing authentication", httputil.CodeMissingAuth)
			return
		}

		token, ok := bearerToken(authHeader)
		if !ok {
			httputil.RespondUnauthorized(w, "invalid authorization header format", httputil.CodeInvalidAuthHeader)
			return
		}

		u, err := m.service.Identify(r.Context(), token)
		if err != nil {
			if errors.Is(err, ErrUnauthorized) {
				logger.Warn("authentication failed", "error", err.Error())
				httputil.RespondUnauthorized(w, ErrUnauthorized.Error(), httputil.CodeUnauthorized)
				return
			}
			logger.Error("failed to identify user", "error", err.Error())
			httputil.RespondInternalError(w)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, u)
		ctx = logging.WithLogger(ctx, logger.WithFields(map[string]any{"user_id": u.ID}))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext extracts the authenticated user from the request context
func UserFromContext(ctx context.Context) (*user.User, bool) {
	u, ok := ctx.Value(UserContextKey).(*user.User)
	return u, ok
}

// bearerToken extracts the credentials of a "Bearer <token>" header.
// The scheme is case-insensitive.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)
	if token == "" || strings.ContainsAny(token, " \t") {
		return "", false
	}

	return token, true
}
