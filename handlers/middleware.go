package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/CrowderSoup/zenboard/services"
)

type contextKey string

const subjectContextKey contextKey = "subject"

type AuthMiddleware struct {
	authService *services.AuthService
}

func NewAuthMiddleware(authService *services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Auth requires a valid token when authentication is enabled. Browsers cannot
// set headers on a WebSocket handshake, so a "token" query parameter is
// accepted as well.
func (m *AuthMiddleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.authService.Enabled() {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := r.URL.Query().Get("token")
		if tokenString == "" {
			var err error
			if tokenString, err = bearerToken(r); err != nil {
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}
		}

		// Verify token
		subject, err := m.authService.VerifyJWT(tokenString)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), subjectContextKey, subject)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Subject returns the token subject stored by Auth.
func Subject(ctx context.Context) (string, bool) {
	s, ok := ctx.Value(subjectContextKey).(string)
	return s, ok
}

func bearerToken(r *http.Request) (string, error) {
	// Get token from Authorization header
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", errors.New("missing authorization header")
	}

	// Extract token from Bearer format
	authParts := strings.Split(authHeader, " ")
	if len(authParts) != 2 || authParts[0] != "Bearer" {
		return "", errors.New("invalid authorization format")
	}

	return authParts[1], nil
}
