package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"finance-tracker/src/auth"
	"finance-tracker/src/models"
)

type contextKey string

const userContextKey contextKey = "user"

// ErrUserNotFound is returned by a UserLookup when no user has the username.
var ErrUserNotFound = errors.New("user not found")

// TokenVerifier checks a bearer token and returns its subject.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// UserLookup loads the user named by a verified token.
type UserLookup func(ctx context.Context, username string) (*models.User, error)

// UserFromContext returns the authenticated user set by JWTAuthMiddleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok && user != nil
}

// WithUser returns a copy of ctx carrying user.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
func BearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing token")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", fmt.Errorf("invalid authorization header")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", fmt.Errorf("missing token")
	}
	return token, nil
}

// Unauthorized writes a 401 with the bearer challenge header.
func Unauthorized(w http.ResponseWriter, detail string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": detail})
}

// JWTAuthMiddleware resolves the caller's identity before any handler runs.
func JWTAuthMiddleware(tokens TokenVerifier, lookup UserLookup) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := BearerToken(r)
			if err != nil {
				Unauthorized(w, "Not authenticated")
				return
			}

			username, err := tokens.Verify(tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					Unauthorized(w, "Token has expired")
					return
				}
				Unauthorized(w, "Could not validate credentials")
				return
			}

			user, err := lookup(r.Context(), username)
			if err != nil {
				if errors.Is(err, ErrUserNotFound) {
					log.Printf("ERROR: Token subject no longer exists - Username: %s", username)
					Unauthorized(w, "Could not validate credentials")
					return
				}
				log.Printf("ERROR: Failed to resolve user %s: %v", username, err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]string{"detail": "internal error"})
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}
