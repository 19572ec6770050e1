package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	apierrors "github.com/OPGLOL/opgl-matchboard-service/internal/errors"
)

type contextKey string

const adminSessionKey contextKey = "adminSession"

// TokenValidator validates admin bearer tokens
type TokenValidator interface {
	ValidateAccessToken(tokenString string) (uuid.UUID, error)
}

// AdminSession returns the session ID stored by AuthMiddleware
func AdminSession(ctx context.Context) (uuid.UUID, bool) {
	sessionID, ok := ctx.Value(adminSessionKey).(uuid.UUID)
	return sessionID, ok
}

// AuthMiddleware creates middleware that requires a valid admin bearer token
func AuthMiddleware(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(responseWriter http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")
			if authHeader == "" {
				apierrors.WriteError(responseWriter, apierrors.Unauthorized("Authorization header is required"))
				return
			}

			tokenString, found := strings.CutPrefix(authHeader, "Bearer ")
			if !found || tokenString == "" {
				apierrors.WriteError(responseWriter, apierrors.Unauthorized("Invalid authorization format. Use: Bearer <token>"))
				return
			}

			sessionID, err := validator.ValidateAccessToken(tokenString)
			if err != nil {
				apierrors.WriteError(responseWriter, apierrors.NewAPIError(
					apierrors.ErrCodeInvalidToken,
					"Invalid or expired access token",
					http.StatusUnauthorized,
				))
				return
			}

			ctx := context.WithValue(request.Context(), adminSessionKey, sessionID)
			next.ServeHTTP(responseWriter, request.WithContext(ctx))
		})
	}
}
