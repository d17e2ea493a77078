package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"cleaning-scheduler/domain"
	error2 "cleaning-scheduler/error"
)

type viewerKey struct{}

type Claims struct {
	UserID uuid.UUID       `json:"user_id"`
	Email  string          `json:"email"`
	Role   domain.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// Authenticate extracts the viewer's identity and role from the bearer token.
// Tokens are issued by the external auth service; this middleware only
// validates them.
func Authenticate(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
			authHeader := h.Header.Get("Authorization")
			if authHeader == "" {
				error2.ReturnJSONError(rw, "Authorization header is required", http.StatusUnauthorized)
				return
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				error2.ReturnJSONError(rw, "Invalid authorization header format", http.StatusUnauthorized)
				return
			}

			claims, err := validateToken(tokenParts[1], secret)
			if err != nil {
				error2.ReturnJSONError(rw, "Invalid token", http.StatusUnauthorized)
				return
			}

			viewer := domain.Viewer{ID: claims.UserID, Role: claims.Role}
			ctx := context.WithValue(h.Context(), viewerKey{}, viewer)
			next.ServeHTTP(rw, h.WithContext(ctx))
		})
	}
}

func validateToken(tokenString, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}

// ViewerFromToken resolves the viewer identity carried by a raw bearer token.
// Used at startup to establish which user this sync agent acts for.
func ViewerFromToken(tokenString, secret string) (domain.Viewer, error) {
	claims, err := validateToken(tokenString, secret)
	if err != nil {
		return domain.Viewer{}, err
	}
	return domain.Viewer{ID: claims.UserID, Role: claims.Role}, nil
}

// ViewerFromContext returns the authenticated viewer set by Authenticate.
func ViewerFromContext(ctx context.Context) (domain.Viewer, bool) {
	viewer, ok := ctx.Value(viewerKey{}).(domain.Viewer)
	return viewer, ok
}
