package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/brightfix/showcasebackend/models"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// ActorContextKey is the key used to store the authorized actor in the
// request context.
const ActorContextKey ContextKey = "actor"

type actorClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthMiddleware verifies the bearer token and injects the resulting
// AuthorizedActor into the request context. Token issuance lives in the
// identity service; this middleware only verifies and extracts.
func AuthMiddleware(jwtSecret []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authorization header required")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Authorization header format must be Bearer {token}")
				return
			}

			claims := &actorClaims{}
			token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return jwtSecret, nil
			})
			if err != nil || !token.Valid {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid token")
				return
			}

			var actorID uint
			if _, err := fmt.Sscan(claims.Subject, &actorID); err != nil || actorID == 0 {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid actor ID in token")
				return
			}

			actor := models.AuthorizedActor{ID: actorID, Role: claims.Role}
			ctx := context.WithValue(r.Context(), ActorContextKey, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the authorized actor placed by AuthMiddleware.
func ActorFromContext(ctx context.Context) (models.AuthorizedActor, bool) {
	actor, ok := ctx.Value(ActorContextKey).(models.AuthorizedActor)
	return actor, ok
}

// RequireAdmin rejects any actor without the admin role. It must run after
// AuthMiddleware.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := ActorFromContext(r.Context())
		if !ok {
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Actor not found in context")
			return
		}
		if !actor.IsAdmin() {
			WriteAPIError(w, http.StatusForbidden, "forbidden", "Admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
