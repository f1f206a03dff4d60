package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/famfin/famfin-api/internal/domain/user"
	"github.com/famfin/famfin-api/internal/pkg/jwt"
	"github.com/famfin/famfin-api/internal/pkg/response"
)

// Auth validates the bearer token and attaches the caller's user.Actor.
func Auth(jwtService *jwt.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				response.Unauthorized(w, "Missing authorization header")
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				response.Unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := jwtService.ValidateAccessToken(parts[1])
			if err != nil {
				if errors.Is(err, jwt.ErrExpiredToken) {
					response.Unauthorized(w, "Token expired")
				} else {
					response.Unauthorized(w, "Invalid token")
				}
				return
			}

			role := user.Role(claims.Role)
			if role != user.RoleParent && role != user.RoleChild {
				response.Forbidden(w, "Unknown role")
				return
			}

			ctx := user.WithActor(r.Context(), user.Actor{
				UserID:   claims.UserID,
				FamilyID: claims.FamilyID,
				Role:     role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole returns middleware that checks the caller's role
func RequireRole(roles ...user.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			actor, ok := user.ActorFromContext(r.Context())
			if !ok {
				response.Unauthorized(w, "unauthorized")
				return
			}
			for _, role := range roles {
				if actor.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			response.Forbidden(w, "Insufficient permissions")
		})
	}
}

// RequireParent returns middleware that requires the parent role
func RequireParent() func(http.Handler) http.Handler {
	return RequireRole(user.RoleParent)
}
