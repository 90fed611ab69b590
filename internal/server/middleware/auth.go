package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/linea-base/lbs/internal/server/handlers"
)

// Auth valida el token Bearer y deja la credencial en el contexto.
func Auth(logger *slog.Logger, jwtConfig handlers.JWTConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("Missing Authorization header")
				http.Error(w, "Unauthorized: missing token", http.StatusUnauthorized)
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("Invalid Authorization header format")
				http.Error(w, "Unauthorized: invalid token format", http.StatusUnauthorized)
				return
			}

			claims, err := handlers.ValidateAccessToken(jwtConfig, parts[1])
			if err != nil {
				logger.Warn("Invalid access token", "error", err)
				http.Error(w, "Unauthorized: invalid token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), handlers.CredencialIDKey, claims.CredencialID)
			ctx = context.WithValue(ctx, handlers.NombreKey, claims.Nombre)

			logger.Debug("credencial autenticada",
				"credencial", claims.CredencialID, "nombre", claims.Nombre)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
