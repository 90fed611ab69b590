package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/linea-base/lbs/internal/server/apikey"
	"github.com/linea-base/lbs/internal/server/storage"
	"github.com/linea-base/lbs/pkg/api"
)

// AuthHandler emite tokens de acceso a cambio de una clave de API válida.
type AuthHandler struct {
	logger       *slog.Logger
	credenciales storage.CredencialStorage
	jwtConfig    JWTConfig
}

// NewAuthHandler crea el handler de autenticación.
func NewAuthHandler(logger *slog.Logger, credenciales storage.CredencialStorage, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		credenciales: credenciales,
		jwtConfig:    jwtConfig,
	}
}

// Login maneja POST /api/v1/auth/login.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode login request", slog.Any("error", err))
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return
	}

	id, secreto, err := apikey.Separar(req.ClaveAPI)
	if err != nil {
		sendError(h.logger, w, "invalid api key", http.StatusUnauthorized)
		return
	}

	cred, err := h.credenciales.CredencialPorID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrCredencialNoEncontrada) {
			h.logger.WarnContext(ctx, "credencial desconocida", slog.String("id", id))
			sendError(h.logger, w, "invalid api key", http.StatusUnauthorized)
			return
		}
		h.logger.ErrorContext(ctx, "failed to load credencial", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}
	if !cred.Habilitada {
		h.logger.WarnContext(ctx, "credencial deshabilitada", slog.String("id", id))
		sendError(h.logger, w, "invalid api key", http.StatusUnauthorized)
		return
	}

	if err := apikey.Verificar(secreto, cred.ClaveHash); err != nil {
		h.logger.WarnContext(ctx, "clave de API rechazada", slog.String("id", id))
		sendError(h.logger, w, "invalid api key", http.StatusUnauthorized)
		return
	}

	token, expiresAt, err := GenerateAccessToken(h.jwtConfig, cred.ID, cred.Nombre)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate token", slog.Any("error", err))
		sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
		return
	}

	// El último uso es informativo; su fallo no bloquea el login
	if err := h.credenciales.MarcarUso(ctx, cred.ID, time.Now()); err != nil {
		h.logger.WarnContext(ctx, "failed to update ultimo_uso", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "login exitoso",
		slog.String("credencial", cred.ID), slog.String("nombre", cred.Nombre))

	sendJSON(h.logger, w, api.TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, http.StatusOK)
}
