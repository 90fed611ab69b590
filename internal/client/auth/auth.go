// Package auth guarda y renueva el token de acceso a censusd en el
// almacenamiento local del cliente.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/linea-base/lbs/internal/client/api"
	"github.com/linea-base/lbs/internal/storage"
	pkgapi "github.com/linea-base/lbs/pkg/api"
)

// ClaveAuth es la clave del registro de sesión en el almacenamiento local.
const ClaveAuth = "lbs:auth"

// ErrNoAutenticado indica que no hay sesión guardada o que expiró.
var ErrNoAutenticado = errors.New("no autenticado: ejecute 'lbs login' primero")

// AuthData es la sesión persistida del cliente.
type AuthData struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"` // unix segundos
	Servidor  string `json:"servidor"`
}

// Service maneja la sesión contra censusd.
type Service struct {
	cliente *api.Client
	kv      storage.KV
	ahora   func() time.Time
}

// NewService creates the auth service over the API client and local storage.
func NewService(cliente *api.Client, kv storage.KV) *Service {
	return &Service{cliente: cliente, kv: kv, ahora: time.Now}
}

// Login autentica con la clave de API y guarda la sesión resultante.
func (s *Service) Login(ctx context.Context, claveAPI, servidor string) (*AuthData, error) {
	resp, err := s.cliente.Login(ctx, pkgapi.LoginRequest{ClaveAPI: claveAPI})
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	auth := &AuthData{
		Token:     resp.AccessToken,
		ExpiresAt: resp.ExpiresAt,
		Servidor:  servidor,
	}
	if err := s.guardar(ctx, auth); err != nil {
		return nil, err
	}
	s.cliente.SetToken(auth.Token)
	return auth, nil
}

// Restore carga la sesión guardada y deja el token puesto en el cliente API.
func (s *Service) Restore(ctx context.Context) (*AuthData, error) {
	auth, err := s.cargar(ctx)
	if err != nil {
		return nil, err
	}
	if s.expirada(auth) {
		return nil, ErrNoAutenticado
	}
	s.cliente.SetToken(auth.Token)
	return auth, nil
}

// IsAuthenticated indica si hay una sesión guardada y vigente.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	auth, err := s.cargar(ctx)
	return err == nil && !s.expirada(auth)
}

// Logout borra la sesión local.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.kv.RemoveItem(ctx, ClaveAuth); err != nil {
		return fmt.Errorf("borrar sesión: %w", err)
	}
	s.cliente.SetToken("")
	return nil
}

func (s *Service) guardar(ctx context.Context, auth *AuthData) error {
	crudo, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("serializar sesión: %w", err)
	}
	if err := s.kv.SetItem(ctx, ClaveAuth, string(crudo)); err != nil {
		return fmt.Errorf("guardar sesión: %w", err)
	}
	return nil
}

func (s *Service) cargar(ctx context.Context) (*AuthData, error) {
	crudo, err := s.kv.GetItem(ctx, ClaveAuth)
	if err != nil {
		if errors.Is(err, storage.ErrClaveNoEncontrada) {
			return nil, ErrNoAutenticado
		}
		return nil, fmt.Errorf("leer sesión: %w", err)
	}
	var auth AuthData
	if err := json.Unmarshal([]byte(crudo), &auth); err != nil {
		return nil, fmt.Errorf("sesión corrupta: %w", err)
	}
	return &auth, nil
}

func (s *Service) expirada(auth *AuthData) bool {
	return auth.ExpiresAt > 0 && s.ahora().Unix() >= auth.ExpiresAt
}
