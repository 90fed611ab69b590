// Package handlers implementa los endpoints HTTP de censusd.
package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims son los claims de los tokens de censusd.
type CustomClaims struct {
	CredencialID string `json:"credencial_id"`
	Nombre       string `json:"nombre"`
	jwt.RegisteredClaims
}

// JWTConfig contiene la configuración de firma.
type JWTConfig struct {
	Secret         []byte
	AccessTokenTTL time.Duration
}

// GenerateAccessToken crea un access token firmado. Devuelve también el
// momento de expiración en epoch segundos.
func GenerateAccessToken(cfg JWTConfig, credencialID, nombre string) (string, int64, error) {
	now := time.Now()
	expiresAt := now.Add(cfg.AccessTokenTTL)

	claims := CustomClaims{
		CredencialID: credencialID,
		Nombre:       nombre,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "censusd",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(cfg.Secret)
	if err != nil {
		return "", 0, fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, expiresAt.Unix(), nil
}

// ValidateAccessToken valida y parsea un access token.
func ValidateAccessToken(cfg JWTConfig, tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return cfg.Secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}

type contextKey string

// Claves de contexto pobladas por el middleware de autenticación.
const (
	CredencialIDKey contextKey = "credencial_id"
	NombreKey       contextKey = "nombre"
)

// GetCredencialID devuelve el id de credencial autenticado del contexto.
func GetCredencialID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(CredencialIDKey).(string)
	return id, ok
}

// GetNombre devuelve el nombre de la credencial autenticada del contexto.
func GetNombre(ctx context.Context) (string, bool) {
	nombre, ok := ctx.Value(NombreKey).(string)
	return nombre, ok
}
