package api

// LoginRequest autentica una instalación del cliente contra censusd.
type LoginRequest struct {
	ClaveAPI string `json:"clave_api"`
}

// TokenResponse es el token de acceso emitido por censusd.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresAt   int64  `json:"expires_at"` // epoch segundos
}

// ErrorResponse es el cuerpo de error estándar del servicio.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
