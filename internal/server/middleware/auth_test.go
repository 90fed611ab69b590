package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linea-base/lbs/internal/server/handlers"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func configJWT() handlers.JWTConfig {
	return handlers.JWTConfig{
		Secret:         []byte("test-secret"),
		AccessTokenTTL: 15 * time.Minute,
	}
}

func TestAuth_TokenValido(t *testing.T) {
	cfg := configJWT()
	token, _, err := handlers.GenerateAccessToken(cfg, "cred-1", "consultora")
	require.NoError(t, err)

	var credencialID, nombre string
	siguiente := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credencialID, _ = handlers.GetCredencialID(r.Context())
		nombre, _ = handlers.GetNombre(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/social/religion", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	Auth(testLogger(), cfg)(siguiente).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "cred-1", credencialID)
	assert.Equal(t, "consultora", nombre)
}

func TestAuth_SinEncabezado(t *testing.T) {
	siguiente := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("el handler no debe ejecutarse sin token")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/social/religion", nil)
	w := httptest.NewRecorder()

	Auth(testLogger(), configJWT())(siguiente).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_TokenInvalido(t *testing.T) {
	siguiente := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("el handler no debe ejecutarse con token inválido")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/social/religion", nil)
	req.Header.Set("Authorization", "Bearer no-es-un-jwt")
	w := httptest.NewRecorder()

	Auth(testLogger(), configJWT())(siguiente).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_FirmaAjena(t *testing.T) {
	ajena := handlers.JWTConfig{Secret: []byte("otro-secreto"), AccessTokenTTL: time.Minute}
	token, _, err := handlers.GenerateAccessToken(ajena, "cred-1", "consultora")
	require.NoError(t, err)

	siguiente := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		t.Fatal("el handler no debe ejecutarse con firma ajena")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/social/religion", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	Auth(testLogger(), configJWT())(siguiente).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRecovery(t *testing.T) {
	siguiente := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("algo salió muy mal")
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	Recovery(testLogger())(siguiente).ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestLogging_PropagaElEstado(t *testing.T) {
	siguiente := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/centros-poblados/listar", nil)
	w := httptest.NewRecorder()

	Logging(testLogger())(siguiente).ServeHTTP(w, req)

	assert.Equal(t, http.StatusTeapot, w.Code)
}
