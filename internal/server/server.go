// Package server arma el router HTTP de censusd.
package server

import (
	"log/slog"
	"net/http"

	"github.com/linea-base/lbs/internal/server/handlers"
	"github.com/linea-base/lbs/internal/server/middleware"
	"github.com/linea-base/lbs/internal/server/storage"
)

// Config agrupa lo que el router necesita.
type Config struct {
	Logger       *slog.Logger
	Censo        storage.CensusStorage
	Credenciales storage.CredencialStorage
	JWT          handlers.JWTConfig
	Version      string
}

// NewRouter construye el handler raíz: health y login abiertos, consultas
// censales detrás del middleware de autenticación.
func NewRouter(cfg Config) http.Handler {
	authHandler := handlers.NewAuthHandler(cfg.Logger, cfg.Credenciales, cfg.JWT)
	censusHandler := handlers.NewCensusHandler(cfg.Logger, cfg.Censo)
	healthHandler := handlers.NewHealthHandler(cfg.Logger, cfg.Version)

	protegido := middleware.Auth(cfg.Logger, cfg.JWT)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	demograficos := protegido(http.HandlerFunc(censusHandler.Demograficos))
	mux.Handle("/api/v1/demograficos/poblacion-sexo", demograficos)
	mux.Handle("/api/v1/demograficos/poblacion-etaria", demograficos)
	mux.Handle("/api/v1/economicos/pea", demograficos)

	mux.Handle("/api/v1/centros-poblados/listar", protegido(http.HandlerFunc(censusHandler.CentrosPoblados)))

	mux.Handle("GET /api/v1/social/religion",
		protegido(censusHandler.Indicadores(storage.FamiliaReligion)))
	mux.Handle("GET /api/v1/social/lengua",
		protegido(censusHandler.Indicadores(storage.FamiliaLengua)))
	mux.Handle("GET /api/v1/educacion/matricula",
		protegido(censusHandler.Indicadores(storage.FamiliaMatricula)))
	mux.Handle("GET /api/v1/vivienda/materiales",
		protegido(censusHandler.Indicadores(storage.FamiliaMateriales)))

	var root http.Handler = mux
	root = middleware.LoggingConOmision(cfg.Logger, []string{"/health"})(root)
	root = middleware.Recovery(cfg.Logger)(root)
	return root
}
