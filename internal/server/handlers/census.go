package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linea-base/lbs/internal/server/storage"
	"github.com/linea-base/lbs/internal/validation"
	"github.com/linea-base/lbs/pkg/api"
)

// CensusHandler sirve las consultas censales. Los endpoints demográficos
// (población por sexo, etaria, PEA) responden con el registro completo de
// contadores por centro poblado; el cliente arma las tablas que necesita.
type CensusHandler struct {
	logger *slog.Logger
	censo  storage.CensusStorage
}

// NewCensusHandler crea el handler de consultas censales.
func NewCensusHandler(logger *slog.Logger, censo storage.CensusStorage) *CensusHandler {
	return &CensusHandler{
		logger: logger,
		censo:  censo,
	}
}

// Demograficos maneja GET ?ubigeo= y POST {codigos} de los endpoints
// /api/v1/demograficos/* y /api/v1/economicos/pea.
func (h *CensusHandler) Demograficos(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var registros []storage.RegistroDemografico
	switch r.Method {
	case http.MethodGet:
		ubigeo, ok := h.ubigeoParam(w, r)
		if !ok {
			return
		}
		var err error
		registros, err = h.censo.DemograficosPorUbigeo(ctx, ubigeo)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to query demograficos", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
	case http.MethodPost:
		codigos, ok := h.codigosBody(w, r)
		if !ok {
			return
		}
		var err error
		registros, err = h.censo.DemograficosPorCodigos(ctx, codigos)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to query demograficos", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
	default:
		sendError(h.logger, w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	filas := make([]map[string]any, 0, len(registros))
	for _, registro := range registros {
		filas = append(filas, registro.Fila())
	}
	sendJSON(h.logger, w, api.RespuestaCenso{Data: filas, Success: true}, http.StatusOK)
}

// Indicadores devuelve el handler de una familia de indicadores distritales
// (religión, lengua materna, matrícula, materiales de vivienda).
func (h *CensusHandler) Indicadores(familia string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		ubigeo, ok := h.ubigeoParam(w, r)
		if !ok {
			return
		}

		indicadores, err := h.censo.IndicadoresPorUbigeo(ctx, familia, ubigeo)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to query indicadores",
				slog.String("familia", familia), slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}

		filas := make([]map[string]any, 0, len(indicadores))
		for _, indicador := range indicadores {
			filas = append(filas, indicador.Fila())
		}
		sendJSON(h.logger, w, api.RespuestaCenso{Data: filas, Success: true}, http.StatusOK)
	}
}

// CentrosPoblados maneja GET ?ubigeo= y POST {codigos} del padrón.
func (h *CensusHandler) CentrosPoblados(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var centros []storage.CentroPoblado
	switch r.Method {
	case http.MethodGet:
		ubigeo, ok := h.ubigeoParam(w, r)
		if !ok {
			return
		}
		var err error
		centros, err = h.censo.CentrosPoblados(ctx, ubigeo)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to query centros poblados", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
	case http.MethodPost:
		codigos, ok := h.codigosBody(w, r)
		if !ok {
			return
		}
		var err error
		centros, err = h.censo.CentrosPobladosPorCodigos(ctx, codigos)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to query centros poblados", slog.Any("error", err))
			sendError(h.logger, w, "internal server error", http.StatusInternalServerError)
			return
		}
	default:
		sendError(h.logger, w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	data := make([]api.CentroPoblado, 0, len(centros))
	for _, cp := range centros {
		data = append(data, api.CentroPoblado{
			Codigo: cp.Codigo,
			Nombre: cp.Nombre,
			Ubigeo: cp.Ubigeo,
		})
	}
	sendJSON(h.logger, w, api.RespuestaCentrosPoblados{Data: data, Success: true}, http.StatusOK)
}

func (h *CensusHandler) ubigeoParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	ubigeo := r.URL.Query().Get("ubigeo")
	if err := validation.ValidarUbigeo(ubigeo); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return "", false
	}
	return ubigeo, true
}

func (h *CensusHandler) codigosBody(w http.ResponseWriter, r *http.Request) ([]string, bool) {
	var req api.ConsultaCodigos
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, "invalid request body", http.StatusBadRequest)
		return nil, false
	}
	if err := validation.ValidarCodigosCCPP(req.Codigos); err != nil {
		sendError(h.logger, w, err.Error(), http.StatusBadRequest)
		return nil, false
	}
	return req.Codigos, true
}
