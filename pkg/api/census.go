// Package api contains the wire types shared by the lbs client and the
// censusd service.
package api

// ConsultaCodigos es el cuerpo POST para consultas por lote de centros
// poblados: {"codigos": ["0512010001", ...]}.
type ConsultaCodigos struct {
	Codigos []string `json:"codigos"`
}

// RespuestaCenso is the envelope of every census endpoint: filas crudas más
// la bandera de éxito del servicio original.
type RespuestaCenso struct {
	Data    []map[string]any `json:"data"`
	Success bool             `json:"success"`
}

// CentroPoblado es una entrada del listado de centros poblados.
type CentroPoblado struct {
	Codigo string `json:"codigo"`
	Nombre string `json:"nombre"`
	Ubigeo string `json:"ubigeo"`
}

// RespuestaCentrosPoblados envuelve el listado por ubigeo.
type RespuestaCentrosPoblados struct {
	Data    []CentroPoblado `json:"data"`
	Success bool            `json:"success"`
}
