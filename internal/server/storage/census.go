// Package storage define las interfaces de persistencia de censusd.
package storage

import "context"

// RegistroDemografico es el conteo censal de un centro poblado.
type RegistroDemografico struct {
	Codigo         string // código CCPP (10 dígitos)
	Ubigeo         string // distrito al que pertenece
	Hombres        int
	Mujeres        int
	Edad0a14       int
	Edad15a29      int
	Edad30a44      int
	Edad45a64      int
	Edad65aMas     int
	PoblacionTotal int
}

// Fila proyecta el registro a la forma en que viaja por la API.
func (r RegistroDemografico) Fila() map[string]any {
	return map[string]any{
		"codigo":          r.Codigo,
		"ubigeo":          r.Ubigeo,
		"hombres":         r.Hombres,
		"mujeres":         r.Mujeres,
		"edad_0_14":       r.Edad0a14,
		"edad_15_29":      r.Edad15a29,
		"edad_30_44":      r.Edad30a44,
		"edad_45_64":      r.Edad45a64,
		"edad_65_mas":     r.Edad65aMas,
		"poblacion_total": r.PoblacionTotal,
	}
}

// Indicador es una fila categoria/casos de un indicador distrital
// (religión, lengua materna, matrícula, materiales de vivienda...).
type Indicador struct {
	Ubigeo    string
	Familia   string // religion | lengua | matricula | materiales
	Categoria string
	Material  string // sólo para la familia materiales
	Casos     int
}

// Familias de indicadores conocidas.
const (
	FamiliaReligion   = "religion"
	FamiliaLengua     = "lengua"
	FamiliaMatricula  = "matricula"
	FamiliaMateriales = "materiales"
)

// Fila proyecta el indicador a la forma de la API.
func (i Indicador) Fila() map[string]any {
	fila := map[string]any{
		"categoria": i.Categoria,
		"casos":     i.Casos,
	}
	if i.Material != "" {
		fila["material"] = i.Material
	}
	return fila
}

// CentroPoblado es una entrada del padrón.
type CentroPoblado struct {
	Codigo string
	Ubigeo string
	Nombre string
}

// CensusStorage define las consultas censales que sirven los handlers.
type CensusStorage interface {
	// DemograficosPorUbigeo lists the demographic counts of every populated
	// place in a district.
	DemograficosPorUbigeo(ctx context.Context, ubigeo string) ([]RegistroDemografico, error)

	// DemograficosPorCodigos lists the demographic counts of specific
	// populated places.
	DemograficosPorCodigos(ctx context.Context, codigos []string) ([]RegistroDemografico, error)

	// IndicadoresPorUbigeo lists one indicator family for a district.
	IndicadoresPorUbigeo(ctx context.Context, familia, ubigeo string) ([]Indicador, error)

	// CentrosPoblados lists the populated places of a district.
	CentrosPoblados(ctx context.Context, ubigeo string) ([]CentroPoblado, error)

	// CentrosPobladosPorCodigos lists specific populated places.
	CentrosPobladosPorCodigos(ctx context.Context, codigos []string) ([]CentroPoblado, error)
}
