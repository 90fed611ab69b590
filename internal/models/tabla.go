package models

import "strings"

// Fila is one row of a report table. Column names vary by table type
// (categoria, grupo, anio, nombreIE as identifying key; casos,
// cantidadEstudiantes, natalidad, mortalidad as numeric columns), so rows are
// kept dynamically keyed the same way they travel on the wire.
type Fila map[string]any

// Campos de fila más comunes.
const (
	CampoCategoria  = "categoria"
	CampoCasos      = "casos"
	CampoPorcentaje = "porcentaje"
	CampoHombres    = "hombres"
	CampoMujeres    = "mujeres"
	CampoMaterial   = "material"
)

// EtiquetaTotal is the label of the synthetic Total row.
const EtiquetaTotal = "Total"

// Clonar returns a deep copy of the row.
func (f Fila) Clonar() Fila {
	copia, ok := CopiarProfundo(map[string]any(f)).(map[string]any)
	if !ok {
		return Fila{}
	}
	return Fila(copia)
}

// Texto devuelve el valor del campo como cadena ("" si falta o no es texto).
func (f Fila) Texto(campo string) string {
	s, _ := f[campo].(string)
	return s
}

// EsTotal reports whether the row is the synthetic Total row: its key field
// contains the substring "total", case-insensitive.
func (f Fila) EsTotal(campoClave string) bool {
	return strings.Contains(strings.ToLower(f.Texto(campoClave)), "total")
}

// ClonarTabla deep-copies a whole table.
func ClonarTabla(tabla []Fila) []Fila {
	if tabla == nil {
		return nil
	}
	copia := make([]Fila, 0, len(tabla))
	for _, fila := range tabla {
		copia = append(copia, fila.Clonar())
	}
	return copia
}

// Foto is one photographic annex entry. Numero llega como "capítulo.orden"
// (por ejemplo "2.5") y se renumera durante el pipeline de carga.
type Foto struct {
	Numero string `json:"numero"`
	Titulo string `json:"titulo"`
	Fuente string `json:"fuente,omitempty"`
	Data   string `json:"data,omitempty"`
}
