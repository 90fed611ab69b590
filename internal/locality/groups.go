package locality

import "github.com/linea-base/lbs/internal/models"

// SeccionGeneral es la sección donde vive el padrón del proyecto.
const SeccionGeneral = "general"

// TablaCCPP is the project table listing every populated place together with
// the group instance it belongs to: filas {grupo, codigo, nombre}.
const TablaCCPP = "ccppGrupos"

// FuenteDatos is the slice of the project store the resolver reads from.
type FuenteDatos interface {
	SelectTableData(seccionID, tablaID string) []models.Fila
	SelectField(seccionID, grupoID, campo string) any
}

// Resolver answers group-membership questions against current project data.
type Resolver struct {
	datos FuenteDatos
}

// NewResolver creates a resolver over the project store.
func NewResolver(datos FuenteDatos) *Resolver {
	return &Resolver{datos: datos}
}

// CodigosGrupo returns the CCPP codes of the group instance the section
// belongs to. Una sección sin instancia, o una instancia sin centros
// poblados registrados, produce una lista vacía.
func (r *Resolver) CodigosGrupo(seccionID string) []string {
	instancia := Instancia(seccionID)
	if instancia == "" {
		return nil
	}

	var codigos []string
	for _, fila := range r.datos.SelectTableData(SeccionGeneral, TablaCCPP) {
		if fila.Texto("grupo") != instancia {
			continue
		}
		if codigo := fila.Texto("codigo"); codigo != "" {
			codigos = append(codigos, codigo)
		}
	}
	return codigos
}

// Ubigeo resolves the district ubigeo from project data ("" when absent).
func (r *Resolver) Ubigeo() string {
	v := r.datos.SelectField(SeccionGeneral, models.GrupoDefault, "id_ubigeo")
	s, _ := v.(string)
	return s
}
