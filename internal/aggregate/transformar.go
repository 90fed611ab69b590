package aggregate

import (
	"strings"
	"unicode"

	"github.com/linea-base/lbs/internal/models"
)

// Campos numéricos del acumulado demográfico de un grupo de localidades.
const (
	CampoEdad0a14       = "edad_0_14"
	CampoEdad15a29      = "edad_15_29"
	CampoEdad30a44      = "edad_30_44"
	CampoEdad45a64      = "edad_45_64"
	CampoEdad65aMas     = "edad_65_mas"
	CampoPoblacionTotal = "poblacion_total"
)

// Etiquetas fijas de los tramos etarios, en el orden del cuadro.
var EtiquetasEtarias = []struct {
	Etiqueta string
	Campo    string
}{
	{Etiqueta: "0 a 14 años", Campo: CampoEdad0a14},
	{Etiqueta: "15 a 29 años", Campo: CampoEdad15a29},
	{Etiqueta: "30 a 44 años", Campo: CampoEdad30a44},
	{Etiqueta: "45 a 64 años", Campo: CampoEdad45a64},
	{Etiqueta: "65 años a más", Campo: CampoEdad65aMas},
}

// EtiquetasPET son los tramos de la población en edad de trabajar (14+).
var EtiquetasPET = []struct {
	Etiqueta string
	Campo    string
}{
	{Etiqueta: "14 a 29 años", Campo: CampoEdad15a29},
	{Etiqueta: "30 a 44 años", Campo: CampoEdad30a44},
	{Etiqueta: "45 a 64 años", Campo: CampoEdad45a64},
	{Etiqueta: "65 años a más", Campo: CampoEdad65aMas},
}

// TransformarPoblacionSexo turns the accumulated demographic row into the
// two-row population-by-sex table, con porcentajes y fila Total.
func TransformarPoblacionSexo(acumulado models.Fila) []models.Fila {
	if len(acumulado) == 0 {
		return []models.Fila{}
	}

	tabla := []models.Fila{
		{models.CampoCategoria: "Hombres", models.CampoCasos: ParsearNumero(acumulado[models.CampoHombres])},
		{models.CampoCategoria: "Mujeres", models.CampoCasos: ParsearNumero(acumulado[models.CampoMujeres])},
	}
	return CalcularPorcentajesSimple(tabla, "población según sexo")
}

// TransformarPoblacionEtario builds the five-bracket age table from the
// accumulated row. Los nombres y el orden de los tramos son fijos.
func TransformarPoblacionEtario(acumulado models.Fila) []models.Fila {
	if len(acumulado) == 0 {
		return []models.Fila{}
	}

	tabla := make([]models.Fila, 0, len(EtiquetasEtarias))
	for _, tramo := range EtiquetasEtarias {
		tabla = append(tabla, models.Fila{
			models.CampoCategoria: tramo.Etiqueta,
			models.CampoCasos:     ParsearNumero(acumulado[tramo.Campo]),
		})
	}
	return CalcularPorcentajesSimple(tabla, "población según grupo etario")
}

// TransformarPET builds the working-age-population table: the 0-14 bracket is
// excluded and the first bracket starts at 14.
func TransformarPET(acumulado models.Fila) []models.Fila {
	if len(acumulado) == 0 {
		return []models.Fila{}
	}

	tabla := make([]models.Fila, 0, len(EtiquetasPET))
	for _, tramo := range EtiquetasPET {
		tabla = append(tabla, models.Fila{
			models.CampoCategoria: tramo.Etiqueta,
			models.CampoCasos:     ParsearNumero(acumulado[tramo.Campo]),
		})
	}
	return CalcularPorcentajesSimple(tabla, "población en edad de trabajar")
}

// NormalizarMateriales cleans a housing-materials table: labels are trimmed
// and capitalized, duplicated categories (case-insensitive, material
// secundario incluido) collapse sumando sus casos.
func NormalizarMateriales(tabla []models.Fila) []models.Fila {
	if len(tabla) == 0 {
		return []models.Fila{}
	}

	var orden []string
	porClave := make(map[string]models.Fila)

	for _, fila := range tabla {
		categoria := normalizarEtiqueta(fila.Texto(models.CampoCategoria))
		material := normalizarEtiqueta(fila.Texto(models.CampoMaterial))
		if categoria == "" && material == "" {
			continue
		}

		clave := strings.ToLower(categoria) + "|" + strings.ToLower(material)
		existente, ok := porClave[clave]
		if !ok {
			nueva := models.Fila{
				models.CampoCategoria: categoria,
				models.CampoCasos:     ParsearNumero(fila[models.CampoCasos]),
			}
			if material != "" {
				nueva[models.CampoMaterial] = material
			}
			porClave[clave] = nueva
			orden = append(orden, clave)
			continue
		}

		existente[models.CampoCasos] = ParsearNumero(existente[models.CampoCasos]) + ParsearNumero(fila[models.CampoCasos])
	}

	resultado := make([]models.Fila, 0, len(orden))
	for _, clave := range orden {
		resultado = append(resultado, porClave[clave])
	}
	return resultado
}

// normalizarEtiqueta recorta espacios y capitaliza la primera letra.
func normalizarEtiqueta(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return ""
	}
	runas := []rune(s)
	runas[0] = unicode.ToUpper(runas[0])
	return string(runas)
}
