package mapping

import (
	"strings"

	"github.com/linea-base/lbs/internal/aggregate"
	"github.com/linea-base/lbs/internal/models"
)

// camposDemograficos son los contadores que se suman entre localidades.
var camposDemograficos = []string{
	models.CampoHombres,
	models.CampoMujeres,
	aggregate.CampoEdad0a14,
	aggregate.CampoEdad15a29,
	aggregate.CampoEdad30a44,
	aggregate.CampoEdad45a64,
	aggregate.CampoEdad65aMas,
	aggregate.CampoPoblacionTotal,
}

// AddDemograficos suma los contadores demográficos de un lote sobre el
// acumulado. El acumulado es una sola fila: la primera entrega la siembra y
// las siguientes suman campo a campo.
func AddDemograficos(acumulado []models.Fila, lote []models.Fila) []models.Fila {
	if len(lote) == 0 {
		return acumulado
	}
	if len(acumulado) == 0 {
		base := models.Fila{}
		for _, campo := range camposDemograficos {
			base[campo] = 0
		}
		acumulado = []models.Fila{base}
	}
	destino := acumulado[0]
	for _, fila := range lote {
		for _, campo := range camposDemograficos {
			valor, ok := fila[campo]
			if !ok {
				continue
			}
			destino[campo] = aggregate.ParsearNumero(destino[campo]) + aggregate.ParsearNumero(valor)
		}
	}
	return acumulado
}

// AddDirectPorCategoria mezcla un lote de filas {categoria, casos} en el
// acumulado, sumando casos cuando la categoría ya existe. La comparación de
// categorías ignora mayúsculas; se conserva la primera forma vista.
func AddDirectPorCategoria(acumulado []models.Fila, lote []models.Fila) []models.Fila {
	indice := make(map[string]int, len(acumulado))
	for i, fila := range acumulado {
		indice[strings.ToLower(fila.Texto(models.CampoCategoria))] = i
	}
	for _, fila := range lote {
		clave := strings.ToLower(fila.Texto(models.CampoCategoria))
		if i, ok := indice[clave]; ok {
			existente := acumulado[i]
			existente[models.CampoCasos] = aggregate.ParsearNumero(existente[models.CampoCasos]) + aggregate.ParsearNumero(fila[models.CampoCasos])
			continue
		}
		indice[clave] = len(acumulado)
		acumulado = append(acumulado, fila.Clonar())
	}
	return acumulado
}

// AddMateriales mezcla filas de materiales de vivienda. La identidad de una
// fila es el par categoría+material, también sin distinguir mayúsculas.
func AddMateriales(acumulado []models.Fila, lote []models.Fila) []models.Fila {
	indice := make(map[string]int, len(acumulado))
	for i, fila := range acumulado {
		indice[claveMaterial(fila)] = i
	}
	for _, fila := range lote {
		clave := claveMaterial(fila)
		if i, ok := indice[clave]; ok {
			existente := acumulado[i]
			existente[models.CampoCasos] = aggregate.ParsearNumero(existente[models.CampoCasos]) + aggregate.ParsearNumero(fila[models.CampoCasos])
			continue
		}
		indice[clave] = len(acumulado)
		acumulado = append(acumulado, fila.Clonar())
	}
	return acumulado
}

func claveMaterial(fila models.Fila) string {
	return strings.ToLower(fila.Texto(models.CampoCategoria)) + "|" + strings.ToLower(fila.Texto(models.CampoMaterial))
}
