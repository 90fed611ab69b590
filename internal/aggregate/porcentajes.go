// Package aggregate implements the table aggregation and percentage engine:
// pure functions over report rows, sin E/S y sin pánicos. La entrada
// inválida degrada siempre a valores cero documentados para que el informe
// se mantenga renderizable.
package aggregate

import (
	"log/slog"

	"github.com/linea-base/lbs/internal/models"
)

// PorcentajeCien is the Total row's fixed percentage.
const PorcentajeCien = "100,00 %"

// PorcentajeCero is the degraded zero percentage.
const PorcentajeCero = "0,00 %"

// CalcularPorcentajesSimple recomputes the "porcentaje" column of a
// single-count table keyed by categoria/casos. Filas Total preexistentes se
// descartan; con total positivo se añade al final la fila Total sintética.
//
// Con total cero o negativo todas las filas quedan en "0,00 %" y NO se añade
// fila Total: así lo hace el informe original y los fixtures lo verifican.
func CalcularPorcentajesSimple(tabla []models.Fila, cuadro string) []models.Fila {
	return calcularPorcentajesCampos(tabla, cuadro, models.CampoCategoria, models.CampoCasos)
}

// CalcularPorcentajesSimplePorCampos es la variante para tablas cuya clave o
// conteo usan otros nombres de columna (grupo, anio, cantidadEstudiantes...).
func CalcularPorcentajesSimplePorCampos(tabla []models.Fila, cuadro, campoClave, campoValor string) []models.Fila {
	return calcularPorcentajesCampos(tabla, cuadro, campoClave, campoValor)
}

func calcularPorcentajesCampos(tabla []models.Fila, cuadro, campoClave, campoValor string) []models.Fila {
	if len(tabla) == 0 {
		return []models.Fila{}
	}

	// Fuera cualquier fila Total previa: nunca entra en la base porcentual
	filas := make([]models.Fila, 0, len(tabla)+1)
	for _, fila := range tabla {
		if fila.EsTotal(campoClave) {
			continue
		}
		filas = append(filas, fila.Clonar())
	}

	total := 0
	for _, fila := range filas {
		total += ParsearNumero(fila[campoValor])
	}

	if total <= 0 {
		// Camino degradado: sin fila Total
		slog.Debug("tabla sin casos, porcentajes en cero", "cuadro", cuadro)
		for _, fila := range filas {
			fila[models.CampoPorcentaje] = PorcentajeCero
		}
		return filas
	}

	for _, fila := range filas {
		fila[models.CampoPorcentaje] = Porcentaje(float64(ParsearNumero(fila[campoValor])), float64(total))
	}

	filas = append(filas, models.Fila{
		campoClave:             models.EtiquetaTotal,
		campoValor:             total,
		models.CampoPorcentaje: PorcentajeCien,
	})
	return filas
}

// CalcularPorcentajesMultiples recomputes the sex-disaggregated percentage
// columns: hombres, mujeres y casos llevan cada uno su total y su columna de
// porcentaje independientes. La fila Total cierra siempre en "100,00 %" en
// las tres columnas, aunque algún total individual haya sido cero.
func CalcularPorcentajesMultiples(tabla []models.Fila, cuadro string) []models.Fila {
	if len(tabla) == 0 {
		return []models.Fila{}
	}

	filas := make([]models.Fila, 0, len(tabla)+1)
	for _, fila := range tabla {
		if fila.EsTotal(models.CampoCategoria) {
			continue
		}
		filas = append(filas, fila.Clonar())
	}

	columnas := []struct {
		valor      string
		porcentaje string
	}{
		{valor: models.CampoHombres, porcentaje: "porcentajeHombres"},
		{valor: models.CampoMujeres, porcentaje: "porcentajeMujeres"},
		{valor: models.CampoCasos, porcentaje: models.CampoPorcentaje},
	}

	totalFila := models.Fila{models.CampoCategoria: models.EtiquetaTotal}
	for _, col := range columnas {
		total := 0
		for _, fila := range filas {
			total += ParsearNumero(fila[col.valor])
		}
		for _, fila := range filas {
			fila[col.porcentaje] = Porcentaje(float64(ParsearNumero(fila[col.valor])), float64(total))
		}
		totalFila[col.valor] = total
		totalFila[col.porcentaje] = PorcentajeCien
	}

	return append(filas, totalFila)
}

// AgregarFilaTotal drops any existing Total row by label, recomputes the sum
// of campoValor over the rest, and appends a fresh Total row at 100%.
// Llamarla dos veces seguidas produce el mismo resultado que una.
func AgregarFilaTotal(tabla []models.Fila, campoEtiqueta, campoValor string) []models.Fila {
	filas := make([]models.Fila, 0, len(tabla)+1)
	for _, fila := range tabla {
		if fila.EsTotal(campoEtiqueta) {
			continue
		}
		filas = append(filas, fila.Clonar())
	}

	total := 0
	for _, fila := range filas {
		total += ParsearNumero(fila[campoValor])
	}

	return append(filas, models.Fila{
		campoEtiqueta:          models.EtiquetaTotal,
		campoValor:             total,
		models.CampoPorcentaje: PorcentajeCien,
	})
}
