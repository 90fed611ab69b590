// Package pipeline aplica, en orden fijo, las transformaciones que dejan un
// dataset recién cargado (datos de ejemplo, importaciones) con la forma que
// espera el formulario: renumeración de fotos, alias de campos, totales
// derivados, normalización de tablas y textos descriptivos.
package pipeline

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/linea-base/lbs/internal/aggregate"
	"github.com/linea-base/lbs/internal/models"
)

// Número máximo de fotos por capítulo del anexo fotográfico.
const maxFotosPorCapitulo = 10

// Pipeline encadena las etapas sobre un dataset plano campo → valor.
type Pipeline struct {
	logger *slog.Logger
}

// New returns a pipeline that logs stage activity through logger.
func New(logger *slog.Logger) *Pipeline {
	return &Pipeline{logger: logger}
}

// Aplicar corre las cinco etapas en orden sobre una copia del dataset y
// devuelve el resultado; la entrada no se modifica.
func (p *Pipeline) Aplicar(datos map[string]any) map[string]any {
	copia, ok := models.CopiarProfundo(datos).(map[string]any)
	if !ok {
		return map[string]any{}
	}

	RenumerarFotos(copia)
	AplicarAlias(copia)
	CalcularTotales(copia)
	NormalizarTablas(copia)
	GenerarTextos(copia)

	p.logger.Debug("pipeline aplicado", "campos", len(copia))
	return copia
}

// RenumerarFotos filtra y renumera el anexo fotográfico. El número llega como
// "capítulo.orden"; se conserva sólo el orden, y las fotos cuyo orden queda
// fuera de 1..10 se descartan.
func RenumerarFotos(datos map[string]any) {
	crudo, ok := datos["fotos"]
	if !ok {
		return
	}
	fotos := fotosDe(crudo)
	if fotos == nil {
		return
	}

	conservadas := make([]models.Foto, 0, len(fotos))
	for _, foto := range fotos {
		numero := ordenFoto(foto.Numero)
		if numero < 1 || numero > maxFotosPorCapitulo {
			continue
		}
		foto.Numero = fmt.Sprintf("%d", numero)
		conservadas = append(conservadas, foto)
	}
	datos["fotos"] = conservadas
}

// ordenFoto extrae el orden dentro del capítulo: la parte después del último
// punto, o el número completo cuando no hay capítulo.
func ordenFoto(numero string) int {
	if i := strings.LastIndex(numero, "."); i >= 0 {
		numero = numero[i+1:]
	}
	return aggregate.ParsearNumero(numero)
}

// aliasCampo declara una copia sufijo → campo base.
type aliasCampo struct {
	origen  string
	destino string
}

// Los datasets antiguos traen los campos con sufijo de área; el formulario
// los espera sin sufijo.
var aliases = []aliasCampo{
	{"textoPoblacionSexoAISD", "textoPoblacionSexo"},
	{"textoPoblacionEtariaAISD", "textoPoblacionEtaria"},
	{"textoPETAISD", "textoPET"},
	{"textoPEAAISD", "textoPEA"},
	{"textoReligionAISD", "textoReligion"},
	{"textoLenguaMaternaAISD", "textoLenguaMaterna"},
	{"textoEducacionAISD", "textoEducacion"},
	{"textoViviendasAISD", "textoViviendas"},
	{"poblacionSexoAISD", "poblacionSexo"},
	{"poblacionEtariaAISD", "poblacionEtaria"},
	{"materialesViviendaAISD", "materialesVivienda"},
}

// AplicarAlias copia cada campo con sufijo a su nombre base cuando el destino
// está vacío. El origen nunca se toca y un destino con valor nunca se pisa.
func AplicarAlias(datos map[string]any) {
	for _, alias := range aliases {
		valor, ok := datos[alias.origen]
		if !ok || models.EsVacio(valor) {
			continue
		}
		if actual, ok := datos[alias.destino]; ok && !models.EsVacio(actual) {
			continue
		}
		datos[alias.destino] = models.CopiarProfundo(valor)
	}
}

// totalDerivado declara un total calculado a partir de una tabla fuente.
type totalDerivado struct {
	destino string
	fuente  string
}

var totales = []totalDerivado{
	{"tablaAISD2TotalPoblacion", "poblacionSexoAISD"},
	{"totalPoblacionAISI", "poblacionSexoAISI"},
	{"totalViviendas", "tenenciaVivienda"},
}

// CalcularTotales rellena los totales derivados sumando la columna casos de
// su tabla fuente, sin contar filas Total. Un total ya definido en la entrada
// se respeta tal cual.
func CalcularTotales(datos map[string]any) {
	for _, total := range totales {
		if actual, ok := datos[total.destino]; ok && !models.EsVacio(actual) {
			continue
		}
		tabla := filasDe(datos[total.fuente])
		if tabla == nil {
			continue
		}
		suma := 0
		for _, fila := range tabla {
			if fila.EsTotal(models.CampoCategoria) {
				continue
			}
			suma += aggregate.ParsearNumero(fila[models.CampoCasos])
		}
		datos[total.destino] = suma
	}
}

// Tablas categoria/casos cuyos porcentajes se recalculan al cargar.
var tablasPorcentuales = []string{
	"poblacionSexoAISD",
	"poblacionSexoAISI",
	"poblacionEtariaAISD",
	"poblacionEtariaAISI",
	"religionDistrito",
	"lenguaMaternaDistrito",
	"afiliacionSalud",
	"nivelEducativo",
	"abastecimientoAgua",
	"servicioDesague",
	"alumbradoElectrico",
}

// Tablas de materiales de vivienda que además se normalizan.
var tablasMateriales = []string{
	"materialesVivienda",
	"materialesParedes",
	"materialesPisos",
}

// NormalizarTablas limpia las tablas de materiales y recalcula la columna de
// porcentajes de las tablas categoria/casos conocidas.
func NormalizarTablas(datos map[string]any) {
	for _, campo := range tablasMateriales {
		tabla := filasDe(datos[campo])
		if tabla == nil {
			continue
		}
		datos[campo] = aggregate.CalcularPorcentajesSimple(aggregate.NormalizarMateriales(tabla), campo)
	}
	for _, campo := range tablasPorcentuales {
		tabla := filasDe(datos[campo])
		if tabla == nil {
			continue
		}
		datos[campo] = aggregate.CalcularPorcentajesSimple(tabla, campo)
	}
}

// GenerarTextos redacta los párrafos descriptivos que faltan a partir de las
// tablas ya normalizadas. Un texto presente no se regenera.
func GenerarTextos(datos map[string]any) {
	if texto, ok := datos["textoPoblacionSexo"]; !ok || models.EsVacio(texto) {
		if generado := textoPoblacionSexo(filasDe(datos["poblacionSexoAISD"])); generado != "" {
			datos["textoPoblacionSexo"] = generado
		}
	}
	if texto, ok := datos["textoPoblacionEtaria"]; !ok || models.EsVacio(texto) {
		if generado := textoPredominante(filasDe(datos["poblacionEtariaAISD"]),
			"El grupo etario predominante es el de %s, con %d personas (%s del total)."); generado != "" {
			datos["textoPoblacionEtaria"] = generado
		}
	}
	if texto, ok := datos["textoReligion"]; !ok || models.EsVacio(texto) {
		if generado := textoPredominante(filasDe(datos["religionDistrito"]),
			"La religión predominante en el distrito es la %s, profesada por %d personas (%s)."); generado != "" {
			datos["textoReligion"] = generado
		}
	}
	if texto, ok := datos["textoLenguaMaterna"]; !ok || models.EsVacio(texto) {
		if generado := textoPredominante(filasDe(datos["lenguaMaternaDistrito"]),
			"La lengua materna predominante es el %s, con %d hablantes (%s)."); generado != "" {
			datos["textoLenguaMaterna"] = generado
		}
	}
}

func textoPoblacionSexo(tabla []models.Fila) string {
	var hombres, mujeres int
	for _, fila := range tabla {
		switch strings.ToLower(fila.Texto(models.CampoCategoria)) {
		case "hombres":
			hombres = aggregate.ParsearNumero(fila[models.CampoCasos])
		case "mujeres":
			mujeres = aggregate.ParsearNumero(fila[models.CampoCasos])
		}
	}
	total := hombres + mujeres
	if total == 0 {
		return ""
	}
	return fmt.Sprintf("La población está compuesta por %d hombres (%s) y %d mujeres (%s), con un total de %d habitantes.",
		hombres, aggregate.Porcentaje(float64(hombres), float64(total)),
		mujeres, aggregate.Porcentaje(float64(mujeres), float64(total)), total)
}

// textoPredominante redacta una oración con la fila de mayor casos.
func textoPredominante(tabla []models.Fila, formato string) string {
	var predominante models.Fila
	mayor, total := 0, 0
	for _, fila := range tabla {
		if fila.EsTotal(models.CampoCategoria) {
			continue
		}
		casos := aggregate.ParsearNumero(fila[models.CampoCasos])
		total += casos
		if casos > mayor {
			mayor = casos
			predominante = fila
		}
	}
	if predominante == nil || total == 0 {
		return ""
	}
	return fmt.Sprintf(formato, predominante.Texto(models.CampoCategoria), mayor,
		aggregate.Porcentaje(float64(mayor), float64(total)))
}

// filasDe acepta las tres formas en que una tabla llega de JSON o del código.
func filasDe(valor any) []models.Fila {
	switch tabla := valor.(type) {
	case []models.Fila:
		return tabla
	case []map[string]any:
		filas := make([]models.Fila, 0, len(tabla))
		for _, fila := range tabla {
			filas = append(filas, models.Fila(fila))
		}
		return filas
	case []any:
		filas := make([]models.Fila, 0, len(tabla))
		for _, elemento := range tabla {
			fila, ok := elemento.(map[string]any)
			if !ok {
				return nil
			}
			filas = append(filas, models.Fila(fila))
		}
		return filas
	default:
		return nil
	}
}

// fotosDe acepta fotos tipadas o el crudo de JSON.
func fotosDe(valor any) []models.Foto {
	switch fotos := valor.(type) {
	case []models.Foto:
		copia := make([]models.Foto, len(fotos))
		copy(copia, fotos)
		return copia
	case []any:
		convertidas := make([]models.Foto, 0, len(fotos))
		for _, elemento := range fotos {
			crudo, ok := elemento.(map[string]any)
			if !ok {
				return nil
			}
			foto := models.Foto{}
			foto.Numero, _ = crudo["numero"].(string)
			foto.Titulo, _ = crudo["titulo"].(string)
			foto.Fuente, _ = crudo["fuente"].(string)
			foto.Data, _ = crudo["data"].(string)
			convertidas = append(convertidas, foto)
		}
		return convertidas
	default:
		return nil
	}
}
