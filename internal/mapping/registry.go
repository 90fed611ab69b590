// Package mapping contiene el registro declarativo campo → origen de datos y
// los cargadores que resuelven parámetros, consultan censusd y agregan los
// resultados antes de entregarlos al orquestador.
package mapping

import (
	"github.com/linea-base/lbs/internal/models"
)

// OrigenDato clasifica de dónde sale el valor de un campo.
type OrigenDato string

// Valores posibles del origen; el conjunto es cerrado.
const (
	OrigenManual  OrigenDato = "manual"  // lo digita el usuario
	OrigenSeccion OrigenDato = "section" // derivado de otra sección
	OrigenBackend OrigenDato = "backend" // consultado a censusd
)

// Rutas de los endpoints de censusd.
const (
	EndpointPoblacionSexo   = "/api/v1/demograficos/poblacion-sexo"
	EndpointPoblacionEtaria = "/api/v1/demograficos/poblacion-etaria"
	EndpointCentrosPoblados = "/api/v1/centros-poblados/listar"
	EndpointPEA             = "/api/v1/economicos/pea"
	EndpointMateriales      = "/api/v1/vivienda/materiales"
	EndpointReligion        = "/api/v1/social/religion"
	EndpointLengua          = "/api/v1/social/lengua"
	EndpointMatricula       = "/api/v1/educacion/matricula"
)

// Parametros son los parámetros ya resueltos de una consulta.
type Parametros struct {
	Ubigeo  string
	Codigos []string
}

// Mapeo declara cómo se obtiene un campo.
type Mapeo struct {
	Campo    string
	Origen   OrigenDato
	Endpoint string

	// Params, si está definido, resuelve los parámetros de la consulta a
	// partir de la sección y los datos actuales del proyecto. Tiene
	// prioridad sobre la resolución automática por endpoint.
	Params func(seccionID string, datos map[string]any) (Parametros, bool)

	// Transformar convierte las filas agregadas en el valor final del campo.
	Transformar func(filas []models.Fila) any
}

// Registro es la tabla de mapeos construida una vez al arranque. Sólo
// RegisterMapping la modifica después: la registración más reciente
// reemplaza a la anterior para ese campo.
type Registro struct {
	mapeos map[string]Mapeo
}

// NewRegistro builds the registry with the full field table.
func NewRegistro() *Registro {
	r := &Registro{mapeos: make(map[string]Mapeo, len(tablaMapeos))}
	for _, m := range tablaMapeos {
		r.mapeos[m.Campo] = m
	}
	return r
}

// RegisterMapping registra o reemplaza el mapeo de un campo.
func (r *Registro) RegisterMapping(m Mapeo) {
	r.mapeos[m.Campo] = m
}

// Obtener devuelve el mapeo de un campo.
func (r *Registro) Obtener(campo string) (Mapeo, bool) {
	m, ok := r.mapeos[campo]
	return m, ok
}

// Campos devuelve los nombres de todos los campos registrados.
func (r *Registro) Campos() []string {
	campos := make([]string, 0, len(r.mapeos))
	for campo := range r.mapeos {
		campos = append(campos, campo)
	}
	return campos
}

// backend construye una entrada consultada a censusd.
func backend(campo, endpoint string) Mapeo {
	return Mapeo{Campo: campo, Origen: OrigenBackend, Endpoint: endpoint}
}

// manual construye una entrada digitada por el usuario.
func manual(campo string) Mapeo {
	return Mapeo{Campo: campo, Origen: OrigenManual}
}

// seccion construye una entrada derivada de otra sección.
func seccion(campo string) Mapeo {
	return Mapeo{Campo: campo, Origen: OrigenSeccion}
}

// tablaMapeos es la tabla completa de campos del formulario.
var tablaMapeos = []Mapeo{
	// Demografía del AISD (agregada por comunidad campesina)
	backend("poblacionSexoAISD", EndpointPoblacionSexo),
	backend("poblacionEtariaAISD", EndpointPoblacionEtaria),
	backend("petAISD", EndpointPEA),
	backend("peaAISD", EndpointPEA),

	// Demografía del AISI (agregada por localidad)
	backend("poblacionSexoAISI", EndpointPoblacionSexo),
	backend("poblacionEtariaAISI", EndpointPoblacionEtaria),
	backend("petAISI", EndpointPEA),

	// Padrón de centros poblados
	backend("centrosPoblados", EndpointCentrosPoblados),

	// Indicadores sociales por distrito
	backend("religionDistrito", EndpointReligion),
	backend("lenguaMaternaDistrito", EndpointLengua),
	backend("materialesVivienda", EndpointMateriales),
	backend("materialesParedes", EndpointMateriales),
	backend("materialesPisos", EndpointMateriales),
	backend("matriculaEscolar", EndpointMatricula),

	// Totales derivados de otras secciones
	seccion("tablaAISD2TotalPoblacion"),
	seccion("totalPoblacionAISI"),
	seccion("totalViviendas"),
	seccion("resumenDemografico"),
	seccion("indicePEA"),
	seccion("indiceDependencia"),

	// Identificación del proyecto
	manual("nombreProyecto"),
	manual("titularProyecto"),
	manual("consultora"),
	manual("fechaElaboracion"),
	manual("id_ubigeo"),
	manual("departamento"),
	manual("provincia"),
	manual("distrito"),

	// Textos descriptivos por sección
	manual("textoPoblacionSexo"),
	manual("textoPoblacionEtaria"),
	manual("textoPET"),
	manual("textoPEA"),
	manual("textoReligion"),
	manual("textoLenguaMaterna"),
	manual("textoMigracion"),
	manual("textoNatalidad"),
	manual("textoMortalidad"),
	manual("textoSalud"),
	manual("textoEducacion"),
	manual("textoViviendas"),
	manual("textoMateriales"),
	manual("textoServiciosBasicos"),
	manual("textoActividadesEconomicas"),
	manual("textoGanaderia"),
	manual("textoAgricultura"),
	manual("textoComercio"),
	manual("textoTransporte"),
	manual("textoOrganizacionSocial"),
	manual("textoFestividades"),

	// Tablas digitadas cuando el censo no cubre la localidad
	manual("natalidadAnual"),
	manual("mortalidadAnual"),
	manual("morbilidadGeneral"),
	manual("afiliacionSalud"),
	manual("nivelEducativo"),
	manual("tasaAnalfabetismo"),
	manual("institucionesEducativas"),
	manual("establecimientosSalud"),
	manual("tenenciaVivienda"),
	manual("alumbradoElectrico"),
	manual("abastecimientoAgua"),
	manual("servicioDesague"),
	manual("actividadesEconomicas"),
	manual("cultivosPrincipales"),
	manual("crianzaAnimales"),

	// Anexos
	manual("fotos"),
	manual("mapaUbicacion"),
}
