package mapping

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/linea-base/lbs/internal/aggregate"
	"github.com/linea-base/lbs/internal/models"
	"github.com/linea-base/lbs/internal/orchestrator"
)

// ClienteCenso es la parte del cliente HTTP que usan los cargadores.
//
//go:generate moq -out cliente_censo_moq_test.go . ClienteCenso
type ClienteCenso interface {
	ConsultarPorUbigeo(ctx context.Context, endpoint, ubigeo string) ([]models.Fila, error)
	ConsultarPorCodigos(ctx context.Context, endpoint string, codigos []string) ([]models.Fila, error)
}

// Localidades resuelve los códigos de centros poblados de una sección.
type Localidades interface {
	CodigosGrupo(seccionID string) []string
	Ubigeo() string
}

// Proyecto es la vista de lectura sobre los datos del proyecto.
type Proyecto interface {
	SelectField(seccionID, grupoID, campo string) any
	ObtenerDatos() map[string]any
}

// Escritor entrega el resultado de una carga al orquestador.
type Escritor interface {
	PersistFields(ctx context.Context, seccionID, grupoID string, cambios map[string]any, opts orchestrator.Opciones)
}

// Cargador resuelve parámetros, consulta censusd y escribe el resultado.
type Cargador struct {
	registro    *Registro
	cliente     ClienteCenso
	localidades Localidades
	proyecto    Proyecto
	escritor    Escritor
	logger      *slog.Logger
}

// NewCargador wires a loader over the registry and its collaborators.
func NewCargador(registro *Registro, cliente ClienteCenso, localidades Localidades, proyecto Proyecto, escritor Escritor, logger *slog.Logger) *Cargador {
	return &Cargador{
		registro:    registro,
		cliente:     cliente,
		localidades: localidades,
		proyecto:    proyecto,
		escritor:    escritor,
		logger:      logger,
	}
}

// CargarCampo carga un campo de origen backend en la sección indicada. Los
// campos manuales y de sección no hacen nada: sus valores llegan por otras
// vías. Si el usuario edita el campo mientras la consulta está en vuelo, el
// resultado se descarta.
func (c *Cargador) CargarCampo(ctx context.Context, seccionID, grupoID, campo string) error {
	mapeo, ok := c.registro.Obtener(campo)
	if !ok {
		return fmt.Errorf("campo %q sin mapeo registrado", campo)
	}
	if mapeo.Origen != OrigenBackend {
		c.logger.Debug("campo sin carga remota", "campo", campo, "origen", mapeo.Origen)
		return nil
	}

	params, ok := c.resolverParametros(mapeo, seccionID)
	if !ok {
		c.logger.Debug("sin parámetros para la consulta", "campo", campo, "seccion", seccionID)
		return nil
	}

	// Valor vigente antes de salir a la red; es la referencia del guard.
	previo := c.proyecto.SelectField(seccionID, grupoID, campo)

	filas, err := c.consultar(ctx, mapeo, params)
	if err != nil {
		return fmt.Errorf("consultar %s: %w", mapeo.Endpoint, err)
	}
	valor := c.transformar(mapeo, campo, filas)

	actual := c.proyecto.SelectField(seccionID, grupoID, campo)
	if !models.IgualesJSON(actual, previo) {
		c.logger.Warn("respuesta descartada: el campo cambió durante la consulta",
			"campo", campo, "seccion", seccionID)
		return nil
	}

	c.escritor.PersistFields(ctx, seccionID, grupoID, map[string]any{campo: valor}, orchestrator.OpcionesPorDefecto())
	return nil
}

// CargarCampos carga varios campos y junta los errores; un campo fallido no
// detiene a los demás.
func (c *Cargador) CargarCampos(ctx context.Context, seccionID, grupoID string, campos []string) error {
	var errs []error
	for _, campo := range campos {
		if err := c.CargarCampo(ctx, seccionID, grupoID, campo); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CamposBackend devuelve, en orden estable, los campos registrados con
// origen backend.
func (c *Cargador) CamposBackend() []string {
	var campos []string
	for _, campo := range c.registro.Campos() {
		if m, ok := c.registro.Obtener(campo); ok && m.Origen == OrigenBackend {
			campos = append(campos, campo)
		}
	}
	sort.Strings(campos)
	return campos
}

// resolverParametros decide con qué parámetros se consulta el endpoint:
// la función Params del mapeo manda; después, los endpoints demográficos y
// de centros poblados consultan por los códigos del grupo de la sección; el
// resto consulta por el ubigeo del proyecto.
func (c *Cargador) resolverParametros(mapeo Mapeo, seccionID string) (Parametros, bool) {
	if mapeo.Params != nil {
		return mapeo.Params(seccionID, c.proyecto.ObtenerDatos())
	}
	if strings.Contains(mapeo.Endpoint, "/demograficos/") || strings.Contains(mapeo.Endpoint, "/centros-poblados/") {
		codigos := c.localidades.CodigosGrupo(seccionID)
		if len(codigos) == 0 {
			return Parametros{}, false
		}
		return Parametros{Codigos: codigos}, true
	}
	ubigeo := c.localidades.Ubigeo()
	if ubigeo == "" {
		return Parametros{}, false
	}
	return Parametros{Ubigeo: ubigeo}, true
}

func (c *Cargador) consultar(ctx context.Context, mapeo Mapeo, params Parametros) ([]models.Fila, error) {
	switch mapeo.Endpoint {
	case EndpointPoblacionSexo, EndpointPoblacionEtaria, EndpointPEA:
		return c.consultarAcumulando(ctx, mapeo.Endpoint, params, AddDemograficos)
	case EndpointMateriales:
		return c.consultarAcumulando(ctx, mapeo.Endpoint, params, AddMateriales)
	case EndpointReligion, EndpointLengua:
		return c.consultarAcumulando(ctx, mapeo.Endpoint, params, AddDirectPorCategoria)
	default:
		if len(params.Codigos) > 0 {
			return c.cliente.ConsultarPorCodigos(ctx, mapeo.Endpoint, params.Codigos)
		}
		return c.cliente.ConsultarPorUbigeo(ctx, mapeo.Endpoint, params.Ubigeo)
	}
}

// consultarAcumulando hace una consulta por cada código del grupo y mezcla
// los lotes con la regla de acumulación del endpoint. Sin códigos, una sola
// consulta por ubigeo alimenta el mismo acumulador.
func (c *Cargador) consultarAcumulando(ctx context.Context, endpoint string, params Parametros, sumar func(acumulado, lote []models.Fila) []models.Fila) ([]models.Fila, error) {
	if len(params.Codigos) == 0 {
		lote, err := c.cliente.ConsultarPorUbigeo(ctx, endpoint, params.Ubigeo)
		if err != nil {
			return nil, err
		}
		return sumar(nil, lote), nil
	}
	var acumulado []models.Fila
	for _, codigo := range params.Codigos {
		lote, err := c.cliente.ConsultarPorCodigos(ctx, endpoint, []string{codigo})
		if err != nil {
			return nil, err
		}
		acumulado = sumar(acumulado, lote)
	}
	return acumulado, nil
}

func (c *Cargador) transformar(mapeo Mapeo, campo string, filas []models.Fila) any {
	if mapeo.Transformar != nil {
		return mapeo.Transformar(filas)
	}
	switch mapeo.Endpoint {
	case EndpointPoblacionSexo:
		return aggregate.TransformarPoblacionSexo(primeraFila(filas))
	case EndpointPoblacionEtaria:
		return aggregate.TransformarPoblacionEtario(primeraFila(filas))
	case EndpointPEA:
		return aggregate.TransformarPET(primeraFila(filas))
	case EndpointMateriales:
		return aggregate.CalcularPorcentajesSimple(aggregate.NormalizarMateriales(filas), campo)
	case EndpointReligion, EndpointLengua, EndpointMatricula:
		return aggregate.CalcularPorcentajesSimple(filas, campo)
	default:
		return filas
	}
}

func primeraFila(filas []models.Fila) models.Fila {
	if len(filas) == 0 {
		return models.Fila{}
	}
	return filas[0]
}
