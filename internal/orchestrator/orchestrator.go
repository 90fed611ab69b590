// Package orchestrator implements the field-change and persistence
// orchestrator: the only writer allowed to synchronize the project store, the
// reactive form state store, the table store and the sync bus for one logical
// update. Cualquier otro camino de escritura introduce deriva entre las
// réplicas; ésa es la invariante que protege este paquete.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/linea-base/lbs/internal/formstate"
	"github.com/linea-base/lbs/internal/locality"
	"github.com/linea-base/lbs/internal/models"
	"github.com/linea-base/lbs/internal/persist"
	"github.com/linea-base/lbs/internal/project"
	"github.com/linea-base/lbs/internal/syncbus"
)

// RetardoGuardado is the per-section disk-write coalescing window: a second
// update for the same section within the window replaces the pending write.
const RetardoGuardado = 200 * time.Millisecond

// Opciones controls which replicas one PersistFields call touches.
type Opciones struct {
	ActualizarProyecto bool // escribir el almacén de proyecto (objeto aplanado)
	ActualizarEstado   bool // escribir el form state store reactivo
	Notificar          bool // empujar por el canal directo del sync bus
	Persistir          bool // programar el guardado en disco con coalescencia
}

// OpcionesPorDefecto enables every replica.
func OpcionesPorDefecto() Opciones {
	return Opciones{
		ActualizarProyecto: true,
		ActualizarEstado:   true,
		Notificar:          true,
		Persistir:          true,
	}
}

// Orquestador fans raw field updates out to every replica.
type Orquestador struct {
	estado      *formstate.Store
	proyecto    *project.Store
	bus         *syncbus.Bus
	persistente *persist.Engine
	logger      *slog.Logger

	mu      sync.Mutex
	timers  map[string]*time.Timer
	retardo time.Duration
	ttl     time.Duration
}

// New creates an orchestrator over the four replicas.
func New(estado *formstate.Store, proyecto *project.Store, bus *syncbus.Bus, persistente *persist.Engine, logger *slog.Logger) *Orquestador {
	return &Orquestador{
		estado:      estado,
		proyecto:    proyecto,
		bus:         bus,
		persistente: persistente,
		logger:      logger,
		timers:      make(map[string]*time.Timer),
		retardo:     RetardoGuardado,
	}
}

// ConRetardo shortens the coalescing window (pruebas).
func (o *Orquestador) ConRetardo(retardo time.Duration) *Orquestador {
	o.retardo = retardo
	return o
}

// PersistFields applies one logical update to a section.
//
// Cuando grupoID es "table" y el valor es una tabla, la tabla entra al
// almacén de tablas del proyecto y se refleja en el almacén aplanado bajo la
// clave simple y la prefijada, de modo que ambos esquemas de nombres
// observen el mismo arreglo. Un fallo del reflejo se registra y no aborta la
// persistencia principal.
func (o *Orquestador) PersistFields(ctx context.Context, seccionID, grupoID string, cambios map[string]any, opts Opciones) {
	for campo, valor := range cambios {
		if grupoID == models.GrupoTable {
			if filas, ok := comoTabla(valor); ok {
				o.proyecto.SetTableData(seccionID, campo, filas)
				o.reflejarTabla(seccionID, grupoID, campo, filas)
			} else if opts.ActualizarProyecto {
				o.proyecto.SetField(seccionID, grupoID, campo, valor)
			}
		} else if opts.ActualizarProyecto {
			o.proyecto.SetField(seccionID, grupoID, campo, valor)
		}

		if opts.ActualizarEstado {
			o.estado.UpdateField(seccionID, grupoID, campo, valor)
		}
	}

	if opts.Notificar {
		o.bus.NotifyChanges(seccionID, syncbus.Cambios(cambios))
	}

	if opts.Persistir {
		o.programarGuardado(seccionID)
	}
}

// reflejarTabla duplica la tabla bajo la clave simple y la prefijada.
// Los fallos aquí nunca interrumpen la actualización principal.
func (o *Orquestador) reflejarTabla(seccionID, grupoID, campo string, filas []models.Fila) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Warn("fallo al reflejar la tabla en el almacén aplanado",
				"seccion", seccionID, "tabla", campo, "error", fmt.Sprint(r))
		}
	}()

	clave := models.ParseFieldKey(campo)
	o.proyecto.SetField(seccionID, grupoID, clave.BaseName, filas)

	conPrefijo := locality.ClaveCampo(seccionID, clave.BaseName).String()
	if conPrefijo != clave.BaseName {
		o.proyecto.SetField(seccionID, grupoID, conPrefijo, filas)
	}
}

// programarGuardado (re)inicia el timer de guardado de la sección: una nueva
// actualización dentro de la ventana cancela el timer pendiente y lo
// reemplaza, así sólo se escribe el último estado de la ventana.
func (o *Orquestador) programarGuardado(seccionID string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if timer, ok := o.timers[seccionID]; ok {
		timer.Stop()
	}
	o.timers[seccionID] = time.AfterFunc(o.retardo, func() {
		o.guardarAhora(seccionID)
	})
}

// guardarAhora vuelca el estado actual de la sección a disco.
func (o *Orquestador) guardarAhora(seccionID string) {
	o.mu.Lock()
	delete(o.timers, seccionID)
	o.mu.Unlock()

	estado := o.estado.GetSectionState(seccionID)
	if estado == nil {
		return
	}

	if err := o.persistente.SaveSectionState(context.Background(), seccionID, estado, 0); err != nil {
		o.logger.Warn("no se pudo guardar el snapshot de la sección",
			"seccion", seccionID, "error", err)
	}
}

// Flush fuerza el volcado inmediato de todos los guardados pendientes.
func (o *Orquestador) Flush() {
	o.mu.Lock()
	secciones := make([]string, 0, len(o.timers))
	for seccionID, timer := range o.timers {
		timer.Stop()
		secciones = append(secciones, seccionID)
	}
	o.mu.Unlock()

	for _, seccionID := range secciones {
		o.guardarAhora(seccionID)
	}
}

// RestoreSectionState copies persisted values into the live flattened data,
// campo por campo, sólo donde el valor vivo está vacío: lo persistido jamás
// pisa un campo que el usuario ya pobló. Devuelve cuántos campos se
// restauraron.
func (o *Orquestador) RestoreSectionState(ctx context.Context, seccionID string, actual map[string]any) (int, error) {
	persistido, err := o.persistente.LoadSectionState(ctx, seccionID)
	if err != nil {
		return 0, fmt.Errorf("failed to load persisted section: %w", err)
	}
	if persistido == nil {
		return 0, nil
	}

	// Grupos canónicos primero y el resto en orden estable, para que un
	// campo repetido en varios grupos se restaure de forma determinista
	grupos := make([]string, 0, len(persistido))
	grupos = append(grupos, models.GruposCanonicos...)
	for grupoID := range persistido {
		if !slices.Contains(grupos, grupoID) {
			grupos = append(grupos, grupoID)
		}
	}
	slices.Sort(grupos[len(models.GruposCanonicos):])

	restaurados := 0
	for _, grupoID := range grupos {
		for campo, fs := range persistido[grupoID] {
			if fs == nil || fs.Value == nil {
				continue
			}
			if !models.EsVacio(actual[campo]) {
				continue
			}
			actual[campo] = models.CopiarProfundo(fs.Value)
			restaurados++
		}
	}

	if restaurados > 0 {
		o.logger.Info("sección restaurada desde snapshot",
			"seccion", seccionID, "campos", restaurados)
	}
	return restaurados, nil
}

// comoTabla intenta interpretar un valor como tabla de filas.
func comoTabla(valor any) ([]models.Fila, bool) {
	switch t := valor.(type) {
	case []models.Fila:
		return t, true
	case []any:
		filas := make([]models.Fila, 0, len(t))
		for _, elem := range t {
			m, ok := elem.(map[string]any)
			if !ok {
				return nil, false
			}
			filas = append(filas, models.Fila(m))
		}
		return filas, true
	}
	return nil, false
}
