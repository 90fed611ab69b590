// Package syncbus implements the per-section subscription mechanism that
// keeps section components in sync with the form state store. It expands
// watched fields by locality prefix, merges values across the canonical
// groups, debounces, and delivers only the fields that changed.
//
// A second low-latency path carries changes pushed directly by the
// orchestrator, without waiting for the store's propagation.
package syncbus

import (
	"log/slog"
	"sync"
	"time"

	"github.com/linea-base/lbs/internal/formstate"
	"github.com/linea-base/lbs/internal/locality"
	"github.com/linea-base/lbs/internal/models"
)

// Ventanas de coalescencia de cada camino.
const (
	DebounceStore  = 10 * time.Millisecond
	DebounceNotify = 50 * time.Millisecond
)

// Cambios maps field name to its new value.
type Cambios map[string]any

// Bus routes form state changes to per-section subscribers.
type Bus struct {
	mu             sync.Mutex
	store          *formstate.Store
	logger         *slog.Logger
	subs           map[string]*subscripcion
	cancelStore    func()
	debounceStore  time.Duration
	debounceNotify time.Duration
}

// subscripcion es el estado de una sección suscrita.
type subscripcion struct {
	seccionID string
	campos    []string // nombres ya expandidos por prefijo
	cb        func(Cambios)

	ultimo          map[string]any // último valor observado por el camino store
	pendienteStore  Cambios
	pendienteNotify Cambios
	forzar          bool
	timerStore      *time.Timer
	timerNotify     *time.Timer
	cerrada         bool
}

// New creates a bus observing the given store.
func New(store *formstate.Store, logger *slog.Logger) *Bus {
	return NewConVentanas(store, logger, DebounceStore, DebounceNotify)
}

// NewConVentanas permite acortar las ventanas de debounce en pruebas.
func NewConVentanas(store *formstate.Store, logger *slog.Logger, vStore, vNotify time.Duration) *Bus {
	b := &Bus{
		store:          store,
		logger:         logger,
		subs:           make(map[string]*subscripcion),
		debounceStore:  vStore,
		debounceNotify: vNotify,
	}
	b.cancelStore = store.Subscribe(b.alCambiarEstado)
	return b
}

// Close detaches the bus from the store and disposes every subscription.
func (b *Bus) Close() {
	if b.cancelStore != nil {
		b.cancelStore()
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for id, sub := range b.subs {
		sub.cerrar()
		delete(b.subs, id)
	}
}

// SubscribeToSection watches a set of fields for one section. Cada campo se
// expande con el prefijo de localidad de la sección; el callback recibe sólo
// los campos cuyo valor cambió y está definido.
//
// Subscribing a section that already has a subscription disposes the previous
// one first: no leak, no duplicate firing.
func (b *Bus) SubscribeToSection(seccionID string, campos []string, cb func(Cambios)) func() {
	expandidos := make([]string, 0, len(campos)*2)
	for _, campo := range campos {
		expandidos = append(expandidos, locality.ExpandirCampo(seccionID, campo)...)
	}

	sub := &subscripcion{
		seccionID: seccionID,
		campos:    expandidos,
		cb:        cb,
		ultimo:    make(map[string]any, len(expandidos)),
	}

	b.mu.Lock()
	if previa, ok := b.subs[seccionID]; ok {
		previa.cerrar()
	}
	b.subs[seccionID] = sub
	b.mu.Unlock()

	// Sembramos los valores actuales sin disparar el callback
	b.mu.Lock()
	estado := b.store.GetSectionState(seccionID)
	for _, campo := range sub.campos {
		if valor, ok := b.valorDeGrupos(sub.seccionID, estado, campo); ok {
			sub.ultimo[campo] = valor
		}
	}
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.subs[seccionID] == sub {
			delete(b.subs, seccionID)
		}
		sub.cerrar()
	}
}

// NotifyChanges is the producer side of the low-latency path: it pushes
// changes straight to the section's subscriber, bypassing store latency.
func (b *Bus) NotifyChanges(seccionID string, cambios Cambios) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[seccionID]
	if !ok || sub.cerrada {
		return
	}

	// Filtramos a los campos suscritos, copiando los valores de tipo arreglo
	for _, campo := range sub.campos {
		valor, ok := cambios[campo]
		if !ok || valor == nil {
			continue
		}
		if sub.pendienteNotify == nil {
			sub.pendienteNotify = Cambios{}
		}
		sub.pendienteNotify[campo] = models.CopiarProfundo(valor)
	}

	if len(sub.pendienteNotify) == 0 && !sub.forzar {
		return
	}
	b.reprogramarNotify(sub)
}

// ForceUpdate re-emits an empty-change event for the section, triggering
// recomputation without new data.
func (b *Bus) ForceUpdate(seccionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub, ok := b.subs[seccionID]
	if !ok || sub.cerrada {
		return
	}
	sub.forzar = true
	b.reprogramarNotify(sub)
}

// alCambiarEstado es el observador del camino store.
func (b *Bus) alCambiarEstado(root models.FormState) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, sub := range b.subs {
		if sub.cerrada {
			continue
		}

		estado := root[sub.seccionID]
		for _, campo := range sub.campos {
			valor, definido := b.valorDeGrupos(sub.seccionID, estado, campo)
			if !definido {
				continue // los valores nulos se filtran
			}
			previo, visto := sub.ultimo[campo]
			if visto && models.IgualesJSON(previo, valor) {
				continue
			}
			sub.ultimo[campo] = valor
			if sub.pendienteStore == nil {
				sub.pendienteStore = Cambios{}
			}
			sub.pendienteStore[campo] = valor
		}

		if len(sub.pendienteStore) == 0 {
			continue
		}

		// Debounce: cada cambio reinicia la ventana
		if sub.timerStore != nil {
			sub.timerStore.Stop()
		}
		s := sub
		sub.timerStore = time.AfterFunc(b.debounceStore, func() {
			b.dispararStore(s)
		})
	}
}

// valorDeGrupos resolves a field across the canonical groups: the first group
// holding a defined value wins. Si otro grupo guarda un valor distinto para
// el mismo campo, ese valor se descarta y queda constancia en el log.
func (b *Bus) valorDeGrupos(seccionID string, estado models.SectionFormState, campo string) (any, bool) {
	if estado == nil {
		return nil, false
	}

	var elegido any
	definido := false
	grupoElegido := ""

	for _, grupoID := range models.GruposCanonicos {
		fs := estado[grupoID][campo]
		if fs == nil || fs.Value == nil {
			continue
		}
		if !definido {
			elegido = fs.Value
			definido = true
			grupoElegido = grupoID
			continue
		}
		if !models.IgualesJSON(elegido, fs.Value) {
			b.logger.Warn("valores en conflicto entre grupos, gana el primero",
				"seccion", seccionID,
				"campo", campo,
				"grupo_elegido", grupoElegido,
				"grupo_descartado", grupoID)
		}
	}

	return elegido, definido
}

// dispararStore entrega los cambios acumulados del camino store.
func (b *Bus) dispararStore(sub *subscripcion) {
	b.mu.Lock()
	if sub.cerrada || len(sub.pendienteStore) == 0 {
		b.mu.Unlock()
		return
	}
	cambios := sub.pendienteStore
	sub.pendienteStore = nil
	cb := sub.cb
	b.mu.Unlock()

	cb(cambios)
}

// reprogramarNotify reinicia la ventana del camino de notificación directa.
// Se llama con el lock tomado.
func (b *Bus) reprogramarNotify(sub *subscripcion) {
	if sub.timerNotify != nil {
		sub.timerNotify.Stop()
	}
	s := sub
	sub.timerNotify = time.AfterFunc(b.debounceNotify, func() {
		b.dispararNotify(s)
	})
}

// dispararNotify entrega los cambios del camino de notificación.
func (b *Bus) dispararNotify(sub *subscripcion) {
	b.mu.Lock()
	if sub.cerrada || (len(sub.pendienteNotify) == 0 && !sub.forzar) {
		b.mu.Unlock()
		return
	}
	cambios := sub.pendienteNotify
	if cambios == nil {
		cambios = Cambios{}
	}
	sub.pendienteNotify = nil
	sub.forzar = false
	cb := sub.cb
	b.mu.Unlock()

	cb(cambios)
}

// cerrar detiene los timers de la suscripción. Se llama con el lock tomado.
func (s *subscripcion) cerrar() {
	s.cerrada = true
	if s.timerStore != nil {
		s.timerStore.Stop()
	}
	if s.timerNotify != nil {
		s.timerNotify.Stop()
	}
}
