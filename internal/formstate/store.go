// Package formstate implements the in-memory reactive form state store:
// the single source of truth for UI-observable field states, keyed
// section → group → field.
package formstate

import (
	"sync"

	"github.com/linea-base/lbs/internal/models"
)

// Store holds the reactive form state tree and its subscribers.
// Every mutation republishes the whole tree as a new root object, with fresh
// maps along the mutated section/group path and structural sharing elsewhere,
// so observers can rely on referential inequality for change detection.
type Store struct {
	mu      sync.RWMutex
	root    models.FormState
	subs    map[int]func(models.FormState)
	nextSub int
}

// New creates an empty store.
func New() *Store {
	return &Store{
		root: models.FormState{},
		subs: make(map[int]func(models.FormState)),
	}
}

// Subscribe registers a callback invoked with the new root after every
// effective mutation. Returns a cancel function.
func (s *Store) Subscribe(fn func(models.FormState)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// UpdateField writes a field value. Arrays and objects are deep-copied,
// touched and dirty are forced true, and any errors/metadata recorded on the
// previous state are preserved. Escrituras con un valor idéntico al actual se
// descartan sin notificar.
func (s *Store) UpdateField(seccionID, grupoID, campo string, valor any) {
	s.mu.Lock()

	previo := s.getFieldLocked(seccionID, grupoID, campo)
	if previo != nil && models.IgualesJSON(previo.Value, valor) {
		s.mu.Unlock()
		return
	}

	nuevo := &models.FieldState{
		Value:   models.CopiarProfundo(valor),
		Touched: true,
		Dirty:   true,
	}
	if previo != nil {
		nuevo.Errors = previo.Errors
		nuevo.Metadata = previo.Metadata
	}

	// Raíz nueva + camino mutado nuevo, compartiendo el resto de secciones
	s.root = conCampo(s.root, seccionID, grupoID, campo, nuevo)
	s.emitLocked()
}

// conCampo rebuilds the tree with one field replaced, sharing every untouched
// section and group.
func conCampo(actual models.FormState, seccionID, grupoID, campo string, estado *models.FieldState) models.FormState {
	root := make(models.FormState, len(actual)+1)
	for id, seccion := range actual {
		root[id] = seccion
	}

	seccion := make(models.SectionFormState, len(actual[seccionID])+1)
	for id, grupo := range actual[seccionID] {
		seccion[id] = grupo
	}

	grupo := make(models.GroupState, len(actual[seccionID][grupoID])+1)
	for nombre, fs := range actual[seccionID][grupoID] {
		grupo[nombre] = fs
	}

	grupo[campo] = estado
	seccion[grupoID] = grupo
	root[seccionID] = seccion
	return root
}

// SetFieldErrors records validation errors for a field without touching its
// value. Crea el campo si aún no existe.
func (s *Store) SetFieldErrors(seccionID, grupoID, campo string, errores map[string]string) {
	s.mu.Lock()

	nuevo := &models.FieldState{}
	if previo := s.getFieldLocked(seccionID, grupoID, campo); previo != nil {
		*nuevo = *previo
	}
	nuevo.Errors = errores

	s.root = conCampo(s.root, seccionID, grupoID, campo, nuevo)
	s.emitLocked()
}

// GetField returns the state of one field, or nil when any path segment is
// absent. Never panics.
func (s *Store) GetField(seccionID, grupoID, campo string) *models.FieldState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getFieldLocked(seccionID, grupoID, campo)
}

// GetSectionState returns the state subtree of a section (nil when absent).
func (s *Store) GetSectionState(seccionID string) models.SectionFormState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root[seccionID]
}

// SetFormState replaces the whole tree. nil se normaliza a árbol vacío.
func (s *Store) SetFormState(root models.FormState) {
	s.mu.Lock()
	if root == nil {
		root = models.FormState{}
	}
	s.root = root
	s.emitLocked()
}

// ResetSection deletes one section subtree.
func (s *Store) ResetSection(seccionID string) {
	s.mu.Lock()
	if _, ok := s.root[seccionID]; !ok {
		s.mu.Unlock()
		return
	}

	root := make(models.FormState, len(s.root))
	for id, seccion := range s.root {
		if id != seccionID {
			root[id] = seccion
		}
	}
	s.root = root
	s.emitLocked()
}

// ResetForm clears the whole tree.
func (s *Store) ResetForm() {
	s.mu.Lock()
	s.root = models.FormState{}
	s.emitLocked()
}

// Export returns a deep copy of the whole tree, suitable for backup flows.
func (s *Store) Export() models.FormState {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copia, ok := models.CopiarProfundo(s.root).(map[string]any)
	if !ok {
		return models.FormState{}
	}
	return desdeGenerico(copia)
}

// desdeGenerico reconstruye el árbol tipado a partir del JSON genérico que
// produce la copia profunda.
func desdeGenerico(crudo map[string]any) models.FormState {
	root := make(models.FormState, len(crudo))
	for seccionID, s := range crudo {
		seccionCruda, ok := s.(map[string]any)
		if !ok {
			continue
		}
		seccion := make(models.SectionFormState, len(seccionCruda))
		for grupoID, g := range seccionCruda {
			grupoCrudo, ok := g.(map[string]any)
			if !ok {
				continue
			}
			grupo := make(models.GroupState, len(grupoCrudo))
			for campo, f := range grupoCrudo {
				campoCrudo, ok := f.(map[string]any)
				if !ok {
					continue
				}
				fs := &models.FieldState{Value: campoCrudo["value"]}
				fs.Touched, _ = campoCrudo["touched"].(bool)
				fs.Dirty, _ = campoCrudo["dirty"].(bool)
				if errs, ok := campoCrudo["errors"].(map[string]any); ok {
					fs.Errors = make(map[string]string, len(errs))
					for k, v := range errs {
						fs.Errors[k], _ = v.(string)
					}
				}
				if meta, ok := campoCrudo["metadata"].(map[string]any); ok {
					fs.Metadata = &models.FieldMetadata{}
					fs.Metadata.AutoloadedFrom, _ = meta["autoloadedFrom"].(string)
					fs.Metadata.ManuallyEdited, _ = meta["manuallyEdited"].(bool)
				}
				grupo[campo] = fs
			}
			seccion[grupoID] = grupo
		}
		root[seccionID] = seccion
	}
	return root
}

// Import replaces the whole tree with a previously exported one.
func (s *Store) Import(root models.FormState) {
	s.SetFormState(root)
}

// getFieldLocked navega la ruta sección/grupo/campo; ausente → nil.
func (s *Store) getFieldLocked(seccionID, grupoID, campo string) *models.FieldState {
	seccion, ok := s.root[seccionID]
	if !ok {
		return nil
	}
	grupo, ok := seccion[grupoID]
	if !ok {
		return nil
	}
	return grupo[campo]
}

// emitLocked notifica a los suscriptores y suelta el lock.
func (s *Store) emitLocked() {
	root := s.root
	subs := make([]func(models.FormState), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(root)
	}
}
