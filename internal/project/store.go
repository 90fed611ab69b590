// Package project implements the project-wide field and table store. It is
// the authoritative home of loaded values and tabular data; the legacy
// flattened data object is a read-only projection computed on demand, never a
// separately maintained copy.
package project

import (
	"sync"

	"github.com/linea-base/lbs/internal/models"
)

// Store holds project fields (section → group → field → value) and tables
// (section → table key → rows).
type Store struct {
	mu     sync.RWMutex
	campos map[string]map[string]map[string]any
	tablas map[string]map[string][]models.Fila
}

// New creates an empty project store.
func New() *Store {
	return &Store{
		campos: make(map[string]map[string]map[string]any),
		tablas: make(map[string]map[string][]models.Fila),
	}
}

// SetField writes one field value.
func (s *Store) SetField(seccionID, grupoID, campo string, valor any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	grupos, ok := s.campos[seccionID]
	if !ok {
		grupos = make(map[string]map[string]any)
		s.campos[seccionID] = grupos
	}
	valores, ok := grupos[grupoID]
	if !ok {
		valores = make(map[string]any)
		grupos[grupoID] = valores
	}
	valores[campo] = models.CopiarProfundo(valor)
}

// SelectField reads one field value (nil cuando falta).
func (s *Store) SelectField(seccionID, grupoID, campo string) any {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.campos[seccionID][grupoID][campo]
}

// Selector returns a reactive getter bound to one field, re-reading the
// store on every call.
func (s *Store) Selector(seccionID, grupoID, campo string) func() any {
	return func() any {
		return s.SelectField(seccionID, grupoID, campo)
	}
}

// SetTableData stores the rows of one table.
func (s *Store) SetTableData(seccionID, tablaID string, filas []models.Fila) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tablas, ok := s.tablas[seccionID]
	if !ok {
		tablas = make(map[string][]models.Fila)
		s.tablas[seccionID] = tablas
	}
	tablas[tablaID] = models.ClonarTabla(filas)
}

// SelectTableData returns a copy of the rows of one table (nil cuando falta).
func (s *Store) SelectTableData(seccionID, tablaID string) []models.Fila {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.ClonarTabla(s.tablas[seccionID][tablaID])
}

// ObtenerDatos computes the flattened snapshot the legacy readers consume:
// field name (tal como quedó escrito, con o sin prefijo) → value, y cada
// tabla bajo su clave. Groups later in the canonical order never overwrite a
// field already projected from an earlier group.
func (s *Store) ObtenerDatos() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	canonicos := make(map[string]bool, len(models.GruposCanonicos))
	for _, g := range models.GruposCanonicos {
		canonicos[g] = true
	}

	plano := make(map[string]any)
	for _, grupos := range s.campos {
		for _, grupoID := range models.GruposCanonicos {
			for campo, valor := range grupos[grupoID] {
				if _, ok := plano[campo]; !ok {
					plano[campo] = models.CopiarProfundo(valor)
				}
			}
		}
		// Grupos arbitrarios se proyectan después de los canónicos
		for grupoID, valores := range grupos {
			if canonicos[grupoID] {
				continue
			}
			for campo, valor := range valores {
				if _, ok := plano[campo]; !ok {
					plano[campo] = models.CopiarProfundo(valor)
				}
			}
		}
	}
	for _, tablas := range s.tablas {
		for tablaID, filas := range tablas {
			if _, ok := plano[tablaID]; !ok {
				plano[tablaID] = models.ClonarTabla(filas)
			}
		}
	}
	return plano
}

// Reset clears the whole store.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.campos = make(map[string]map[string]map[string]any)
	s.tablas = make(map[string]map[string][]models.Fila)
}
