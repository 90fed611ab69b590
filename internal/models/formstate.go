package models

import (
	"bytes"
	"encoding/json"
)

// Group identifiers used by form components. The enumeration order is
// significant: the sync bus resolves field conflicts by taking the first
// group holding a non-nil value.
const (
	GrupoForm    = "form"
	GrupoDefault = "default"
	GrupoTable   = "table"
	GrupoSection = "section"
)

// GruposCanonicos is the canonical group enumeration order.
var GruposCanonicos = []string{GrupoForm, GrupoDefault, GrupoTable, GrupoSection}

// FieldMetadata хранит el origen y la edición manual de un campo.
type FieldMetadata struct {
	AutoloadedFrom string `json:"autoloadedFrom,omitempty"`
	ManuallyEdited bool   `json:"manuallyEdited,omitempty"`
}

// FieldState represents the observable state of a single form field.
// Created on first write, mutated on every subsequent write: the value is
// replaced, touched/dirty are forced true, errors and metadata are preserved
// unless explicitly overwritten.
type FieldState struct {
	Value    any               `json:"value"`
	Touched  bool              `json:"touched"`
	Dirty    bool              `json:"dirty"`
	Errors   map[string]string `json:"errors,omitempty"`
	Metadata *FieldMetadata    `json:"metadata,omitempty"`
}

// GroupState maps field name to its state within one logical group.
type GroupState map[string]*FieldState

// SectionFormState maps group id ("form", "table", "section", "default" or
// arbitrary) to its group state. A field may live in several groups at once.
type SectionFormState map[string]GroupState

// FormState is the root tree: section id (dotted hierarchical string such as
// "3.1.4.A.1.7") to section state.
type FormState map[string]SectionFormState

// RegistroSeccion is the persisted snapshot of one section.
// Válido sólo mientras now - SavedAt <= TTL (ambos en milisegundos).
type RegistroSeccion struct {
	SavedAt int64            `json:"savedAt"`
	TTL     int64            `json:"ttl"`
	Data    SectionFormState `json:"data"`
}

// CopiarProfundo returns a deep copy of a field value. Arrays and objects are
// copied through JSON so downstream consumers observe a fresh reference;
// scalars pass through as-is. Un valor no serializable se devuelve tal cual.
func CopiarProfundo(v any) any {
	switch v.(type) {
	case nil, string, bool, int, int64, float64:
		return v
	}

	data, err := json.Marshal(v)
	if err != nil {
		return v
	}

	var copia any
	if err := json.Unmarshal(data, &copia); err != nil {
		return v
	}
	return copia
}

// IgualesJSON reports whether two values serialize identically. Used for the
// value-equality deduplication that keeps repeated identical writes from
// triggering redundant downstream work.
func IgualesJSON(a, b any) bool {
	da, errA := json.Marshal(a)
	db, errB := json.Marshal(b)
	if errA != nil || errB != nil {
		return false
	}
	return bytes.Equal(da, db)
}

// EsVacio reports whether a live value counts as empty for restore
// precedence: nil, cadena vacía, slice o mapa sin elementos.
func EsVacio(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case map[string]any:
		return len(t) == 0
	case Fila:
		return len(t) == 0
	case []Fila:
		return len(t) == 0
	}
	return false
}
