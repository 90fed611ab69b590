package models

import "strings"

// FieldKey models the composite identity of a form field: a base name plus an
// optional locality instance ("A1" for AISD community #1, "B2" for AISI
// locality #2). The flattened representation concatenates them with "_"
// (campo → campo_A1); this type is the single place that builds and parses
// that representation.
type FieldKey struct {
	BaseName   string
	InstanceID string
}

// String returns the flattened key ("campo" or "campo_A1").
func (k FieldKey) String() string {
	if k.InstanceID == "" {
		return k.BaseName
	}
	return k.BaseName + "_" + k.InstanceID
}

// ConInstancia returns the key bound to a locality instance.
func (k FieldKey) ConInstancia(instancia string) FieldKey {
	return FieldKey{BaseName: k.BaseName, InstanceID: instancia}
}

// ParseFieldKey splits a flattened key into base name and instance. Sólo un
// sufijo "_A<n>" o "_B<n>" cuenta como instancia; cualquier otro guión bajo
// pertenece al nombre base.
func ParseFieldKey(clave string) FieldKey {
	idx := strings.LastIndex(clave, "_")
	if idx < 0 || idx == len(clave)-1 {
		return FieldKey{BaseName: clave}
	}

	sufijo := clave[idx+1:]
	if !esInstancia(sufijo) {
		return FieldKey{BaseName: clave}
	}
	return FieldKey{BaseName: clave[:idx], InstanceID: sufijo}
}

// esInstancia valida el formato A<n> / B<n>.
func esInstancia(s string) bool {
	if len(s) < 2 {
		return false
	}
	if s[0] != 'A' && s[0] != 'B' {
		return false
	}
	for _, r := range s[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
