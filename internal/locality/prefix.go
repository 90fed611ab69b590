// Package locality derives locality prefixes from section ids and resolves
// the ubigeo / CCPP codes of the AISD and AISI groups out of project data.
// Es el único módulo que conoce el esquema de nombres con prefijo.
package locality

import (
	"strconv"
	"strings"

	"github.com/linea-base/lbs/internal/models"
)

// Tipos de área de influencia.
const (
	TipoAISD = "AISD" // área de influencia social directa
	TipoAISI = "AISI" // área de influencia social indirecta
)

// Prefijo derives the locality prefix of a section id: a segment "A" or "B"
// followed by a numeric segment marks the group instance, so "3.1.4.A.1.7"
// yields "_A1" and "4.2.B.3" yields "_B3". Secciones sin instancia → "".
func Prefijo(seccionID string) string {
	segmentos := strings.Split(seccionID, ".")
	for i := 0; i < len(segmentos)-1; i++ {
		if segmentos[i] != "A" && segmentos[i] != "B" {
			continue
		}
		n, err := strconv.Atoi(segmentos[i+1])
		if err != nil || n <= 0 {
			continue
		}
		return "_" + segmentos[i] + strconv.Itoa(n)
	}
	return ""
}

// Instancia devuelve la instancia ("A1", "B3") sin el guion bajo, o "".
func Instancia(seccionID string) string {
	return strings.TrimPrefix(Prefijo(seccionID), "_")
}

// ClaveCampo builds the composite key of a field in the given section:
// campo → campo_A1 cuando la sección pertenece a una instancia de grupo.
func ClaveCampo(seccionID, campo string) models.FieldKey {
	return models.FieldKey{BaseName: campo, InstanceID: Instancia(seccionID)}
}

// ExpandirCampo returns the watched names of one field within a section:
// siempre el nombre base y, si hay prefijo, también el gemelo prefijado.
func ExpandirCampo(seccionID, campo string) []string {
	prefijo := Prefijo(seccionID)
	if prefijo == "" || strings.HasSuffix(campo, prefijo) {
		return []string{campo}
	}
	return []string{campo, campo + prefijo}
}
