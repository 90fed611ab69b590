// Package validation valida los identificadores geográficos y de sección que
// entran por la CLI y por la API.
package validation

import (
	"fmt"
	"strings"
)

// Longitudes fijas de los códigos del INEI.
const (
	LargoUbigeo = 6  // departamento(2) + provincia(2) + distrito(2)
	LargoCCPP   = 10 // ubigeo(6) + centro poblado(4)
)

// ValidarUbigeo verifica un código de ubigeo distrital.
func ValidarUbigeo(ubigeo string) error {
	if len(ubigeo) != LargoUbigeo || !esNumerico(ubigeo) {
		return fmt.Errorf("ubigeo %q inválido: se esperan %d dígitos", ubigeo, LargoUbigeo)
	}
	return nil
}

// ValidarCodigoCCPP verifica un código de centro poblado.
func ValidarCodigoCCPP(codigo string) error {
	if len(codigo) != LargoCCPP || !esNumerico(codigo) {
		return fmt.Errorf("código de centro poblado %q inválido: se esperan %d dígitos", codigo, LargoCCPP)
	}
	return nil
}

// ValidarCodigosCCPP verifica un lote de códigos; falla con el primero malo.
func ValidarCodigosCCPP(codigos []string) error {
	if len(codigos) == 0 {
		return fmt.Errorf("se requiere al menos un código de centro poblado")
	}
	for _, codigo := range codigos {
		if err := ValidarCodigoCCPP(codigo); err != nil {
			return err
		}
	}
	return nil
}

// ValidarSeccionID verifica un identificador de sección del formulario:
// segmentos numéricos o de una letra separados por punto ("3.1.4.A.1.7").
func ValidarSeccionID(seccionID string) error {
	if seccionID == "" {
		return fmt.Errorf("identificador de sección vacío")
	}
	for _, segmento := range strings.Split(seccionID, ".") {
		if segmento == "" {
			return fmt.Errorf("sección %q inválida: segmento vacío", seccionID)
		}
		if esNumerico(segmento) {
			continue
		}
		if len(segmento) == 1 && segmento[0] >= 'A' && segmento[0] <= 'Z' {
			continue
		}
		return fmt.Errorf("sección %q inválida: segmento %q", seccionID, segmento)
	}
	return nil
}

func esNumerico(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
