package storage

import "errors"

// Errores comunes de las implementaciones.
var (
	// ErrCredencialNoEncontrada indica que la credencial no existe.
	ErrCredencialNoEncontrada = errors.New("credencial no encontrada")

	// ErrCredencialYaExiste indica un identificador duplicado.
	ErrCredencialYaExiste = errors.New("la credencial ya existe")
)
