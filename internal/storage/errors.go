package storage

import "errors"

// Common storage facade errors
var (
	// ErrClaveNoEncontrada indicates that the key does not exist
	ErrClaveNoEncontrada = errors.New("clave no encontrada")

	// ErrCuotaExcedida indicates that the backing store ran out of space
	ErrCuotaExcedida = errors.New("cuota de almacenamiento excedida")

	// ErrStorageClosed indicates that storage is closed
	ErrStorageClosed = errors.New("storage is closed")
)
