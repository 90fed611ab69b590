package storage

import (
	"context"
	"time"
)

// Credencial es una clave de API emitida a una instalación del cliente.
type Credencial struct {
	ID         string // UUID, primera parte de la clave "id.secreto"
	Nombre     string
	ClaveHash  string // hash argon2id del secreto
	CreadoEn   time.Time
	UltimoUso  time.Time
	Habilitada bool
}

// CredencialStorage define la persistencia de credenciales.
type CredencialStorage interface {
	// CrearCredencial registra una credencial nueva.
	CrearCredencial(ctx context.Context, cred *Credencial) error

	// CredencialPorID la busca por su identificador.
	// Devuelve ErrCredencialNoEncontrada si no existe.
	CredencialPorID(ctx context.Context, id string) (*Credencial, error)

	// MarcarUso actualiza la marca de último uso.
	MarcarUso(ctx context.Context, id string, momento time.Time) error
}
