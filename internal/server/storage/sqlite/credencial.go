package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/linea-base/lbs/internal/server/storage"
)

// CrearCredencial registra una credencial nueva.
func (s *Storage) CrearCredencial(ctx context.Context, cred *storage.Credencial) error {
	query := `
		INSERT INTO credenciales (id, nombre, clave_hash, creado_en, habilitada)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		cred.ID,
		cred.Nombre,
		cred.ClaveHash,
		cred.CreadoEn,
		cred.Habilitada,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return storage.ErrCredencialYaExiste
		}
		return fmt.Errorf("failed to insert credencial: %w", err)
	}
	return nil
}

// CredencialPorID la busca por su identificador.
func (s *Storage) CredencialPorID(ctx context.Context, id string) (*storage.Credencial, error) {
	query := `
		SELECT id, nombre, clave_hash, creado_en, ultimo_uso, habilitada
		FROM credenciales
		WHERE id = ?
	`

	cred := &storage.Credencial{}
	var ultimoUso sql.NullTime

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&cred.ID,
		&cred.Nombre,
		&cred.ClaveHash,
		&cred.CreadoEn,
		&ultimoUso,
		&cred.Habilitada,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrCredencialNoEncontrada
		}
		return nil, fmt.Errorf("failed to get credencial: %w", err)
	}

	if ultimoUso.Valid {
		cred.UltimoUso = ultimoUso.Time
	}
	return cred, nil
}

// MarcarUso actualiza la marca de último uso.
func (s *Storage) MarcarUso(ctx context.Context, id string, momento time.Time) error {
	query := `UPDATE credenciales SET ultimo_uso = ? WHERE id = ?`

	res, err := s.db.ExecContext(ctx, query, momento, id)
	if err != nil {
		return fmt.Errorf("failed to update ultimo_uso: %w", err)
	}
	filas, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if filas == 0 {
		return storage.ErrCredencialNoEncontrada
	}
	return nil
}
