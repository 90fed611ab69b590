// Package persist implements the form persistence engine: per-section
// snapshots of form state written through the storage facade with a TTL,
// stripped of oversized or binary-like values before serialization.
package persist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/linea-base/lbs/internal/models"
	"github.com/linea-base/lbs/internal/storage"
)

const (
	// PrefijoClave is the storage key prefix for section snapshots.
	PrefijoClave = "lbs:form-state:"

	// ClaveLimpieza marks the one-time legacy-data purge per deployed version.
	ClaveLimpieza = "lbs:data-cleanup:version"

	// TTLPorDefecto is the default snapshot lifetime.
	TTLPorDefecto = 7 * 24 * time.Hour

	// MaxBytesValor: any string value longer than this is replaced with ""
	// before writing. Persisted state does not reproduce large binary values.
	MaxBytesValor = 50 * 1024
)

// Engine serializes and restores per-section form state.
type Engine struct {
	kv     storage.KV
	logger *slog.Logger
	ahora  func() time.Time
}

// New creates a persistence engine over the given facade.
func New(kv storage.KV, logger *slog.Logger) *Engine {
	return &Engine{
		kv:     kv,
		logger: logger,
		ahora:  time.Now,
	}
}

// clave genera la clave de almacenamiento de una sección.
func clave(seccionID string) string {
	return PrefijoClave + seccionID
}

// SaveSectionState writes a `{savedAt, ttl, data}` record for the section.
// Valores de tipo data-URI o mayores de 50 KB se sustituyen por "" antes de
// serializar. ttl <= 0 usa TTLPorDefecto.
//
// On quota exhaustion the existing record is deleted and the write retried
// once with an empty data payload; quota errors never reach the caller.
func (e *Engine) SaveSectionState(ctx context.Context, seccionID string, estado models.SectionFormState, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = TTLPorDefecto
	}

	registro := models.RegistroSeccion{
		SavedAt: e.ahora().UnixMilli(),
		TTL:     ttl.Milliseconds(),
		Data:    depurarEstado(estado),
	}

	if err := e.escribir(ctx, seccionID, registro); err != nil {
		if !errors.Is(err, storage.ErrCuotaExcedida) {
			return err
		}

		// Cuota agotada: liberamos la clave y reintentamos una sola vez con
		// un payload vacío. El error de cuota nunca se propaga.
		e.logger.Warn("cuota de almacenamiento agotada, se guarda snapshot vacío",
			"seccion", seccionID)

		if err := e.kv.RemoveItem(ctx, clave(seccionID)); err != nil {
			e.logger.Warn("no se pudo liberar la clave de la sección",
				"seccion", seccionID, "error", err)
		}

		registro.Data = models.SectionFormState{}
		if err := e.escribir(ctx, seccionID, registro); err != nil && !errors.Is(err, storage.ErrCuotaExcedida) {
			return err
		}
	}

	return nil
}

// escribir serializa y guarda el registro.
func (e *Engine) escribir(ctx context.Context, seccionID string, registro models.RegistroSeccion) error {
	data, err := json.Marshal(registro)
	if err != nil {
		return fmt.Errorf("failed to marshal section record: %w", err)
	}
	return e.kv.SetItem(ctx, clave(seccionID), string(data))
}

// LoadSectionState returns the persisted section state, or nil when the key
// is absent, the record is past its TTL, or the payload fails to parse. Stale
// and corrupt records are deleted as a side effect of reading them.
func (e *Engine) LoadSectionState(ctx context.Context, seccionID string) (models.SectionFormState, error) {
	valor, err := e.kv.GetItem(ctx, clave(seccionID))
	if err != nil {
		if errors.Is(err, storage.ErrClaveNoEncontrada) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read section record: %w", err)
	}

	var registro models.RegistroSeccion
	if err := json.Unmarshal([]byte(valor), &registro); err != nil {
		// Registro corrupto: lo eliminamos y seguimos como si no existiera
		e.logger.Warn("snapshot corrupto eliminado", "seccion", seccionID, "error", err)
		e.eliminar(ctx, seccionID)
		return nil, nil
	}

	if e.ahora().UnixMilli()-registro.SavedAt > registro.TTL {
		// Registro vencido: eliminar al leer
		e.eliminar(ctx, seccionID)
		return nil, nil
	}

	return registro.Data, nil
}

// ClearSectionState removes the snapshot of one section.
func (e *Engine) ClearSectionState(ctx context.Context, seccionID string) error {
	return e.kv.RemoveItem(ctx, clave(seccionID))
}

// ClearAll removes every key under the snapshot prefix, and only those.
func (e *Engine) ClearAll(ctx context.Context) error {
	claves, err := e.kv.Keys(ctx)
	if err != nil {
		return fmt.Errorf("failed to list keys: %w", err)
	}

	for _, c := range claves {
		if !strings.HasPrefix(c, PrefijoClave) {
			continue
		}
		if err := e.kv.RemoveItem(ctx, c); err != nil {
			return fmt.Errorf("failed to remove %s: %w", c, err)
		}
	}
	return nil
}

// SeccionesGuardadas lists the section ids with a stored snapshot.
func (e *Engine) SeccionesGuardadas(ctx context.Context) ([]string, error) {
	claves, err := e.kv.Keys(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}

	secciones := make([]string, 0, len(claves))
	for _, c := range claves {
		if strings.HasPrefix(c, PrefijoClave) {
			secciones = append(secciones, strings.TrimPrefix(c, PrefijoClave))
		}
	}
	sort.Strings(secciones)
	return secciones, nil
}

// RunCleanupOnce purges every snapshot exactly once per deployed version.
// Returns true when the purge ran.
func (e *Engine) RunCleanupOnce(ctx context.Context, version string) (bool, error) {
	actual, err := e.kv.GetItem(ctx, ClaveLimpieza)
	if err != nil && !errors.Is(err, storage.ErrClaveNoEncontrada) {
		return false, fmt.Errorf("failed to read cleanup flag: %w", err)
	}
	if actual == version {
		return false, nil
	}

	if err := e.ClearAll(ctx); err != nil {
		return false, err
	}
	if err := e.kv.SetItem(ctx, ClaveLimpieza, version); err != nil {
		return false, fmt.Errorf("failed to set cleanup flag: %w", err)
	}

	e.logger.Info("limpieza de datos heredados ejecutada", "version", version)
	return true, nil
}

// eliminar borra la clave de la sección registrando el fallo, nunca lo eleva.
func (e *Engine) eliminar(ctx context.Context, seccionID string) {
	if err := e.kv.RemoveItem(ctx, clave(seccionID)); err != nil {
		e.logger.Warn("no se pudo eliminar el snapshot", "seccion", seccionID, "error", err)
	}
}

// depurarEstado deep-copies the section state replacing every data-URI or
// oversized string value with "".
func depurarEstado(estado models.SectionFormState) models.SectionFormState {
	depurado := make(models.SectionFormState, len(estado))
	for grupo, campos := range estado {
		copiaGrupo := make(models.GroupState, len(campos))
		for campo, fs := range campos {
			if fs == nil {
				continue
			}
			copia := *fs
			copia.Value = depurarValor(models.CopiarProfundo(fs.Value))
			copiaGrupo[campo] = &copia
		}
		depurado[grupo] = copiaGrupo
	}
	return depurado
}

// depurarValor aplica la regla de recorte a un valor de campo.
func depurarValor(v any) any {
	s, ok := v.(string)
	if !ok {
		return v
	}
	if strings.HasPrefix(s, "data:") || len(s) > MaxBytesValor {
		return ""
	}
	return s
}
