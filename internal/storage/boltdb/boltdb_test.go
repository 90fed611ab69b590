package boltdb

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linea-base/lbs/internal/storage"
)

// createTestStorage crea un almacenamiento temporal para las pruebas
func createTestStorage(t *testing.T, cuota int) *Storage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewConCuota(context.Background(), dbPath, cuota)
	require.NoError(t, err)
	require.NotNil(t, store)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestStorage_SetGetItem(t *testing.T) {
	store := createTestStorage(t, 0)
	ctx := context.Background()

	require.NoError(t, store.SetItem(ctx, "lbs:form-state:3.1.4", `{"savedAt":1}`))

	valor, err := store.GetItem(ctx, "lbs:form-state:3.1.4")
	require.NoError(t, err)
	assert.Equal(t, `{"savedAt":1}`, valor)

	// Sobrescritura reemplaza el valor
	require.NoError(t, store.SetItem(ctx, "lbs:form-state:3.1.4", `{"savedAt":2}`))
	valor, err = store.GetItem(ctx, "lbs:form-state:3.1.4")
	require.NoError(t, err)
	assert.Equal(t, `{"savedAt":2}`, valor)
}

func TestStorage_GetItem_NoEncontrada(t *testing.T) {
	store := createTestStorage(t, 0)

	_, err := store.GetItem(context.Background(), "no-existe")
	assert.ErrorIs(t, err, storage.ErrClaveNoEncontrada)
}

func TestStorage_RemoveItem(t *testing.T) {
	store := createTestStorage(t, 0)
	ctx := context.Background()

	require.NoError(t, store.SetItem(ctx, "clave", "valor"))
	require.NoError(t, store.RemoveItem(ctx, "clave"))

	_, err := store.GetItem(ctx, "clave")
	assert.ErrorIs(t, err, storage.ErrClaveNoEncontrada)

	// Borrar una clave ausente no es un error
	require.NoError(t, store.RemoveItem(ctx, "clave"))
}

func TestStorage_Keys(t *testing.T) {
	store := createTestStorage(t, 0)
	ctx := context.Background()

	claves, err := store.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, claves)

	require.NoError(t, store.SetItem(ctx, "lbs:form-state:1.1", "a"))
	require.NoError(t, store.SetItem(ctx, "lbs:form-state:1.2", "b"))
	require.NoError(t, store.SetItem(ctx, "lbs:data-cleanup:version", "v2"))

	claves, err = store.Keys(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"lbs:form-state:1.1",
		"lbs:form-state:1.2",
		"lbs:data-cleanup:version",
	}, claves)
}

func TestStorage_CuotaExcedida(t *testing.T) {
	store := createTestStorage(t, 64)
	ctx := context.Background()

	require.NoError(t, store.SetItem(ctx, "a", strings.Repeat("x", 30)))

	// El segundo valor rebasa la cuota de 64 bytes
	err := store.SetItem(ctx, "b", strings.Repeat("y", 40))
	assert.ErrorIs(t, err, storage.ErrCuotaExcedida)

	// Reemplazar el valor existente por uno más corto sí cabe
	require.NoError(t, store.SetItem(ctx, "a", "corto"))
}
