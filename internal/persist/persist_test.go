package persist

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linea-base/lbs/internal/models"
	"github.com/linea-base/lbs/internal/storage"
	"github.com/linea-base/lbs/internal/storage/boltdb"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// createTestEngine crea un motor sobre un BoltDB temporal
func createTestEngine(t *testing.T) (*Engine, storage.KV) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "persist.db")
	kv, err := boltdb.New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, kv.Close()) })

	return New(kv, testLogger()), kv
}

func estadoDePrueba(valor any) models.SectionFormState {
	return models.SectionFormState{
		"form": models.GroupState{
			"poblacionSexo": &models.FieldState{Value: valor, Touched: true, Dirty: true},
		},
	}
}

func TestEngine_GuardarCargar_RoundTrip(t *testing.T) {
	engine, _ := createTestEngine(t)
	ctx := context.Background()

	estado := models.SectionFormState{
		"form": models.GroupState{
			"textoPoblacion": &models.FieldState{
				Value:   "Texto A",
				Touched: true,
				Dirty:   true,
				Errors:  map[string]string{"required": "obligatorio"},
			},
			"casos": &models.FieldState{Value: float64(175)},
		},
		"table": models.GroupState{
			"poblacionSexoAISD": &models.FieldState{
				Value: []any{map[string]any{"categoria": "Hombres", "casos": float64(100)}},
			},
		},
	}

	require.NoError(t, engine.SaveSectionState(ctx, "3.1.4.A.1.7", estado, 0))

	cargado, err := engine.LoadSectionState(ctx, "3.1.4.A.1.7")
	require.NoError(t, err)
	assert.True(t, models.IgualesJSON(estado, cargado), "el round-trip debe ser idéntico")
}

func TestEngine_Cargar_Ausente(t *testing.T) {
	engine, _ := createTestEngine(t)

	estado, err := engine.LoadSectionState(context.Background(), "9.9.9")
	require.NoError(t, err)
	assert.Nil(t, estado)
}

func TestEngine_TTLVencido(t *testing.T) {
	engine, kv := createTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.SaveSectionState(ctx, "2.1", estadoDePrueba("x"), time.Millisecond))

	// TTL de 1 ms más una espera real: el registro debe darse por vencido
	time.Sleep(10 * time.Millisecond)

	estado, err := engine.LoadSectionState(ctx, "2.1")
	require.NoError(t, err)
	assert.Nil(t, estado)

	// Y la clave vencida debe haberse eliminado al leer
	_, err = kv.GetItem(ctx, PrefijoClave+"2.1")
	assert.ErrorIs(t, err, storage.ErrClaveNoEncontrada)
}

func TestEngine_RegistroCorrupto(t *testing.T) {
	engine, kv := createTestEngine(t)
	ctx := context.Background()

	require.NoError(t, kv.SetItem(ctx, PrefijoClave+"5.2", "{esto no es json"))

	estado, err := engine.LoadSectionState(ctx, "5.2")
	require.NoError(t, err)
	assert.Nil(t, estado)

	_, err = kv.GetItem(ctx, PrefijoClave+"5.2")
	assert.ErrorIs(t, err, storage.ErrClaveNoEncontrada)
}

func TestEngine_RecorteValoresGrandes(t *testing.T) {
	engine, _ := createTestEngine(t)
	ctx := context.Background()

	tests := []struct {
		valor any
		want  any
		name  string
	}{
		{name: "data-URI se vacía", valor: "data:image/png;base64,AAAA", want: ""},
		{name: "cadena de más de 50KB se vacía", valor: strings.Repeat("x", MaxBytesValor+1), want: ""},
		{name: "cadena de 50KB exactos sobrevive", valor: strings.Repeat("x", MaxBytesValor), want: strings.Repeat("x", MaxBytesValor)},
		{name: "número sobrevive", valor: float64(42), want: float64(42)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, engine.SaveSectionState(ctx, "4.1", estadoDePrueba(tt.valor), 0))

			cargado, err := engine.LoadSectionState(ctx, "4.1")
			require.NoError(t, err)
			require.NotNil(t, cargado)
			assert.Equal(t, tt.want, cargado["form"]["poblacionSexo"].Value)
		})
	}
}

// kvCuotaLlena envuelve otro KV y falla cada escritura que supere maxValor,
// simulando el agotamiento de cuota del navegador.
type kvCuotaLlena struct {
	storage.KV
	maxValor int
}

func (k *kvCuotaLlena) SetItem(ctx context.Context, clave, valor string) error {
	if len(valor) > k.maxValor {
		return storage.ErrCuotaExcedida
	}
	return k.KV.SetItem(ctx, clave, valor)
}

func TestEngine_CuotaAgotada_ReintentoVacio(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "quota.db")
	base, err := boltdb.New(context.Background(), dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, base.Close()) })

	kv := &kvCuotaLlena{KV: base, maxValor: 200}
	engine := New(kv, testLogger())
	ctx := context.Background()

	grande := estadoDePrueba(strings.Repeat("y", 500))

	// El error de cuota no debe llegar al llamador
	require.NoError(t, engine.SaveSectionState(ctx, "7.3", grande, 0))

	// Y debe haberse persistido un snapshot con data vacía
	cargado, err := engine.LoadSectionState(ctx, "7.3")
	require.NoError(t, err)
	require.NotNil(t, cargado)
	assert.Empty(t, cargado)
}

func TestEngine_ClearAll_SoloPrefijoPropio(t *testing.T) {
	engine, kv := createTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.SaveSectionState(ctx, "1.1", estadoDePrueba("a"), 0))
	require.NoError(t, engine.SaveSectionState(ctx, "1.2", estadoDePrueba("b"), 0))
	require.NoError(t, kv.SetItem(ctx, "otra:clave", "intacta"))

	require.NoError(t, engine.ClearAll(ctx))

	claves, err := kv.Keys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"otra:clave"}, claves)
}

func TestEngine_RunCleanupOnce(t *testing.T) {
	engine, _ := createTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.SaveSectionState(ctx, "1.1", estadoDePrueba("a"), 0))

	ejecutado, err := engine.RunCleanupOnce(ctx, "v2.3.0")
	require.NoError(t, err)
	assert.True(t, ejecutado)

	estado, err := engine.LoadSectionState(ctx, "1.1")
	require.NoError(t, err)
	assert.Nil(t, estado)

	// La misma versión no vuelve a ejecutar la purga
	ejecutado, err = engine.RunCleanupOnce(ctx, "v2.3.0")
	require.NoError(t, err)
	assert.False(t, ejecutado)
}

func TestEngine_SeccionesGuardadas(t *testing.T) {
	engine, kv := createTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.SaveSectionState(ctx, "3.1.4", estadoDePrueba("a"), 0))
	require.NoError(t, engine.SaveSectionState(ctx, "1.2", estadoDePrueba("b"), 0))
	require.NoError(t, kv.SetItem(ctx, "otra:clave", "ignorada"))

	secciones, err := engine.SeccionesGuardadas(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.2", "3.1.4"}, secciones)
}
