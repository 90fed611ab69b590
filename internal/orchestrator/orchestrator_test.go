package orchestrator

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linea-base/lbs/internal/formstate"
	"github.com/linea-base/lbs/internal/models"
	"github.com/linea-base/lbs/internal/persist"
	"github.com/linea-base/lbs/internal/project"
	"github.com/linea-base/lbs/internal/storage/boltdb"
	"github.com/linea-base/lbs/internal/syncbus"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type entorno struct {
	estado      *formstate.Store
	proyecto    *project.Store
	bus         *syncbus.Bus
	persistente *persist.Engine
	orq         *Orquestador
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()

	kv, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "orq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, kv.Close()) })

	estado := formstate.New()
	proyecto := project.New()
	bus := syncbus.NewConVentanas(estado, testLogger(), time.Millisecond, 2*time.Millisecond)
	t.Cleanup(bus.Close)
	persistente := persist.New(kv, testLogger())

	return &entorno{
		estado:      estado,
		proyecto:    proyecto,
		bus:         bus,
		persistente: persistente,
		orq:         New(estado, proyecto, bus, persistente, testLogger()).ConRetardo(20 * time.Millisecond),
	}
}

func TestPersistFields_EscribeTodasLasReplicas(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	e.orq.PersistFields(ctx, "3.1.4", "form", map[string]any{"poblacionTotal": 175}, OpcionesPorDefecto())

	assert.Equal(t, 175, e.proyecto.SelectField("3.1.4", "form", "poblacionTotal"))

	fs := e.estado.GetField("3.1.4", "form", "poblacionTotal")
	require.NotNil(t, fs)
	assert.Equal(t, 175, fs.Value)
	assert.True(t, fs.Dirty)
}

func TestPersistFields_OpcionesApagadas(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	e.orq.PersistFields(ctx, "3.1.4", "form", map[string]any{"campo": "v"}, Opciones{ActualizarEstado: true})

	assert.Nil(t, e.proyecto.SelectField("3.1.4", "form", "campo"))
	require.NotNil(t, e.estado.GetField("3.1.4", "form", "campo"))

	estado, err := e.persistente.LoadSectionState(ctx, "3.1.4")
	require.NoError(t, err)
	assert.Nil(t, estado, "sin opción Persistir no debe haber snapshot")
}

func TestPersistFields_TablaSeReflejaConAmbasClaves(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	filas := []any{map[string]any{"categoria": "Hombres", "casos": float64(100)}}
	e.orq.PersistFields(ctx, "3.1.4.A.1.7", "table", map[string]any{"poblacionSexo": filas}, OpcionesPorDefecto())

	// Almacén de tablas del proyecto, bajo la clave tal como llegó
	tabla := e.proyecto.SelectTableData("3.1.4.A.1.7", "poblacionSexo")
	require.Len(t, tabla, 1)

	// Y el reflejo aplanado bajo la clave simple y la prefijada
	assert.NotNil(t, e.proyecto.SelectField("3.1.4.A.1.7", "table", "poblacionSexo"))
	assert.NotNil(t, e.proyecto.SelectField("3.1.4.A.1.7", "table", "poblacionSexo_A1"))
}

func TestPersistFields_GuardadoCoalescido(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	// Dos escrituras dentro de la ventana: sólo el último valor llega a disco
	e.orq.PersistFields(ctx, "2.1", "form", map[string]any{"campo": "primero"}, OpcionesPorDefecto())
	e.orq.PersistFields(ctx, "2.1", "form", map[string]any{"campo": "segundo"}, OpcionesPorDefecto())

	require.Eventually(t, func() bool {
		estado, err := e.persistente.LoadSectionState(ctx, "2.1")
		return err == nil && estado != nil
	}, time.Second, 5*time.Millisecond)

	estado, err := e.persistente.LoadSectionState(ctx, "2.1")
	require.NoError(t, err)
	assert.Equal(t, "segundo", estado["form"]["campo"].Value)
}

func TestFlush_VuelcaPendientes(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	e.orq.ConRetardo(time.Hour) // el timer jamás dispararía solo
	e.orq.PersistFields(ctx, "5.1", "form", map[string]any{"campo": "v"}, OpcionesPorDefecto())

	e.orq.Flush()

	estado, err := e.persistente.LoadSectionState(ctx, "5.1")
	require.NoError(t, err)
	require.NotNil(t, estado)
	assert.Equal(t, "v", estado["form"]["campo"].Value)
}

func TestRestoreSectionState_Precedencia(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	persistido := models.SectionFormState{
		"form": models.GroupState{
			"textoVacio":   &models.FieldState{Value: "saved"},
			"textoPoblado": &models.FieldState{Value: "saved"},
			"sinValor":     &models.FieldState{Value: nil},
		},
	}
	require.NoError(t, e.persistente.SaveSectionState(ctx, "7.2", persistido, 0))

	actual := map[string]any{
		"textoVacio":   "",
		"textoPoblado": "live-edit",
	}

	restaurados, err := e.orq.RestoreSectionState(ctx, "7.2", actual)
	require.NoError(t, err)

	assert.Equal(t, 1, restaurados)
	assert.Equal(t, "saved", actual["textoVacio"], "el valor vacío se restaura")
	assert.Equal(t, "live-edit", actual["textoPoblado"], "lo persistido no pisa un campo vivo")
	_, tiene := actual["sinValor"]
	assert.False(t, tiene)
}

func TestRestoreSectionState_SinSnapshot(t *testing.T) {
	e := nuevoEntorno(t)

	restaurados, err := e.orq.RestoreSectionState(context.Background(), "9.9", map[string]any{})
	require.NoError(t, err)
	assert.Zero(t, restaurados)
}
