package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linea-base/lbs/internal/client/api"
	"github.com/linea-base/lbs/internal/client/auth"
	"github.com/linea-base/lbs/internal/formstate"
	"github.com/linea-base/lbs/internal/locality"
	"github.com/linea-base/lbs/internal/mapping"
	"github.com/linea-base/lbs/internal/models"
	"github.com/linea-base/lbs/internal/orchestrator"
	"github.com/linea-base/lbs/internal/persist"
	"github.com/linea-base/lbs/internal/pipeline"
	"github.com/linea-base/lbs/internal/project"
	"github.com/linea-base/lbs/internal/storage/boltdb"
	"github.com/linea-base/lbs/internal/syncbus"
)

// ioFalso captura la salida de los comandos.
type ioFalso struct {
	lineas []string
	clave  string
}

func (f *ioFalso) Println(a ...any) {
	f.lineas = append(f.lineas, fmt.Sprintln(a...))
}

func (f *ioFalso) Printf(format string, a ...any) {
	f.lineas = append(f.lineas, fmt.Sprintf(format, a...))
}

func (f *ioFalso) ReadInput(string) (string, error)    { return "", nil }
func (f *ioFalso) ReadPassword(string) (string, error) { return f.clave, nil }

func (f *ioFalso) salida() string {
	var s string
	for _, linea := range f.lineas {
		s += linea
	}
	return s
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type entorno struct {
	cli         *Cli
	io          *ioFalso
	estado      *formstate.Store
	proyecto    *project.Store
	persistente *persist.Engine
	orq         *orchestrator.Orquestador
}

func nuevoEntorno(t *testing.T) *entorno {
	t.Helper()

	kv, err := boltdb.New(context.Background(), filepath.Join(t.TempDir(), "cli.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	logger := testLogger()
	estado := formstate.New()
	proyecto := project.New()
	bus := syncbus.NewConVentanas(estado, logger, time.Millisecond, 2*time.Millisecond)
	t.Cleanup(bus.Close)
	persistente := persist.New(kv, logger)
	orq := orchestrator.New(estado, proyecto, bus, persistente, logger).
		ConRetardo(5 * time.Millisecond)

	cliente := api.NewClient("http://localhost:0")
	authSvc := auth.NewService(cliente, kv)
	localidades := locality.NewResolver(proyecto)
	cargador := mapping.NewCargador(mapping.NewRegistro(), cliente, localidades, proyecto, orq, logger)

	consola := &ioFalso{}
	return &entorno{
		cli: New(consola, authSvc, cargador, orq, estado, proyecto,
			pipeline.New(logger), persistente),
		io:          consola,
		estado:      estado,
		proyecto:    proyecto,
		persistente: persistente,
		orq:         orq,
	}
}

func TestImportarAplicaPipeline(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	ruta := filepath.Join(t.TempDir(), "dataset.json")
	dataset := map[string]any{
		"textoPoblacionSexoAISD": "Texto A",
		"poblacionSexoAISD": []map[string]any{
			{"categoria": "Hombres", "casos": 100},
			{"categoria": "Mujeres", "casos": 75},
		},
	}
	crudo, err := json.Marshal(dataset)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(ruta, crudo, 0o600))

	require.NoError(t, e.cli.runImportar(ctx, []string{ruta, "3.1.4"}))

	// el alias del pipeline llegó al almacén del proyecto
	assert.Equal(t, "Texto A", e.proyecto.SelectField("3.1.4", models.GrupoForm, "textoPoblacionSexo"))
	// y el total derivado también
	assert.Equal(t, 175, e.proyecto.SelectField("3.1.4", models.GrupoForm, "tablaAISD2TotalPoblacion"))

	tabla := e.proyecto.SelectTableData("3.1.4", "poblacionSexoAISD")
	require.Len(t, tabla, 3)
	assert.Equal(t, "57,14 %", tabla[0]["porcentaje"])
}

func TestExportarEscribeElEstado(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	e.estado.UpdateField("3.1.4", models.GrupoForm, "departamento", "Áncash")

	ruta := filepath.Join(t.TempDir(), "estado.json")
	require.NoError(t, e.cli.runExportar(ctx, []string{ruta}))

	crudo, err := os.ReadFile(ruta)
	require.NoError(t, err)
	var root map[string]any
	require.NoError(t, json.Unmarshal(crudo, &root))
	require.Contains(t, root, "3.1.4")
	assert.Contains(t, e.io.salida(), "1 secciones")
}

func TestRestaurarSoloRellenaVacios(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	// snapshot persistido con dos campos
	estado := models.SectionFormState{
		models.GrupoForm: {
			"textoPET":     {Value: "saved", Touched: true, Dirty: true},
			"departamento": {Value: "Áncash", Touched: true, Dirty: true},
		},
	}
	require.NoError(t, e.persistente.SaveSectionState(ctx, "3.1.4", estado, 0))

	// el usuario ya pobló uno de ellos
	e.proyecto.SetField("3.1.4", models.GrupoForm, "textoPET", "live-edit")

	require.NoError(t, e.cli.runRestaurar(ctx, []string{"3.1.4"}))

	assert.Equal(t, "live-edit", e.proyecto.SelectField("3.1.4", models.GrupoForm, "textoPET"))
	assert.Equal(t, "Áncash", e.proyecto.SelectField("3.1.4", models.GrupoForm, "departamento"))
}

func TestEstadoListaSnapshots(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	estado := models.SectionFormState{
		models.GrupoForm: {"campo": {Value: "v"}},
	}
	require.NoError(t, e.persistente.SaveSectionState(ctx, "3.1.4", estado, 0))

	require.NoError(t, e.cli.runEstado(ctx))

	salida := e.io.salida()
	assert.Contains(t, salida, "sin autenticar")
	assert.Contains(t, salida, "Snapshots: 1")
	assert.Contains(t, salida, "3.1.4")
}

func TestLimpiarSeccion(t *testing.T) {
	e := nuevoEntorno(t)
	ctx := context.Background()

	estado := models.SectionFormState{models.GrupoForm: {"campo": {Value: "v"}}}
	require.NoError(t, e.persistente.SaveSectionState(ctx, "1.1", estado, 0))
	require.NoError(t, e.persistente.SaveSectionState(ctx, "1.2", estado, 0))

	require.NoError(t, e.cli.runLimpiar(ctx, []string{"1.1"}))
	secciones, err := e.persistente.SeccionesGuardadas(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1.2"}, secciones)

	require.NoError(t, e.cli.runLimpiar(ctx, nil))
	secciones, err = e.persistente.SeccionesGuardadas(ctx)
	require.NoError(t, err)
	assert.Empty(t, secciones)
}
