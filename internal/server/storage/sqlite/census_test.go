package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linea-base/lbs/internal/server/storage"
)

func nuevoStorage(t *testing.T) *Storage {
	t.Helper()

	s, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func sembrarCenso(t *testing.T, s *Storage) {
	t.Helper()
	db := s.DB()

	_, err := db.Exec(`
		INSERT INTO demograficos
			(codigo, ubigeo, hombres, mujeres, edad_0_14, edad_15_29,
			 edad_30_44, edad_45_64, edad_65_mas, poblacion_total)
		VALUES
			('0101010001', '010101', 60, 40, 30, 25, 20, 15, 10, 100),
			('0101010002', '010101', 40, 35, 15, 20, 18, 14, 8, 75),
			('0202020001', '020202', 10, 12, 5, 6, 5, 4, 2, 22)
	`)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO centros_poblados (codigo, ubigeo, nombre) VALUES
			('0101010001', '010101', 'San Pedro de Carhua'),
			('0101010002', '010101', 'Huancapampa'),
			('0202020001', '020202', 'Santa Rosa')
	`)
	require.NoError(t, err)

	_, err = db.Exec(`
		INSERT INTO indicadores (ubigeo, familia, categoria, material, casos) VALUES
			('010101', 'religion', 'Católica', '', 80),
			('010101', 'religion', 'Evangélica', '', 20),
			('010101', 'materiales', 'Paredes', 'Adobe', 42),
			('010101', 'materiales', 'Paredes', 'Ladrillo', 8)
	`)
	require.NoError(t, err)
}

func TestDemograficosPorUbigeo(t *testing.T) {
	s := nuevoStorage(t)
	sembrarCenso(t, s)

	registros, err := s.DemograficosPorUbigeo(context.Background(), "010101")
	require.NoError(t, err)
	require.Len(t, registros, 2)
	assert.Equal(t, "0101010001", registros[0].Codigo)
	assert.Equal(t, 60, registros[0].Hombres)
	assert.Equal(t, 75, registros[1].PoblacionTotal)

	vacio, err := s.DemograficosPorUbigeo(context.Background(), "999999")
	require.NoError(t, err)
	assert.Empty(t, vacio)
}

func TestDemograficosPorCodigos(t *testing.T) {
	s := nuevoStorage(t)
	sembrarCenso(t, s)

	registros, err := s.DemograficosPorCodigos(context.Background(),
		[]string{"0101010002", "0202020001"})
	require.NoError(t, err)
	require.Len(t, registros, 2)
	assert.Equal(t, "0101010002", registros[0].Codigo)
	assert.Equal(t, "0202020001", registros[1].Codigo)

	vacio, err := s.DemograficosPorCodigos(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vacio)
}

func TestIndicadoresPorUbigeo(t *testing.T) {
	s := nuevoStorage(t)
	sembrarCenso(t, s)

	religion, err := s.IndicadoresPorUbigeo(context.Background(), storage.FamiliaReligion, "010101")
	require.NoError(t, err)
	require.Len(t, religion, 2)
	assert.Equal(t, "Católica", religion[0].Categoria)
	assert.Equal(t, 80, religion[0].Casos)

	materiales, err := s.IndicadoresPorUbigeo(context.Background(), storage.FamiliaMateriales, "010101")
	require.NoError(t, err)
	require.Len(t, materiales, 2)
	assert.Equal(t, "Adobe", materiales[0].Material)
}

func TestCentrosPoblados(t *testing.T) {
	s := nuevoStorage(t)
	sembrarCenso(t, s)

	centros, err := s.CentrosPoblados(context.Background(), "010101")
	require.NoError(t, err)
	require.Len(t, centros, 2)
	assert.Equal(t, "San Pedro de Carhua", centros[0].Nombre)

	porCodigo, err := s.CentrosPobladosPorCodigos(context.Background(),
		[]string{"0202020001", "0101010001"})
	require.NoError(t, err)
	require.Len(t, porCodigo, 2)
	assert.Equal(t, "0101010001", porCodigo[0].Codigo)
	assert.Equal(t, "Santa Rosa", porCodigo[1].Nombre)
}

func TestCredenciales(t *testing.T) {
	s := nuevoStorage(t)
	ctx := context.Background()

	cred := &storage.Credencial{
		ID:         "cred-1",
		Nombre:     "consultora andes",
		ClaveHash:  "salt$hash",
		CreadoEn:   time.Now().UTC(),
		Habilitada: true,
	}
	require.NoError(t, s.CrearCredencial(ctx, cred))
	assert.ErrorIs(t, s.CrearCredencial(ctx, cred), storage.ErrCredencialYaExiste)

	leida, err := s.CredencialPorID(ctx, "cred-1")
	require.NoError(t, err)
	assert.Equal(t, "consultora andes", leida.Nombre)
	assert.True(t, leida.Habilitada)

	_, err = s.CredencialPorID(ctx, "no-existe")
	assert.ErrorIs(t, err, storage.ErrCredencialNoEncontrada)

	momento := time.Now().UTC()
	require.NoError(t, s.MarcarUso(ctx, "cred-1", momento))
	assert.ErrorIs(t, s.MarcarUso(ctx, "no-existe", momento), storage.ErrCredencialNoEncontrada)
}
