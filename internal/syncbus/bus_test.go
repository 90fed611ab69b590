package syncbus

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/linea-base/lbs/internal/formstate"
	"github.com/linea-base/lbs/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// recolector acumula las entregas del bus de forma segura
type recolector struct {
	mu       sync.Mutex
	entregas []Cambios
}

func (r *recolector) cb(c Cambios) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entregas = append(r.entregas, c)
}

func (r *recolector) esperar(t *testing.T, n int) []Cambios {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		r.mu.Lock()
		if len(r.entregas) >= n {
			copia := append([]Cambios(nil), r.entregas...)
			r.mu.Unlock()
			return copia
		}
		r.mu.Unlock()
		time.Sleep(2 * time.Millisecond)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	require.Failf(t, "entregas insuficientes", "esperaba %d, hay %d", n, len(r.entregas))
	return nil
}

func (r *recolector) cuenta() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entregas)
}

func nuevoBus(t *testing.T) (*formstate.Store, *Bus) {
	t.Helper()
	store := formstate.New()
	bus := NewConVentanas(store, testLogger(), DebounceStore, DebounceNotify)
	t.Cleanup(bus.Close)
	return store, bus
}

func TestBus_CaminoStore_EntregaCambios(t *testing.T) {
	store, bus := nuevoBus(t)
	rec := &recolector{}

	cancel := bus.SubscribeToSection("3.1.4", []string{"poblacionTotal"}, rec.cb)
	defer cancel()

	store.UpdateField("3.1.4", "form", "poblacionTotal", float64(175))

	entregas := rec.esperar(t, 1)
	assert.Equal(t, Cambios{"poblacionTotal": float64(175)}, entregas[0])
}

func TestBus_CaminoStore_DebounceCoalesce(t *testing.T) {
	store, bus := nuevoBus(t)
	rec := &recolector{}

	cancel := bus.SubscribeToSection("1.1", []string{"a", "b"}, rec.cb)
	defer cancel()

	// Dos escrituras dentro de la misma ventana llegan en una sola entrega
	store.UpdateField("1.1", "form", "a", 1)
	store.UpdateField("1.1", "form", "b", 2)

	entregas := rec.esperar(t, 1)
	assert.Equal(t, Cambios{"a": float64(1), "b": float64(2)}, normalizar(entregas[0]))
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, 1, rec.cuenta())
}

// normalizar convierte números a float64 para comparar con independencia
// del tipo de entrada
func normalizar(c Cambios) Cambios {
	out, _ := models.CopiarProfundo(map[string]any(c)).(map[string]any)
	return Cambios(out)
}

func TestBus_ExpansionPorPrefijo(t *testing.T) {
	store, bus := nuevoBus(t)
	rec := &recolector{}

	cancel := bus.SubscribeToSection("3.1.4.A.1.7", []string{"poblacionSexo"}, rec.cb)
	defer cancel()

	// El gemelo prefijado también está vigilado
	store.UpdateField("3.1.4.A.1.7", "table", "poblacionSexo_A1",
		[]any{map[string]any{"casos": float64(9)}})

	entregas := rec.esperar(t, 1)
	require.Contains(t, entregas[0], "poblacionSexo_A1")
}

func TestBus_PrimerGrupoGana(t *testing.T) {
	store, bus := nuevoBus(t)
	rec := &recolector{}

	// El mismo campo en dos grupos con valores distintos: gana "form",
	// que precede a "section" en el orden canónico
	store.UpdateField("2.2", "section", "campo", "de-section")
	store.UpdateField("2.2", "form", "campo", "de-form")

	cancel := bus.SubscribeToSection("2.2", []string{"campo"}, rec.cb)
	defer cancel()

	store.UpdateField("2.2", "form", "campo", "de-form-2")

	entregas := rec.esperar(t, 1)
	assert.Equal(t, Cambios{"campo": "de-form-2"}, entregas[0])
}

func TestBus_CaminoNotify_FiltraYEntrega(t *testing.T) {
	_, bus := nuevoBus(t)
	rec := &recolector{}

	cancel := bus.SubscribeToSection("4.1", []string{"tabla"}, rec.cb)
	defer cancel()

	filas := []any{map[string]any{"categoria": "Total", "casos": float64(5)}}
	bus.NotifyChanges("4.1", Cambios{
		"tabla":   filas,
		"noVisto": "se descarta",
		"tambien": nil,
	})

	entregas := rec.esperar(t, 1)
	require.Len(t, entregas[0], 1)

	// El valor entregado es una copia profunda
	entregado := entregas[0]["tabla"].([]any)
	entregado[0].(map[string]any)["casos"] = float64(99)
	assert.Equal(t, float64(5), filas[0].(map[string]any)["casos"])
}

func TestBus_NotifyOtraSeccionNoEntrega(t *testing.T) {
	_, bus := nuevoBus(t)
	rec := &recolector{}

	cancel := bus.SubscribeToSection("4.1", []string{"campo"}, rec.cb)
	defer cancel()

	bus.NotifyChanges("9.9", Cambios{"campo": "x"})

	time.Sleep(80 * time.Millisecond)
	assert.Zero(t, rec.cuenta())
}

func TestBus_ForceUpdate_EntregaVacio(t *testing.T) {
	_, bus := nuevoBus(t)
	rec := &recolector{}

	cancel := bus.SubscribeToSection("5.5", []string{"campo"}, rec.cb)
	defer cancel()

	bus.ForceUpdate("5.5")

	entregas := rec.esperar(t, 1)
	assert.Empty(t, entregas[0])
}

func TestBus_Resuscripcion_DescartaLaAnterior(t *testing.T) {
	store, bus := nuevoBus(t)
	vieja := &recolector{}
	nueva := &recolector{}

	bus.SubscribeToSection("6.1", []string{"campo"}, vieja.cb)
	cancel := bus.SubscribeToSection("6.1", []string{"campo"}, nueva.cb)
	defer cancel()

	store.UpdateField("6.1", "form", "campo", "v")

	nueva.esperar(t, 1)
	time.Sleep(30 * time.Millisecond)
	assert.Zero(t, vieja.cuenta(), "la suscripción reemplazada no debe disparar")
}

func TestBus_CancelarDetieneEntregas(t *testing.T) {
	store, bus := nuevoBus(t)
	rec := &recolector{}

	cancel := bus.SubscribeToSection("7.1", []string{"campo"}, rec.cb)
	cancel()

	store.UpdateField("7.1", "form", "campo", "v")

	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, rec.cuenta())
}
