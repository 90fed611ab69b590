package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/linea-base/lbs/internal/models"
	"github.com/linea-base/lbs/internal/orchestrator"
	"github.com/linea-base/lbs/internal/validation"
)

func (c *Cli) runImportar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("falta el archivo. Uso: lbs importar <archivo> [sección]")
	}
	ruta := args[0]
	seccionID := "general"
	if len(args) > 1 {
		seccionID = args[1]
		if err := validation.ValidarSeccionID(seccionID); err != nil {
			return err
		}
	}

	crudo, err := os.ReadFile(ruta)
	if err != nil {
		return fmt.Errorf("leer %s: %w", ruta, err)
	}
	var datos map[string]any
	if err := json.Unmarshal(crudo, &datos); err != nil {
		return fmt.Errorf("el archivo %s no es un dataset JSON: %w", ruta, err)
	}

	// Un dataset recién cargado pasa una sola vez por el pipeline completo.
	transformado := c.pipeline.Aplicar(datos)

	opts := orchestrator.OpcionesPorDefecto()
	for campo, valor := range transformado {
		grupoID := models.GrupoForm
		if esTabla(valor) {
			grupoID = models.GrupoTable
		}
		c.orq.PersistFields(ctx, seccionID, grupoID, map[string]any{campo: valor}, opts)
	}
	c.orq.Flush()

	c.io.Printf("✓ %d campo(s) importado(s) en la sección %s\n", len(transformado), seccionID)
	return nil
}

// esTabla reconoce un arreglo de filas (objetos), la forma de las tablas.
func esTabla(valor any) bool {
	switch t := valor.(type) {
	case []models.Fila:
		return len(t) > 0
	case []any:
		if len(t) == 0 {
			return false
		}
		_, ok := t[0].(map[string]any)
		return ok
	default:
		return false
	}
}
