package cli

import (
	"context"
	"fmt"

	"github.com/linea-base/lbs/internal/models"
	"github.com/linea-base/lbs/internal/orchestrator"
	"github.com/linea-base/lbs/internal/validation"
)

func (c *Cli) runRestaurar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("falta la sección. Uso: lbs restaurar <sección>")
	}
	seccionID := args[0]
	if err := validation.ValidarSeccionID(seccionID); err != nil {
		return err
	}

	// Los valores vivos tienen prioridad: el snapshot sólo llena los vacíos.
	actual := c.proyecto.ObtenerDatos()
	antes, _ := models.CopiarProfundo(actual).(map[string]any)

	restaurados, err := c.orq.RestoreSectionState(ctx, seccionID, actual)
	if err != nil {
		return err
	}
	if restaurados == 0 {
		c.io.Printf("Nada que restaurar para la sección %s\n", seccionID)
		return nil
	}

	// Sólo los campos que cambiaron vuelven a pasar por el orquestador; el
	// snapshot no se reescribe con lo que acaba de salir de él.
	opts := orchestrator.OpcionesPorDefecto()
	opts.Persistir = false
	for campo, valor := range actual {
		if models.IgualesJSON(antes[campo], valor) {
			continue
		}
		c.orq.PersistFields(ctx, seccionID, models.GrupoForm, map[string]any{campo: valor}, opts)
	}

	c.io.Printf("✓ %d campo(s) restaurado(s) en la sección %s\n", restaurados, seccionID)
	return nil
}
