package cli

import (
	"context"

	"github.com/linea-base/lbs/internal/validation"
)

func (c *Cli) runLimpiar(ctx context.Context, args []string) error {
	if len(args) > 0 {
		seccionID := args[0]
		if err := validation.ValidarSeccionID(seccionID); err != nil {
			return err
		}
		if err := c.persistente.ClearSectionState(ctx, seccionID); err != nil {
			return err
		}
		c.io.Printf("✓ Snapshot de la sección %s eliminado\n", seccionID)
		return nil
	}

	if err := c.persistente.ClearAll(ctx); err != nil {
		return err
	}
	c.io.Println("✓ Todos los snapshots eliminados")
	return nil
}
