package cli

import (
	"context"
	"fmt"

	"github.com/linea-base/lbs/internal/models"
	"github.com/linea-base/lbs/internal/validation"
)

func (c *Cli) runCargar(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("falta la sección. Uso: lbs cargar <sección> [campos...]")
	}
	seccionID := args[0]
	if err := validation.ValidarSeccionID(seccionID); err != nil {
		return err
	}
	if !c.authService.IsAuthenticated(ctx) {
		return fmt.Errorf("no autenticado: ejecute 'lbs login' primero")
	}
	if _, err := c.authService.Restore(ctx); err != nil {
		return err
	}

	campos := args[1:]
	if len(campos) == 0 {
		campos = c.cargador.CamposBackend()
	}

	c.io.Printf("Cargando %d campo(s) en la sección %s...\n", len(campos), seccionID)
	if err := c.cargador.CargarCampos(ctx, seccionID, models.GrupoForm, campos); err != nil {
		return err
	}
	c.orq.Flush()

	c.io.Println("✓ Carga completada")
	return nil
}
