package cli

import "context"

func (c *Cli) runEstado(ctx context.Context) error {
	c.io.Println("=== Estado de LBS ===")
	c.io.Println()

	if c.authService.IsAuthenticated(ctx) {
		c.io.Println("Sesión:    activa")
	} else {
		c.io.Println("Sesión:    sin autenticar")
	}

	secciones, err := c.persistente.SeccionesGuardadas(ctx)
	if err != nil {
		return err
	}
	c.io.Printf("Snapshots: %d\n", len(secciones))
	for _, seccionID := range secciones {
		c.io.Printf("  - %s\n", seccionID)
	}
	return nil
}
