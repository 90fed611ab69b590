package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
)

func (c *Cli) runExportar(_ context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("falta el archivo de destino. Uso: lbs exportar <archivo>")
	}
	ruta := args[0]

	root := c.estado.Export()
	crudo, err := json.MarshalIndent(root, "", "  ")
	if err != nil {
		return fmt.Errorf("serializar el estado: %w", err)
	}
	if err := os.WriteFile(ruta, crudo, 0o600); err != nil {
		return fmt.Errorf("escribir %s: %w", ruta, err)
	}

	c.io.Printf("✓ Estado exportado a %s (%d secciones)\n", ruta, len(root))
	return nil
}
