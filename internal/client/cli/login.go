package cli

import (
	"context"
	"fmt"
	"os"
	"time"
)

// Variable de entorno con la clave de API, para automatización.
const envClaveAPI = "LBS_API_KEY"

func (c *Cli) runLogin(ctx context.Context, args []string) error {
	servidor := ""
	if len(args) > 0 {
		servidor = args[0]
	}

	claveAPI := os.Getenv(envClaveAPI)
	if claveAPI == "" {
		var err error
		claveAPI, err = c.io.ReadPassword("Clave de API: ")
		if err != nil {
			return fmt.Errorf("leer clave de API: %w", err)
		}
	}
	if claveAPI == "" {
		return fmt.Errorf("la clave de API no puede estar vacía")
	}

	auth, err := c.authService.Login(ctx, claveAPI, servidor)
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Sesión iniciada")
	if auth.ExpiresAt > 0 {
		c.io.Printf("El token expira: %s\n", time.Unix(auth.ExpiresAt, 0).Format(time.RFC3339))
	}
	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.authService.Logout(ctx); err != nil {
		return err
	}
	c.io.Println("✓ Sesión cerrada")
	return nil
}
