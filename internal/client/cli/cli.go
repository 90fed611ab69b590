// Package cli implementa los comandos de la herramienta lbs.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/linea-base/lbs/internal/client/auth"
	"github.com/linea-base/lbs/internal/client/iocli"
	"github.com/linea-base/lbs/internal/formstate"
	"github.com/linea-base/lbs/internal/mapping"
	"github.com/linea-base/lbs/internal/orchestrator"
	"github.com/linea-base/lbs/internal/persist"
	"github.com/linea-base/lbs/internal/pipeline"
	"github.com/linea-base/lbs/internal/project"
)

// Cli agrupa los servicios que usan los comandos.
type Cli struct {
	io          iocli.IO
	authService *auth.Service
	cargador    *mapping.Cargador
	orq         *orchestrator.Orquestador
	estado      *formstate.Store
	proyecto    *project.Store
	pipeline    *pipeline.Pipeline
	persistente *persist.Engine
}

// New wires the command layer over the already-built services.
func New(
	io iocli.IO,
	authService *auth.Service,
	cargador *mapping.Cargador,
	orq *orchestrator.Orquestador,
	estado *formstate.Store,
	proyecto *project.Store,
	pipe *pipeline.Pipeline,
	persistente *persist.Engine,
) *Cli {
	return &Cli{
		io:          io,
		authService: authService,
		cargador:    cargador,
		orq:         orq,
		estado:      estado,
		proyecto:    proyecto,
		pipeline:    pipe,
		persistente: persistente,
	}
}

// Run despacha el comando y termina el proceso ante un error.
func (c *Cli) Run(ctx context.Context, command string, args []string) {
	var err error
	switch command {
	case "login":
		err = c.runLogin(ctx, args)
	case "logout":
		err = c.runLogout(ctx)
	case "estado":
		err = c.runEstado(ctx)
	case "cargar":
		err = c.runCargar(ctx, args)
	case "restaurar":
		err = c.runRestaurar(ctx, args)
	case "exportar":
		err = c.runExportar(ctx, args)
	case "importar":
		err = c.runImportar(ctx, args)
	case "limpiar":
		err = c.runLimpiar(ctx, args)
	default:
		fmt.Fprintf(os.Stderr, "Comando desconocido: %s\n", command)
		PrintUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// PrintUsage imprime la ayuda de la herramienta.
func PrintUsage() {
	fmt.Println("LBS — línea base social")
	fmt.Println()
	fmt.Println("Uso:")
	fmt.Println("  lbs [OPCIONES] COMANDO")
	fmt.Println()
	fmt.Println("Opciones:")
	fmt.Println("  --version           Muestra la versión")
	fmt.Println("  --server URL        URL de censusd (por defecto: http://localhost:8080)")
	fmt.Println("  --db RUTA           Base de datos local (por defecto: lbs.db)")
	fmt.Println()
	fmt.Println("Comandos:")
	fmt.Println("  login                       Autenticarse contra censusd")
	fmt.Println("  logout                      Cerrar la sesión local")
	fmt.Println("  estado                      Estado de la sesión y snapshots guardados")
	fmt.Println("  cargar <sección> [campos]   Cargar campos del censo en una sección")
	fmt.Println("  restaurar <sección>         Restaurar el snapshot local de una sección")
	fmt.Println("  exportar <archivo>          Exportar el estado del formulario a JSON")
	fmt.Println("  importar <archivo>          Importar un dataset aplicando el pipeline")
	fmt.Println("  limpiar [sección]           Borrar snapshots (todos o de una sección)")
	fmt.Println()
	fmt.Println("Ejemplos:")
	fmt.Println("  lbs login")
	fmt.Println("  lbs cargar 3.1.4.A.1.2 poblacionSexoAISD")
	fmt.Println("  lbs importar datos-ejemplo.json")
	fmt.Println("  lbs --server https://censo.example.com estado")
}
