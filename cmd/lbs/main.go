package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/linea-base/lbs/internal/client/api"
	"github.com/linea-base/lbs/internal/client/auth"
	"github.com/linea-base/lbs/internal/client/cli"
	"github.com/linea-base/lbs/internal/client/iocli"
	"github.com/linea-base/lbs/internal/formstate"
	"github.com/linea-base/lbs/internal/locality"
	"github.com/linea-base/lbs/internal/mapping"
	"github.com/linea-base/lbs/internal/orchestrator"
	"github.com/linea-base/lbs/internal/persist"
	"github.com/linea-base/lbs/internal/pipeline"
	"github.com/linea-base/lbs/internal/project"
	"github.com/linea-base/lbs/internal/storage/boltdb"
	"github.com/linea-base/lbs/internal/syncbus"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Flags globales
	showVersion := flag.Bool("version", false, "Muestra la versión")
	serverURL := flag.String("server", "http://localhost:8080", "URL de censusd")
	dbPath := flag.String("db", "lbs.db", "Base de datos local")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}

	command := args[0]
	ctx := context.Background()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	// Almacenamiento local de snapshots y sesión
	kv, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := kv.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	// Capas del motor de formularios
	estado := formstate.New()
	proyecto := project.New()
	bus := syncbus.New(estado, logger)
	defer bus.Close()
	persistente := persist.New(kv, logger)
	orq := orchestrator.New(estado, proyecto, bus, persistente, logger)

	// Servicios contra censusd
	cliente := api.NewClient(*serverURL)
	authService := auth.NewService(cliente, kv)
	localidades := locality.NewResolver(proyecto)
	cargador := mapping.NewCargador(mapping.NewRegistro(), cliente, localidades, proyecto, orq, logger)

	c := cli.New(iocli.NewConsole(), authService, cargador, orq, estado, proyecto,
		pipeline.New(logger), persistente)
	c.Run(ctx, command, args[1:])
}

func printVersion() {
	fmt.Printf("LBS Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
