package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linea-base/lbs/internal/server"
	"github.com/linea-base/lbs/internal/server/apikey"
	"github.com/linea-base/lbs/internal/server/handlers"
	"github.com/linea-base/lbs/internal/server/storage"
	"github.com/linea-base/lbs/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

const envJWTSecret = "CENSUSD_JWT_SECRET"

func main() {
	showVersion := flag.Bool("version", false, "Muestra la versión")
	addr := flag.String("addr", ":8080", "Dirección de escucha")
	dbPath := flag.String("db", "censusd.db", "Base de datos SQLite")
	tokenTTL := flag.Duration("token-ttl", 8*time.Hour, "Vigencia del token de acceso")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	store, err := sqlite.New(ctx, *dbPath)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	// Subcomando administrativo: emitir una credencial de consultora.
	if args := flag.Args(); len(args) > 0 && args[0] == "credencial" {
		if err := emitirCredencial(ctx, store, args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	secreto := os.Getenv(envJWTSecret)
	if secreto == "" {
		logger.Error("missing JWT secret", "env", envJWTSecret)
		os.Exit(1)
	}

	router := server.NewRouter(server.Config{
		Logger:       logger,
		Censo:        store,
		Credenciales: store,
		JWT: handlers.JWTConfig{
			Secret:         []byte(secreto),
			AccessTokenTTL: *tokenTTL,
		},
		Version: Version,
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("censusd listening", "addr", *addr, "version", Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("censusd stopped")
}

// emitirCredencial genera una clave API nueva y la registra. La clave se
// imprime una sola vez; solo su hash queda en la base.
func emitirCredencial(ctx context.Context, creds storage.CredencialStorage, args []string) error {
	if len(args) == 0 {
		return errors.New("uso: censusd credencial <nombre>")
	}
	nombre := args[0]

	id, clave, hash, err := apikey.Generar()
	if err != nil {
		return fmt.Errorf("generating api key: %w", err)
	}

	err = creds.CrearCredencial(ctx, &storage.Credencial{
		ID:         id,
		Nombre:     nombre,
		ClaveHash:  hash,
		CreadoEn:   time.Now().UTC(),
		Habilitada: true,
	})
	if err != nil {
		return fmt.Errorf("storing credential: %w", err)
	}

	fmt.Printf("Credencial creada\n")
	fmt.Printf("  ID:     %s\n", id)
	fmt.Printf("  Nombre: %s\n", nombre)
	fmt.Printf("  Clave:  %s\n", clave)
	fmt.Println()
	fmt.Println("Guarde la clave ahora: no vuelve a mostrarse.")
	return nil
}

func printVersion() {
	fmt.Printf("Censusd\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
