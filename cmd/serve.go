package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pcastillom/presencia/internal/config"
	"github.com/pcastillom/presencia/internal/logger"
	"github.com/pcastillom/presencia/internal/session"
	"github.com/pcastillom/presencia/internal/vault"
	"github.com/pcastillom/presencia/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web server",
	Long: `Start the Presencia web server.

The server exposes the user and event directory, the attendance ledger,
and the capture, training and recognition operations over an HTTP API.
Camera sessions run as background jobs.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().Int("port", 0, "Port to listen on (overrides PRESENCIA_PORT)")
	serveCmd.Flags().String("host", "", "Host to bind to (overrides PRESENCIA_HOST)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if port := mustGetInt(cmd, "port"); port != 0 {
		cfg.Web.Port = port
	}
	if host := mustGetString(cmd, "host"); host != "" {
		cfg.Web.Host = host
	}
	log := logger.New("web")

	ctx := context.Background()
	backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	pipeline := session.New(cfg, vault.New(cfg.Dataset.Root, cfg.Dataset.KeyPath, log), backend, backend, log)
	server := web.NewServer(cfg, pipeline, backend, backend, log)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nShutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			fmt.Printf("Error during shutdown: %v\n", err)
		}
	}()

	fmt.Printf("Starting Presencia API on http://%s:%d\n", cfg.Web.Host, cfg.Web.Port)
	fmt.Println("Press Ctrl+C to stop")

	if err := server.Start(); err != nil {
		return fmt.Errorf("starting server: %w", err)
	}
	return nil
}
