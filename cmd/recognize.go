package cmd

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pcastillom/presencia/internal/config"
	"github.com/pcastillom/presencia/internal/logger"
	"github.com/pcastillom/presencia/internal/session"
	"github.com/pcastillom/presencia/internal/vault"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize",
	Short: "Run a live recognition session",
	Long: `Run a live recognition session against the camera. Recognized users who
hold still for the confirmation window are registered as attendees of
the event.

Without --event the most recent active event is used.

Example:
  presencia recognize --event 3`,
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().Int("event", 0, "Event id to register attendance for (default: most recent active event)")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	eventID := mustGetInt(cmd, "event")
	cfg := config.Load()
	log := logger.New("recognize")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	pipeline := session.New(cfg, vault.New(cfg.Dataset.Root, cfg.Dataset.KeyPath, log), backend, backend, log)

	err = pipeline.Recognize(ctx, eventID)
	switch {
	case errors.Is(err, session.ErrEventNotFound),
		errors.Is(err, session.ErrEventNotActive),
		errors.Is(err, session.ErrNoActiveEvent):
		return err
	case err != nil:
		return fmt.Errorf("recognition session failed: %w", err)
	}

	fmt.Println("Recognition session finished")
	return nil
}
