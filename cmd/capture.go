package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pcastillom/presencia/internal/config"
	"github.com/pcastillom/presencia/internal/logger"
	"github.com/pcastillom/presencia/internal/session"
	"github.com/pcastillom/presencia/internal/vault"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture face samples for a user",
	Long: `Capture face samples from the camera for one user.

Every detected face is cropped and stored encrypted in the dataset until
the sample cap is reached or you press 'q' in the preview window.

Example:
  presencia capture --user 7`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)

	captureCmd.Flags().Int("user", 0, "User id to capture samples for (required)")
	captureCmd.MarkFlagRequired("user")
}

func runCapture(cmd *cobra.Command, args []string) error {
	userID := mustGetInt(cmd, "user")
	cfg := config.Load()
	log := logger.New("capture")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	pipeline := session.New(cfg, vault.New(cfg.Dataset.Root, cfg.Dataset.KeyPath, log), backend, backend, log)

	bar := progressbar.NewOptions(cfg.Dataset.Cap,
		progressbar.OptionSetDescription("Capturing samples"),
		progressbar.OptionShowCount(),
	)
	pipeline.OnCaptureProgress = func(stored, total int) {
		bar.Set(stored)
	}

	stored, err := pipeline.Capture(ctx, userID)
	if err != nil {
		return fmt.Errorf("capture session failed: %w", err)
	}

	fmt.Printf("\nStored %d encrypted samples for user %d\n", stored, userID)
	fmt.Println("Run 'presencia train' to refresh the model")
	return nil
}
