package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pcastillom/presencia/internal/config"
	"github.com/pcastillom/presencia/internal/logger"
	"github.com/pcastillom/presencia/internal/session"
	"github.com/pcastillom/presencia/internal/vault"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the recognizer on the stored dataset",
	Long: `Train the face recognizer on every sample in the encrypted dataset and
replace the model artifact. Run this after capturing samples for new
users.`,
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	log := logger.New("train")

	pipeline := session.New(cfg, vault.New(cfg.Dataset.Root, cfg.Dataset.KeyPath, log), nil, nil, log)

	report, err := pipeline.Train(context.Background())
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	fmt.Printf("Trained on %d samples across %d users\n", report.Samples, report.Classes)
	if report.Skipped > 0 {
		fmt.Printf("Skipped %d unreadable samples\n", report.Skipped)
	}
	fmt.Printf("Model written to %s\n", cfg.Model.Path)
	return nil
}
