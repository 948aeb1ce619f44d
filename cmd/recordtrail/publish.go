package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/swimlytics/recordtrail/pkg/config"
	"github.com/swimlytics/recordtrail/pkg/upload"
)

var publishMethod string

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish the built dataset to remote storage",
	Long:  `Upload the output directory to S3-compatible storage using the config file settings.`,
	RunE:  runPublish,
}

func init() {
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVar(&publishMethod, "method", "s3",
		"Publish method (currently only \"s3\")")
}

func runPublish(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("config file is required (use --config)")
	}

	if publishMethod != "s3" {
		return fmt.Errorf("unsupported method %q (only \"s3\" is supported)", publishMethod)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Publish.S3 == nil {
		return fmt.Errorf("S3 publishing is not configured")
	}

	publisher, err := upload.NewS3Publisher(log, cfg.Publish.S3)
	if err != nil {
		return fmt.Errorf("creating S3 publisher: %w", err)
	}

	ctx := cmd.Context()

	if err := publisher.Preflight(ctx); err != nil {
		return fmt.Errorf("S3 preflight: %w", err)
	}

	log.WithField("dir", cfg.Build.OutputDir).Info("Publishing dataset")

	if err := publisher.Publish(ctx, cfg.Build.OutputDir); err != nil {
		return fmt.Errorf("publishing dataset: %w", err)
	}

	log.Info("Publish completed successfully")

	return nil
}
