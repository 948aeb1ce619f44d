package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/swimlytics/recordtrail/pkg/config"
	"github.com/swimlytics/recordtrail/pkg/dataset"
)

var (
	showFile    string
	showEventID int
	showGender  string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print one event's record progression",
	Long: `Read a built dataset and print the progression of one (event, gender)
partition as a table, fastest record first.`,
	RunE: runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().StringVar(&showFile, "file", "",
		"dataset file (defaults to the configured output)")
	showCmd.Flags().IntVar(&showEventID, "event", 0, "event id to show")
	showCmd.Flags().StringVar(&showGender, "gender", "", "gender to show (M or F)")

	_ = showCmd.MarkFlagRequired("event")
	_ = showCmd.MarkFlagRequired("gender")
}

func runShow(cmd *cobra.Command, args []string) error {
	path := showFile

	if path == "" {
		if cfgFile == "" {
			return fmt.Errorf("either --file or --config is required")
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		path = cfg.DatasetPath()
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := dataset.Read(f)
	if err != nil {
		return fmt.Errorf("reading dataset: %w", err)
	}

	partition := dataset.FilterEvent(rows, showEventID, showGender)
	if len(partition) == 0 {
		return fmt.Errorf("no records for event %d gender %q", showEventID, showGender)
	}

	dataset.Render(os.Stdout, partition)

	return nil
}
