package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/swimlytics/recordtrail/pkg/canonical"
	"github.com/swimlytics/recordtrail/pkg/config"
	"github.com/swimlytics/recordtrail/pkg/dataset"
	"github.com/swimlytics/recordtrail/pkg/record"
)

var (
	auditFile      string
	auditThreshold float64
)

var auditCmd = &cobra.Command{
	Use:   "audit",
	Short: "List suspiciously similar athlete names in a built dataset",
	Long: `Compare athlete names in a built dataset and print pairs that look
like alternate spellings of one person. Flagged pairs are candidates for a
correction patch entry; nothing is merged automatically.`,
	RunE: runAudit,
}

func init() {
	rootCmd.AddCommand(auditCmd)
	auditCmd.Flags().StringVar(&auditFile, "file", "",
		"dataset file (defaults to the configured output)")
	auditCmd.Flags().Float64Var(&auditThreshold, "threshold",
		config.DefaultSimilarityThreshold, "similarity score cutoff")
}

func runAudit(cmd *cobra.Command, args []string) error {
	path := auditFile
	seed := int64(config.DefaultSeed)

	if path == "" {
		if cfgFile == "" {
			return fmt.Errorf("either --file or --config is required")
		}

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		path = cfg.DatasetPath()
		seed = cfg.Build.Seed
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

	records := make(record.Table, len(rows))
	for i, r := range rows {
		records[i] = r.Record
	}

	canon := canonical.New(log, canonical.DefaultAliasRules, seed)

	pairs := canon.AuditNames(records, auditThreshold)
	if len(pairs) == 0 {
		log.Info("No similar athlete names found")

		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Name", "Name", "Score"})

	for _, pair := range pairs {
		t.AppendRow(table.Row{pair.A, pair.B, fmt.Sprintf("%.3f", pair.Score)})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()

	return nil
}
