package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/swimlytics/recordtrail/pkg/canonical"
	"github.com/swimlytics/recordtrail/pkg/config"
	"github.com/swimlytics/recordtrail/pkg/dataset"
	"github.com/swimlytics/recordtrail/pkg/export"
	"github.com/swimlytics/recordtrail/pkg/progression"
	"github.com/swimlytics/recordtrail/pkg/record"
	"github.com/swimlytics/recordtrail/pkg/resulttext"
	"github.com/swimlytics/recordtrail/pkg/store"
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the record-progression dataset",
	Long: `Parse all configured sources, merge and canonicalize them, apply the
correction patch and write the progression dataset to the output directory.`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("config file is required (use --config)")
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	ctx := cmd.Context()

	tables, err := parseSources(ctx, cfg)
	if err != nil {
		return err
	}

	st := store.New(log)
	merged := st.Merge(tables...)

	canon := canonical.New(log, canonical.DefaultAliasRules, cfg.Build.Seed)

	resolved, err := canon.Canonicalize(merged)
	if err != nil {
		return fmt.Errorf("canonicalizing records: %w", err)
	}

	if cfg.Build.CorrectionsFile != "" {
		corrections, err := store.LoadCorrections(cfg.Build.CorrectionsFile)
		if err != nil {
			return err
		}

		corrected, err := st.Correct(resolved, corrections)
		if err != nil {
			return fmt.Errorf("applying corrections: %w", err)
		}

		// Inserted rows may lack ids; the id pass resolves them without
		// rewriting team names, so amended teams survive.
		resolved, err = canon.ResolveIDs(corrected)
		if err != nil {
			return fmt.Errorf("resolving ids for corrected records: %w", err)
		}
	}

	sorted := store.SortCanonical(resolved)

	res := progression.New(log).Compute(sorted)

	rows, err := dataset.Build(sorted, res.Stats)
	if err != nil {
		return err
	}

	if err := writeDataset(cfg, rows); err != nil {
		return err
	}

	auditNames(canon, sorted, cfg.Build.SimilarityThreshold)

	log.WithFields(logrus.Fields{
		"records": len(rows),
		"output":  cfg.DatasetPath(),
	}).Info("Build completed")

	return nil
}

// parseSources reads and parses every configured source concurrently.
// Tables come back in configuration order so merge precedence is stable:
// export files first, then result files.
func parseSources(ctx context.Context, cfg *config.Config) ([]record.Table, error) {
	tables := make([]record.Table, len(cfg.Sources.ExportFiles)+len(cfg.Sources.ResultFiles))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Build.Parallelism)

	for i, path := range cfg.Sources.ExportFiles {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			table, err := parseExportFile(path)
			if err != nil {
				return err
			}

			tables[i] = table

			return nil
		})
	}

	offset := len(cfg.Sources.ExportFiles)

	for i, rf := range cfg.Sources.ResultFiles {
		i, rf := i, rf
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			table, err := parseResultFile(rf)
			if err != nil {
				return err
			}

			tables[offset+i] = table

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return tables, nil
}

func parseExportFile(path string) (record.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening export file: %w", err)
	}
	defer func() { _ = f.Close() }()

	res, err := export.New(log).Read(f)
	if err != nil {
		return nil, fmt.Errorf("parsing export file %s: %w", path, err)
	}

	if len(res.Skipped) > 0 {
		log.WithFields(logrus.Fields{
			"file":    path,
			"skipped": len(res.Skipped),
		}).Warn("Export rows skipped")
	}

	return res.Records, nil
}

func parseResultFile(rf config.ResultFile) (record.Table, error) {
	data, err := os.ReadFile(rf.Path)
	if err != nil {
		return nil, fmt.Errorf("reading result file: %w", err)
	}

	parser := resulttext.New(log, resulttext.EraForYear(rf.Year))
	res := parser.ParsePages(resulttext.SplitPages(string(data)))

	if len(res.Skipped) > 0 {
		log.WithFields(logrus.Fields{
			"file":    rf.Path,
			"skipped": len(res.Skipped),
		}).Warn("Result lines skipped")
	}

	return res.Records, nil
}

func writeDataset(cfg *config.Config, rows []dataset.Row) error {
	if err := os.MkdirAll(cfg.Build.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	path := cfg.DatasetPath()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating dataset file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if err := dataset.Write(f, rows); err != nil {
		return fmt.Errorf("writing dataset %s: %w", filepath.Base(path), err)
	}

	return nil
}

// auditNames logs suspiciously similar athlete-name pairs. The audit never
// merges anything; a flagged pair is a prompt for a correction patch entry.
func auditNames(canon *canonical.Canonicalizer, t record.Table, threshold float64) {
	for _, pair := range canon.AuditNames(t, threshold) {
		log.WithFields(logrus.Fields{
			"a":     pair.A,
			"b":     pair.B,
			"score": fmt.Sprintf("%.3f", pair.Score),
		}).Warn("Similar athlete names")
	}
}
