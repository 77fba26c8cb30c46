package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/gvcfcov/internal/annotation"
	"github.com/inodb/gvcfcov/internal/duckdb"
)

type importOptions struct {
	output  string
	genome  string
	table   string
	replace bool
}

func newImportCmd() *cobra.Command {
	var opts importOptions

	cmd := &cobra.Command{
		Use:   "import [refFlat-file]",
		Short: "Import a refFlat table into a DuckDB annotation store",
		Long: `Parse a refFlat table once and store it in DuckDB. The store can then be
passed to 'gvcfcov coverage --refflat' in place of the text file and keeps the
table's order. Transcripts come either from a local file (plain or gzip) or
from the UCSC public MySQL server with --ucsc.`,
		Example: `  gvcfcov import -o hg38.duckdb refFlat.txt.gz
  gvcfcov import -o hg38.duckdb --ucsc hg38
  gvcfcov import -o hg19.duckdb --ucsc hg19 --table ncbiRefSeq --replace`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var input string
			if len(args) == 1 {
				input = args[0]
			}
			switch {
			case input == "" && opts.genome == "":
				return usagef("a refFlat file or --ucsc is required")
			case input != "" && opts.genome != "":
				return usagef("a refFlat file and --ucsc are mutually exclusive")
			case opts.output == "":
				return usagef("--output is required")
			}
			return runImport(cmd.Context(), input, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output DuckDB file")
	cmd.Flags().StringVar(&opts.genome, "ucsc", "", "Import from the UCSC database of this genome (e.g. hg38)")
	cmd.Flags().StringVar(&opts.table, "table", "refFlat", "UCSC table in refFlat layout")
	cmd.Flags().BoolVar(&opts.replace, "replace", false, "Remove previously imported transcripts first")

	return cmd
}

func runImport(ctx context.Context, input string, opts importOptions) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	// The coverage command recognizes stores by extension.
	output := opts.output
	if filepath.Ext(output) != ".duckdb" {
		output += ".duckdb"
	}

	store, err := duckdb.Open(output)
	if err != nil {
		return err
	}
	defer store.Close()

	if opts.replace {
		if err := store.ClearTranscripts(); err != nil {
			return err
		}
	}

	var (
		transcripts []*annotation.Transcript
		fp          duckdb.FileFingerprint
	)
	if input != "" {
		fp, err = duckdb.StatFile(input)
		if err != nil {
			return fmt.Errorf("stat refFlat: %w", err)
		}
		done, err := store.Imported(fp)
		if err != nil {
			return err
		}
		if done {
			logger.Info("already imported, skipping", zap.String("path", input))
			return nil
		}
		if transcripts, err = annotation.ReadAll(input); err != nil {
			return err
		}
	} else {
		fp = duckdb.FileFingerprint{
			Path:    fmt.Sprintf("ucsc:%s.%s", opts.genome, opts.table),
			ModTime: time.Now(),
		}
		logger.Info("querying UCSC",
			zap.String("host", annotation.UCSCHost),
			zap.String("genome", opts.genome),
			zap.String("table", opts.table))
		if transcripts, err = annotation.ImportUCSC(ctx, annotation.UCSCDSN(opts.genome), opts.table); err != nil {
			return err
		}
	}

	if err := store.WriteTranscripts(ctx, transcripts); err != nil {
		return err
	}
	if err := store.RecordSource(fp, len(transcripts)); err != nil {
		return err
	}

	total, err := store.TranscriptCount()
	if err != nil {
		return err
	}

	sizeStr := "unknown"
	if stat, err := os.Stat(output); err == nil {
		sizeStr = formatSize(stat.Size())
	}
	logger.Info("import complete",
		zap.Int("imported", len(transcripts)),
		zap.Int("total", total),
		zap.String("output", output),
		zap.String("size", sizeStr))
	return nil
}
