package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	set "gopkg.in/fatih/set.v0"

	"github.com/inodb/gvcfcov/internal/annotation"
	"github.com/inodb/gvcfcov/internal/coverage"
	"github.com/inodb/gvcfcov/internal/duckdb"
	"github.com/inodb/gvcfcov/internal/output"
	"github.com/inodb/gvcfcov/internal/vcf"
)

func newCoverageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coverage",
		Short: "Compute per-exon coverage for every sample",
		Long: `Compute one coverage value per exon and sample.

The value is the mean of the per-record depth (or GQX with --gqx) of all
records overlapping the exon, or with --perc the percentage of those records
at or above --threshold. Exons without overlapping records report 0.

Exon bounds are taken from the table as is and both ends are inclusive: a
record at POS == exonStart counts, even though refFlat starts are 0-based.
Tools that query the half-open interval (exonStart, exonEnd] leave that
position out.

Flags can also be set in ~/.gvcfcov.yaml under the "coverage" key or through
GVCFCOV_COVERAGE_* environment variables.`,
		Example: `  gvcfcov coverage -I sample.g.vcf.gz -R refFlat.txt.gz
  gvcfcov coverage -I cohort.g.vcf.gz -R refflat.duckdb --samples S1,S3 --output-mode json -O cov.json.gz
  gvcfcov coverage -I sample.g.vcf.gz -R refFlat.txt -m GVCF --gqx --perc --threshold 20 --output-mode csv --tab-delimited`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCoverage(cmd.Context())
		},
	}

	f := cmd.Flags()
	f.StringP("input", "I", "", "Input (g)VCF; bgzipped files with a .tbi index are queried through the index")
	f.StringP("refflat", "R", "", "refFlat annotation table (plain, gzip, or .duckdb from 'gvcfcov import')")
	f.String("genome", "", "Use the refFlat table fetched by 'gvcfcov download --genome' when --refflat is not set")
	f.StringP("output", "O", "-", "Output file (- for stdout; .gz and .lz4 are compressed)")
	f.String("output-mode", "bedgraph", "Output format: bedgraph, csv, json (csv has a trailing sample column)")
	f.Bool("tab-delimited", false, "Write CSV output with tabs")
	f.StringP("mode", "m", "BP_RESOLUTION", "gVCF mode: BP_RESOLUTION or GVCF (reference blocks cover POS..END)")
	f.Bool("gqx", false, "Use GQX = min(GQ, QUAL) instead of DP")
	f.Bool("perc", false, "Report the percentage of records at or above --threshold")
	f.Float64("threshold", 0, "Threshold for --perc")
	f.StringSlice("samples", nil, "Only report these samples (default: all)")
	f.Int("workers", 1, "Samples computed in parallel (in-memory inputs only)")
	f.Duration("timeout", 0, "Abort the run after this long (0 = no limit)")

	bindFlags("coverage", f)

	return cmd
}

// bindFlags binds every flag of fs to viper under prefix, so config file
// and environment values act as flag defaults.
func bindFlags(prefix string, fs *pflag.FlagSet) {
	fs.VisitAll(func(flag *pflag.Flag) {
		viper.BindPFlag(prefix+"."+flag.Name, flag)
	})
}

// coverageConfig holds the resolved settings of a coverage run.
type coverageConfig struct {
	input, refflat, output string
	format                 output.Format
	sinkOpts               output.Options
	sourceOpts             vcf.Options
	opts                   coverage.Options
	samples                []string
	workers                int
	timeout                time.Duration
}

// loadCoverageConfig validates the flags before any file is opened.
func loadCoverageConfig() (*coverageConfig, error) {
	cfg := &coverageConfig{
		input:   viper.GetString("coverage.input"),
		refflat: viper.GetString("coverage.refflat"),
		output:  viper.GetString("coverage.output"),
		samples: viper.GetStringSlice("coverage.samples"),
		workers: viper.GetInt("coverage.workers"),
		timeout: viper.GetDuration("coverage.timeout"),
	}
	if cfg.input == "" {
		return nil, usagef("--input is required")
	}
	if cfg.refflat == "" {
		genome := viper.GetString("coverage.genome")
		if genome == "" {
			return nil, usagef("--refflat or --genome is required")
		}
		path, ok := FindRefFlat(genome)
		if !ok {
			return nil, fmt.Errorf("no refFlat table for %s; run: gvcfcov download --genome %s", genome, genome)
		}
		cfg.refflat = path
	}

	var err error
	if cfg.format, err = output.ParseFormat(viper.GetString("coverage.output-mode")); err != nil {
		return nil, &usageError{err: err}
	}
	cfg.sinkOpts.TabDelimited = viper.GetBool("coverage.tab-delimited")

	if cfg.sourceOpts.Mode, err = vcf.ParseMode(viper.GetString("coverage.mode")); err != nil {
		return nil, &usageError{err: err}
	}

	if viper.GetBool("coverage.gqx") {
		cfg.opts.Mode = coverage.ModeGQX
	}
	cfg.opts.Percentage = viper.GetBool("coverage.perc")
	if viper.IsSet("coverage.threshold") {
		t := viper.GetFloat64("coverage.threshold")
		cfg.opts.Threshold = &t
	}
	if err := cfg.opts.Validate(); err != nil {
		return nil, usagef("--perc: %w", err)
	}
	return cfg, nil
}

func runCoverage(ctx context.Context) error {
	cfg, err := loadCoverageConfig()
	if err != nil {
		return err
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.timeout)
		defer cancel()
	}

	transcripts, err := loadAnnotation(ctx, cfg.refflat, "")
	if err != nil {
		return err
	}
	logger.Info("loaded annotation",
		zap.String("path", cfg.refflat),
		zap.Int("transcripts", len(transcripts)))

	src, err := vcf.Open(cfg.input, cfg.sourceOpts)
	if err != nil {
		return err
	}
	defer src.Close()

	samples, err := selectSamples(src.Samples(), cfg.samples)
	if err != nil {
		return &usageError{err: err}
	}
	fields := []zap.Field{
		zap.String("path", cfg.input),
		zap.String("mode", cfg.sourceOpts.Mode.String()),
		zap.Strings("samples", samples),
	}
	if mem, ok := src.(*vcf.MemorySource); ok {
		fields = append(fields, zap.Int("records", mem.Len()))
	}
	logger.Info("opened variants", fields...)

	driver, err := coverage.NewDriver(src, cfg.opts)
	if err != nil {
		return err
	}
	driver.SetLogger(logger)
	driver.SetWorkers(cfg.workers)

	out, err := output.Create(cfg.output)
	if err != nil {
		return err
	}
	if err := writeCoverage(ctx, driver, samples, transcripts, cfg, out); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close output: %w", err)
	}
	return nil
}

func writeCoverage(ctx context.Context, driver *coverage.Driver, samples []string, transcripts []*annotation.Transcript, cfg *coverageConfig, w io.Writer) error {
	sink, err := output.NewSink(cfg.format, w, cfg.sinkOpts)
	if err != nil {
		return err
	}
	if err := driver.Run(ctx, samples, transcripts, sink); err != nil {
		return err
	}
	if err := sink.Close(); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

// loadAnnotation reads a refFlat table, or a DuckDB store written by
// 'gvcfcov import'. A non-empty gene keeps only that gene's transcripts.
func loadAnnotation(ctx context.Context, path, gene string) ([]*annotation.Transcript, error) {
	if !strings.HasSuffix(path, ".duckdb") {
		transcripts, err := annotation.ReadAll(path)
		if err != nil || gene == "" {
			return transcripts, err
		}
		var kept []*annotation.Transcript
		for _, t := range transcripts {
			if t.Gene == gene {
				kept = append(kept, t)
			}
		}
		return kept, nil
	}

	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("open annotation store: %w", err)
	}
	store, err := duckdb.Open(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	if gene != "" {
		return store.SearchByGene(ctx, gene)
	}
	return store.LoadTranscripts(ctx)
}

// selectSamples returns the samples of all that are named in wanted, in
// file order. An empty wanted selects every sample.
func selectSamples(all, wanted []string) ([]string, error) {
	if len(wanted) == 0 {
		return all, nil
	}

	available := set.New(set.ThreadSafe)
	for _, s := range all {
		available.Add(s)
	}
	requested := set.New(set.ThreadSafe)
	for _, s := range wanted {
		if !available.Has(s) {
			return nil, fmt.Errorf("sample %q not found in input (have %s)", s, strings.Join(all, ", "))
		}
		requested.Add(s)
	}

	selected := make([]string, 0, requested.Size())
	for _, s := range all {
		if requested.Has(s) {
			selected = append(selected, s)
		}
	}
	return selected, nil
}
