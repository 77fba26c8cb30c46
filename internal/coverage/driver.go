package coverage

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/inodb/gvcfcov/internal/annotation"
	"github.com/inodb/gvcfcov/internal/vcf"
)

// Row is one exon/sample coverage result.
type Row struct {
	Gene       string
	Transcript string
	Chrom      string
	Number     int
	Start      int64
	Stop       int64
	Coverage   float64
	Sample     string
}

// Sink receives rows in emission order. BeginSample is called before the
// first row of each sample.
type Sink interface {
	BeginSample(sample string) error
	WriteRow(row Row) error
	Close() error
}

// Driver runs the aggregator over every sample, transcript and exon.
type Driver struct {
	source  vcf.Source
	agg     *Aggregator
	workers int
	logger  *zap.Logger
}

// NewDriver creates a driver over source.
func NewDriver(source vcf.Source, opts Options) (*Driver, error) {
	agg, err := NewAggregator(source, opts)
	if err != nil {
		return nil, err
	}
	return &Driver{
		source:  source,
		agg:     agg,
		workers: 1,
		logger:  zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for the driver and its aggregator.
func (d *Driver) SetLogger(l *zap.Logger) {
	d.logger = l
	d.agg.SetLogger(l)
}

// SetWorkers sets how many samples may be computed at once. Values above 1
// only take effect when the source supports concurrent queries.
func (d *Driver) SetWorkers(n int) {
	if n < 1 {
		n = 1
	}
	d.workers = n
}

// Run writes one row per (sample, transcript, exon) to sink. Rows are
// ordered by sample, then transcript in input order, then exon in
// attachment order. If samples is nil, every sample of the source is used.
// The run stops at the first error.
func (d *Driver) Run(ctx context.Context, samples []string, transcripts []*annotation.Transcript, sink Sink) error {
	if samples == nil {
		samples = d.source.Samples()
	}

	if d.workers > 1 && len(samples) > 1 && d.source.Concurrent() {
		return d.runParallel(ctx, samples, transcripts, sink)
	}

	for _, sample := range samples {
		if err := sink.BeginSample(sample); err != nil {
			return err
		}
		n, err := d.sample(ctx, sample, transcripts, sink.WriteRow)
		if err != nil {
			return err
		}
		d.logger.Info("sample done", zap.String("sample", sample), zap.Int("exons", n))
	}
	return nil
}

// runParallel computes whole samples concurrently and emits them in sample
// order once all have finished.
func (d *Driver) runParallel(ctx context.Context, samples []string, transcripts []*annotation.Transcript, sink Sink) error {
	results := make([][]Row, len(samples))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.workers)
	for i, sample := range samples {
		g.Go(func() error {
			var rows []Row
			_, err := d.sample(gctx, sample, transcripts, func(r Row) error {
				rows = append(rows, r)
				return nil
			})
			results[i] = rows
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, sample := range samples {
		if err := sink.BeginSample(sample); err != nil {
			return err
		}
		for _, row := range results[i] {
			if err := sink.WriteRow(row); err != nil {
				return err
			}
		}
		d.logger.Info("sample done", zap.String("sample", sample), zap.Int("exons", len(results[i])))
	}
	return nil
}

// sample computes the rows of one sample, passing each to emit.
func (d *Driver) sample(ctx context.Context, sample string, transcripts []*annotation.Transcript, emit func(Row) error) (int, error) {
	n := 0
	for _, t := range transcripts {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		for _, exon := range t.Exons {
			cov, err := d.agg.Aggregate(exon, sample)
			if err != nil {
				return n, err
			}
			err = emit(Row{
				Gene:       t.Gene,
				Transcript: t.Name,
				Chrom:      exon.Chrom,
				Number:     exon.Number,
				Start:      exon.Start,
				Stop:       exon.Stop,
				Coverage:   cov,
				Sample:     sample,
			})
			if err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}
