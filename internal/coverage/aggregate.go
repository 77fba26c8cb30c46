package coverage

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/inodb/gvcfcov/internal/annotation"
	"github.com/inodb/gvcfcov/internal/vcf"
)

// ErrThresholdRequired is returned by Options.Validate when a percentage is
// requested without a threshold.
var ErrThresholdRequired = errors.New("percentage reporting requires a threshold")

// Options configures how an exon's records are reduced to one value.
type Options struct {
	Mode       Mode
	Percentage bool     // report the share of values at or above Threshold
	Threshold  *float64 // only consulted when Percentage is set
}

// Validate rejects option combinations with no defined statistic.
func (o Options) Validate() error {
	if o.Percentage && o.Threshold == nil {
		return ErrThresholdRequired
	}
	return nil
}

// Aggregator computes the coverage value of an exon for a sample.
type Aggregator struct {
	source vcf.Source
	opts   Options
	logger *zap.Logger
}

// NewAggregator creates an aggregator reading records from source.
func NewAggregator(source vcf.Source, opts Options) (*Aggregator, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Aggregator{
		source: source,
		opts:   opts,
		logger: zap.NewNop(),
	}, nil
}

// SetLogger sets the logger for debug messages.
func (a *Aggregator) SetLogger(l *zap.Logger) {
	a.logger = l
}

// Aggregate returns the coverage of exon for sample. An exon that no record
// overlaps, including one on a chromosome the source does not know, has
// coverage 0.
func (a *Aggregator) Aggregate(exon annotation.Exon, sample string) (float64, error) {
	records, err := a.source.Fetch(exon.Chrom, exon.Start, exon.Stop)
	if err != nil {
		if !vcf.IsRegionError(err) {
			return 0, fmt.Errorf("fetch %s:%d-%d: %w", exon.Chrom, exon.Start, exon.Stop, err)
		}
		a.logger.Debug("region lookup failed, treating as uncovered",
			zap.String("transcript", exon.Transcript),
			zap.Int("exon", exon.Number),
			zap.Error(err))
		records = nil
	}
	if len(records) == 0 {
		return 0, nil
	}

	values := make([]float64, len(records))
	for i, rec := range records {
		v, err := ExtractValue(rec, sample, a.opts.Mode)
		if err != nil {
			return 0, err
		}
		values[i] = v
	}

	if a.opts.Percentage {
		return passRate(values, *a.opts.Threshold), nil
	}
	return mean(values), nil
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// passRate returns the percentage of values >= threshold.
func passRate(values []float64, threshold float64) float64 {
	pass := 0
	for _, v := range values {
		if v >= threshold {
			pass++
		}
	}
	return 100 * float64(pass) / float64(len(values))
}
