// Package coverage computes per-exon coverage statistics from genotype records.
package coverage

import (
	"fmt"
	"strconv"

	"github.com/inodb/gvcfcov/internal/vcf"
)

// Mode selects which per-record value is computed for a sample.
type Mode int

const (
	// ModeDepth uses the sample's read depth (FORMAT/DP).
	ModeDepth Mode = iota
	// ModeGQX uses min(GQ, QUAL), or GQ when the record has no QUAL.
	ModeGQX
)

func (m Mode) String() string {
	if m == ModeGQX {
		return "GQX"
	}
	return "DP"
}

// MissingFieldError reports a genotype field that is absent, or not numeric,
// for a sample on a record that overlaps an exon.
type MissingFieldError struct {
	Sample string
	Field  string
	Chrom  string
	Pos    int64
	Err    error
}

func (e *MissingFieldError) Error() string {
	msg := fmt.Sprintf("sample %s: field %s missing at %s:%d", e.Sample, e.Field, e.Chrom, e.Pos)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MissingFieldError) Unwrap() error {
	return e.Err
}

// ExtractValue returns the value of rec for sample under mode.
func ExtractValue(rec *vcf.Variant, sample string, mode Mode) (float64, error) {
	switch mode {
	case ModeGQX:
		gq, err := numericField(rec, sample, "GQ")
		if err != nil {
			return 0, err
		}
		if rec.HasQual {
			return min(gq, rec.Qual), nil
		}
		return gq, nil
	default:
		return numericField(rec, sample, "DP")
	}
}

func numericField(rec *vcf.Variant, sample, field string) (float64, error) {
	raw, ok := rec.Genotype(sample, field)
	if !ok {
		return 0, &MissingFieldError{Sample: sample, Field: field, Chrom: rec.Chrom, Pos: rec.Pos}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &MissingFieldError{Sample: sample, Field: field, Chrom: rec.Chrom, Pos: rec.Pos, Err: err}
	}
	return v, nil
}
