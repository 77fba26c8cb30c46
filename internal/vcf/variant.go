// Package vcf provides VCF file parsing and region queries.
package vcf

import "strconv"

// Variant represents a single record from a VCF file.
type Variant struct {
	Chrom   string                 // Chromosome name (e.g., "12", "chr12")
	Pos     int64                  // 1-based genomic position
	ID      string                 // Variant identifier (e.g., rs ID)
	Ref     string                 // Reference allele
	Alt     string                 // Alternate allele(s), as written
	Qual    float64                // Quality score, valid only if HasQual
	HasQual bool                   // False when QUAL is "."
	Filter  string                 // Filter status (PASS or filter name)
	Info    map[string]interface{} // INFO field key-value pairs
	Format  []string               // FORMAT keys (e.g., GT, DP, GQ)
	Samples map[string][]string    // Per-sample values in FORMAT order
}

// Genotype returns the value of a FORMAT field for a sample.
// The second result is false when the field is not present for the sample,
// including the VCF missing value ".".
func (v *Variant) Genotype(sample, field string) (string, bool) {
	values, ok := v.Samples[sample]
	if !ok {
		return "", false
	}
	for i, key := range v.Format {
		if key != field {
			continue
		}
		if i >= len(values) || values[i] == "" || values[i] == "." {
			return "", false
		}
		return values[i], true
	}
	return "", false
}

// End returns the last reference position covered by the record: the INFO
// END value for gVCF reference blocks, Pos otherwise.
func (v *Variant) End() int64 {
	if raw, ok := v.Info["END"].(string); ok {
		if end, err := strconv.ParseInt(raw, 10, 64); err == nil && end >= v.Pos {
			return end
		}
	}
	return v.Pos
}

// NormalizeChrom returns the chromosome name without "chr" prefix.
func NormalizeChrom(chrom string) string {
	if len(chrom) > 3 && chrom[:3] == "chr" {
		return chrom[3:]
	}
	return chrom
}

// AlternateChrom returns the other common spelling of a chromosome name:
// "chr1" for "1" and "1" for "chr1".
func AlternateChrom(chrom string) string {
	if n := NormalizeChrom(chrom); n != chrom {
		return n
	}
	return "chr" + chrom
}
