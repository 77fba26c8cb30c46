package vcf

// VariantParser is the interface for parsers that read variants sequentially.
type VariantParser interface {
	// Next reads the next variant.
	// Returns nil, nil when there are no more variants.
	Next() (*Variant, error)

	// SampleNames returns the sample identifiers declared in the header.
	SampleNames() []string

	// Close closes the parser and releases resources.
	Close() error
}

// Source answers region queries against a set of genotype records.
type Source interface {
	// Samples returns the sample identifiers present in the file, in header order.
	Samples() []string

	// Fetch returns the records overlapping [start, stop] on chrom, in file order.
	// Malformed regions and chromosomes unknown to the source fail with a
	// *RegionError.
	Fetch(chrom string, start, stop int64) ([]*Variant, error)

	// Concurrent reports whether Fetch may be called from several goroutines.
	Concurrent() bool

	// Close releases resources held by the source.
	Close() error
}
