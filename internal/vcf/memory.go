package vcf

import (
	"fmt"
	"sort"

	"github.com/biogo/store/interval"
)

// recordInterval is a half-open [start, end) interval holding one record.
type recordInterval struct {
	start, end int
	uid        uintptr
	variant    *Variant
}

func (r recordInterval) Overlap(b interval.IntRange) bool {
	// Half-open interval indexing.
	return r.end > b.Start && r.start < b.End
}

func (r recordInterval) ID() uintptr {
	return r.uid
}

func (r recordInterval) Range() interval.IntRange {
	return interval.IntRange{Start: r.start, End: r.end}
}

// MemorySource holds every record of a VCF in per-chromosome interval trees.
// It is read-only once loaded and safe for concurrent queries.
type MemorySource struct {
	samples []string
	mode    Mode
	trees   map[string]*interval.IntTree
	count   int
}

// LoadMemory reads all records from p.
func LoadMemory(p VariantParser, opts Options) (*MemorySource, error) {
	s := &MemorySource{
		samples: p.SampleNames(),
		mode:    opts.Mode,
		trees:   make(map[string]*interval.IntTree),
	}

	for {
		v, err := p.Next()
		if err != nil {
			return nil, fmt.Errorf("read variant: %w", err)
		}
		if v == nil {
			break
		}
		if err := s.insert(v); err != nil {
			return nil, fmt.Errorf("index %s:%d: %w", v.Chrom, v.Pos, err)
		}
	}

	for _, tree := range s.trees {
		tree.AdjustRanges()
	}
	return s, nil
}

func (s *MemorySource) insert(v *Variant) error {
	tree, ok := s.trees[v.Chrom]
	if !ok {
		tree = &interval.IntTree{}
		s.trees[v.Chrom] = tree
	}
	start, end := s.mode.span(v)
	iv := recordInterval{
		start:   int(start),
		end:     int(end) + 1,
		uid:     uintptr(s.count),
		variant: v,
	}
	s.count++
	return tree.Insert(iv, true)
}

// Samples returns the sample identifiers present in the file.
func (s *MemorySource) Samples() []string {
	return s.samples
}

// Len returns the number of loaded records.
func (s *MemorySource) Len() int {
	return s.count
}

// Fetch returns the records overlapping [start, stop] on chrom, in file order.
func (s *MemorySource) Fetch(chrom string, start, stop int64) ([]*Variant, error) {
	if err := checkRegion(chrom, start, stop); err != nil {
		return nil, err
	}

	tree, ok := s.trees[chrom]
	if !ok {
		tree, ok = s.trees[AlternateChrom(chrom)]
	}
	if !ok {
		return nil, &RegionError{Chrom: chrom, Start: start, Stop: stop, Err: ErrUnknownChrom}
	}

	hits := tree.Get(recordInterval{start: int(start), end: int(stop) + 1})
	sort.Slice(hits, func(i, j int) bool {
		return hits[i].ID() < hits[j].ID()
	})

	variants := make([]*Variant, len(hits))
	for i, h := range hits {
		variants[i] = h.(recordInterval).variant
	}
	return variants, nil
}

// Concurrent reports true: the trees are not modified after loading.
func (s *MemorySource) Concurrent() bool {
	return true
}

// Close is a no-op for in-memory sources.
func (s *MemorySource) Close() error {
	return nil
}
