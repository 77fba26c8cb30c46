package vcf

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Mode describes how the records of a file cover the genome.
type Mode int

const (
	// ModeBPResolution treats every record as covering its own position only.
	ModeBPResolution Mode = iota
	// ModeGVCF lets reference blocks cover [POS, INFO/END].
	ModeGVCF
)

// ParseMode converts a gVCF mode name (BP_RESOLUTION or GVCF).
func ParseMode(s string) (Mode, error) {
	switch strings.ToUpper(s) {
	case "", "BP_RESOLUTION":
		return ModeBPResolution, nil
	case "GVCF":
		return ModeGVCF, nil
	default:
		return 0, fmt.Errorf("unknown gVCF mode %q (want BP_RESOLUTION or GVCF)", s)
	}
}

func (m Mode) String() string {
	if m == ModeGVCF {
		return "GVCF"
	}
	return "BP_RESOLUTION"
}

// Options configures a variant source.
type Options struct {
	Mode Mode
}

// span returns the inclusive reference interval a record covers under mode m.
func (m Mode) span(v *Variant) (int64, int64) {
	if m == ModeGVCF {
		return v.Pos, v.End()
	}
	return v.Pos, v.Pos
}

// overlaps reports whether v covers any position of [start, stop].
func (m Mode) overlaps(v *Variant, start, stop int64) bool {
	s, e := m.span(v)
	return s <= stop && e >= start
}

// RegionError reports a region query that could not be answered, either
// because the region is malformed or the chromosome is unknown to the source.
type RegionError struct {
	Chrom string
	Start int64
	Stop  int64
	Err   error
}

func (e *RegionError) Error() string {
	return fmt.Sprintf("region %s:%d-%d: %v", e.Chrom, e.Start, e.Stop, e.Err)
}

func (e *RegionError) Unwrap() error {
	return e.Err
}

// Reasons carried by RegionError.
var (
	ErrUnknownChrom   = errors.New("unknown chromosome")
	ErrInvertedRegion = errors.New("start is after stop")
)

// IsRegionError reports whether err is, or wraps, a *RegionError.
func IsRegionError(err error) bool {
	var re *RegionError
	return errors.As(err, &re)
}

// checkRegion validates query bounds.
func checkRegion(chrom string, start, stop int64) error {
	if chrom == "" {
		return &RegionError{Chrom: chrom, Start: start, Stop: stop, Err: ErrUnknownChrom}
	}
	if start > stop {
		return &RegionError{Chrom: chrom, Start: start, Stop: stop, Err: ErrInvertedRegion}
	}
	return nil
}

// Open opens a variant source for path. A bgzipped file with a tabix index
// (path + ".tbi") is queried through the index; anything else is loaded into
// memory.
func Open(path string, opts Options) (Source, error) {
	if _, err := os.Stat(path + ".tbi"); err == nil {
		return OpenTabix(path, opts)
	}

	p, err := NewParser(path)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	return LoadMemory(p, opts)
}
