package vcf

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/biogo/hts/bgzf"
	"github.com/biogo/hts/bgzf/index"
	"github.com/biogo/hts/tabix"
	"github.com/klauspost/compress/gzip"
)

// TabixSource answers region queries against a bgzipped VCF through its
// tabix index. The underlying bgzf reader is shared, so queries are
// serialized.
type TabixSource struct {
	mu      sync.Mutex
	file    *os.File
	bgz     *bgzf.Reader
	idx     *tabix.Index
	samples []string
	mode    Mode
}

// OpenTabix opens path and its path + ".tbi" index.
func OpenTabix(path string, opts Options) (*TabixSource, error) {
	idx, err := readTabixIndex(path + ".tbi")
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open vcf file: %w", err)
	}

	bgz, err := bgzf.NewReader(file, 1)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("create bgzf reader: %w", err)
	}

	p, err := NewParserFromReader(bgz)
	if err != nil {
		bgz.Close()
		file.Close()
		return nil, err
	}

	return &TabixSource{
		file:    file,
		bgz:     bgz,
		idx:     idx,
		samples: p.SampleNames(),
		mode:    opts.Mode,
	}, nil
}

// readTabixIndex reads a .tbi file. The index is itself BGZF compressed and
// tabix.ReadFrom expects the decompressed stream.
func readTabixIndex(path string) (*tabix.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open tabix index: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("open tabix index: %w", err)
	}
	defer gz.Close()

	idx, err := tabix.ReadFrom(gz)
	if err != nil {
		return nil, fmt.Errorf("read tabix index: %w", err)
	}
	// ReadFrom returns no index for a file without references.
	if idx == nil {
		idx = tabix.New()
	}
	return idx, nil
}

// Samples returns the sample identifiers present in the file.
func (s *TabixSource) Samples() []string {
	return s.samples
}

// Fetch returns the records overlapping [start, stop] on chrom, in file order.
func (s *TabixSource) Fetch(chrom string, start, stop int64) ([]*Variant, error) {
	if err := checkRegion(chrom, start, stop); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// tabix bins are 0-based half-open.
	beg, end := int(start)-1, int(stop)
	if beg < 0 {
		beg = 0
	}

	chunks, err := s.idx.Chunks(chrom, beg, end)
	if errors.Is(err, index.ErrNoReference) {
		chunks, err = s.idx.Chunks(AlternateChrom(chrom), beg, end)
	}
	if err != nil {
		if errors.Is(err, index.ErrNoReference) {
			err = ErrUnknownChrom
		}
		return nil, &RegionError{Chrom: chrom, Start: start, Stop: stop, Err: err}
	}
	if len(chunks) == 0 {
		return nil, nil
	}

	cr, err := index.NewChunkReader(s.bgz, chunks)
	if err != nil {
		return nil, fmt.Errorf("seek %s:%d-%d: %w", chrom, start, stop, err)
	}
	defer cr.Close()

	return s.scan(cr, chrom, start, stop)
}

// scan parses the lines of the selected chunks, keeping overlapping records.
// Chunks are bin-granular, so records outside the region are skipped here.
func (s *TabixSource) scan(r io.Reader, chrom string, start, stop int64) ([]*Variant, error) {
	alt := AlternateChrom(chrom)
	br := bufio.NewReader(r)

	var variants []*Variant
	lineNum := 0
	for {
		line, err := br.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			if err == io.EOF {
				return variants, nil
			}
			return nil, fmt.Errorf("read %s:%d-%d: %w", chrom, start, stop, err)
		}
		lineNum++

		line = strings.TrimRight(line, "\r\n")
		if line == "" || line[0] == '#' {
			continue
		}

		v, err := ParseLine(line, lineNum, s.samples)
		if err != nil {
			return nil, err
		}
		if v.Chrom != chrom && v.Chrom != alt {
			continue
		}
		if v.Pos > stop {
			return variants, nil
		}
		if s.mode.overlaps(v, start, stop) {
			variants = append(variants, v)
		}
	}
}

// Concurrent reports false: queries share one bgzf reader.
func (s *TabixSource) Concurrent() bool {
	return false
}

// Close closes the bgzf reader and the underlying file.
func (s *TabixSource) Close() error {
	s.bgz.Close()
	return s.file.Close()
}
