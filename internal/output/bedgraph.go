package output

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/gvcfcov/internal/coverage"
)

// BedgraphWriter writes one bedgraph track per sample.
type BedgraphWriter struct {
	w *bufio.Writer
}

// NewBedgraphWriter creates a new bedgraph writer.
func NewBedgraphWriter(w io.Writer) *BedgraphWriter {
	return &BedgraphWriter{w: bufio.NewWriter(w)}
}

// BeginSample writes the track line of a sample.
func (bw *BedgraphWriter) BeginSample(sample string) error {
	_, err := fmt.Fprintf(bw.w, "track type=bedGraph name='%s' description='gVCFCoverage' graphType='bar'\n", sample)
	return err
}

// WriteRow writes chrom, start, stop and coverage of one exon.
func (bw *BedgraphWriter) WriteRow(row coverage.Row) error {
	fields := []string{
		row.Chrom,
		strconv.FormatInt(row.Start, 10),
		strconv.FormatInt(row.Stop, 10),
		formatCoverage(row.Coverage),
	}
	_, err := bw.w.WriteString(strings.Join(fields, "\t") + "\n")
	return err
}

// Flush flushes any buffered data.
func (bw *BedgraphWriter) Flush() error {
	return bw.w.Flush()
}

// Close flushes buffered data. The underlying writer is left open.
func (bw *BedgraphWriter) Close() error {
	return bw.Flush()
}
