package output

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/inodb/gvcfcov/internal/coverage"
)

var delimitedColumns = []string{
	"gene",
	"transcript",
	"chr",
	"exon_number",
	"start",
	"stop",
	"coverage",
	"sample",
}

// DelimitedWriter writes rows as CSV or TSV with a single header line.
type DelimitedWriter struct {
	w             *csv.Writer
	headerWritten bool
}

// NewDelimitedWriter creates a writer separating fields with delim.
func NewDelimitedWriter(w io.Writer, delim rune) *DelimitedWriter {
	cw := csv.NewWriter(w)
	cw.Comma = delim
	return &DelimitedWriter{w: cw}
}

// WriteHeader writes the header line once.
func (dw *DelimitedWriter) WriteHeader() error {
	if dw.headerWritten {
		return nil
	}
	dw.headerWritten = true
	return dw.w.Write(delimitedColumns)
}

// BeginSample writes the header before the first sample. The sample is
// carried on every row, so later samples need no separator.
func (dw *DelimitedWriter) BeginSample(string) error {
	return dw.WriteHeader()
}

// WriteRow writes a single row.
func (dw *DelimitedWriter) WriteRow(row coverage.Row) error {
	if err := dw.WriteHeader(); err != nil {
		return err
	}
	return dw.w.Write([]string{
		row.Gene,
		row.Transcript,
		row.Chrom,
		strconv.Itoa(row.Number),
		strconv.FormatInt(row.Start, 10),
		strconv.FormatInt(row.Stop, 10),
		formatCoverage(row.Coverage),
		row.Sample,
	})
}

// Close writes the header if nothing was written and flushes.
func (dw *DelimitedWriter) Close() error {
	if err := dw.WriteHeader(); err != nil {
		return err
	}
	dw.w.Flush()
	return dw.w.Error()
}
