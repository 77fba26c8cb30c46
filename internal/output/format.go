package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/gvcfcov/internal/coverage"
)

// Format names an output layout.
type Format string

const (
	FormatBedgraph Format = "bedgraph"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
)

// ParseFormat converts a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatBedgraph, FormatCSV, FormatJSON:
		return f, nil
	case "":
		return FormatBedgraph, nil
	default:
		return "", fmt.Errorf("unknown output mode %q (want bedgraph, csv or json)", s)
	}
}

// Options configures a sink.
type Options struct {
	TabDelimited bool // CSV only
}

// NewSink returns a sink writing format to w.
func NewSink(format Format, w io.Writer, opts Options) (coverage.Sink, error) {
	switch format {
	case FormatBedgraph:
		return NewBedgraphWriter(w), nil
	case FormatCSV:
		delim := ','
		if opts.TabDelimited {
			delim = '\t'
		}
		return NewDelimitedWriter(w, delim), nil
	case FormatJSON:
		return NewJSONWriter(w), nil
	default:
		return nil, fmt.Errorf("unknown output mode %q", format)
	}
}

// formatCoverage renders a coverage value with the fewest digits that
// round-trip.
func formatCoverage(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
