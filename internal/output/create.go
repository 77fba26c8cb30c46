// Package output writes coverage rows as bedgraph, CSV/TSV or JSON.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pierrec/lz4"
)

// writeCloser closes a compressing writer, then the file below it.
type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (w *writeCloser) Close() error {
	var first error
	for _, c := range w.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Create opens path for writing. An empty path or "-" is stdout. A ".gz"
// suffix compresses with gzip, ".lz4" with LZ4.
func Create(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return &writeCloser{Writer: os.Stdout}, nil
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output file: %w", err)
	}

	switch {
	case strings.HasSuffix(path, ".gz"):
		gz := gzip.NewWriter(f)
		return &writeCloser{Writer: gz, closers: []io.Closer{gz, f}}, nil
	case strings.HasSuffix(path, ".lz4"):
		lw := lz4.NewWriter(f)
		lw.Header = lz4.Header{CompressionLevel: 9}
		return &writeCloser{Writer: lw, closers: []io.Closer{lw, f}}, nil
	default:
		return f, nil
	}
}
