package output

import (
	"bytes"
	"encoding/json"
	"io"
	"slices"
	"strconv"

	"github.com/inodb/gvcfcov/internal/coverage"
)

// jsonExon is the leaf object of a JSON document. Fields are declared in
// key order so the output keys are sorted.
type jsonExon struct {
	Chrom    string  `json:"chr"`
	Coverage float64 `json:"coverage"`
	Number   int     `json:"number"`
	Sample   string  `json:"sample"`
	Start    int64   `json:"start"`
	Stop     int64   `json:"stop"`
}

// jsonDoc maps gene -> transcript -> exon number -> exon.
type jsonDoc map[string]map[string]exonsByNumber

// exonsByNumber is keyed by exon ordinal and marshals in numeric key order,
// so exon "2" precedes exon "10".
type exonsByNumber map[int]jsonExon

func (m exonsByNumber) MarshalJSON() ([]byte, error) {
	numbers := make([]int, 0, len(m))
	for n := range m {
		numbers = append(numbers, n)
	}
	slices.Sort(numbers)

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range numbers {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(strconv.Itoa(n)))
		buf.WriteByte(':')
		b, err := json.Marshal(m[n])
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// JSONWriter writes one pretty-printed document per sample.
type JSONWriter struct {
	enc *json.Encoder
	doc jsonDoc
}

// NewJSONWriter creates a new JSON writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return &JSONWriter{enc: enc}
}

// BeginSample finishes the previous sample's document and starts a new one.
func (jw *JSONWriter) BeginSample(string) error {
	if err := jw.flushDoc(); err != nil {
		return err
	}
	jw.doc = make(jsonDoc)
	return nil
}

// WriteRow adds a row to the current document. A repeated
// gene/transcript/exon key keeps the last row.
func (jw *JSONWriter) WriteRow(row coverage.Row) error {
	if jw.doc == nil {
		jw.doc = make(jsonDoc)
	}
	transcripts, ok := jw.doc[row.Gene]
	if !ok {
		transcripts = make(map[string]exonsByNumber)
		jw.doc[row.Gene] = transcripts
	}
	exons, ok := transcripts[row.Transcript]
	if !ok {
		exons = make(exonsByNumber)
		transcripts[row.Transcript] = exons
	}
	exons[row.Number] = jsonExon{
		Chrom:    row.Chrom,
		Coverage: row.Coverage,
		Number:   row.Number,
		Sample:   row.Sample,
		Start:    row.Start,
		Stop:     row.Stop,
	}
	return nil
}

// Close writes the last document.
func (jw *JSONWriter) Close() error {
	return jw.flushDoc()
}

func (jw *JSONWriter) flushDoc() error {
	if jw.doc == nil {
		return nil
	}
	doc := jw.doc
	jw.doc = nil
	return jw.enc.Encode(doc)
}
