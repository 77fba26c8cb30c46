package annotation

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// refFlatColumns is the number of columns in a UCSC refFlat table.
const refFlatColumns = 11

// Row holds the raw columns of one refFlat record.
type Row struct {
	GeneName   string
	Name       string
	Chrom      string
	Strand     string
	TxStart    int64
	TxEnd      int64
	CDSStart   int64
	CDSEnd     int64
	ExonCount  int
	ExonStarts []int64
	ExonEnds   []int64
}

// ParseRefFlat parses one tab-separated refFlat line into a transcript with
// its exons attached. lineNum is used for error context only.
func ParseRefFlat(line string, lineNum int) (*Transcript, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < refFlatColumns {
		return nil, &ParseError{
			Line:    lineNum,
			Message: fmt.Sprintf("expected %d columns, found %d", refFlatColumns, len(fields)),
		}
	}

	row := Row{
		GeneName: fields[0],
		Name:     fields[1],
		Chrom:    fields[2],
		Strand:   fields[3],
	}

	ints := []struct {
		name string
		raw  string
		dst  *int64
	}{
		{"txStart", fields[4], &row.TxStart},
		{"txEnd", fields[5], &row.TxEnd},
		{"cdsStart", fields[6], &row.CDSStart},
		{"cdsEnd", fields[7], &row.CDSEnd},
	}
	for _, f := range ints {
		v, err := strconv.ParseInt(f.raw, 10, 64)
		if err != nil {
			return nil, &ParseError{Line: lineNum, Message: fmt.Sprintf("invalid %s: %s", f.name, f.raw)}
		}
		*f.dst = v
	}

	count, err := strconv.Atoi(fields[8])
	if err != nil {
		return nil, &ParseError{Line: lineNum, Message: fmt.Sprintf("invalid exonCount: %s", fields[8])}
	}
	row.ExonCount = count

	if row.ExonStarts, err = parsePositionList(fields[9]); err != nil {
		return nil, &ParseError{Line: lineNum, Message: fmt.Sprintf("invalid exonStarts: %v", err)}
	}
	if row.ExonEnds, err = parsePositionList(fields[10]); err != nil {
		return nil, &ParseError{Line: lineNum, Message: fmt.Sprintf("invalid exonEnds: %v", err)}
	}

	t, err := row.Transcript()
	if err != nil {
		var ire *InvalidRegionError
		if errors.As(err, &ire) {
			ire.Line = lineNum
			return nil, ire
		}
		return nil, &ParseError{Line: lineNum, Message: err.Error()}
	}
	return t, nil
}

// Transcript builds a transcript from the row, attaching exons in column
// order and numbering them from 0.
func (r Row) Transcript() (*Transcript, error) {
	if len(r.ExonStarts) != len(r.ExonEnds) {
		return nil, fmt.Errorf("%d exon starts but %d exon ends", len(r.ExonStarts), len(r.ExonEnds))
	}
	if r.ExonCount != len(r.ExonStarts) {
		return nil, fmt.Errorf("exonCount is %d but %d exons listed", r.ExonCount, len(r.ExonStarts))
	}

	t := &Transcript{
		Name:     r.Name,
		Gene:     r.GeneName,
		Chrom:    r.Chrom,
		Strand:   parseStrand(r.Strand),
		Start:    r.TxStart,
		End:      r.TxEnd,
		CDSStart: r.CDSStart,
		CDSEnd:   r.CDSEnd,
		Exons:    make([]Exon, 0, len(r.ExonStarts)),
	}

	for i := range r.ExonStarts {
		e, err := NewExon(r.GeneName, r.Name, r.Chrom, r.ExonStarts[i], r.ExonEnds[i], i)
		if err != nil {
			return nil, err
		}
		if err := t.AddExon(e); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// parsePositionList parses a comma-separated list such as "100,300,".
func parsePositionList(s string) ([]int64, error) {
	s = strings.TrimSuffix(strings.TrimSpace(s), ",")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("position %d: %q", i, p)
		}
		out[i] = v
	}
	return out, nil
}

// parseStrand converts strand string to int8.
func parseStrand(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}
