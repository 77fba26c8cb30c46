package annotation

import "fmt"

// InvalidRegionError reports an exon whose coordinates are inverted or fall
// outside its transcript.
type InvalidRegionError struct {
	Line       int // Source line, 0 if not read from a file
	Transcript string
	Exon       int
	Start      int64
	Stop       int64
	TxStart    int64
	TxEnd      int64
	Reason     string
}

func (e *InvalidRegionError) Error() string {
	msg := fmt.Sprintf("invalid region for exon %d of %s (%d-%d, transcript %d-%d): %s",
		e.Exon, e.Transcript, e.Start, e.Stop, e.TxStart, e.TxEnd, e.Reason)
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	return msg
}

// ParseError represents an error during annotation parsing with line context.
type ParseError struct {
	Line    int
	Message string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("refflat parse error at line %d: %s", e.Line, e.Message)
}
