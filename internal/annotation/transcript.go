// Package annotation provides the gene/transcript/exon model and refFlat loading.
package annotation

// Transcript represents a specific gene isoform from one annotation record.
type Transcript struct {
	Name     string // Transcript name (e.g., NM_004985)
	Gene     string // Parent gene symbol
	Chrom    string // Chromosome
	Strand   int8   // +1 or -1
	Start    int64  // Transcript start as written in the table
	End      int64  // Transcript end as written in the table
	CDSStart int64  // Coding start, equal to CDSEnd if non-coding
	CDSEnd   int64  // Coding end
	Exons    []Exon // Exons in the order they were added
}

// Exon represents a single exon within a transcript. It is a plain value:
// parent identity is carried by name only.
type Exon struct {
	Gene       string // Gene symbol of the parent record
	Transcript string // Transcript name of the parent record
	Chrom      string // Chromosome
	Start      int64  // Exon start
	Stop       int64  // Exon stop
	Number     int    // 0-based position within the parent transcript
}

// NewExon creates an exon, rejecting inverted coordinates.
func NewExon(gene, transcript, chrom string, start, stop int64, number int) (Exon, error) {
	if start > stop {
		return Exon{}, &InvalidRegionError{
			Transcript: transcript,
			Exon:       number,
			Start:      start,
			Stop:       stop,
			Reason:     "exon start is after exon stop",
		}
	}
	return Exon{
		Gene:       gene,
		Transcript: transcript,
		Chrom:      chrom,
		Start:      start,
		Stop:       stop,
		Number:     number,
	}, nil
}

// AddExon appends an exon, failing if it lies outside the transcript bounds.
func (t *Transcript) AddExon(e Exon) error {
	if e.Start < t.Start {
		return &InvalidRegionError{
			Transcript: t.Name,
			Exon:       e.Number,
			Start:      e.Start,
			Stop:       e.Stop,
			TxStart:    t.Start,
			TxEnd:      t.End,
			Reason:     "exon starts before transcript start",
		}
	}
	if e.Stop > t.End {
		return &InvalidRegionError{
			Transcript: t.Name,
			Exon:       e.Number,
			Start:      e.Start,
			Stop:       e.Stop,
			TxStart:    t.Start,
			TxEnd:      t.End,
			Reason:     "exon ends after transcript end",
		}
	}
	t.Exons = append(t.Exons, e)
	return nil
}

