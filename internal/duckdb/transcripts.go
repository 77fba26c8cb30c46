package duckdb

import (
	"context"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/gvcfcov/internal/annotation"
)

// WriteTranscripts appends transcripts and their exons using the Appender
// API. Sequence numbers continue after any rows already stored, so
// LoadTranscripts returns tables in the order they were written.
func (s *Store) WriteTranscripts(ctx context.Context, transcripts []*annotation.Transcript) error {
	if len(transcripts) == 0 {
		return nil
	}

	var next int64
	if err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(seq) + 1, 0) FROM transcripts").Scan(&next); err != nil {
		return fmt.Errorf("next sequence number: %w", err)
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var txApp, exonApp *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		txApp, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "transcripts")
		if err != nil {
			return err
		}
		exonApp, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "exons")
		if err != nil {
			txApp.Close()
		}
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer txApp.Close()
	defer exonApp.Close()

	for i, t := range transcripts {
		seq := next + int64(i)
		if err := txApp.AppendRow(
			seq, t.Name, t.Gene, t.Chrom, strandString(t.Strand),
			t.Start, t.End, t.CDSStart, t.CDSEnd,
		); err != nil {
			return fmt.Errorf("append transcript %s: %w", t.Name, err)
		}
		for _, e := range t.Exons {
			if err := exonApp.AppendRow(seq, int64(e.Number), e.Chrom, e.Start, e.Stop); err != nil {
				return fmt.Errorf("append exon %s#%d: %w", t.Name, e.Number, err)
			}
		}
	}

	if err := txApp.Flush(); err != nil {
		return fmt.Errorf("flush transcripts: %w", err)
	}
	return exonApp.Flush()
}

// ClearTranscripts removes all stored transcripts, exons and sources.
func (s *Store) ClearTranscripts() error {
	for _, table := range []string{"exons", "transcripts", "sources"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// TranscriptCount returns the number of stored transcripts.
func (s *Store) TranscriptCount() (int, error) {
	var n int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM transcripts").Scan(&n); err != nil {
		return 0, fmt.Errorf("count transcripts: %w", err)
	}
	return n, nil
}

// LoadTranscripts returns every stored transcript in write order, each with
// its exons in their original order.
func (s *Store) LoadTranscripts(ctx context.Context) ([]*annotation.Transcript, error) {
	return s.loadTranscripts(ctx, "", nil)
}

// SearchByGene returns the stored transcripts of a gene in write order.
func (s *Store) SearchByGene(ctx context.Context, gene string) ([]*annotation.Transcript, error) {
	return s.loadTranscripts(ctx, "WHERE t.gene = ?", []any{gene})
}

func (s *Store) loadTranscripts(ctx context.Context, where string, args []any) ([]*annotation.Transcript, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		t.seq, t.name, t.gene, t.chrom, t.strand,
		t.tx_start, t.tx_end, t.cds_start, t.cds_end
		FROM transcripts t `+where+`
		ORDER BY t.seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("query transcripts: %w", err)
	}
	defer rows.Close()

	var transcripts []*annotation.Transcript
	bySeq := make(map[int64]*annotation.Transcript)
	for rows.Next() {
		var seq int64
		var strand string
		t := &annotation.Transcript{}
		if err := rows.Scan(
			&seq, &t.Name, &t.Gene, &t.Chrom, &strand,
			&t.Start, &t.End, &t.CDSStart, &t.CDSEnd,
		); err != nil {
			return nil, fmt.Errorf("scan transcript: %w", err)
		}
		t.Strand = strandValue(strand)
		transcripts = append(transcripts, t)
		bySeq[seq] = t
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transcripts: %w", err)
	}
	if len(transcripts) == 0 {
		return nil, nil
	}

	if err := s.attachExons(ctx, where, args, bySeq); err != nil {
		return nil, err
	}
	return transcripts, nil
}

// attachExons adds exons to their transcripts through AddExon, so a
// corrupted table fails the same way a bad refFlat line would.
func (s *Store) attachExons(ctx context.Context, where string, args []any, bySeq map[int64]*annotation.Transcript) error {
	rows, err := s.db.QueryContext(ctx, `SELECT
		e.transcript_seq, e.number, e.chrom, e.exon_start, e.exon_stop
		FROM exons e JOIN transcripts t ON t.seq = e.transcript_seq `+where+`
		ORDER BY e.transcript_seq, e.number`, args...)
	if err != nil {
		return fmt.Errorf("query exons: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var seq, number, start, stop int64
		var chrom string
		if err := rows.Scan(&seq, &number, &chrom, &start, &stop); err != nil {
			return fmt.Errorf("scan exon: %w", err)
		}
		t, ok := bySeq[seq]
		if !ok {
			continue
		}
		e, err := annotation.NewExon(t.Gene, t.Name, chrom, start, stop, int(number))
		if err != nil {
			return err
		}
		if err := t.AddExon(e); err != nil {
			return err
		}
	}
	return rows.Err()
}

func strandString(s int8) string {
	if s < 0 {
		return "-"
	}
	return "+"
}

func strandValue(s string) int8 {
	if s == "-" {
		return -1
	}
	return 1
}
