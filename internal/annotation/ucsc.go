package annotation

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"

	_ "github.com/go-sql-driver/mysql"
)

// UCSCHost is the public UCSC Genome Browser MySQL server.
const UCSCHost = "genome-mysql.soe.ucsc.edu:3306"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// UCSCDSN returns the data source name for the public UCSC database of a genome
// assembly (e.g. hg38).
func UCSCDSN(genome string) string {
	return fmt.Sprintf("genome@tcp(%s)/%s", UCSCHost, genome)
}

// ImportUCSC reads a table with refFlat columns from a UCSC MySQL database.
// Rows pass through the same invariants as file records.
func ImportUCSC(ctx context.Context, dsn, table string) ([]*Transcript, error) {
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("connect to %s: %w", dsn, err)
	}

	rows, err := db.QueryContext(ctx, fmt.Sprintf(`SELECT
		geneName, name, chrom, strand, txStart, txEnd,
		cdsStart, cdsEnd, exonCount, exonStarts, exonEnds
		FROM %s`, table))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", table, err)
	}
	defer rows.Close()

	var transcripts []*Transcript
	n := 0
	for rows.Next() {
		n++
		var row Row
		var starts, ends []byte
		if err := rows.Scan(
			&row.GeneName, &row.Name, &row.Chrom, &row.Strand, &row.TxStart, &row.TxEnd,
			&row.CDSStart, &row.CDSEnd, &row.ExonCount, &starts, &ends,
		); err != nil {
			return nil, fmt.Errorf("scan %s row %d: %w", table, n, err)
		}
		if row.ExonStarts, err = parsePositionList(string(starts)); err != nil {
			return nil, fmt.Errorf("%s row %d exonStarts: %w", table, n, err)
		}
		if row.ExonEnds, err = parsePositionList(string(ends)); err != nil {
			return nil, fmt.Errorf("%s row %d exonEnds: %w", table, n, err)
		}

		t, err := row.Transcript()
		if err != nil {
			return nil, fmt.Errorf("%s row %d: %w", table, n, err)
		}
		transcripts = append(transcripts, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", table, err)
	}
	return transcripts, nil
}
