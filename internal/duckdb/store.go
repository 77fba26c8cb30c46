// Package duckdb stores annotation tables in DuckDB so large refFlat imports
// are parsed once and reloaded in input order.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding transcripts and their exons.
type Store struct {
	db *sql.DB
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS transcripts (
			seq BIGINT PRIMARY KEY,
			name VARCHAR,
			gene VARCHAR,
			chrom VARCHAR,
			strand VARCHAR,
			tx_start BIGINT,
			tx_end BIGINT,
			cds_start BIGINT,
			cds_end BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS exons (
			transcript_seq BIGINT,
			number BIGINT,
			chrom VARCHAR,
			exon_start BIGINT,
			exon_stop BIGINT
		)`,
		`CREATE TABLE IF NOT EXISTS sources (
			path VARCHAR,
			size BIGINT,
			mod_time TIMESTAMP,
			transcripts BIGINT,
			imported_at TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
