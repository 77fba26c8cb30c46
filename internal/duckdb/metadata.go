package duckdb

import (
	"fmt"
	"os"
	"time"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

// Source records one import into the store.
type Source struct {
	FileFingerprint
	Transcripts int
	ImportedAt  time.Time
}

// RecordSource notes that n transcripts were imported from fp.
func (s *Store) RecordSource(fp FileFingerprint, n int) error {
	_, err := s.db.Exec(
		"INSERT INTO sources (path, size, mod_time, transcripts, imported_at) VALUES (?, ?, ?, ?, ?)",
		fp.Path, fp.Size, dbTime(fp.ModTime), int64(n), dbTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("record source: %w", err)
	}
	return nil
}

// Sources returns the recorded imports, oldest first.
func (s *Store) Sources() ([]Source, error) {
	rows, err := s.db.Query("SELECT path, size, mod_time, transcripts, imported_at FROM sources ORDER BY imported_at")
	if err != nil {
		return nil, fmt.Errorf("query sources: %w", err)
	}
	defer rows.Close()

	var out []Source
	for rows.Next() {
		var src Source
		if err := rows.Scan(&src.Path, &src.Size, &src.ModTime, &src.Transcripts, &src.ImportedAt); err != nil {
			return nil, fmt.Errorf("scan source: %w", err)
		}
		out = append(out, src)
	}
	return out, rows.Err()
}

// Imported reports whether fp matches a recorded import by size and
// modification time.
func (s *Store) Imported(fp FileFingerprint) (bool, error) {
	var n int
	err := s.db.QueryRow(
		"SELECT COUNT(*) FROM sources WHERE path = ? AND size = ? AND mod_time = ?",
		fp.Path, fp.Size, dbTime(fp.ModTime),
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("query sources: %w", err)
	}
	return n > 0, nil
}

// dbTime converts t to the microsecond UTC precision of a TIMESTAMP column.
func dbTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
