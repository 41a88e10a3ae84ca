package importer

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// StateDB tracks which archive files have been imported so reruns only
// touch new or changed files. Each record keeps the archive kind and how
// many rows the file contributed, which makes `sqlite3 state.db` a usable
// audit trail for a long import history.
type StateDB struct {
	db *sql.DB
}

// OpenStateDB opens (or creates) the SQLite state database at dir/state.db.
func OpenStateDB(dir string) (*StateDB, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state dir %s: %w", dir, err)
	}

	dbPath := filepath.Join(dir, "state.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	// Archive kinds live in separate subdirectories, so basenames may
	// collide across kinds; the key must include both.
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS imported_files (
		path          TEXT NOT NULL,
		kind          TEXT NOT NULL,
		size          INTEGER NOT NULL,
		hash          TEXT NOT NULL,
		rows_inserted INTEGER NOT NULL DEFAULT 0,
		imported_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (path, kind)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsImported checks if a file of the given kind has already been imported
// with the same size and hash.
func (s *StateDB) IsImported(name, kind string, size int64, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM imported_files WHERE path = ? AND kind = ? AND size = ? AND hash = ?`,
		name, kind, size, hash,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkImported records a successfully imported file with its archive kind
// and the number of rows it contributed.
func (s *StateDB) MarkImported(name, kind string, size int64, hash string, rowsInserted int64) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO imported_files (path, kind, size, hash, rows_inserted)
		 VALUES (?, ?, ?, ?, ?)`,
		name, kind, size, hash, rowsInserted,
	)
	return err
}

// RowsImported sums the recorded row counts for one archive kind.
func (s *StateDB) RowsImported(kind string) (int64, error) {
	var total int64
	err := s.db.QueryRow(
		`SELECT COALESCE(SUM(rows_inserted), 0) FROM imported_files WHERE kind = ?`,
		kind,
	).Scan(&total)
	return total, err
}

// Close closes the state database.
func (s *StateDB) Close() error {
	return s.db.Close()
}

// HashFile computes the SHA-256 hash of a file.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
