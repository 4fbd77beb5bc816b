package replay

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

// StateDB tracks which capture files have already been replayed so repeated
// runs over the same directory only send new recordings.
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

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS replayed_files (
		path          TEXT NOT NULL,
		exercise      TEXT NOT NULL,
		size          INTEGER NOT NULL,
		hash          TEXT NOT NULL,
		frames        INTEGER NOT NULL,
		average_score REAL NOT NULL,
		replayed_at   TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (path, exercise)
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating state table: %w", err)
	}

	return &StateDB{db: db}, nil
}

// IsReplayed checks if a file has already been replayed against exercise
// with the same size and hash.
func (s *StateDB) IsReplayed(relPath, exercise string, size int64, hash string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM replayed_files WHERE path = ? AND exercise = ? AND size = ? AND hash = ?`,
		relPath, exercise, size, hash,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// MarkReplayed records a completed replay and its summary.
func (s *StateDB) MarkReplayed(relPath, exercise string, size int64, hash string, frames int, avg float64) error {
	_, err := s.db.Exec(
		`INSERT OR REPLACE INTO replayed_files (path, exercise, size, hash, frames, average_score) VALUES (?, ?, ?, ?, ?, ?)`,
		relPath, exercise, size, hash, frames, avg,
	)
	return err
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
