package sendlog

import (
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/altafino/report-courier/internal/models"
	_ "modernc.org/sqlite"
)

// SQLiteStorage implements the Storage interface on a SQLite database.
type SQLiteStorage struct {
	dbPath string
	db     *sql.DB
}

// NewSQLiteStorage creates a SQLite-backed send log under basePath.
func NewSQLiteStorage(basePath string) (*SQLiteStorage, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}

	return &SQLiteStorage{
		dbPath: filepath.Join(basePath, "send_log.db"),
	}, nil
}

// Initialize opens the database and creates the schema.
func (s *SQLiteStorage) Initialize() error {
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return fmt.Errorf("failed to open send log database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS send_log (
			id TEXT PRIMARY KEY,
			sent_at TIMESTAMP,
			recipient_sigla TEXT,
			recipient_email TEXT,
			subject TEXT
		)
	`)
	if err != nil {
		db.Close()
		return fmt.Errorf("failed to create send log table: %w", err)
	}

	s.db = db
	return nil
}

// Close closes the database.
func (s *SQLiteStorage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Append adds a new entry to the send log
func (s *SQLiteStorage) Append(entry models.SendLogEntry) error {
	if s.db == nil {
		return ErrStorageNotInitialized
	}

	_, err := s.db.Exec(
		`INSERT INTO send_log
		(id, sent_at, recipient_sigla, recipient_email, subject)
		VALUES (?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp,
		entry.RecipientSigla,
		entry.RecipientEmail,
		entry.Subject,
	)
	if err != nil {
		return fmt.Errorf("failed to append send log entry: %w", err)
	}
	return nil
}

// List retrieves all entries ordered by send time.
func (s *SQLiteStorage) List() ([]models.SendLogEntry, error) {
	if s.db == nil {
		return nil, ErrStorageNotInitialized
	}

	rows, err := s.db.Query(
		`SELECT id, sent_at, recipient_sigla, recipient_email, subject
		FROM send_log ORDER BY sent_at`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query send log: %w", err)
	}
	defer rows.Close()

	var entries []models.SendLogEntry
	for rows.Next() {
		var e models.SendLogEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.RecipientSigla, &e.RecipientEmail, &e.Subject); err != nil {
			return nil, fmt.Errorf("failed to scan send log entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
