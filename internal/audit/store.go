package audit

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/openclause/clauseguard/internal/model"
)

const schemaVersion = 1

// Store persists run history in SQLite so repeated analyses of the same
// document can be compared over time.
type Store struct {
	conn *sql.DB
}

// RunRecord is one persisted run summary row.
type RunRecord struct {
	ID            int64
	Fingerprint   string
	Source        string
	AnalyzedAt    time.Time
	Total         int
	Exact         int
	Likely        int
	Flagged       int
	MatchRate     float64
	AvgConfidence float64
}

// OpenStore opens (creating if needed) the run-history database at path.
func OpenStore(path string) (*Store, error) {
	conn, err := sql.Open("sqlite3", path+"?_busy_timeout=10000&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("open audit store: %w", err)
	}
	store := &Store{conn: conn}
	if err := store.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	tx, err := s.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var version int
	if err := tx.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return err
	}

	for version < schemaVersion {
		version++
		switch version {
		case 1:
			if err := applySchemaV1(tx); err != nil {
				return fmt.Errorf("apply schema v%d: %w", version, err)
			}
		default:
			return fmt.Errorf("unknown schema version: %d", version)
		}
	}

	return tx.Commit()
}

func applySchemaV1(tx *sql.Tx) error {
	_, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			fingerprint TEXT NOT NULL,
			source TEXT NOT NULL,
			analyzed_at DATETIME NOT NULL,
			total INTEGER NOT NULL,
			exact_count INTEGER NOT NULL,
			likely_count INTEGER NOT NULL,
			flagged_count INTEGER NOT NULL,
			match_rate REAL NOT NULL,
			avg_confidence REAL NOT NULL,
			summary_json TEXT NOT NULL
		)
	`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		CREATE INDEX IF NOT EXISTS idx_runs_fingerprint
		ON runs(fingerprint, analyzed_at)
	`)
	if err != nil {
		return err
	}

	_, err = tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
	return err
}

// SaveRun records one report's summary in the history.
func (s *Store) SaveRun(report *model.Report) error {
	summaryJSON, err := json.Marshal(report.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = s.conn.Exec(`
		INSERT INTO runs (
			fingerprint, source, analyzed_at, total,
			exact_count, likely_count, flagged_count,
			match_rate, avg_confidence, summary_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		report.Fingerprint,
		report.Source,
		report.AnalyzedAt.UTC(),
		report.Summary.Total,
		report.Summary.ByStatus[model.StatusExact],
		report.Summary.ByStatus[model.StatusLikely],
		report.Summary.ByStatus[model.StatusFlagged],
		report.Summary.MatchRate,
		report.Summary.AvgConfidence,
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// History returns past runs for a document fingerprint, newest first.
// An empty fingerprint returns runs across all documents.
func (s *Store) History(fingerprint string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, fingerprint, source, analyzed_at, total,
		       exact_count, likely_count, flagged_count,
		       match_rate, avg_confidence
		FROM runs
	`
	args := []interface{}{}
	if fingerprint != "" {
		query += " WHERE fingerprint = ?"
		args = append(args, fingerprint)
	}
	query += " ORDER BY analyzed_at DESC, id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(
			&r.ID, &r.Fingerprint, &r.Source, &r.AnalyzedAt, &r.Total,
			&r.Exact, &r.Likely, &r.Flagged,
			&r.MatchRate, &r.AvgConfidence,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

// LastRun returns the most recent run for a fingerprint, or nil when the
// document has never been analyzed.
func (s *Store) LastRun(fingerprint string) (*RunRecord, error) {
	records, err := s.History(fingerprint, 1)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.conn.Close()
}
