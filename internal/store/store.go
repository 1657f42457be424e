// Package store persists raised alerts and per-rule occurrence totals
// in SQLite, so a replay's findings survive the process.
package store

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"vigil/internal/engine"
)

// Store handles SQLite database operations.
type Store struct {
	db *sql.DB
}

// AlertRecord is an alert row.
type AlertRecord struct {
	ID          string
	CamName     string
	RuleName    string
	RegionIndex int
	FrameNum    int
	Timestamp   int64
	CreatedAt   time.Time
}

// New opens (or creates) the database at path.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate runs database migrations.
func (s *Store) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id TEXT PRIMARY KEY,
			cam_name TEXT NOT NULL,
			rule_name TEXT NOT NULL,
			region_index INTEGER NOT NULL,
			frame_num INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS rule_totals (
			rule_name TEXT PRIMARY KEY,
			occurrences INTEGER NOT NULL,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_rule_frame ON alerts(rule_name, frame_num)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_frame ON alerts(frame_num)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveAlert inserts one alert and returns its generated ID.
func (s *Store) SaveAlert(a *engine.Alert) (string, error) {
	id := uuid.NewString()
	query := `INSERT INTO alerts (id, cam_name, rule_name, region_index, frame_num, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)`

	_, err := s.db.Exec(query, id, a.CamName, a.RuleName, a.RegionIndex, a.FrameNum, a.Timestamp)
	if err != nil {
		return "", fmt.Errorf("failed to save alert: %w", err)
	}
	return id, nil
}

// ListAlerts returns alerts, optionally filtered by rule name, ordered
// by frame number.
func (s *Store) ListAlerts(ruleName string, limit int) ([]*AlertRecord, error) {
	query := `SELECT id, cam_name, rule_name, region_index, frame_num, timestamp, created_at
		FROM alerts WHERE 1=1`
	args := []any{}

	if ruleName != "" {
		query += " AND rule_name = ?"
		args = append(args, ruleName)
	}

	query += " ORDER BY frame_num ASC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*AlertRecord
	for rows.Next() {
		var a AlertRecord
		if err := rows.Scan(&a.ID, &a.CamName, &a.RuleName, &a.RegionIndex, &a.FrameNum, &a.Timestamp, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, &a)
	}
	return alerts, rows.Err()
}

// SaveRuleTotal upserts the occurrence counter for a rule.
func (s *Store) SaveRuleTotal(ruleName string, occurrences uint64) error {
	query := `INSERT INTO rule_totals (rule_name, occurrences, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(rule_name) DO UPDATE SET
			occurrences = excluded.occurrences,
			updated_at = CURRENT_TIMESTAMP`

	_, err := s.db.Exec(query, ruleName, int64(occurrences))
	if err != nil {
		return fmt.Errorf("failed to save rule total: %w", err)
	}
	return nil
}

// GetRuleTotal returns the stored occurrence counter for a rule; zero
// when the rule has never been recorded.
func (s *Store) GetRuleTotal(ruleName string) (uint64, error) {
	var n int64
	err := s.db.QueryRow("SELECT occurrences FROM rule_totals WHERE rule_name = ?", ruleName).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get rule total: %w", err)
	}
	return uint64(n), nil
}

// Recorder subscribes to the engine bus and persists every approved
// alert. Persistence failures are logged and skipped; storage is
// observation only and must never disturb frame processing.
type Recorder struct {
	store  *Store
	logger *log.Logger
}

// NewRecorder wraps a store as a bus subscriber.
func NewRecorder(store *Store, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{store: store, logger: logger}
}

// OnFrameResult implements engine.ResultHandler.
func (r *Recorder) OnFrameResult(result *engine.FrameResult) {
	for i := range result.Alerts {
		if _, err := r.store.SaveAlert(&result.Alerts[i]); err != nil {
			r.logger.Printf("[Store] %v", err)
		}
	}
}

var _ engine.ResultHandler = (*Recorder)(nil)
