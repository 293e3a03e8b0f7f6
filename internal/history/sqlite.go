// Package history stores completed assessments outside the main postgres
// pool, for standalone deployments. Backends share the domain.AssessmentStore
// contract.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/epiverse/bcrat/internal/domain"
)

// SQLiteStore implements domain.AssessmentStore on a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
}

// NewSQLiteStore creates a new SQLite assessment store.
// It creates the database file and schema if they don't exist.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL mode for better concurrency
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		dbPath: dbPath,
	}, nil
}

// scanner is an interface for sql.Row and sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanRecord scans a row into an AssessmentRecord.
func scanRecord(s scanner) (*domain.AssessmentRecord, error) {
	rec := &domain.AssessmentRecord{}
	var race int

	err := s.Scan(
		&rec.ID, &rec.SubjectID, &race, &rec.InitialAge, &rec.EndAge,
		&rec.AbsoluteRisk, &rec.AverageRisk, &rec.PatternNumber,
		&rec.Succeeded, &rec.ProfileJSON, &rec.ResultJSON, &rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Race = domain.Race(race)
	return rec, nil
}

// createSchema creates the database tables and indexes.
func createSchema(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		id TEXT PRIMARY KEY,
		subject_id TEXT NOT NULL,
		race INTEGER NOT NULL,
		initial_age REAL NOT NULL,
		end_age REAL NOT NULL,
		absolute_risk REAL,
		average_risk REAL,
		pattern_number INTEGER,
		succeeded INTEGER NOT NULL DEFAULT 0,
		profile_json TEXT NOT NULL,
		result_json TEXT NOT NULL,
		created_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_subject_id ON assessments(subject_id);
	CREATE INDEX IF NOT EXISTS idx_created_at ON assessments(created_at);
	`

	_, err := db.Exec(schema)
	return err
}

// Record stores one completed assessment.
func (s *SQLiteStore) Record(ctx context.Context, rec *domain.AssessmentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, subject_id, race, initial_age, end_age, absolute_risk,
			average_risk, pattern_number, succeeded, profile_json, result_json, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.SubjectID,
		int(rec.Race),
		rec.InitialAge,
		rec.EndAge,
		rec.AbsoluteRisk,
		rec.AverageRisk,
		rec.PatternNumber,
		rec.Succeeded,
		rec.ProfileJSON,
		rec.ResultJSON,
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// Get retrieves one assessment by ID.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*domain.AssessmentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subject_id, race, initial_age, end_age, absolute_risk,
			average_risk, pattern_number, succeeded, profile_json, result_json, created_at
		FROM assessments
		WHERE id = ?
	`, id)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan: %w", err)
	}
	return rec, nil
}

// ListBySubject returns the most recent assessments for one subject.
func (s *SQLiteStore) ListBySubject(ctx context.Context, subjectID string, limit int) ([]*domain.AssessmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, race, initial_age, end_age, absolute_risk,
			average_risk, pattern_number, succeeded, profile_json, result_json, created_at
		FROM assessments
		WHERE subject_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`, subjectID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query: %w", err)
	}
	defer rows.Close()

	var result []*domain.AssessmentRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, rec)
	}
	return result, rows.Err()
}

// Count returns the total number of stored assessments.
func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM assessments").Scan(&count)
	return count, err
}

// Close closes the store and releases resources.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
