package history

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/epiverse/bcrat/internal/domain"
)

// PostgresStore implements domain.AssessmentStore on a shared postgres
// database via database/sql, for deployments that want history without the
// full pgx pool.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a postgres-backed assessment store and ensures the
// schema exists.
func NewPostgresStore(connStr string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{db: db}
	if err := store.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return store, nil
}

// NewPostgresStoreWithDB wraps an existing connection without schema setup.
// Used by tests.
func NewPostgresStoreWithDB(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) createSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS assessments (
		id UUID PRIMARY KEY,
		subject_id TEXT NOT NULL,
		race SMALLINT NOT NULL,
		initial_age DOUBLE PRECISION NOT NULL,
		end_age DOUBLE PRECISION NOT NULL,
		absolute_risk DOUBLE PRECISION,
		average_risk DOUBLE PRECISION,
		pattern_number SMALLINT,
		succeeded BOOLEAN NOT NULL,
		profile_json JSONB NOT NULL,
		result_json JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_assessments_subject ON assessments (subject_id, created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores one completed assessment.
func (s *PostgresStore) Record(ctx context.Context, rec *domain.AssessmentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assessments (
			id, subject_id, race, initial_age, end_age, absolute_risk,
			average_risk, pattern_number, succeeded, profile_json, result_json, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
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
func (s *PostgresStore) Get(ctx context.Context, id string) (*domain.AssessmentRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, subject_id, race, initial_age, end_age, absolute_risk,
			average_risk, pattern_number, succeeded, profile_json, result_json, created_at
		FROM assessments
		WHERE id = $1
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
func (s *PostgresStore) ListBySubject(ctx context.Context, subjectID string, limit int) ([]*domain.AssessmentRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, subject_id, race, initial_age, end_age, absolute_risk,
			average_risk, pattern_number, succeeded, profile_json, result_json, created_at
		FROM assessments
		WHERE subject_id = $1
		ORDER BY created_at DESC
		LIMIT $2
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

// Close closes the store and releases resources.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
