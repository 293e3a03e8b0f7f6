// Package repository persists completed assessments in postgres.
package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/epiverse/bcrat/internal/domain"
)

// AssessmentRepository handles assessment persistence on a pgx pool. It
// implements domain.AssessmentStore.
type AssessmentRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db *pgxpool.Pool, logger *logrus.Logger) *AssessmentRepository {
	return &AssessmentRepository{
		db:  db,
		log: logger,
	}
}

// Record inserts a completed assessment. An empty record ID gets a fresh
// UUID, written back to the record.
func (r *AssessmentRepository) Record(ctx context.Context, rec *domain.AssessmentRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}

	query := `
		INSERT INTO assessments (
			id, subject_id, race, initial_age, end_age, absolute_risk,
			average_risk, pattern_number, succeeded, profile_json, result_json, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12
		)`

	_, err := r.db.Exec(ctx, query,
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
		r.log.WithFields(logrus.Fields{
			"assessment_id": rec.ID,
			"subject_id":    rec.SubjectID,
			"error":         err,
		}).Error("Failed to record assessment")
		return fmt.Errorf("recording assessment: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"assessment_id": rec.ID,
		"subject_id":    rec.SubjectID,
	}).Info("Assessment recorded")

	return nil
}

// Get retrieves one assessment by its ID.
func (r *AssessmentRepository) Get(ctx context.Context, id string) (*domain.AssessmentRecord, error) {
	query := `
		SELECT id, subject_id, race, initial_age, end_age, absolute_risk,
			   average_risk, pattern_number, succeeded, profile_json, result_json, created_at
		FROM assessments
		WHERE id = $1`

	rec, err := scanAssessment(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("assessment not found: %w", domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"assessment_id": id,
			"error":         err,
		}).Error("Failed to get assessment")
		return nil, fmt.Errorf("getting assessment: %w", err)
	}

	return rec, nil
}

// ListBySubject retrieves the most recent assessments for one subject.
func (r *AssessmentRepository) ListBySubject(ctx context.Context, subjectID string, limit int) ([]*domain.AssessmentRecord, error) {
	query := `
		SELECT id, subject_id, race, initial_age, end_age, absolute_risk,
			   average_risk, pattern_number, succeeded, profile_json, result_json, created_at
		FROM assessments
		WHERE subject_id = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, subjectID, limit)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"subject_id": subjectID,
			"error":      err,
		}).Error("Failed to list assessments")
		return nil, fmt.Errorf("listing assessments: %w", err)
	}
	defer rows.Close()

	var records []*domain.AssessmentRecord
	for rows.Next() {
		rec, err := scanAssessment(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning assessment row: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating assessment rows: %w", err)
	}

	return records, nil
}

// Close implements domain.AssessmentStore; the pool is owned by the caller.
func (r *AssessmentRepository) Close() error {
	return nil
}

func scanAssessment(row pgx.Row) (*domain.AssessmentRecord, error) {
	var rec domain.AssessmentRecord
	var race int

	err := row.Scan(
		&rec.ID,
		&rec.SubjectID,
		&race,
		&rec.InitialAge,
		&rec.EndAge,
		&rec.AbsoluteRisk,
		&rec.AverageRisk,
		&rec.PatternNumber,
		&rec.Succeeded,
		&rec.ProfileJSON,
		&rec.ResultJSON,
		&rec.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	rec.Race = domain.Race(race)
	return &rec, nil
}
