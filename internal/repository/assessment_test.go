package repository

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/epiverse/bcrat/internal/database"
	"github.com/epiverse/bcrat/internal/domain"
)

const assessmentsSchema = `
CREATE TABLE IF NOT EXISTS assessments (
	id             UUID PRIMARY KEY,
	subject_id     TEXT NOT NULL,
	race           SMALLINT NOT NULL,
	initial_age    DOUBLE PRECISION NOT NULL,
	end_age        DOUBLE PRECISION NOT NULL,
	absolute_risk  DOUBLE PRECISION,
	average_risk   DOUBLE PRECISION,
	pattern_number SMALLINT,
	succeeded      BOOLEAN NOT NULL,
	profile_json   JSONB NOT NULL,
	result_json    JSONB NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_assessments_subject ON assessments (subject_id, created_at DESC);
`

// generateTestPassword creates a random password for throwaway test databases
func generateTestPassword() string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		return "test_fallback_password_123"
	}
	return "test_" + hex.EncodeToString(bytes)
}

func setupTestDB(t *testing.T) (*database.DB, func()) {
	t.Helper()
	if os.Getenv("BCRAT_INTEGRATION_TESTS") == "" {
		t.Skip("set BCRAT_INTEGRATION_TESTS=1 to run container-backed tests")
	}

	ctx := context.Background()
	testPassword := generateTestPassword()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword(testPassword),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}

	host, err := pgContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := pgContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	cfg := &domain.DatabaseConfig{
		Host:            host,
		Port:            port.Int(),
		Database:        "testdb",
		Username:        "testuser",
		Password:        testPassword,
		SSLMode:         "disable",
		MaxConns:        10,
		MinConns:        2,
		ConnMaxLifetime: time.Hour,
	}

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	db, err := database.NewConnection(ctx, cfg, logger)
	if err != nil {
		t.Fatalf("Failed to create database connection: %v", err)
	}

	if _, err := db.Pool.Exec(ctx, assessmentsSchema); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	cleanup := func() {
		db.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate PostgreSQL container: %v", err)
		}
	}
	return db, cleanup
}

func sampleRecord(subjectID string) *domain.AssessmentRecord {
	risk := 0.91
	average := 0.88
	pattern := 1
	return &domain.AssessmentRecord{
		SubjectID:     subjectID,
		Race:          domain.RaceWhite,
		InitialAge:    45,
		EndAge:        50,
		AbsoluteRisk:  &risk,
		AverageRisk:   &average,
		PatternNumber: &pattern,
		Succeeded:     true,
		ProfileJSON:   `{"id":"` + subjectID + `"}`,
		ResultJSON:    `{"success":true}`,
		CreatedAt:     time.Now().UTC().Truncate(time.Microsecond),
	}
}

func TestAssessmentRepository_RecordAndGet(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewAssessmentRepository(db.Pool, logger)
	ctx := context.Background()

	rec := sampleRecord("subject-7")
	require.NoError(t, repo.Record(ctx, rec))
	require.NotEmpty(t, rec.ID, "Record should assign an ID")

	got, err := repo.Get(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.SubjectID, got.SubjectID)
	assert.Equal(t, domain.RaceWhite, got.Race)
	require.NotNil(t, got.AbsoluteRisk)
	assert.InDelta(t, 0.91, *got.AbsoluteRisk, 1e-9)
	assert.True(t, got.Succeeded)
}

func TestAssessmentRepository_GetMissing(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewAssessmentRepository(db.Pool, logger)

	_, err := repo.Get(context.Background(), "00000000-0000-0000-0000-000000000000")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAssessmentRepository_ListBySubject(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	repo := NewAssessmentRepository(db.Pool, logger)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		rec := sampleRecord("subject-list")
		rec.CreatedAt = rec.CreatedAt.Add(time.Duration(i) * time.Second)
		require.NoError(t, repo.Record(ctx, rec))
	}
	require.NoError(t, repo.Record(ctx, sampleRecord("other-subject")))

	recs, err := repo.ListBySubject(ctx, "subject-list", 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	// Most recent first.
	assert.True(t, recs[0].CreatedAt.After(recs[1].CreatedAt) || recs[0].CreatedAt.Equal(recs[1].CreatedAt))
	for _, rec := range recs {
		assert.Equal(t, "subject-list", rec.SubjectID)
	}
}
