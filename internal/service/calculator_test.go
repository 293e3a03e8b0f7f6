package service

import (
	"context"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epiverse/bcrat/internal/domain"
	"github.com/epiverse/bcrat/internal/riskmodel"
	"github.com/epiverse/bcrat/internal/tables"
)

type memoryHistory struct {
	mu      sync.Mutex
	records []*domain.AssessmentRecord
}

func (m *memoryHistory) Record(_ context.Context, rec *domain.AssessmentRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryHistory) Get(_ context.Context, _ string) (*domain.AssessmentRecord, error) {
	return nil, domain.ErrNotFound
}

func (m *memoryHistory) ListBySubject(_ context.Context, _ string, _ int) ([]*domain.AssessmentRecord, error) {
	return nil, nil
}

func (m *memoryHistory) Close() error { return nil }

func (m *memoryHistory) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

func newTestService(t *testing.T, opts ...Option) *RiskService {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	engine := riskmodel.NewCalculator(tables.Default(), logger)
	svc, err := NewRiskService(engine, ServiceConfig{}, logger, opts...)
	require.NoError(t, err)
	return svc
}

func serviceProfile() *domain.RiskFactorProfile {
	return &domain.RiskFactorProfile{
		ID:                   "svc-1",
		InitialAge:           45,
		ProjectionEndAge:     50,
		Race:                 domain.RaceWhite,
		NumBreastBiopsies:    0,
		AgeAtMenarche:        12,
		AgeAtFirstBirth:      25,
		NumRelativesWithBrCa: 0,
		AtypicalHyperplasia:  domain.SentinelUnknown,
	}
}

func TestRiskService_Memoization(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	opts := domain.DefaultCalculationOptions()

	first := svc.CalculateRisk(ctx, serviceProfile(), opts)
	second := svc.CalculateRisk(ctx, serviceProfile(), opts)

	require.True(t, first.Success)
	assert.Same(t, first, second, "identical profiles should hit the memo")

	stats := svc.Stats()
	assert.Equal(t, int64(1), stats.MemoHits)
	assert.Equal(t, int64(1), stats.MemoMisses)
	assert.Equal(t, int64(1), stats.Calculations)
}

func TestRiskService_DistinctOptionsMissMemo(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	svc.CalculateRisk(ctx, serviceProfile(), domain.CalculationOptions{RawInput: true})
	svc.CalculateRisk(ctx, serviceProfile(), domain.CalculationOptions{RawInput: true, IncludeAverage: true})

	stats := svc.Stats()
	assert.Equal(t, int64(0), stats.MemoHits)
	assert.Equal(t, int64(2), stats.Calculations)
}

func TestRiskService_NilProfile(t *testing.T) {
	svc := newTestService(t)

	result := svc.CalculateRisk(context.Background(), nil, domain.DefaultCalculationOptions())

	require.NotNil(t, result)
	assert.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, domain.CodeInvalidInput, result.Error.Code)
}

func TestRiskService_RecordsHistory(t *testing.T) {
	store := &memoryHistory{}
	svc := newTestService(t, WithHistory(store))
	ctx := context.Background()

	svc.CalculateRisk(ctx, serviceProfile(), domain.DefaultCalculationOptions())
	assert.Equal(t, 1, store.count())

	// Memo hits skip recording; nothing new was computed.
	svc.CalculateRisk(ctx, serviceProfile(), domain.DefaultCalculationOptions())
	assert.Equal(t, 1, store.count())

	rec := store.records[0]
	assert.Equal(t, "svc-1", rec.SubjectID)
	assert.True(t, rec.Succeeded)
	require.NotNil(t, rec.AbsoluteRisk)
	assert.Greater(t, *rec.AbsoluteRisk, 0.0)
	assert.NotEmpty(t, rec.ProfileJSON)
	assert.NotEmpty(t, rec.ResultJSON)
}

func TestRiskService_BatchPreservesOrder(t *testing.T) {
	svc := newTestService(t)

	profiles := make([]domain.RiskFactorProfile, 0, 12)
	for i := 0; i < 12; i++ {
		p := serviceProfile()
		p.ID = domain.SubjectID(string(rune('a' + i)))
		p.InitialAge = 35 + float64(i)
		profiles = append(profiles, *p)
	}
	// Poison one profile so the batch mixes outcomes.
	profiles[5].InitialAge = 10

	results := svc.CalculateBatchRisk(context.Background(), profiles, domain.DefaultCalculationOptions())

	require.Len(t, results, 12)
	for i, r := range results {
		require.NotNil(t, r)
		assert.Equal(t, profiles[i].ID, r.ID)
		if i == 5 {
			assert.False(t, r.Success)
		} else {
			assert.True(t, r.Success)
		}
	}
}

func TestRiskService_BatchCancelledContext(t *testing.T) {
	svc := newTestService(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	profiles := []domain.RiskFactorProfile{*serviceProfile()}
	results := svc.CalculateBatchRisk(ctx, profiles, domain.DefaultCalculationOptions())

	require.Len(t, results, 1)
	require.NotNil(t, results[0])
}

func TestRiskService_EmptyBatch(t *testing.T) {
	svc := newTestService(t)

	results := svc.CalculateBatchRisk(context.Background(), nil, domain.DefaultCalculationOptions())
	assert.Empty(t, results)
}
