package mcpserver

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/epiverse/bcrat/internal/config"
	"github.com/epiverse/bcrat/internal/domain"
)

func newMCPServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultLiteConfig()
	cfg.DataDir = filepath.Join(t.TempDir(), "bcrat")
	cfg.LogLevel = "error"

	srv, err := NewServer(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { srv.Close() })
	return srv
}

func mcpProfile() domain.RiskFactorProfile {
	return domain.RiskFactorProfile{
		ID:                   "mcp-1",
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

func TestHandleCalculateRisk(t *testing.T) {
	srv := newMCPServer(t)

	callResult, structured, err := srv.handleCalculateRisk(context.Background(), nil, CalculateRiskParams{
		Profile: mcpProfile(),
	})
	require.NoError(t, err)
	require.NotNil(t, callResult)
	require.Len(t, callResult.Content, 1)

	result, ok := structured.(*domain.RiskResult)
	require.True(t, ok)
	assert.True(t, result.Success)
	require.NotNil(t, result.AbsoluteRisk)
	assert.Greater(t, *result.AbsoluteRisk, 0.0)
}

func TestHandleCalculateRisk_WithAverage(t *testing.T) {
	srv := newMCPServer(t)

	_, structured, err := srv.handleCalculateRisk(context.Background(), nil, CalculateRiskParams{
		Profile:        mcpProfile(),
		IncludeAverage: true,
	})
	require.NoError(t, err)

	result := structured.(*domain.RiskResult)
	require.True(t, result.Success)
	require.NotNil(t, result.AverageRisk)
	assert.Greater(t, *result.AverageRisk, 0.0)
}

func TestHandleValidateProfile(t *testing.T) {
	srv := newMCPServer(t)

	_, structured, err := srv.handleValidateProfile(context.Background(), nil, ValidateProfileParams{
		Profile: mcpProfile(),
	})
	require.NoError(t, err)

	validation, ok := structured.(domain.ValidationResult)
	require.True(t, ok)
	assert.True(t, validation.IsValid)
	assert.Empty(t, validation.Errors)
}

func TestHandleValidateProfile_Invalid(t *testing.T) {
	srv := newMCPServer(t)

	profile := mcpProfile()
	profile.InitialAge = 10

	_, structured, err := srv.handleValidateProfile(context.Background(), nil, ValidateProfileParams{
		Profile: profile,
	})
	require.NoError(t, err)

	validation := structured.(domain.ValidationResult)
	assert.False(t, validation.IsValid)
	assert.NotEmpty(t, validation.Errors)
}

func TestHandleBatchCalculate(t *testing.T) {
	srv := newMCPServer(t)

	_, structured, err := srv.handleBatchCalculate(context.Background(), nil, BatchCalculateParams{
		Profiles: []domain.RiskFactorProfile{mcpProfile(), mcpProfile()},
	})
	require.NoError(t, err)

	results, ok := structured.([]*domain.RiskResult)
	require.True(t, ok)
	require.Len(t, results, 2)
}

func TestHandleBatchCalculate_Empty(t *testing.T) {
	srv := newMCPServer(t)

	callResult, structured, err := srv.handleBatchCalculate(context.Background(), nil, BatchCalculateParams{})
	require.NoError(t, err)
	assert.Nil(t, structured)
	assert.True(t, callResult.IsError)
}

func TestHandleListRaces(t *testing.T) {
	srv := newMCPServer(t)

	_, structured, err := srv.handleListRaces(context.Background(), nil, ListRacesParams{})
	require.NoError(t, err)

	entries, ok := structured.([]raceEntry)
	require.True(t, ok)
	require.Len(t, entries, 11)
	assert.Equal(t, "White", entries[0].Label)
	assert.True(t, entries[0].HasAverageTables)
}
