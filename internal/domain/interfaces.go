package domain

import (
	"context"
)

// RiskCalculator runs the Gail model pipeline for one or many profiles.
// Implementations never return an error through panic or a Go error value for
// a bad profile; every failure is reported inside the RiskResult.
type RiskCalculator interface {
	CalculateRisk(ctx context.Context, profile *RiskFactorProfile, opts CalculationOptions) *RiskResult
	CalculateBatchRisk(ctx context.Context, profiles []RiskFactorProfile, opts CalculationOptions) []*RiskResult
}

// AssessmentStore persists completed assessments for audit and review.
type AssessmentStore interface {
	Record(ctx context.Context, rec *AssessmentRecord) error
	Get(ctx context.Context, id string) (*AssessmentRecord, error)
	ListBySubject(ctx context.Context, subjectID string, limit int) ([]*AssessmentRecord, error)
	Close() error
}

// ResultCache caches computed risk results keyed by a digest of the profile
// and options. Calculations are deterministic, so cached entries never go
// stale; TTLs only bound memory.
type ResultCache interface {
	Get(ctx context.Context, key string) (*RiskResult, bool, error)
	Set(ctx context.Context, key string, result *RiskResult) error
}

// ConfigManager exposes the loaded service configuration.
type ConfigManager interface {
	GetConfig() *Config
	GetServerConfig() *ServerConfig
	GetDatabaseConfig() *DatabaseConfig
	GetCacheConfig() *CacheConfig
	GetDatabaseConnectionString() string
	Validate() error
}
