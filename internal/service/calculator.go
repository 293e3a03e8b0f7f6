package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/sirupsen/logrus"

	"github.com/epiverse/bcrat/internal/domain"
	"github.com/epiverse/bcrat/internal/riskmodel"
)

// RiskService wraps the deterministic calculation engine with memoization,
// optional distributed result caching, and optional assessment persistence.
// It implements domain.RiskCalculator.
type RiskService struct {
	engine *riskmodel.Calculator

	// Tier 1: in-memory LRU memo (hot profiles). The engine is pure, so
	// entries never go stale; size alone bounds the cache.
	memo *lru.Cache

	// Tier 2: optional distributed cache (warm profiles).
	resultCache domain.ResultCache

	// Optional audit trail of completed assessments.
	history domain.AssessmentStore

	// Limits concurrent batch workers.
	batchSemaphore chan struct{}
	maxConcurrency int

	logger  *logrus.Logger
	stats   ServiceStats
	statsMu sync.RWMutex
}

// ServiceStats reports cache performance counters for the service.
type ServiceStats struct {
	MemoHits      int64     `json:"memo_hits"`
	MemoMisses    int64     `json:"memo_misses"`
	CacheHits     int64     `json:"cache_hits"`
	CacheMisses   int64     `json:"cache_misses"`
	Calculations  int64     `json:"calculations"`
	TotalRequests int64     `json:"total_requests"`
	LastReset     time.Time `json:"last_reset"`
}

// ServiceConfig configures the RiskService.
type ServiceConfig struct {
	MemoSize       int `json:"memo_size"`
	MaxConcurrency int `json:"max_concurrency"`
}

// Option customizes a RiskService at construction time.
type Option func(*RiskService)

// WithResultCache attaches a distributed result cache.
func WithResultCache(cache domain.ResultCache) Option {
	return func(s *RiskService) { s.resultCache = cache }
}

// WithHistory attaches an assessment store. Recording is best effort; a
// store failure never fails the calculation.
func WithHistory(store domain.AssessmentStore) Option {
	return func(s *RiskService) { s.history = store }
}

// NewRiskService creates a RiskService around an engine.
func NewRiskService(engine *riskmodel.Calculator, config ServiceConfig, logger *logrus.Logger, opts ...Option) (*RiskService, error) {
	if config.MemoSize == 0 {
		config.MemoSize = 1024
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 8
	}

	memo, err := lru.New(config.MemoSize)
	if err != nil {
		return nil, err
	}

	s := &RiskService{
		engine:         engine,
		memo:           memo,
		batchSemaphore: make(chan struct{}, config.MaxConcurrency),
		maxConcurrency: config.MaxConcurrency,
		logger:         logger,
		stats:          ServiceStats{LastReset: time.Now()},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CalculateRisk runs one assessment, consulting the memo and the distributed
// cache before the engine. Results are treated as immutable once computed.
func (s *RiskService) CalculateRisk(ctx context.Context, profile *domain.RiskFactorProfile, opts domain.CalculationOptions) *domain.RiskResult {
	s.incrementStat(&s.stats.TotalRequests)

	if profile == nil {
		return s.engine.Calculate(nil, opts)
	}

	key := profileDigest(profile, opts)

	if value, ok := s.memo.Get(key); ok {
		s.incrementStat(&s.stats.MemoHits)
		return value.(*domain.RiskResult)
	}
	s.incrementStat(&s.stats.MemoMisses)

	if s.resultCache != nil {
		cached, ok, err := s.resultCache.Get(ctx, key)
		if err != nil {
			s.logger.WithError(err).Warn("Result cache lookup failed")
		} else if ok {
			s.incrementStat(&s.stats.CacheHits)
			s.memo.Add(key, cached)
			return cached
		} else {
			s.incrementStat(&s.stats.CacheMisses)
		}
	}

	s.incrementStat(&s.stats.Calculations)
	result := s.engine.Calculate(profile, opts)

	s.memo.Add(key, result)
	if s.resultCache != nil {
		if err := s.resultCache.Set(ctx, key, result); err != nil {
			s.logger.WithError(err).Warn("Result cache write failed")
		}
	}
	s.record(ctx, profile, result)

	return result
}

// CalculateBatchRisk evaluates profiles concurrently with bounded parallelism.
// The returned slice preserves input order and length; each result is
// independent of its neighbors.
func (s *RiskService) CalculateBatchRisk(ctx context.Context, profiles []domain.RiskFactorProfile, opts domain.CalculationOptions) []*domain.RiskResult {
	results := make([]*domain.RiskResult, len(profiles))
	if len(profiles) == 0 {
		return results
	}

	s.logger.WithField("batch_size", len(profiles)).Info("Starting batch risk calculation")

	var wg sync.WaitGroup
	for i := range profiles {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			select {
			case s.batchSemaphore <- struct{}{}:
				defer func() { <-s.batchSemaphore }()
			case <-ctx.Done():
				results[idx] = &domain.RiskResult{
					ID:            profiles[idx].ID,
					RaceEthnicity: domain.UnknownRaceLabel,
					Error:         domain.NewCalculationError(domain.CodeInternal, ctx.Err().Error()),
				}
				return
			}

			results[idx] = s.CalculateRisk(ctx, &profiles[idx], opts)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r != nil && r.Success {
			succeeded++
		}
	}
	s.logger.WithFields(logrus.Fields{
		"batch_size": len(profiles),
		"successful": succeeded,
		"failed":     len(profiles) - succeeded,
	}).Info("Completed batch risk calculation")

	return results
}

// Stats returns a snapshot of the service counters.
func (s *RiskService) Stats() ServiceStats {
	s.statsMu.RLock()
	defer s.statsMu.RUnlock()
	return s.stats
}

func (s *RiskService) record(ctx context.Context, profile *domain.RiskFactorProfile, result *domain.RiskResult) {
	if s.history == nil {
		return
	}

	profileJSON, _ := json.Marshal(profile)
	resultJSON, _ := json.Marshal(result)

	rec := &domain.AssessmentRecord{
		SubjectID:     profile.ID.String(),
		Race:          profile.Race,
		InitialAge:    profile.InitialAge,
		EndAge:        profile.ProjectionEndAge,
		AbsoluteRisk:  result.AbsoluteRisk,
		AverageRisk:   result.AverageRisk,
		PatternNumber: result.PatternNumber,
		Succeeded:     result.Success,
		ProfileJSON:   string(profileJSON),
		ResultJSON:    string(resultJSON),
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.history.Record(ctx, rec); err != nil {
		s.logger.WithError(err).WithField("subject_id", rec.SubjectID).Warn("Failed to record assessment")
	}
}

func (s *RiskService) incrementStat(counter *int64) {
	s.statsMu.Lock()
	*counter++
	s.statsMu.Unlock()
}

// profileDigest derives a stable cache key from a profile and its options.
// Encoding a fixed-shape struct keeps field order deterministic.
func profileDigest(profile *domain.RiskFactorProfile, opts domain.CalculationOptions) string {
	payload := struct {
		Profile *domain.RiskFactorProfile `json:"p"`
		Options domain.CalculationOptions `json:"o"`
	}{profile, opts}

	data, _ := json.Marshal(payload)
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
