package history

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"github.com/epiverse/bcrat/internal/domain"
)

// ResilientStore wraps an AssessmentStore with a circuit breaker so a
// degraded history backend cannot slow down the calculation path. While the
// breaker is open, writes are dropped and reads fail fast.
type ResilientStore struct {
	inner   domain.AssessmentStore
	breaker *gobreaker.CircuitBreaker
	logger  *logrus.Logger
}

// NewResilientStore wraps inner with a circuit breaker.
func NewResilientStore(inner domain.AssessmentStore, logger *logrus.Logger) *ResilientStore {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "assessment-history",
		MaxRequests: 5,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		// A missing record is a valid answer, not a backend failure.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, domain.ErrNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("History circuit breaker state changed")
		},
	})

	return &ResilientStore{
		inner:   inner,
		breaker: breaker,
		logger:  logger,
	}
}

// Record stores one assessment through the breaker.
func (s *ResilientStore) Record(ctx context.Context, rec *domain.AssessmentRecord) error {
	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.inner.Record(ctx, rec)
	})
	return err
}

// Get retrieves one assessment through the breaker.
func (s *ResilientStore) Get(ctx context.Context, id string) (*domain.AssessmentRecord, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.Get(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return result.(*domain.AssessmentRecord), nil
}

// ListBySubject lists assessments through the breaker.
func (s *ResilientStore) ListBySubject(ctx context.Context, subjectID string, limit int) ([]*domain.AssessmentRecord, error) {
	result, err := s.breaker.Execute(func() (interface{}, error) {
		return s.inner.ListBySubject(ctx, subjectID, limit)
	})
	if err != nil {
		return nil, err
	}
	return result.([]*domain.AssessmentRecord), nil
}

// Close closes the underlying store.
func (s *ResilientStore) Close() error {
	return s.inner.Close()
}
