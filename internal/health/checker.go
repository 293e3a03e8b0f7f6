// Package health aggregates readiness checks for the risk service and its
// optional backing services.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/epiverse/bcrat/internal/domain"
	"github.com/epiverse/bcrat/internal/tables"
)

type State string

const (
	StateHealthy   State = "healthy"
	StateUnhealthy State = "unhealthy"
	StateUnknown   State = "unknown"
)

// ComponentHealth reports the outcome of one check.
type ComponentHealth struct {
	Name        string        `json:"name"`
	Status      State         `json:"status"`
	Message     string        `json:"message,omitempty"`
	Duration    time.Duration `json:"duration"`
	LastChecked time.Time     `json:"last_checked"`
	Error       string        `json:"error,omitempty"`
}

// Status is the aggregate health report returned by the /health endpoint.
type Status struct {
	Overall    State                      `json:"overall"`
	Timestamp  time.Time                  `json:"timestamp"`
	Version    string                     `json:"version"`
	Uptime     time.Duration              `json:"uptime"`
	Components map[string]ComponentHealth `json:"components"`
}

// Check probes one dependency.
type Check interface {
	Name() string
	Check(ctx context.Context) ComponentHealth
}

// Checker runs a fixed set of checks and folds them into one status.
type Checker struct {
	version string
	timeout time.Duration
	started time.Time
	checks  []Check
	logger  *logrus.Logger
}

// NewChecker creates a Checker over the given checks.
func NewChecker(version string, logger *logrus.Logger, checks ...Check) *Checker {
	return &Checker{
		version: version,
		timeout: 10 * time.Second,
		started: time.Now(),
		checks:  checks,
		logger:  logger,
	}
}

// Run executes every check. Overall health is the worst component state; an
// empty checker is healthy.
func (c *Checker) Run(ctx context.Context) *Status {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	status := &Status{
		Overall:    StateHealthy,
		Timestamp:  time.Now().UTC(),
		Version:    c.version,
		Uptime:     time.Since(c.started),
		Components: make(map[string]ComponentHealth, len(c.checks)),
	}

	for _, check := range c.checks {
		result := check.Check(ctx)
		status.Components[check.Name()] = result
		if result.Status == StateUnhealthy {
			status.Overall = StateUnhealthy
			c.logger.WithFields(logrus.Fields{
				"component": check.Name(),
				"error":     result.Error,
			}).Warn("Health check failed")
		}
	}

	return status
}

// ModelTablesCheck verifies that every supported race/ethnicity code resolves
// to a complete model table.
type ModelTablesCheck struct {
	Provider tables.Provider
}

func (t *ModelTablesCheck) Name() string { return "model_tables" }

func (t *ModelTablesCheck) Check(_ context.Context) ComponentHealth {
	start := time.Now()
	result := ComponentHealth{Name: t.Name(), Status: StateHealthy, LastChecked: start.UTC()}

	for race := domain.RaceWhite; race <= domain.RaceOtherAsian; race++ {
		table, ok := t.Provider.Lookup(race)
		if !ok || len(table.Incidence) != tables.AgeGroups || len(table.Mortality) != tables.AgeGroups {
			result.Status = StateUnhealthy
			result.Error = fmt.Sprintf("incomplete model table for race %d", race)
			break
		}
	}
	if result.Status == StateHealthy {
		result.Message = "all race tables loaded"
	}
	result.Duration = time.Since(start)
	return result
}

// DatabaseCheck pings the assessment database pool.
type DatabaseCheck struct {
	Pool *pgxpool.Pool
}

func (d *DatabaseCheck) Name() string { return "database" }

func (d *DatabaseCheck) Check(ctx context.Context) ComponentHealth {
	start := time.Now()
	result := ComponentHealth{Name: d.Name(), Status: StateHealthy, LastChecked: start.UTC()}

	if err := d.Pool.Ping(ctx); err != nil {
		result.Status = StateUnhealthy
		result.Error = err.Error()
	} else {
		result.Message = "connection pool responsive"
	}
	result.Duration = time.Since(start)
	return result
}

// RedisCheck pings the result cache.
type RedisCheck struct {
	Client *redis.Client
}

func (r *RedisCheck) Name() string { return "redis" }

func (r *RedisCheck) Check(ctx context.Context) ComponentHealth {
	start := time.Now()
	result := ComponentHealth{Name: r.Name(), Status: StateHealthy, LastChecked: start.UTC()}

	if err := r.Client.Ping(ctx).Err(); err != nil {
		result.Status = StateUnhealthy
		result.Error = err.Error()
	} else {
		result.Message = "ping ok"
	}
	result.Duration = time.Since(start)
	return result
}
